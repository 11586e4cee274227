// Command lambda runs the visitor counter as an AWS Lambda function behind an
// API Gateway proxy integration.
package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/rwool/visitor-counter/pkg/config"
	"github.com/rwool/visitor-counter/pkg/endpoint"
	"github.com/rwool/visitor-counter/pkg/lambda"
	"github.com/rwool/visitor-counter/pkg/service"
)

func main() {
	awslambda.Start(setup(context.Background()))
}

// setup builds the invocation handler. Configuration and store errors fail
// each invocation rather than the cold start.
func setup(ctx context.Context) lambda.Handler {
	conf, err := config.Load()
	if err != nil {
		return lambda.MakeErrorHandler(errors.Wrap(err, "invalid configuration"))
	}
	l := conf.NewLogger(os.Stderr)

	kv, _, err := conf.OpenStore(ctx)
	if err != nil {
		_ = level.Error(l).Log("message", "unable to open store", "err", err)
		return lambda.MakeErrorHandler(err)
	}
	counterService, err := service.NewCounterService(conf.Service(), kv, l)
	if err != nil {
		_ = level.Error(l).Log("message", "unable to create service", "err", err)
		return lambda.MakeErrorHandler(err)
	}

	return lambda.MakeIncrementVisitorCounterHandler(
		endpoint.MakeIncrementVisitorCounterEndpoint(counterService),
		counterService.AllowedOrigin(),
	)
}
