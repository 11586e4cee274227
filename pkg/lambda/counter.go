// Package lambda provides support for invoking the counter service from API
// Gateway proxy events.
//
// This is analogous to the http package for a long running server.
package lambda

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"

	counterendpoint "github.com/rwool/visitor-counter/pkg/endpoint"
)

// Handler is the signature accepted by lambda.Start for proxy integrations.
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// MakeIncrementVisitorCounterHandler returns a handler that records one visit
// per event. Responses allow reads from origin.
//
// Failures are returned to the runtime instead of being encoded so that the
// trigger reports them with its default error response.
func MakeIncrementVisitorCounterHandler(e endpoint.Endpoint, origin string) Handler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := e(ctx, decodeIncrementVisitorCounterRequest(req))
		if err != nil {
			return events.APIGatewayProxyResponse{}, errors.WithStack(err)
		}
		return encodeIncrementVisitorCounterResponse(origin, resp)
	}
}

// MakeErrorHandler returns a handler failing every invocation with err. It
// stands in for the counter handler when setup fails, so the failure is
// reported per request instead of crashing the cold start.
func MakeErrorHandler(err error) Handler {
	return func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, err
	}
}

// No fields of the event are used.
func decodeIncrementVisitorCounterRequest(_ events.APIGatewayProxyRequest) interface{} {
	return counterendpoint.IncrementVisitorCounterRequest{}
}

func encodeIncrementVisitorCounterResponse(origin string, r interface{}) (events.APIGatewayProxyResponse, error) {
	if v, ok := r.(endpoint.Failer); ok && v.Failed() != nil {
		return events.APIGatewayProxyResponse{}, v.Failed()
	}
	resp, ok := r.(counterendpoint.IncrementVisitorCounterResponse)
	if !ok {
		return events.APIGatewayProxyResponse{}, errors.Errorf("unexpected response type %T", r)
	}
	body, err := json.Marshal(resp.VisitorCount)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.WithStack(err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": origin,
		},
		Body: string(body),
	}, nil
}
