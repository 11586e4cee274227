// Command counter serves the visitor counter API and consumer page over HTTP.
package main

import (
	"context"
	"net"
	gohttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/rwool/visitor-counter/pkg/config"
	"github.com/rwool/visitor-counter/pkg/endpoint"
	"github.com/rwool/visitor-counter/pkg/http"
	"github.com/rwool/visitor-counter/pkg/service"
	"github.com/rwool/visitor-counter/web"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "counter",
		Usage:   "serve the visitor counter",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "environment file read before the process environment"},
			&cli.StringFlag{Name: "listen", Usage: "listen address (overrides LISTEN_ADDRESS)"},
			&cli.StringFlag{Name: "backend", Usage: "dynamodb|redis|datastore|memory (overrides COUNTER_BACKEND)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error (overrides LOG_LEVEL)"},
			&cli.BoolFlag{Name: "no-page", Usage: "serve only the API"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		l := log.NewJSONLogger(os.Stderr)
		_ = level.Error(l).Log("message", "counter exited", "err", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	conf, err := config.LoadEnv(c.String("env-file"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("listen") {
		conf.ListenAddress = c.String("listen")
	}
	if c.IsSet("backend") {
		conf.Backend = c.String("backend")
	}
	if c.IsSet("log-level") {
		conf.LogLevel = c.String("log-level")
	}
	return conf, errors.WithStack(conf.Validate())
}

func run(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	l := conf.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := conf.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			_ = level.Warn(l).Log("message", "unable to close store", "err", err)
		}
	}()

	// Business logic.
	counterService, err := service.NewCounterService(conf.Service(), kv, l)
	if err != nil {
		return err
	}

	// Endpoints.
	counterEndpoint := endpoint.MakeIncrementVisitorCounterEndpoint(counterService)

	// Transports.
	m := gohttp.NewServeMux()
	m.Handle("/api/", http.NewCounterHTTPHandler(counterEndpoint, counterService.AllowedOrigin(), nil))
	if !c.Bool("no-page") {
		m.Handle("/", web.Handler())
	}

	server, err := serveHTTP(conf.ListenAddress, m)
	if err != nil {
		return err
	}
	_ = level.Info(l).Log("message", "serving visitor counter", "address", conf.ListenAddress, "key", conf.Key)
	return server(ctx, l)
}

func serveHTTP(address string, h gohttp.Handler) (func(context.Context, log.Logger) error, error) {
	// Separate listening and serving to capture listen errors.
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create TCP listener")
	}

	return func(ctx context.Context, logger log.Logger) error {
		srv := &gohttp.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = level.Warn(logger).Log("message", "unclean shutdown", "err", err)
			}
		}()
		err := srv.Serve(ln)
		if err == gohttp.ErrServerClosed {
			return nil
		}
		return errors.WithStack(err)
	}, nil
}
