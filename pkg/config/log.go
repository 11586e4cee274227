package config

import (
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

func parseLevel(lv string) (level.Option, error) {
	switch lv {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, errors.Errorf("unknown log level %q", lv)
}

// NewLogger returns a JSON logger writing to w, filtered to the configured
// level.
func (c Config) NewLogger(w io.Writer) log.Logger {
	l := log.NewJSONLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "backend", c.Backend)
	opt, err := parseLevel(c.LogLevel)
	if err != nil {
		opt = level.AllowInfo()
	}
	return level.NewFilter(l, opt)
}
