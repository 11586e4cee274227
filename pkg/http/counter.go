package http

import (
	"context"
	"encoding/json"
	"fmt"
	gohttp "net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"

	counterendpoint "github.com/rwool/visitor-counter/pkg/endpoint"
)

// IncrementVisitorCounterPath is the route recording a visit.
const IncrementVisitorCounterPath = "/api/increase-visitor-counter"

// NewCounterHTTPHandler returns a handler that makes the counter service
// endpoint available via HTTP. Successful responses allow reads from origin.
func NewCounterHTTPHandler(endpoint endpoint.Endpoint, origin string, options map[string][]http.ServerOption) gohttp.Handler {
	if options == nil {
		options = make(map[string][]http.ServerOption)
	}
	m := gohttp.NewServeMux()
	makeIncrementVisitorCounterHandler(m, endpoint, origin, options["IncrementVisitorCounter"]...)
	return m
}

type errorResponse struct {
	Error string
}

// Store failures are logged by the service; clients only learn that the
// request failed.
const internalErrorMessage = "internal error"

func makeEncodeIncrementVisitorCounterResponse(origin string) http.EncodeResponseFunc {
	return func(_ context.Context, w gohttp.ResponseWriter, r interface{}) error {
		w.Header().Set("Content-Type", "application/json")
		if v, ok := r.(endpoint.Failer); ok && v.Failed() != nil {
			w.WriteHeader(gohttp.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: internalErrorMessage})
			return nil
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		resp, ok := r.(counterendpoint.IncrementVisitorCounterResponse)
		if !ok {
			return errors.Errorf("unexpected response type %T", r)
		}
		err := json.NewEncoder(w).Encode(resp.VisitorCount)
		return errors.WithStack(err)
	}
}

// The request body is ignored; the counter key is fixed by configuration.
func decodeIncrementVisitorCounterRequest(_ context.Context, req *gohttp.Request) (interface{}, error) {
	return counterendpoint.IncrementVisitorCounterRequest{}, nil
}

func writePreflight(w gohttp.ResponseWriter, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", gohttp.MethodPost)
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(gohttp.StatusNoContent)
}

func makeIncrementVisitorCounterHandler(m *gohttp.ServeMux, endpoint endpoint.Endpoint, origin string, options ...http.ServerOption) {
	handler := http.NewServer(endpoint,
		decodeIncrementVisitorCounterRequest,
		makeEncodeIncrementVisitorCounterResponse(origin),
		options...)
	hf := func(w gohttp.ResponseWriter, r *gohttp.Request) {
		switch r.Method {
		case gohttp.MethodPost:
			handler.ServeHTTP(w, r)
		case gohttp.MethodOptions:
			writePreflight(w, origin)
		default:
			w.Header().Set("Allow", "POST, OPTIONS")
			w.WriteHeader(gohttp.StatusMethodNotAllowed)
			_, _ = fmt.Fprintf(w, "Invalid request method %s", r.Method)
		}
	}
	m.Handle(IncrementVisitorCounterPath, gohttp.HandlerFunc(hf))
}
