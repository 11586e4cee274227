package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/rwool/visitor-counter/pkg/service"
)

// IncrementVisitorCounterRequest is the (empty) request for recording a visit.
type IncrementVisitorCounterRequest struct{}

// IncrementVisitorCounterResponse contains the new visitor count and an error
// to indicate a failure in the business logic.
type IncrementVisitorCounterResponse struct {
	service.VisitorCount
	e error
}

// Failed indicates if there was a business logic failure.
func (r IncrementVisitorCounterResponse) Failed() error {
	return r.e
}

// MakeIncrementVisitorCounterEndpoint creates a Go kit endpoint for recording
// visits.
func MakeIncrementVisitorCounterEndpoint(s service.CounterService) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		vc, err := s.IncrementVisitors(ctx)
		return IncrementVisitorCounterResponse{
			VisitorCount: vc,
			e:            err,
		}, nil
	}
}
