package receipts

import (
	"context"
	"errors"
	"fmt"
)

type route struct {
	sink SinkConfig
	pub  Publisher
}

// Dispatcher routes each receipt to the sinks subscribed to its outcome.
// A nil Dispatcher has no sinks.
type Dispatcher struct {
	routes []route
}

// Publish delivers r to every matching sink and returns how many accepted it.
// Every matching sink is attempted once; failures are joined.
func (d *Dispatcher) Publish(ctx context.Context, r Receipt) (int, error) {
	if d == nil {
		return 0, nil
	}

	var errs []error
	delivered := 0
	for _, rt := range d.routes {
		if !rt.sink.Accepts(r) {
			continue
		}
		if err := rt.pub.Publish(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("%s sink %s: %w", rt.sink.Type, rt.sink.ID, err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Len returns the number of configured sinks.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.routes)
}

// Close releases sinks that hold clients.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, rt := range d.routes {
		if c, ok := rt.pub.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close sink %s: %w", rt.sink.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
