package receipts

import (
	"context"
	"fmt"
)

// Builder creates the Publisher for one sink.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Publisher, error)

// Builders maps sink types to their Builder.
type Builders map[string]Builder

// DefaultBuilders knows every sink type shipped with this package.
func DefaultBuilders() Builders {
	return Builders{
		TypeWebhook: newWebhookSink,
		TypeSQS:     newSQSSink,
		TypeSNS:     newSNSSink,
		TypePubSub:  newPubSubSink,
	}
}

// Build turns sink configs into a Dispatcher. Publishers built before a failure are closed.
func (b Builders) Build(ctx context.Context, sinks []SinkConfig, log Logger) (*Dispatcher, error) {
	d := &Dispatcher{}
	for _, sink := range sinks {
		build, ok := b[sink.Type]
		if !ok {
			_ = d.Close()
			return nil, fmt.Errorf("sink %q: no builder for type %q", sink.ID, sink.Type)
		}
		pub, err := build(ctx, sink, ensureLogger(log))
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("sink %q: %w", sink.ID, err)
		}
		d.routes = append(d.routes, route{sink: sink, pub: pub})
	}
	return d, nil
}
