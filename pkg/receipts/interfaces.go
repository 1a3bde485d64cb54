package receipts

import "context"

// Publisher delivers receipts to one downstream sink.
type Publisher interface {
	ID() string
	Publish(ctx context.Context, r Receipt) error
}

// Closer is implemented by publishers holding long-lived clients.
type Closer interface {
	Close() error
}
