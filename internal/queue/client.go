package queue

import "context"

// Client sends tracking messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg TrackMessage) error
}
