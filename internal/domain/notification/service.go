package notification

import "context"

// Service delivers request lifecycle emails and realtime events.
type Service interface {
	// NotifyAdmins emails every active admin. Failures for individual
	// recipients are logged and skipped.
	NotifyAdmins(ctx context.Context, msg Message)

	// NotifyUser emails a single user and returns the delivery error.
	NotifyUser(ctx context.Context, userID string, msg Message) error

	// Publish pushes an event to the user's open streams and to every admin stream.
	Publish(userID string, name string, data interface{})

	// Subscribe opens a stream for a user. Admin streams also receive every
	// user's events.
	Subscribe(ctx context.Context, userID string, isAdmin bool) (<-chan Event, func())

	// Close stops background delivery after draining queued broadcasts.
	Close()
}
