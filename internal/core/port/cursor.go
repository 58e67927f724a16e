package port

import "context"

type CursorStore interface {
	// Load returns the ID of the last processed mention. ok is false when nothing has been stored yet.
	Load(ctx context.Context) (id int64, ok bool, err error)
	// Save records id as processed. The stored cursor never moves backwards.
	Save(ctx context.Context, id int64) error
}
