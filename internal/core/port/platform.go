package port

import (
	"context"
	"detectbot/internal/core/domain"
)

type Timeline interface {
	// HomeTimeline returns the most recent posts of the bot's home timeline, newest first.
	HomeTimeline(ctx context.Context, count int) ([]domain.Post, error)
	// MentionsTimeline returns mentions with an ID greater than sinceID. A zero sinceID disables the filter.
	MentionsTimeline(ctx context.Context, sinceID int64) ([]domain.Mention, error)
}

type ReplySender interface {
	// UpdateStatus posts a text-only reply to the given status.
	UpdateStatus(ctx context.Context, text string, inReplyTo int64) error
	// UpdateStatusWithMedia posts a reply to the given status with an attached image.
	UpdateStatusWithMedia(ctx context.Context, text, filename string, inReplyTo int64, file []byte) error
}

type Platform interface {
	Timeline
	ReplySender
}
