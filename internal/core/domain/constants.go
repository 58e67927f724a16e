package domain

import (
	"context"
	"errors"
)

var (
	ErrConfig             = errors.New("invalid configuration")
	ErrFetch              = errors.New("failed to fetch photo")
	ErrDetectionService   = errors.New("detection service error")
	ErrPlatform           = errors.New("platform request failed")
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEncode             = errors.New("failed to encode image")
	ErrPanic              = errors.New("panic while handling mention")
)

const (
	KindFetch     = "fetch"
	KindDetection = "detection"
	KindPlatform  = "platform"
	KindTimeout   = "timeout"
	KindEncode    = "encode"
	KindPanic     = "panic"
	KindUnknown   = "unknown"
)

// ErrorKind classifies an error for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrPanic):
		return KindPanic
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrEncode):
		return KindEncode
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrDetectionService):
		return KindDetection
	case errors.Is(err, ErrPlatform), errors.Is(err, ErrSendingReplyFailed):
		return KindPlatform
	default:
		return KindUnknown
	}
}
