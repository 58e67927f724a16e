package service

import (
	"context"
	"detectbot/internal/core/domain"
	"detectbot/internal/core/port"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, mention domain.Mention) (domain.Outcome, error)
}

// MentionDispatcher answers a single mention: it finds the photo, runs detection and replies with the annotated
// image and a summary of what was found.
type MentionDispatcher struct {
	detector          port.Detector
	encoder           port.ImageEncoder
	sender            port.ReplySender
	recorder          port.Recorder
	detectTimeout     time.Duration
	fallbackOnTimeout bool
}

func NewMentionDispatcher(detector port.Detector, encoder port.ImageEncoder, sender port.ReplySender,
	recorder port.Recorder, detectTimeout time.Duration, fallbackOnTimeout bool) *MentionDispatcher {
	return &MentionDispatcher{
		detector:          detector,
		encoder:           encoder,
		sender:            sender,
		recorder:          recorder,
		detectTimeout:     detectTimeout,
		fallbackOnTimeout: fallbackOnTimeout,
	}
}

func (d *MentionDispatcher) Dispatch(ctx context.Context, mention domain.Mention) (domain.Outcome, error) {
	l := log.With().
		Int64("statusId", mention.ID).
		Str("screenName", mention.ScreenName).
		Logger()

	l.Debug().Str("text", mention.Text).Msg("received mention")

	photoURL, ok := mention.PhotoURL()
	if !ok {
		l.Info().Msg("no photo attached, sending apology")
		err := d.sender.UpdateStatus(ctx, domain.PhotoNotFoundReply(mention.ScreenName), mention.ID)
		if err != nil {
			l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
			return domain.OutcomeFailed, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}
		return domain.OutcomeNoPhoto, nil
	}

	l = l.With().Str("photoURL", photoURL).Logger()
	l.Info().Msg("handling mention")

	img, detections, err := d.detect(ctx, photoURL)
	if err != nil {
		if d.fallbackOnTimeout && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			l.Warn().Err(err).Msg("detection timed out, sending fallback reply")
			sendErr := d.sender.UpdateStatus(ctx, domain.ServiceUnavailableReply(mention.ScreenName), mention.ID)
			if sendErr != nil {
				l.Error().Err(sendErr).Msg(domain.ErrSendingReplyFailed.Error())
				return domain.OutcomeFailed, errors.Join(err, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, sendErr))
			}
			return domain.OutcomeFallback, nil
		}

		l.Error().Err(err).Msg("detection failed")
		return domain.OutcomeFailed, err
	}

	text := domain.ComposeReply(detections, mention.ScreenName)
	l.Debug().Int("detections", len(detections)).Str("text", text).Msg("composed reply")

	file, err := d.encoder.Encode(img)
	if err != nil {
		l.Error().Err(err).Msg("failed to encode annotated image")
		return domain.OutcomeFailed, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}

	err = d.sender.UpdateStatusWithMedia(ctx, text, fmt.Sprintf("%d.jpeg", mention.ID), mention.ID, file)
	if err != nil {
		l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		return domain.OutcomeFailed, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	l.Info().Int("detections", len(detections)).Msg("replied to mention")

	return domain.OutcomeReplied, nil
}

func (d *MentionDispatcher) detect(ctx context.Context, photoURL string) (image.Image, []domain.Detection, error) {
	if d.detectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.detectTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		d.recorder.DetectionObserved(time.Since(start))
	}()

	return d.detector.Detect(ctx, photoURL)
}
