package service

import (
	"cmp"
	"context"
	"detectbot/internal/core/domain"
	"detectbot/internal/core/port"
	"fmt"
	"slices"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FeedWalker runs one polling cycle: it finds the checkpoint, fetches newer mentions and dispatches them oldest
// first, one at a time.
type FeedWalker struct {
	timeline   port.Timeline
	cursor     port.CursorStore
	dispatcher Dispatcher
	recorder   port.Recorder
}

func NewFeedWalker(timeline port.Timeline, cursor port.CursorStore, dispatcher Dispatcher,
	recorder port.Recorder) *FeedWalker {
	return &FeedWalker{timeline: timeline, cursor: cursor, dispatcher: dispatcher, recorder: recorder}
}

// Walk processes every mention newer than the checkpoint. A failing mention is logged and skipped, only errors
// reading the checkpoint, listing mentions or storing the cursor end the cycle early.
func (w *FeedWalker) Walk(ctx context.Context) (domain.CycleReport, error) {
	l := log.With().Str("cycleId", cycleID()).Logger()

	var report domain.CycleReport

	sinceID, err := w.SinceID(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to determine checkpoint: %w", err)
	}
	report.SinceID = sinceID

	mentions, err := w.timeline.MentionsTimeline(ctx, sinceID)
	if err != nil {
		return report, fmt.Errorf("failed to fetch mentions: %w", err)
	}

	mentions = pending(mentions, sinceID)
	report.Fetched = len(mentions)

	l.Debug().Int64("sinceId", sinceID).Int("mentions", len(mentions)).Msg("walking mention feed")

	for _, mention := range mentions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome, err := w.dispatch(ctx, mention)
		w.count(&report, outcome)
		w.recorder.MentionHandled(string(outcome))

		if err != nil {
			kind := domain.ErrorKind(err)
			w.recorder.MentionFailed(kind)
			l.Error().Err(err).
				Int64("statusId", mention.ID).
				Str("kind", kind).
				Msg("failed to process mention, skipping")
		}

		if err := w.cursor.Save(ctx, mention.ID); err != nil {
			return report, fmt.Errorf("failed to store cursor: %w", err)
		}
	}

	w.recorder.CycleCompleted(report.Fetched)
	logCycle(l, report)

	return report, nil
}

// dispatch turns a panic while handling one mention into an error so the cursor still moves past it.
func (w *FeedWalker) dispatch(ctx context.Context, mention domain.Mention) (outcome domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.OutcomeFailed
			err = fmt.Errorf("%w: %v", domain.ErrPanic, r)
		}
	}()

	return w.dispatcher.Dispatch(ctx, mention)
}

// SinceID returns the stored cursor or, when none is stored yet, the status the bot last replied to.
func (w *FeedWalker) SinceID(ctx context.Context) (int64, error) {
	id, ok, err := w.cursor.Load(ctx)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	posts, err := w.timeline.HomeTimeline(ctx, 1)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		log.Warn().Msg("no stored cursor and empty timeline, starting without checkpoint")
		return 0, nil
	}

	return posts[0].InReplyToStatusID, nil
}

func (w *FeedWalker) count(report *domain.CycleReport, outcome domain.Outcome) {
	switch outcome {
	case domain.OutcomeReplied, domain.OutcomeFallback:
		report.Replied++
	case domain.OutcomeNoPhoto:
		report.NoPhoto++
	default:
		report.Failed++
	}
}

// pending drops mentions at or before the checkpoint and orders the rest by ascending ID.
func pending(mentions []domain.Mention, sinceID int64) []domain.Mention {
	out := make([]domain.Mention, 0, len(mentions))
	for _, m := range mentions {
		if m.ID > sinceID {
			out = append(out, m)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Mention) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

func cycleID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

func logCycle(l zerolog.Logger, report domain.CycleReport) {
	e := l.Debug()
	if report.Fetched > 0 {
		e = l.Info()
	}

	e.Int64("sinceId", report.SinceID).
		Int("fetched", report.Fetched).
		Int("replied", report.Replied).
		Int("noPhoto", report.NoPhoto).
		Int("failed", report.Failed).
		Msg("cycle finished")
}
