package handler

import (
	"context"
	"detectbot/internal/core/domain"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Walker interface {
	Walk(ctx context.Context) (domain.CycleReport, error)
}

// Poller drives the feed walker on a fixed interval. Cycles never overlap: a tick that fires while a cycle is still
// running is skipped.
type Poller struct {
	walker   Walker
	interval time.Duration
	cron     *cron.Cron
}

func NewPoller(walker Walker, interval time.Duration) (*Poller, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("poll interval must be at least one second, got %s", interval)
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Poller{walker: walker, interval: interval, cron: c}, nil
}

// Run executes one cycle right away and then one per interval until ctx is cancelled. It returns once the cycle in
// flight, if any, has finished.
func (p *Poller) Run(ctx context.Context) error {
	p.tick(ctx)

	_, err := p.cron.AddFunc("@every "+p.interval.String(), func() { p.tick(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule polling: %w", err)
	}

	log.Info().Dur("interval", p.interval).Msg("polling mentions")
	p.cron.Start()

	<-ctx.Done()

	log.Info().Msg("stopping poller")
	<-p.cron.Stop().Done()

	return nil
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("polling cycle panicked")
		}
	}()

	start := time.Now()
	report, err := p.walker.Walk(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Msg("polling cycle interrupted")
			return
		}
		log.Error().Err(err).Int("processed", report.Replied+report.NoPhoto+report.Failed).
			Msg("polling cycle failed")
		return
	}

	log.Debug().Dur("took", time.Since(start)).Int("mentions", report.Fetched).Msg("polling cycle done")
}

// cronLogger forwards cron's own logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
