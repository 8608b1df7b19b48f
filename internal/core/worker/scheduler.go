package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vietddude/goodnews/internal/core/config"
	"github.com/vietddude/goodnews/internal/core/domain"
)

// Runner runs one collection.
type Runner interface {
	Run(ctx context.Context) (domain.CollectionSummary, error)
}

// Scheduler triggers collections on a cron schedule. A failed run is
// retried with exponential backoff inside the same tick.
type Scheduler struct {
	spec    string
	loc     *time.Location
	runner  Runner
	backoff *ExponentialBackoff
	sleep   func(ctx context.Context, d time.Duration) error
	log     *slog.Logger
}

// NewScheduler validates the schedule and timezone. It returns nil
// without error when scheduling is turned off.
func NewScheduler(cfg config.CollectionConfig, runner Runner) (*Scheduler, error) {
	spec := strings.TrimSpace(cfg.Schedule)
	if spec == "" || strings.EqualFold(spec, config.ScheduleOff) {
		return nil, nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid collection schedule %q: %w", spec, err)
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid collection timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	backoff := DefaultBackoff()
	if cfg.RetryAttempts > 0 {
		backoff.MaxAttempts = cfg.RetryAttempts
	}

	return &Scheduler{
		spec:    spec,
		loc:     loc,
		runner:  runner,
		backoff: backoff,
		sleep:   sleepCtx,
		log:     slog.Default().With("component", "scheduler"),
	}, nil
}

// Start runs the cron loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := c.AddFunc(s.spec, func() { _ = s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule collection: %w", err)
	}

	s.log.Info("Collection scheduled", "schedule", s.spec, "timezone", s.loc.String())
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

// RunOnce runs a collection, retrying failures per the backoff policy.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	for attempt := 0; ; attempt++ {
		var summary domain.CollectionSummary
		summary, err = s.runner.Run(ctx)
		if err == nil {
			s.log.Info("Scheduled collection succeeded",
				"collected", summary.Collected,
				"curated", summary.CuratedCount,
				"attempt", attempt+1,
			)
			return nil
		}

		if !s.backoff.ShouldRetry(err, attempt+1) {
			break
		}

		delay := s.backoff.GetDelay(attempt)
		s.log.Warn("Scheduled collection failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		if serr := s.sleep(ctx, delay); serr != nil {
			return serr
		}
	}

	s.log.Error("Scheduled collection gave up", "attempts", s.backoff.MaxAttempts, "error", err)
	return err
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
