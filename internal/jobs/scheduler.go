package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SelicRefresher refreshes a cached Selic rate.
type SelicRefresher interface {
	Refresh(ctx context.Context) (float64, error)
}

// Options configures a Scheduler. An empty schedule disables its job.
type Options struct {
	CheckpointSchedule string
	SelicSchedule      string
	// JobTimeout bounds a single run. Defaults to one minute.
	JobTimeout time.Duration
}

// Scheduler runs the background jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	ckpt   *Checkpointer
	selic  SelicRefresher
	opts   Options
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the jobs. ckpt and selic may be nil to skip their job.
func New(ckpt *Checkpointer, selic SelicRefresher, opts Options, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger}))),
		ckpt:   ckpt,
		selic:  selic,
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if ckpt != nil && opts.CheckpointSchedule != "" {
		if _, err := s.cron.AddFunc(opts.CheckpointSchedule, s.checkpoint); err != nil {
			cancel()
			return nil, fmt.Errorf("checkpoint schedule %q: %w", opts.CheckpointSchedule, err)
		}
	}
	if selic != nil && opts.SelicSchedule != "" {
		if _, err := s.cron.AddFunc(opts.SelicSchedule, s.refreshSelic); err != nil {
			cancel()
			return nil, fmt.Errorf("selic schedule %q: %w", opts.SelicSchedule, err)
		}
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs, then takes a final checkpoint.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out waiting for running jobs")
	}
	s.cancel()

	if s.ckpt == nil {
		return nil
	}
	if err := s.ckpt.Checkpoint(ctx); err != nil {
		return fmt.Errorf("final checkpoint: %w", err)
	}
	s.logger.Info("final checkpoint saved")
	return nil
}

func (s *Scheduler) checkpoint() {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.JobTimeout)
	defer cancel()
	if err := s.ckpt.Checkpoint(ctx); err != nil {
		s.logger.Error("checkpoint failed", "error", err)
	}
}

func (s *Scheduler) refreshSelic() {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.JobTimeout)
	defer cancel()
	rate, err := s.selic.Refresh(ctx)
	if err != nil {
		s.logger.Warn("selic refresh failed", "error", err)
		return
	}
	s.logger.Info("selic refreshed", "rate", rate)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
