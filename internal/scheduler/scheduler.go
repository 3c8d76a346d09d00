package scheduler

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job is a single pipeline run.
type Job func(ctx context.Context) error

// Scheduler triggers the job on a cron schedule.
// Scheduled and manual triggers share one guard, a trigger is skipped while a run is still going.
type Scheduler struct {
	Cron  *cron.Cron
	entry cron.Job
	job   Job
	ctx   context.Context
}

// New creates a scheduler with a standard 5 field cron spec, like "30 2 * * *".
func New(ctx context.Context, spec string, job Job) (*Scheduler, error) {
	logger := cronLogger{log.With().Str("component", "scheduler").Logger()}
	s := &Scheduler{
		Cron: cron.New(cron.WithLogger(logger)),
		job:  job,
		ctx:  ctx,
	}
	s.entry = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.run))
	if _, err := s.Cron.AddJob(spec, s.entry); err != nil {
		return nil, errors.Wrapf(err, "register pipeline job %q", spec)
	}
	return s, nil
}

// Trigger runs the job now, outside of the schedule. It blocks until the run is over
// and returns at once if a run is in progress.
func (s *Scheduler) Trigger() {
	s.entry.Run()
}

// Start runs the schedule until the context is done, then waits for a running job to finish.
func (s *Scheduler) Start() error {
	s.Cron.Start()
	if entries := s.Cron.Entries(); len(entries) > 0 {
		log.Info().Time("next", entries[0].Next).Msg("scheduler started")
	}
	<-s.ctx.Done()
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
	return s.ctx.Err()
}

// run is the cron entry. Failures are already logged by the pipeline and the next trigger is a fresh run.
func (s *Scheduler) run() {
	if err := s.job(s.ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
	}
}

// cronLogger writes cron library messages to zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
