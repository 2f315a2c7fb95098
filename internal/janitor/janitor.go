// Package janitor runs periodic housekeeping against the database on cron
// schedules: expiring invite codes and purging dead sessions and tokens.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Job is one housekeeping task. Run returns the number of rows it touched.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context, now time.Time) (int64, error)
}

type Janitor struct {
	cron   *cron.Cron
	jobs   []Job
	logger *slog.Logger
	now    func() time.Time
}

// New validates every job's schedule and registers it. Overlapping runs of
// the same job are skipped.
func New(logger *slog.Logger, jobs ...Job) (*Janitor, error) {
	logger = logger.With("component", "janitor")
	j := &Janitor{
		jobs:   jobs,
		logger: logger,
		now:    time.Now,
	}

	j.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{logger}),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	for _, job := range jobs {
		if _, err := j.cron.AddFunc(job.Spec, func() { _ = j.run(context.Background(), job) }); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
	}
	return j, nil
}

// Start runs the schedule until ctx is done, then waits for running jobs.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "jobs", len(j.jobs))
	j.cron.Start()

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("janitor shut down")
}

// RunAll runs every job once, in order, and returns the first error.
// Later jobs still run when an earlier one fails.
func (j *Janitor) RunAll(ctx context.Context) error {
	var first error
	for _, job := range j.jobs {
		if err := j.run(ctx, job); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (j *Janitor) run(ctx context.Context, job Job) error {
	start := time.Now()
	n, err := job.Run(ctx, j.now().UTC())
	metrics.JanitorRunDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		j.logger.ErrorContext(ctx, "janitor job failed", "job", job.Name, "error", err)
		return fmt.Errorf("%s: %w", job.Name, err)
	}

	metrics.JanitorRowsAffected.WithLabelValues(job.Name).Add(float64(n))
	if n > 0 {
		j.logger.InfoContext(ctx, "janitor job done", "job", job.Name, "rows", n, "duration", time.Since(start))
	} else {
		j.logger.DebugContext(ctx, "janitor job done", "job", job.Name, "rows", 0)
	}
	return nil
}

// cronLogger adapts slog to cron's logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
