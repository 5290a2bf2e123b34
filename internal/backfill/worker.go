package backfill

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// JobArgs identifies one on-demand backfill run. There is no scheduler;
// a job exists only because an admin triggered it.
type JobArgs struct {
	Target string `json:"target"`
}

func (JobArgs) Kind() string { return "backfill_short_codes" }

// Runner is the contract the worker needs; *Service implements it.
type Runner interface {
	Run(ctx context.Context, target string) (int, error)
}

type Worker struct {
	river.WorkerDefaults[JobArgs]
	runner Runner
	log    *slog.Logger
}

func NewWorker(runner Runner, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{runner: runner, log: log}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[JobArgs]) error {
	updated, err := w.runner.Run(ctx, job.Args.Target)
	if err != nil {
		// updated records keep their codes; River retries the job and
		// the rerun picks up only the remainder.
		w.log.Error("backfill run failed", "target", job.Args.Target, "updated", updated, "error", err)
		return err
	}
	w.log.Info("backfill run complete", "target", job.Args.Target, "updated", updated)
	return nil
}
