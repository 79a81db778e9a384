package fabrik

import (
	"log/slog"

	"github.com/akmonengine/fabrik/chain"
	"github.com/akmonengine/fabrik/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Job is one independent solve of a batch, typically one limb of one character
type Job struct {
	Mode        Mode
	Input       chain.Chain
	Constraints constraint.Table
	Target      mgl64.Vec3
	Settings    Settings
	Owner       any

	// Result is filled by SolveBatch
	Result Result
}

// SolveBatch solves every job across workers goroutines and stores each outcome in Job.Result.
// Jobs must not share constraint instances that keep state between Setup and Enforce.
func SolveBatch(workers int, jobs []*Job, logger *slog.Logger) {
	workers = max(DEFAULT_WORKERS, workers)

	task(workers, jobs, func(job *Job) {
		solver := &Solver{Settings: job.Settings, Logger: logger}
		job.Result = solver.Solve(job.Mode, job.Input, job.Constraints, job.Target, job.Owner)
	})
}
