package process

import (
	"context"
	"time"

	"github.com/kbukum/scribe/logger"
)

// Runner applies shared defaults to every command it runs.
type Runner struct {
	// Timeout bounds each run. Zero means no timeout.
	Timeout time.Duration
	// GracePeriod is the default wait between SIGTERM and SIGKILL.
	GracePeriod time.Duration

	log *logger.Logger
}

// NewRunner creates a Runner that logs through log.
func NewRunner(timeout, grace time.Duration, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{Timeout: timeout, GracePeriod: grace, log: log.WithComponent("process")}
}

// Run executes cmd with the runner's defaults.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && r.GracePeriod > 0 {
		cmd.GracePeriod = r.GracePeriod
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	res, err := Run(ctx, cmd)
	fields := logger.Fields("binary", cmd.Binary)
	if res != nil {
		fields["exit_code"] = res.ExitCode
		fields[logger.FieldDuration] = res.Duration.Milliseconds()
	}
	if err != nil {
		r.log.WithContext(ctx).Warn("subprocess failed", logger.MergeWithError(fields, err))
		return res, err
	}
	r.log.WithContext(ctx).Debug("subprocess finished", fields)
	return res, nil
}
