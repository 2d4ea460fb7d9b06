// Package schedule runs the periodic background jobs: ICS re-import and
// preview capture.
package schedule

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "sessioncal/internal/log"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs share a cancellable context.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an idle scheduler. Jobs added to it run with ctx-derived
// contexts that are cancelled by Stop.
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under the standard five-field spec. An empty spec is a
// no-op so optional jobs can be passed through unconditionally.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		appLog.Debug("scheduled job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			appLog.Error("scheduled job failed", err, "job", name)
			return
		}
		appLog.Debug("scheduled job done", "job", name)
	})
	if err != nil {
		return fmt.Errorf("schedule: job %s: invalid spec %q: %w", name, spec, err)
	}
	appLog.Info("scheduled job registered", "job", name, "spec", spec)
	return nil
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs' context and waits for them, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		appLog.Warn("scheduler stop timed out")
	}
}
