package jobs

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"ripper/internal/metrics"
	"ripper/internal/registry"
)

// Sweeper deletes a completed job's artifact and registry entry a
// fixed delay after it is scheduled. Timers are tracked per job so a
// scheduled sweep can be cancelled, and the delay is configurable so
// tests never wait out the production window.
type Sweeper struct {
	reg    *registry.Registry
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewSweeper(reg *registry.Registry, delay time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		reg:    reg,
		delay:  delay,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms the retention timer for id. Scheduling an id that is
// already pending is a no-op.
func (s *Sweeper) Schedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, pending := s.timers[id]; pending {
		return
	}
	s.timers[id] = time.AfterFunc(s.delay, func() { s.sweep(id) })
}

// Cancel stops a pending sweep. Reports whether a timer was armed.
func (s *Sweeper) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, pending := s.timers[id]
	if !pending {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	return true
}

// Pending reports whether a sweep is scheduled for id.
func (s *Sweeper) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, pending := s.timers[id]
	return pending
}

func (s *Sweeper) sweep(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	job, ok := s.reg.Get(id)
	if !ok {
		// Already removed; nothing to clean up.
		return
	}

	if job.ArtifactPath != "" {
		if err := os.Remove(job.ArtifactPath); err != nil && !os.IsNotExist(err) {
			// A file we could not delete is a degraded outcome, not a
			// reason to keep the stale registry entry around.
			s.logger.Error("failed to remove artifact", "job_id", id, "path", job.ArtifactPath, "error", err)
			metrics.RecordSweepFileError()
		}
	}

	_ = s.reg.Remove(id)
	metrics.RecordSweep()
	s.logger.Info("job swept", "job_id", id)
}
