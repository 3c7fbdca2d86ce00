package registry

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a job id is absent from the registry.
var ErrNotFound = errors.New("job not found")

// ErrDuplicateID is returned when creating a job whose id already exists.
var ErrDuplicateID = errors.New("duplicate job id")

// State is the lifecycle state of a conversion job. The values match
// the text reported on the progress endpoint (status field).
//
// Centralizing these here avoids scattering string literals like
// "downloading" or "complete" across packages.
type State string

const (
	StateStarting    State = "starting"
	StateDownloading State = "downloading"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Terminal reports whether a state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateError
}

// Job is one in-flight or completed conversion. ID, SourceURL,
// Filename and CreatedAt are immutable after creation; everything else
// is mutated only through Registry.Update.
type Job struct {
	ID           string
	State        State
	Progress     string
	SourceURL    string
	Filename     string
	ArtifactPath string
	DownloadURL  string
	CreatedAt    time.Time
}

// Registry is the single source of truth for job state. All access
// from handlers, runners and the sweeper goes through its methods;
// callers only ever hold copies of Job, never the stored record.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func New() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create inserts a new job record.
func (r *Registry) Create(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return ErrDuplicateID
	}
	stored := job
	r.jobs[job.ID] = &stored
	return nil
}

// Get returns a snapshot of the job, if present.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Update applies mutate to the stored record while holding the write
// lock, so a read-modify-write is never split across a race window.
// Updates to the same id are applied in call order.
func (r *Registry) Update(id string, mutate func(*Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	mutate(job)
	return nil
}

// Remove deletes the record. A removed job is indistinguishable from
// one that never existed.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

// ListWhere returns snapshots of all jobs matching pred, ordered by
// creation time descending (newest first).
func (r *Registry) ListWhere(pred func(Job) bool) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Job
	for _, job := range r.jobs {
		if pred(*job) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
