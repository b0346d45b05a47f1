package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named background task with a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Status is one registry entry as reported to the HTTP layer.
type Status struct {
	Name     string     `json:"nom"`
	Schedule string     `json:"planification"`
	Enabled  bool       `json:"actif"`
	LastRun  *time.Time `json:"derniereExecution,omitempty"`
}

type entry struct {
	job     Job
	enabled bool
	lastRun *time.Time
}

// Registry holds the fixed set of scheduled jobs. It is constructed once at
// process start and injected where needed; the enabled flags and last-run
// timestamps live here, not in package globals.
type Registry struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*entry
	cron    *cron.Cron
	log     zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		entries: map[string]*entry{},
		cron:    cron.New(),
		log:     log,
	}
}

// Register adds a job, enabled by default. Ticks on a disabled job are
// skipped; the schedule itself keeps running.
func (r *Registry) Register(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := job.Name
	_, err := r.cron.AddFunc(job.Schedule, func() {
		r.tick(name)
	})
	if err != nil {
		return err
	}
	r.entries[name] = &entry{job: job, enabled: true}
	r.order = append(r.order, name)
	return nil
}

// Start begins cron scheduling.
func (r *Registry) Start() {
	r.cron.Start()
}

// Stop halts cron scheduling, waiting for a running job to finish.
func (r *Registry) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Registry) tick(name string) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok || !e.enabled {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.invoke(context.Background(), e)
}

// invoke runs the job body, containing any failure: a job error is a log
// entry, never a runner error.
func (r *Registry) invoke(ctx context.Context, e *entry) {
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("job", e.job.Name).Msg("jobs: job panicked")
		}
	}()

	if err := e.job.Run(ctx); err != nil {
		r.log.Error().Err(err).Str("job", e.job.Name).Msg("jobs: job failed")
	} else {
		r.log.Info().Str("job", e.job.Name).Dur("duration", time.Since(started)).Msg("jobs: job completed")
	}

	r.mu.Lock()
	e.lastRun = &started
	r.mu.Unlock()
}

// List reports every registered job in registration order.
func (r *Registry) List() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		statuses = append(statuses, Status{
			Name:     e.job.Name,
			Schedule: e.job.Schedule,
			Enabled:  e.enabled,
			LastRun:  e.lastRun,
		})
	}
	return statuses
}

// SetEnabled toggles a job and reports whether the name was known.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	return true
}

// RunNow invokes a job immediately, regardless of its enabled flag or
// schedule, and reports whether the name was known. Body failures are logged,
// not returned.
func (r *Registry) RunNow(ctx context.Context, name string) bool {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.invoke(ctx, e)
	return true
}
