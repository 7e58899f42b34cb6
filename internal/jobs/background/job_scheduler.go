package background

import (
	"context"
	"log"
	"sync"
	"time"

	"authd/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages background maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	sessions  services.SessionService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with the session expiry sweep registered.
func NewJobScheduler(sessions services.SessionService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		sessions:  sessions,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Expired sessions stay invalid without the sweep; this only keeps the
	// sessions table from growing without bound.
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(js.sweepExpiredSessions, context.Background()),
		gocron.WithName("session-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create session sweep job: %v", err)
		return
	}

	js.mu.Lock()
	js.jobs["session-expiry-sweep"] = sweepJob
	js.mu.Unlock()
}

func (js *JobScheduler) sweepExpiredSessions(ctx context.Context) {
	removed, err := js.sessions.SweepExpired(ctx)
	if err != nil {
		log.Printf("Session sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Session sweep removed %d expired sessions", removed)
	}
}
