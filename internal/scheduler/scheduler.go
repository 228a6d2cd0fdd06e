package scheduler

import (
	"context"
	"log"
	"time"
)

type task struct {
	name    string
	cadence time.Duration
	fn      func()
	lastRun time.Time
}

// Scheduler runs registered tasks on their own cadences from a single
// goroutine. The loop wakes on a fine-grained tick and runs every task whose
// cadence has elapsed, sequentially, in registration order. A panicking task
// is caught and logged; it never stops the loop or blocks other tasks.
type Scheduler struct {
	tasks  []*task
	tick   time.Duration
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler initializes a new Scheduler instance. The caller owns its
// lifecycle; there is no global instance.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		tick:   time.Second,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Register adds a periodic task. All registration happens before Start.
func (s *Scheduler) Register(name string, cadence time.Duration, fn func()) {
	s.tasks = append(s.tasks, &task{
		name:    name,
		cadence: cadence,
		fn:      fn,
	})
}

// Start launches the scheduling loop on its own goroutine.
func (s *Scheduler) Start() {
	log.Printf("Starting scheduler with %d tasks", len(s.tasks))
	go s.run()
}

// Stop cancels the loop and waits for the current tick to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cancel()
	<-s.done
	log.Println("Scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.runDue(now)
		}
	}
}

// runDue executes every task whose cadence has elapsed since its last run.
// A zero lastRun makes each task run on the first tick after Start.
func (s *Scheduler) runDue(now time.Time) {
	for _, t := range s.tasks {
		if !t.lastRun.IsZero() && now.Sub(t.lastRun) < t.cadence {
			continue
		}

		t.lastRun = now
		s.runTask(t)
	}
}

func (s *Scheduler) runTask(t *task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Task %s panicked: %v", t.name, r)
		}
	}()

	t.fn()
}

// Running reports whether the scheduler has not been stopped.
func (s *Scheduler) Running() bool {
	return s.ctx.Err() == nil
}
