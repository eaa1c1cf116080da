// Package janitor provides scoped acquisition/release of resources (such
// as the temporary files DiffDriver materializes in-memory content into)
// with aggregated error reporting on cleanup.
package janitor

import (
	"fmt"
	"sync"

	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// Task is a zero-argument cleanup action.
type Task func() error

// Janitor is a LIFO stack of cleanup tasks.
type Janitor struct {
	mu    sync.Mutex
	tasks []Task
}

// New returns an empty Janitor.
func New() *Janitor {
	return &Janitor{}
}

// Defer pushes a cleanup task onto the stack.
func (j *Janitor) Defer(task Task) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tasks = append(j.tasks, task)
}

// CleanUpSync pops tasks in LIFO order and runs each synchronously. A
// failing task's *casefileerr.Error gets the task's index in
// Fields["task"]; any other error is wrapped as "cleanup task <i>: ...".
// A single failure is returned on its own; more than one is aggregated
// into a MultipleCleanupErrors *casefileerr.Error carrying all of them.
func (j *Janitor) CleanUpSync() error {
	tasks := j.drain()

	var errs []error
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := tasks[i](); err != nil {
			errs = append(errs, attachTask(err, i))
		}
	}
	return aggregate(errs)
}

// CleanUpAsync runs every task concurrently (order does not matter, tasks
// are expected to be independent resource releases) and applies the same
// aggregation as CleanUpSync.
func (j *Janitor) CleanUpAsync() error {
	tasks := j.drain()

	errCh := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			if err := t(); err != nil {
				errCh <- attachTask(err, i)
			}
		}(i, t)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return aggregate(errs)
}

func (j *Janitor) drain() []Task {
	j.mu.Lock()
	defer j.mu.Unlock()
	tasks := j.tasks
	j.tasks = nil
	return tasks
}

func attachTask(err error, index int) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*casefileerr.Error); ok { //nolint:errorlint // attaching metadata to our own type
		fields := ce.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		fields["task"] = index
		ce.Fields = fields
		return ce
	}
	return fmt.Errorf("cleanup task %d: %w", index, err)
}

func aggregate(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return casefileerr.New(casefileerr.CodeMultipleCleanup, fmt.Sprintf("%d cleanup tasks failed", len(errs))).
			WithFields(map[string]any{"errors": errs})
	}
}
