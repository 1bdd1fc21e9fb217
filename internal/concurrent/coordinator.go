package concurrent

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

const DefaultParallelism = 4

// Coordinator executes tasks in parallel respecting the dependencies between each task
type Coordinator struct {
	pool    *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	failure sync.Once
	err     error      // first task error, set through failure
	mutex   sync.Mutex // protects waiting
	waiting map[string]*sync.WaitGroup
}

func NewCoordinator(ctx context.Context, parallelism int) *Coordinator {
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}

	ctx, cancel := context.WithCancel(ctx)
	group := &errgroup.Group{}
	group.SetLimit(parallelism)
	return &Coordinator{
		pool:    group,
		ctx:     ctx,
		cancel:  cancel,
		waiting: map[string]*sync.WaitGroup{},
	}
}

// Do task with id on a separate go routine after its dependencies are done. All dependencies MUST
// have a previously registered task, otherwise the entire task coordinator
// is stopped and an error is returned
func (coordinator *Coordinator) Do(id string, dependencies []string, f func() error) {
	// register before scheduling, otherwise later tasks could miss this one
	promise := &sync.WaitGroup{}
	promise.Add(1)

	coordinator.mutex.Lock()
	coordinator.waiting[id] = promise
	var err error
	waiters := make([]*sync.WaitGroup, 0, len(dependencies))
	for _, dep := range dependencies {
		waiter, ok := coordinator.waiting[dep]
		if !ok {
			err = fmt.Errorf("missing task %s while processing %s", dep, id)
			break
		}

		waiters = append(waiters, waiter)
	}
	coordinator.mutex.Unlock()

	for _, waiter := range waiters {
		waiter.Wait()
	}

	coordinator.pool.Go(func() error {
		defer promise.Done()
		taskErr := err
		// a previous task failed, don't bother
		if taskErr == nil {
			taskErr = coordinator.ctx.Err()
		}

		if taskErr == nil {
			taskErr = f()
		}

		// record and cancel before releasing dependants so that they see it
		if taskErr != nil {
			coordinator.fail(taskErr)
		}

		return taskErr
	})
}

// Wait for all task to complete. If any task returned an error
// it will be returned here
func (coordinator *Coordinator) Wait() error {
	// task errors are tracked by fail
	_ = coordinator.pool.Wait()
	coordinator.cancel()
	return coordinator.err
}

func (coordinator *Coordinator) fail(err error) {
	coordinator.failure.Do(func() {
		coordinator.err = err
		coordinator.cancel()
	})
}
