package utils

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	TASK_CHAN_SIZE = 100
)

type WorkerFunction = func(t *tomb.Tomb, task any) error
type WorkerPool struct {
	n     int      // number of workers
	tasks chan any // task queue
}

func NewWorkerPool(size uint) *WorkerPool {
	if size == 0 {
		size = 1
	}
	return &WorkerPool{
		n:     int(size),
		tasks: make(chan any, TASK_CHAN_SIZE),
	}
}

func (pool *WorkerPool) Size() int { return pool.n }

// Setup starts the workers under the tomb. Must be called from a goroutine the
// tomb is already tracking, or before the tomb has any.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	for id := range pool.n {
		t.Go(func() error {
			return pool.worker(t, id, work)
		})
	}
}

// AddTask queues a task, blocking while the queue is full. Fails with
// tomb.ErrDying once the tomb is being killed.
func (pool *WorkerPool) AddTask(t *tomb.Tomb, task any) error {
	select {
	case pool.tasks <- task:
		return nil
	case <-t.Dying():
		return tomb.ErrDying
	}
}

// Close stops accepting tasks. Workers exit after draining the queue.
func (pool *WorkerPool) Close() {
	close(pool.tasks)
}

// Workers wait on tasks in the queue and action them. Any error returned by
// work kills the tomb.
func (pool *WorkerPool) worker(t *tomb.Tomb, id int, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task, ok := <-pool.tasks:
			if !ok {
				return nil
			}
			if err := work(t, task); err != nil {
				log.Error().Err(err).Int("id", id).Msg("worker exiting")
				return err
			}
		}
	}
}
