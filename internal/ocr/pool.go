package ocr

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned when submitting to a pool after Close.
var ErrPoolClosed = errors.New("ocr: worker pool closed")

// Session is one loaded OCR model instance. Sessions are not safe for
// concurrent use; the pool gives each worker its own.
type Session interface {
	Words(imagePNG []byte) ([]Word, error)
	Text(imagePNG []byte) (string, error)
	Close() error
}

// SessionFactory loads a new session. It is called once per worker at startup.
type SessionFactory func() (Session, error)

type job struct {
	run  func(Session) error
	done chan error
}

// WorkerPool runs OCR jobs on a fixed set of workers, each bound to a
// long-lived session.
type WorkerPool struct {
	workers  int
	jobQueue chan job
	sessions []Session
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	once     sync.Once
}

// NewWorkerPool loads one session per worker and starts the workers.
// workers <= 0 uses runtime.NumCPU().
func NewWorkerPool(workers int, factory SessionFactory) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		workers:  workers,
		jobQueue: make(chan job, workers*2),
	}

	for i := 0; i < workers; i++ {
		s, err := factory()
		if err != nil {
			for _, loaded := range wp.sessions {
				loaded.Close()
			}
			return nil, fmt.Errorf("ocr: load session %d: %w", i, err)
		}
		wp.sessions = append(wp.sessions, s)
	}

	for _, s := range wp.sessions {
		wp.wg.Add(1)
		go wp.worker(s)
	}
	return wp, nil
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int {
	return wp.workers
}

func (wp *WorkerPool) worker(s Session) {
	defer wp.wg.Done()
	for j := range wp.jobQueue {
		j.done <- runJob(j.run, s)
	}
}

func runJob(run func(Session) error, s Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr: job panicked: %v", r)
		}
	}()
	return run(s)
}

// Submit queues run and waits for it. If ctx ends first, Submit returns
// ctx.Err() and the job, if already started, finishes in the background.
func (wp *WorkerPool) Submit(ctx context.Context, run func(Session) error) error {
	j := job{run: run, done: make(chan error, 1)}

	wp.mu.RLock()
	if wp.closed {
		wp.mu.RUnlock()
		return ErrPoolClosed
	}
	select {
	case wp.jobQueue <- j:
		wp.mu.RUnlock()
	case <-ctx.Done():
		wp.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs, drains the queue and releases all sessions.
func (wp *WorkerPool) Close() error {
	var errs []error
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.jobQueue)
		wp.mu.Unlock()

		wp.wg.Wait()
		for _, s := range wp.sessions {
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
