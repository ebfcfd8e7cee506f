package ocr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSession struct {
	words  []Word
	text   string
	err    error
	delay  time.Duration
	calls  atomic.Int32
	closed atomic.Bool
	lastIn []byte
	mu     sync.Mutex
}

func (s *fakeSession) Words(img []byte) ([]Word, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastIn = img
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.words, s.err
}

func (s *fakeSession) Text(img []byte) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.text, s.err
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

func newFakePool(t *testing.T, workers int, proto *fakeSession) (*WorkerPool, []*fakeSession) {
	t.Helper()
	var sessions []*fakeSession
	pool, err := NewWorkerPool(workers, func() (Session, error) {
		s := &fakeSession{words: proto.words, text: proto.text, err: proto.err, delay: proto.delay}
		sessions = append(sessions, s)
		return s, nil
	})
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	return pool, sessions
}

func TestNewWorkerPool(t *testing.T) {
	pool, sessions := newFakePool(t, 3, &fakeSession{})
	defer pool.Close()

	if pool.Size() != 3 {
		t.Errorf("Size() = %d, want 3", pool.Size())
	}
	if len(sessions) != 3 {
		t.Errorf("loaded %d sessions, want 3", len(sessions))
	}
}

func TestNewWorkerPool_FactoryError(t *testing.T) {
	var loaded []*fakeSession
	calls := 0
	_, err := NewWorkerPool(3, func() (Session, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("no tessdata")
		}
		s := &fakeSession{}
		loaded = append(loaded, s)
		return s, nil
	})
	if err == nil {
		t.Fatal("expected factory error")
	}
	for i, s := range loaded {
		if !s.closed.Load() {
			t.Errorf("session %d not closed after failed start", i)
		}
	}
}

func TestWorkerPool_SubmitRunsConcurrently(t *testing.T) {
	pool, _ := newFakePool(t, 4, &fakeSession{text: "ok", delay: 10 * time.Millisecond})
	defer pool.Close()

	var wg sync.WaitGroup
	var done atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pool.Submit(context.Background(), func(s Session) error {
				_, err := s.Text(nil)
				return err
			})
			if err == nil {
				done.Add(1)
			}
		}()
	}
	wg.Wait()

	if done.Load() != 20 {
		t.Errorf("completed %d jobs, want 20", done.Load())
	}
}

func TestWorkerPool_SubmitPropagatesError(t *testing.T) {
	pool, _ := newFakePool(t, 1, &fakeSession{})
	defer pool.Close()

	want := errors.New("boom")
	err := pool.Submit(context.Background(), func(Session) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Submit() error = %v, want %v", err, want)
	}
}

func TestWorkerPool_RecoversPanics(t *testing.T) {
	pool, _ := newFakePool(t, 1, &fakeSession{})
	defer pool.Close()

	err := pool.Submit(context.Background(), func(Session) error { panic("bad image") })
	if err == nil {
		t.Fatal("expected error from panicking job")
	}

	// the worker survives
	if err := pool.Submit(context.Background(), func(Session) error { return nil }); err != nil {
		t.Errorf("Submit() after panic error = %v", err)
	}
}

func TestWorkerPool_ContextCancelled(t *testing.T) {
	pool, _ := newFakePool(t, 1, &fakeSession{})
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Submit(ctx, func(Session) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want deadline exceeded", err)
	}
}

func TestWorkerPool_Close(t *testing.T) {
	pool, sessions := newFakePool(t, 2, &fakeSession{})

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	for i, s := range sessions {
		if !s.closed.Load() {
			t.Errorf("session %d not closed", i)
		}
	}

	if err := pool.Submit(context.Background(), func(Session) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit() after Close error = %v, want ErrPoolClosed", err)
	}

	// second close is a no-op
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
