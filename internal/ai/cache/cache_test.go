package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

func TestReadThroughCachesTerminalError(t *testing.T) {
	c := New(logger.Nop(), NewMemoryStore())
	ctx := context.Background()
	var fetches int32
	fetch := func(ctx context.Context) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Failure("Could not load recommendations at this time."), nil
	}

	first, hit, err := c.ReadThrough(ctx, "s1", "dashboard-recommendations", fetch)
	if err != nil || hit {
		t.Fatalf("first: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.ReadThrough(ctx, "s1", "dashboard-recommendations", fetch)
	if err != nil || !hit {
		t.Fatalf("second: hit=%v err=%v", hit, err)
	}
	if second.ErrorMessage != first.ErrorMessage || !second.Failed() {
		t.Fatalf("second=%+v first=%+v", second, first)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("fetches=%d", n)
	}
}

func TestReadThroughSessionsAreIsolated(t *testing.T) {
	c := New(logger.Nop(), NewMemoryStore())
	ctx := context.Background()
	var fetches int32
	fetch := func(ctx context.Context) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Success(map[string]any{"recommendedContent": "1. Linear Algebra - vectors"}), nil
	}
	_, _, _ = c.ReadThrough(ctx, "a", "k", fetch)
	_, _, _ = c.ReadThrough(ctx, "b", "k", fetch)
	_, _, _ = c.ReadThrough(ctx, "a", "other", fetch)
	if n := atomic.LoadInt32(&fetches); n != 3 {
		t.Fatalf("fetches=%d", n)
	}
}

func TestReadThroughWithoutSessionNeverCaches(t *testing.T) {
	store := NewMemoryStore()
	c := New(logger.Nop(), store)
	var fetches int32
	fetch := func(ctx context.Context) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		return Success(map[string]any{}), nil
	}
	for i := 0; i < 2; i++ {
		if _, hit, _ := c.ReadThrough(context.Background(), " ", "k", fetch); hit {
			t.Fatalf("unexpected hit")
		}
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Fatalf("fetches=%d", n)
	}
}

func TestReadThroughDoesNotCacheFetchErrors(t *testing.T) {
	c := New(logger.Nop(), NewMemoryStore())
	boom := errors.New("bad input")
	_, _, err := c.ReadThrough(context.Background(), "s", "k", func(ctx context.Context) (Entry, error) {
		return Entry{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if _, ok, _ := c.Store().Get(context.Background(), "s", "k"); ok {
		t.Fatalf("fetch error was cached")
	}
}

func TestReadThroughCoalescesConcurrentMisses(t *testing.T) {
	c := New(logger.Nop(), NewMemoryStore())
	var fetches int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (Entry, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return Success(map[string]any{"summary": "ok"}), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, _, err := c.ReadThrough(context.Background(), "s", "k", fetch)
			if err != nil || e.Output["summary"] != "ok" {
				t.Errorf("entry=%+v err=%v", e, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("fetches=%d", n)
	}
}

func TestReadThroughFetchOutlivesCaller(t *testing.T) {
	store := NewMemoryStore()
	c := New(logger.Nop(), store)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	fetchErr := make(chan error, 1)
	fetch := func(fctx context.Context) (Entry, error) {
		close(started)
		<-release
		fetchErr <- fctx.Err()
		return Success(map[string]any{"recommendedContent": "late but fine"}), nil
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := c.ReadThrough(ctx, "s", "k", fetch)
		done <- err
	}()
	<-started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("caller err=%v", err)
	}
	close(release)
	if err := <-fetchErr; err != nil {
		t.Fatalf("fetch saw the caller's cancellation: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		e, ok, _ := store.Get(context.Background(), "s", "k")
		if ok {
			if e.Failed() || e.Output["recommendedContent"] != "late but fine" {
				t.Fatalf("stored=%+v", e)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("detached fetch never filled the slot")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReadThroughFlightTimeoutIsNotCached(t *testing.T) {
	store := NewMemoryStore()
	c := New(logger.Nop(), store, WithFlightTimeout(20*time.Millisecond))

	_, _, err := c.ReadThrough(context.Background(), "s", "k", func(fctx context.Context) (Entry, error) {
		<-fctx.Done()
		return Entry{}, fctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "s", "k"); ok {
		t.Fatalf("timed out flight was cached")
	}
}

func TestClearDropsSession(t *testing.T) {
	c := New(logger.Nop(), NewMemoryStore())
	ctx := context.Background()
	_, _, _ = c.ReadThrough(ctx, "s", "k", func(ctx context.Context) (Entry, error) {
		return Failure("x"), nil
	})
	if err := c.Clear(ctx, "s"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := c.Store().Get(ctx, "s", "k"); ok {
		t.Fatalf("entry survived Clear")
	}
}

func TestKeyDependsOnInput(t *testing.T) {
	a := Key("dashboard-recommendations", map[string]any{"quizResults": "65%"})
	b := Key("dashboard-recommendations", map[string]any{"quizResults": "95%"})
	if a == b {
		t.Fatalf("distinct inputs share key %s", a)
	}
	if a != Key("dashboard-recommendations", map[string]any{"quizResults": "65%"}) {
		t.Fatalf("key not stable")
	}
}
