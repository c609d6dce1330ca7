package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/store"
)

func TestKey(t *testing.T) {
	v1 := time.Unix(1700000000, 0)
	v2 := time.Unix(1700000001, 0)

	if got, want := Key("rec", "u1", v1), "rec:u1:1700000000"; got != want {
		t.Errorf("Key() = %s, want %s", got, want)
	}
	// a new data version must produce a new key
	if Key("rec", "u1", v1) == Key("rec", "u1", v2) {
		t.Error("keys for different versions must differ")
	}
	if Key("rec", "u1", v1) == Key("price", "u1", v1) {
		t.Error("keys for different kinds must differ")
	}
}

func TestResultCache_Do_HitAndMiss(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	c := New(kv, time.Hour, time.Second)

	var calls int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`{"ok":true}`), nil
	}

	data, hit, err := c.Do(context.Background(), "k1", compute)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if hit {
		t.Error("first Do must be a miss")
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Do() = %s", data)
	}

	data, hit, err = c.Do(context.Background(), "k1", compute)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !hit {
		t.Error("second Do must hit the cache")
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Do() = %s", data)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestResultCache_Do_SingleFlight(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	c := New(kv, time.Hour, 5*time.Second)

	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("result"), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	outs := make([][]byte, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], _, errs[i] = c.Do(context.Background(), "same-key", compute)
		}(i)
	}

	// let all workers pile up on the same key before releasing the compute
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1 (single-flight)", n)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error = %v", i, errs[i])
		}
		if string(outs[i]) != "result" {
			t.Errorf("worker %d got %s", i, outs[i])
		}
	}
}

func TestResultCache_Do_CancelledCallerStillPopulates(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	c := New(kv, time.Hour, 5*time.Second)

	started := make(chan struct{})
	done := make(chan struct{})
	compute := func(ctx context.Context) ([]byte, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		defer close(done)
		return []byte("late"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, _, err := c.Do(ctx, "k1", compute)
	if err != context.Canceled {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}

	// the detached computation keeps running and writes the cache
	<-done
	time.Sleep(20 * time.Millisecond)

	data, hit, err := c.Do(context.Background(), "k1", func(context.Context) ([]byte, error) {
		t.Error("compute must not run again, cache should be warm")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !hit || string(data) != "late" {
		t.Errorf("Do() = (%s, hit=%v), want warm cache", data, hit)
	}
}

func TestResultCache_Do_Timeout(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	c := New(kv, time.Hour, 30*time.Millisecond)

	compute := func(ctx context.Context) ([]byte, error) {
		select {
		case <-time.After(time.Second):
			return []byte("too late"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	_, _, err := c.Do(context.Background(), "slow", compute)
	if !core.IsTimeout(err) {
		t.Errorf("Do() error = %v, want TIMEOUT", err)
	}
}

func TestResultCache_Do_ComputeError(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	c := New(kv, time.Hour, time.Second)

	wantErr := core.ErrStoreUnavailable
	_, _, err := c.Do(context.Background(), "bad", func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if err != wantErr {
		t.Errorf("Do() error = %v, want %v", err, wantErr)
	}

	// errors are not cached: the next call recomputes
	data, hit, err := c.Do(context.Background(), "bad", func(context.Context) ([]byte, error) {
		return []byte("recovered"), nil
	})
	if err != nil || hit || string(data) != "recovered" {
		t.Errorf("Do() = (%s, hit=%v, err=%v), want recomputed result", data, hit, err)
	}
}
