package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, nil)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "roster:club-a", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	store := NewStore[int](30*time.Second, clock)
	ctx := context.Background()

	store.Set(ctx, "k", 7)
	if v, ok := store.Get(ctx, "k"); !ok || v != 7 {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}

	clock.Advance(31 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, nil)
	ctx := context.Background()
	store.Set(ctx, "roster:club-a", 1)
	store.Set(ctx, "roster:club-b", 2)
	store.Set(ctx, "players:all", 3)

	store.DeletePrefix(ctx, "roster:")

	if store.Len() != 1 {
		t.Fatalf("expected one entry left, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "players:all"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, nil)
	var calls atomic.Int32
	loader := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	got, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || got != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", got, err)
	}
}

var errUnexpectedValue = errors.New("unexpected value")

func TestStore_SetIfAbsent_OneWinnerPerKey(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	store := NewStore[struct{}](time.Minute, clock)
	ctx := context.Background()

	const workers = 32
	start := make(chan struct{})
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if store.SetIfAbsent(ctx, "fx-1:hat_trick:pl-nh-01", struct{}{}) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}

	clock.Advance(2 * time.Minute)
	if !store.SetIfAbsent(ctx, "fx-1:hat_trick:pl-nh-01", struct{}{}) {
		t.Fatal("expected an expired entry to be replaced")
	}
	if store.SetIfAbsent(ctx, "", struct{}{}) {
		t.Fatal("expected empty key to be rejected")
	}
}
