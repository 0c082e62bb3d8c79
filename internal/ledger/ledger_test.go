package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubElection struct {
	Election
	id int
}

func TestResolveCachesSuccessfulDial(t *testing.T) {
	var dials int32
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		atomic.AddInt32(&dials, 1)
		return &stubElection{id: 1}, nil
	})

	first, err := gw.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := gw.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("resolve must hand out the cached handle")
	}
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("expected one dial, got %d", n)
	}
	if !gw.Resolved() {
		t.Fatal("gateway must report the handle as cached")
	}
}

func TestConcurrentResolversShareOneDial(t *testing.T) {
	gate := make(chan struct{})
	var dials int32
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		atomic.AddInt32(&dials, 1)
		<-gate
		return &stubElection{id: 1}, nil
	})

	const callers = 8
	handles := make([]Election, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = gw.Resolve(context.Background())
		}(i)
	}

	// Let every caller queue up on the in-flight attempt.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Fatalf("caller %d got a different handle", i)
		}
	}
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("expected one shared dial, got %d", n)
	}
}

func TestFailedDialIsNotCached(t *testing.T) {
	var dials int32
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &stubElection{id: 2}, nil
	})

	if _, err := gw.Resolve(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if gw.Resolved() {
		t.Fatal("a failed attempt must not be cached")
	}

	handle, err := gw.Resolve(context.Background())
	if err != nil {
		t.Fatalf("fresh attempt must succeed: %v", err)
	}
	if handle == nil {
		t.Fatal("expected a handle from the second attempt")
	}
	if n := atomic.LoadInt32(&dials); n != 2 {
		t.Fatalf("expected a second dial after failure, got %d", n)
	}
}

func TestFailureIsReportedToEveryWaiter(t *testing.T) {
	gate := make(chan struct{})
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		<-gate
		return nil, errors.New("no contract at address")
	})

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gw.Resolve(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("waiter %d: expected ErrUnavailable, got %v", i, err)
		}
	}
}

func TestResolveHonorsCallerContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		<-gate
		return &stubElection{id: 3}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := gw.Resolve(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on context expiry, got %v", err)
	}
}

func TestCancelledWaiterDoesNotKillTheAttempt(t *testing.T) {
	gate := make(chan struct{})
	gw := NewGateway(func(ctx context.Context) (Election, error) {
		<-gate
		return &stubElection{id: 4}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gw.Resolve(ctx); err == nil {
		t.Fatal("cancelled caller must get an error")
	}

	close(gate)
	handle, err := gw.Resolve(context.Background())
	if err != nil {
		t.Fatalf("the shared attempt must survive a cancelled waiter: %v", err)
	}
	if handle == nil {
		t.Fatal("expected the attempt's handle")
	}
}
