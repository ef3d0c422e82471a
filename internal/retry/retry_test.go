package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

func fastPolicy(retries uint64) Policy {
	return Policy{
		MaxRetries:      retries,
		Timeout:         time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	var calls int32
	err := Do(context.Background(), fastPolicy(1), nil, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientOnce(t *testing.T) {
	var calls int32
	err := Do(context.Background(), fastPolicy(1), nil, func(context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	err := Do(context.Background(), fastPolicy(1), nil, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return io.EOF
	})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_PermanentNotRetried(t *testing.T) {
	permanent := errors.New("bad request")
	var calls int32
	err := Do(context.Background(), fastPolicy(3), nil, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return fmt.Errorf("wrapped: %w", permanent)
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_CustomClassifier(t *testing.T) {
	retryMe := errors.New("retry me")
	var calls int32
	_ = Do(context.Background(), fastPolicy(2), func(err error) bool {
		return errors.Is(err, retryMe)
	}, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return retryMe
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_AttemptTimeout(t *testing.T) {
	p := fastPolicy(0)
	p.Timeout = 10 * time.Millisecond
	err := Do(context.Background(), p, nil, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestDo_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	err := Do(ctx, fastPolicy(3), nil, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline should be transient")
	}
	if IsTransient(errors.New("ERR syntax error")) {
		t.Error("plain error should not be transient")
	}
}
