package llm

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/easyops/promptfit/pkg/core/errors"
)

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	r := &Retrier{MaxAttempts: 5}

	calls := 0
	attempts, err := r.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt != calls {
			t.Fatalf("expected attempt %d, got %d", calls, attempt)
		}
		if attempt < 3 {
			return errors.ErrProviderUnavailable
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	var retries []int
	r := &Retrier{
		MaxAttempts: 4,
		OnRetry: func(attempt int, err error) {
			retries = append(retries, attempt)
		},
	}

	last := stderrors.New("attempt 4")
	attempts, err := r.Do(context.Background(), func(attempt int) error {
		if attempt == 4 {
			return last
		}
		return errors.ErrTimeout
	})
	if err != last {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
	// 最后一次失败后不再提示重试
	if len(retries) != 3 || retries[0] != 1 || retries[2] != 3 {
		t.Fatalf("expected retry notices for attempts 1..3, got %v", retries)
	}
}

func TestRetrier_ShouldRetry(t *testing.T) {
	r := &Retrier{
		MaxAttempts: 10,
		ShouldRetry: func(err error) bool { return !stderrors.Is(err, errors.ErrInvalidAPIKey) },
	}

	attempts, err := r.Do(context.Background(), func(int) error {
		return errors.ErrInvalidAPIKey
	})
	if !stderrors.Is(err, errors.ErrInvalidAPIKey) || attempts != 1 {
		t.Fatalf("expected single attempt with ErrInvalidAPIKey, got %d / %v", attempts, err)
	}
}

func TestRetrier_MinimumOneAttempt(t *testing.T) {
	r := &Retrier{}

	attempts, _ := r.Do(context.Background(), func(int) error { return errors.ErrTimeout })
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrier_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrier{MaxAttempts: 10}

	attempts, err := r.Do(ctx, func(attempt int) error {
		if attempt == 2 {
			cancel()
		}
		return errors.ErrTimeout
	})
	if !stderrors.Is(err, errors.ErrContextCanceled) || !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	if d := calculateBackoff(0, base); d != 110*time.Millisecond {
		t.Errorf("expected 110ms, got %v", d)
	}
	if d := calculateBackoff(2, base); d != 440*time.Millisecond {
		t.Errorf("expected 440ms, got %v", d)
	}
	if d := calculateBackoff(20, base); d != 30*time.Second {
		t.Errorf("expected cap at 30s, got %v", d)
	}
}
