package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/easyops/promptfit/pkg/core/errors"
)

func TestRemoteCallError(t *testing.T) {
	last := fmt.Errorf("%w: status 503", errors.ErrProviderUnavailable)
	err := error(&errors.RemoteCallError{Attempts: 10, Err: last})

	if !stderrors.Is(err, errors.ErrRemoteCallFailed) {
		t.Error("expected error to match ErrRemoteCallFailed")
	}
	if !stderrors.Is(err, errors.ErrProviderUnavailable) {
		t.Error("expected error to unwrap to the last attempt's error")
	}
	if stderrors.Is(err, errors.ErrRateLimited) {
		t.Error("expected error not to match ErrRateLimited")
	}

	var rce *errors.RemoteCallError
	if !stderrors.As(err, &rce) || rce.Attempts != 10 {
		t.Fatalf("expected RemoteCallError with 10 attempts, got %v", err)
	}
	if want := "remote call failed after 10 attempt(s): provider unavailable: status 503"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestWrapError(t *testing.T) {
	if errors.WrapError(nil, "ctx") != nil {
		t.Error("expected nil for nil error")
	}

	err := errors.WrapError(errors.ErrTimeout, "openai request failed")
	if !stderrors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected wrapped ErrTimeout, got %v", err)
	}
	if err.Error() != "openai request failed: request timeout" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.ErrRateLimited, true},
		{errors.ErrTimeout, true},
		{fmt.Errorf("wrapped: %w", errors.ErrProviderUnavailable), true},
		{errors.ErrInvalidAPIKey, false},
		{errors.ErrBudgetExhausted, false},
	}

	for _, tt := range tests {
		if got := errors.IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"budget", fmt.Errorf("%w: 60 tokens exceed limit 50", errors.ErrBudgetExhausted), true},
		{"remote", &errors.RemoteCallError{Attempts: 10, Err: errors.ErrTimeout}, true},
		{"config", errors.ErrInvalidConfig, true},
		{"canceled", fmt.Errorf("%w: %w", errors.ErrContextCanceled, context.Canceled), false},
		{"canceled remote", &errors.RemoteCallError{Attempts: 2, Err: fmt.Errorf("%w: %w", errors.ErrContextCanceled, context.Canceled)}, false},
		{"rate limited", errors.ErrRateLimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}
