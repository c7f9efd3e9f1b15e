package ratelimit

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestUpdateFromHeaders_HeaderValidation(t *testing.T) {
	// Header parsing happens before any Redis access, so a nil Redis client
	// is enough to exercise the validation paths.
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tracker := NewTracker(nil, logger)

	tests := []struct {
		name         string
		remainHeader string
		resetHeader  string
		shouldError  bool
	}{
		{
			name:         "missing remaining header is a no-op",
			remainHeader: "",
			resetHeader:  "60",
			shouldError:  false,
		},
		{
			name:         "both headers missing is a no-op",
			remainHeader: "",
			resetHeader:  "",
			shouldError:  false,
		},
		{
			name:         "malformed remaining header",
			remainHeader: "plenty",
			resetHeader:  "60",
			shouldError:  true,
		},
		{
			name:         "reset header missing while remaining present",
			remainHeader: "42",
			resetHeader:  "",
			shouldError:  true,
		},
		{
			name:         "malformed reset header",
			remainHeader: "42",
			resetHeader:  "soon",
			shouldError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.remainHeader != "" {
				headers.Set(HeaderRemaining, tt.remainHeader)
			}
			if tt.resetHeader != "" {
				headers.Set(HeaderReset, tt.resetHeader)
			}

			err := tracker.UpdateFromHeaders(context.Background(), headers)

			if tt.shouldError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestShouldAllowRequest_Logic(t *testing.T) {
	tests := []struct {
		name           string
		remaining      int
		expectBlock    bool
		expectThrottle bool
	}{
		{
			name:           "healthy - allow immediately",
			remaining:      100,
			expectBlock:    false,
			expectThrottle: false,
		},
		{
			name:           "at warning threshold - allow immediately",
			remaining:      BudgetThresholdWarning,
			expectBlock:    false,
			expectThrottle: false,
		},
		{
			name:           "warning band - allow with throttle",
			remaining:      BudgetThresholdWarning - 1,
			expectBlock:    false,
			expectThrottle: true,
		},
		{
			name:           "at critical threshold - throttled, not blocked",
			remaining:      BudgetThresholdCritical,
			expectBlock:    false,
			expectThrottle: true,
		},
		{
			name:           "below critical threshold - block",
			remaining:      BudgetThresholdCritical - 1,
			expectBlock:    true,
			expectThrottle: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &BudgetState{
				Remaining:  tt.remaining,
				ResetAt:    time.Now().Add(60 * time.Second),
				LastUpdate: time.Now(),
			}
			state.UpdateHealth()

			shouldBlock := state.NeedsCriticalBlock()
			shouldThrottle := state.NeedsThrottling()

			if shouldBlock != tt.expectBlock {
				t.Errorf("NeedsCriticalBlock() = %v, want %v (remaining=%d)", shouldBlock, tt.expectBlock, tt.remaining)
			}
			if shouldThrottle != tt.expectThrottle {
				t.Errorf("NeedsThrottling() = %v, want %v (remaining=%d)", shouldThrottle, tt.expectThrottle, tt.remaining)
			}
		})
	}
}
