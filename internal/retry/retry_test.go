package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/retry"
)

var fast = retry.Options{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func TestDo(t *testing.T) {
	errBoom := errors.New("boom")

	type testCase struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   error
	}

	tests := []testCase{
		{name: "First Attempt Succeeds", failures: 0, wantCalls: 1},
		{name: "Succeeds After Retries", failures: 2, wantCalls: 3},
		{name: "Gives Up", failures: 5, wantCalls: 3, wantErr: retry.ErrMaxRetries},
		{name: "Permanent Error Stops", failures: 5, permanent: true, wantCalls: 1, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0

			err := retry.Do(context.Background(), fast, func(context.Context) error {
				calls++
				if calls > tt.failures {
					return nil
				}

				if tt.permanent {
					return retry.Permanent(errBoom)
				}

				return errBoom
			})

			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, retry.Options{MaxAttempts: 5, InitialDelay: time.Hour}, func(context.Context) error {
		return errors.New("unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
