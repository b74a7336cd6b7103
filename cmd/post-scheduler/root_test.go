// cmd/post-scheduler/root_test.go
package main

import (
	"context"
	stderrors "errors"
	"testing"

	"ai-post-scheduler/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	smokeErr   error
	smokeCalls int
	runCalls   int
}

func (f *fakeRunner) SmokeTest(ctx context.Context) error {
	f.smokeCalls++
	return f.smokeErr
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.runCalls++
	return nil
}

func TestStartScheduler(t *testing.T) {
	tests := []struct {
		name          string
		smokeErr      error
		skipSmoke     bool
		wantErr       string
		expectedSmoke int
		expectedRuns  int
	}{
		{
			name:          "failed smoke test never starts the scheduler",
			smokeErr:      stderrors.New("instagram token expired"),
			wantErr:       "smoke test failed, scheduler not started: instagram token expired",
			expectedSmoke: 1,
			expectedRuns:  0,
		},
		{
			name:          "passing smoke test starts the scheduler",
			expectedSmoke: 1,
			expectedRuns:  1,
		},
		{
			name:          "skipped smoke test",
			smokeErr:      stderrors.New("unused"),
			skipSmoke:     true,
			expectedSmoke: 0,
			expectedRuns:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{smokeErr: tt.smokeErr}

			err := startScheduler(context.Background(), runner, tt.skipSmoke, logger.NewTestLogger(t))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedSmoke, runner.smokeCalls)
			assert.Equal(t, tt.expectedRuns, runner.runCalls)
		})
	}
}
