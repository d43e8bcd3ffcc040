package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/GustavoLR548/market-digest/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a mock implementation of ContentGenerator for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, model string, prompt string) Outcome
	Calls        []string
}

func (m *MockGenerator) Generate(ctx context.Context, model string, prompt string) Outcome {
	m.Calls = append(m.Calls, model)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, prompt)
	}
	return Failure(fmt.Errorf("not implemented"))
}

// scripted returns a MockGenerator that answers each model with a fixed outcome
func scripted(outcomes map[string]Outcome) *MockGenerator {
	return &MockGenerator{
		GenerateFunc: func(ctx context.Context, model string, prompt string) Outcome {
			if o, ok := outcomes[model]; ok {
				return o
			}
			return Failure(fmt.Errorf("unexpected model %s", model))
		},
	}
}

func noPause() *ratelimit.Manager {
	return ratelimit.NewManager(ratelimit.Config{AttemptPause: 0})
}

func TestModelFallback_Run(t *testing.T) {
	notFound := Outcome{Kind: OutcomeNotFound, Err: fmt.Errorf("404")}
	quota := Outcome{Kind: OutcomeRateLimited, Err: fmt.Errorf("429")}
	other := Outcome{Kind: OutcomeOtherError, Err: fmt.Errorf("boom")}

	tests := []struct {
		name          string
		candidates    []string
		outcomes      map[string]Outcome
		expectError   error
		expectModel   string
		expectText    string
		expectedCalls []string
	}{
		{
			name:          "first candidate succeeds",
			candidates:    []string{"A", "B", "C"},
			outcomes:      map[string]Outcome{"A": Success("summary A")},
			expectModel:   "A",
			expectText:    "summary A",
			expectedCalls: []string{"A"},
		},
		{
			name:          "not found then success stops before C",
			candidates:    []string{"A", "B", "C"},
			outcomes:      map[string]Outcome{"A": notFound, "B": Success("summary B"), "C": Success("summary C")},
			expectModel:   "B",
			expectText:    "summary B",
			expectedCalls: []string{"A", "B"},
		},
		{
			name:          "rate limited advances",
			candidates:    []string{"A", "B"},
			outcomes:      map[string]Outcome{"A": quota, "B": Success("summary B")},
			expectModel:   "B",
			expectText:    "summary B",
			expectedCalls: []string{"A", "B"},
		},
		{
			name:          "other error advances",
			candidates:    []string{"A", "B", "C"},
			outcomes:      map[string]Outcome{"A": other, "B": notFound, "C": Success("summary C")},
			expectModel:   "C",
			expectText:    "summary C",
			expectedCalls: []string{"A", "B", "C"},
		},
		{
			name:          "empty success text is a failure",
			candidates:    []string{"A", "B"},
			outcomes:      map[string]Outcome{"A": Success("   "), "B": Success("summary B")},
			expectModel:   "B",
			expectText:    "summary B",
			expectedCalls: []string{"A", "B"},
		},
		{
			name:          "all candidates fail",
			candidates:    []string{"A", "B", "C"},
			outcomes:      map[string]Outcome{"A": notFound, "B": quota, "C": other},
			expectError:   ErrAllModelsFailed,
			expectedCalls: []string{"A", "B", "C"},
		},
		{
			name:        "no candidates",
			candidates:  nil,
			outcomes:    map[string]Outcome{},
			expectError: ErrNoCandidates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := scripted(tt.outcomes)
			fallback := NewModelFallback(generator, noPause())

			result, err := fallback.Run(context.Background(), tt.candidates, "prompt")
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedCalls, generator.Calls)
			assert.Len(t, result.Attempts, len(tt.expectedCalls))

			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, result.Model)
				assert.Empty(t, result.Text)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectModel, result.Model)
			assert.Equal(t, tt.expectText, result.Text)
		})
	}
}

func TestModelFallback_PassesSamePrompt(t *testing.T) {
	var prompts []string
	generator := &MockGenerator{
		GenerateFunc: func(ctx context.Context, model string, prompt string) Outcome {
			prompts = append(prompts, prompt)
			return Outcome{Kind: OutcomeNotFound, Err: fmt.Errorf("404")}
		},
	}

	_, err := NewModelFallback(generator, noPause()).Run(context.Background(), []string{"A", "B"}, "the prompt")
	require.Error(t, err)
	assert.Equal(t, []string{"the prompt", "the prompt"}, prompts)
}

func TestModelFallback_RecordsStatistics(t *testing.T) {
	limiter := noPause()
	generator := scripted(map[string]Outcome{
		"A": {Kind: OutcomeRateLimited, Err: fmt.Errorf("429")},
		"B": {Kind: OutcomeNotFound, Err: fmt.Errorf("404")},
		"C": Success("ok"),
	})

	_, err := NewModelFallback(generator, limiter).Run(context.Background(), []string{"A", "B", "C"}, "p")
	require.NoError(t, err)

	stats := limiter.GetStatistics()
	assert.Equal(t, int64(3), stats.TotalAttempts)
	assert.Equal(t, int64(2), stats.TotalFailures)
	assert.Equal(t, int64(1), stats.TotalRateLimited)
}

func TestModelFallback_PausesBetweenFailures(t *testing.T) {
	limiter := ratelimit.NewManager(ratelimit.Config{AttemptPause: 30 * time.Millisecond})
	generator := scripted(map[string]Outcome{
		"A": {Kind: OutcomeNotFound, Err: fmt.Errorf("404")},
		"B": {Kind: OutcomeNotFound, Err: fmt.Errorf("404")},
		"C": Success("ok"),
	})

	start := time.Now()
	_, err := NewModelFallback(generator, limiter).Run(context.Background(), []string{"A", "B", "C"}, "p")
	require.NoError(t, err)

	// two pauses: A->B and B->C
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestModelFallback_NoPauseAfterSuccess(t *testing.T) {
	limiter := ratelimit.NewManager(ratelimit.Config{AttemptPause: time.Hour})
	generator := scripted(map[string]Outcome{"A": Success("ok")})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := NewModelFallback(generator, limiter).Run(ctx, []string{"A", "B"}, "p")
	require.NoError(t, err)
	assert.Equal(t, "A", result.Model)
}

func TestModelFallback_ContextCancelledDuringPause(t *testing.T) {
	limiter := ratelimit.NewManager(ratelimit.Config{AttemptPause: time.Hour})
	generator := scripted(map[string]Outcome{
		"A": {Kind: OutcomeRateLimited, Err: fmt.Errorf("429")},
		"B": Success("never"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := NewModelFallback(generator, limiter).Run(ctx, []string{"A", "B"}, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"A"}, generator.Calls)
	assert.Len(t, result.Attempts, 1)
}

func TestResult_Describe(t *testing.T) {
	result := &Result{Attempts: []Attempt{
		{Model: "A", Outcome: Outcome{Kind: OutcomeNotFound}},
		{Model: "B", Outcome: Outcome{Kind: OutcomeRateLimited}},
	}}
	assert.Equal(t, "A (not found), B (rate limited)", result.Describe())

	var empty *Result
	assert.Equal(t, "no attempts", empty.Describe())
}
