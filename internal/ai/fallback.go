package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GustavoLR548/market-digest/internal/ratelimit"
)

var (
	// ErrNoCandidates is returned when Run is given an empty model list
	ErrNoCandidates = errors.New("no candidate models configured")
	// ErrAllModelsFailed is returned when every candidate failed
	ErrAllModelsFailed = errors.New("all candidate models failed")
)

// Attempt records one model call made by the fallback loop
type Attempt struct {
	Model    string
	Outcome  Outcome
	Duration time.Duration
}

// Result is the outcome of a full fallback run
type Result struct {
	Model    string // model that produced Text, empty on failure
	Text     string
	Attempts []Attempt
}

// Describe renders the attempts as "model (kind), model (kind)"
func (r *Result) Describe() string {
	if r == nil || len(r.Attempts) == 0 {
		return "no attempts"
	}
	parts := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Model, a.Outcome.Kind))
	}
	return strings.Join(parts, ", ")
}

// ModelFallback tries candidate models in priority order until one answers
type ModelFallback struct {
	generator   ContentGenerator
	rateLimiter *ratelimit.Manager
}

// NewModelFallback creates a fallback loop over generator
func NewModelFallback(generator ContentGenerator, rateLimiter *ratelimit.Manager) *ModelFallback {
	if rateLimiter == nil {
		rateLimiter = ratelimit.NewManager(ratelimit.DefaultConfig())
	}
	return &ModelFallback{
		generator:   generator,
		rateLimiter: rateLimiter,
	}
}

// Run sends prompt to each candidate in order and stops at the first
// non-empty success. Not-found, rate-limited and other failures all move on
// to the next candidate after the fixed pause. The returned Result always
// carries the attempts made, including on error.
func (f *ModelFallback) Run(ctx context.Context, candidates []string, prompt string) (*Result, error) {
	result := &Result{}
	if len(candidates) == 0 {
		return result, ErrNoCandidates
	}

	for i, model := range candidates {
		if i > 0 {
			log.Printf("Waiting %v before trying the next model", f.rateLimiter.GetConfig().AttemptPause)
			if err := f.rateLimiter.WaitBeforeRetry(ctx); err != nil {
				return result, fmt.Errorf("model fallback interrupted: %w", err)
			}
		}

		log.Printf("Trying model %d/%d: %s", i+1, len(candidates), model)

		startTime := time.Now()
		outcome := f.generator.Generate(ctx, model, prompt)
		if outcome.OK() && strings.TrimSpace(outcome.Text) == "" {
			outcome = Outcome{Kind: OutcomeOtherError, Err: ErrEmptyResponse}
		}
		result.Attempts = append(result.Attempts, Attempt{
			Model:    model,
			Outcome:  outcome,
			Duration: time.Since(startTime),
		})

		switch outcome.Kind {
		case OutcomeSuccess:
			f.rateLimiter.RecordSuccess()
			result.Model = model
			result.Text = outcome.Text
			log.Printf("Model %s succeeded after %d attempt(s)", model, i+1)
			return result, nil
		case OutcomeNotFound:
			log.Printf("WARNING: Model %s not found, trying next candidate", model)
		case OutcomeRateLimited:
			log.Printf("WARNING: Model %s quota exceeded, trying next candidate", model)
		default:
			log.Printf("ERROR: Model %s failed: %v", model, outcome.Err)
		}
		f.rateLimiter.RecordFailure(outcome.Kind == OutcomeRateLimited)
	}

	return result, fmt.Errorf("%w: %s", ErrAllModelsFailed, result.Describe())
}
