package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/GustavoLR548/market-digest/internal/ai"
	"github.com/GustavoLR548/market-digest/internal/news"
	"github.com/GustavoLR548/market-digest/internal/notify"
)

// ErrNoHeadlines is returned when the feed produced nothing to analyze
var ErrNoHeadlines = errors.New("no headlines to analyze")

// Options carries the run settings taken from config
type Options struct {
	Title          string
	HeadlineLimit  int
	Candidates     []string
	DiscoverModels bool
}

// Report summarizes what a run did
type Report struct {
	Headlines  []string
	Candidates []string
	Result     *ai.Result
}

// Runner executes one fetch -> prompt -> fallback -> deliver pass
type Runner struct {
	fetcher   news.HeadlineFetcher
	fallback  *ai.ModelFallback
	lister    ai.ModelLister
	notifiers []notify.Notifier
	out       io.Writer
	opts      Options
	now       func() time.Time
}

// NewRunner creates a runner. lister may be nil when discovery is off;
// the first notifier is treated as the primary (console) output.
func NewRunner(
	fetcher news.HeadlineFetcher,
	fallback *ai.ModelFallback,
	lister ai.ModelLister,
	notifiers []notify.Notifier,
	out io.Writer,
	opts Options,
) *Runner {
	return &Runner{
		fetcher:   fetcher,
		fallback:  fallback,
		lister:    lister,
		notifiers: notifiers,
		out:       out,
		opts:      opts,
		now:       time.Now,
	}
}

// Run performs a single digest pass. Every designed failure is printed to
// the output writer as well as returned.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	r.printf("Fetching %s news...\n", r.opts.Title)

	headlines, err := r.fetcher.FetchHeadlines(ctx, r.opts.HeadlineLimit)
	if err != nil && !errors.Is(err, news.ErrNoArticles) {
		log.Printf("ERROR: Failed to fetch feed: %v", err)
		r.printf("Error fetching news feed: %v\n", err)
		return report, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	if len(headlines) == 0 {
		r.printf("No specific deal news found today.\n")
		return report, ErrNoHeadlines
	}
	report.Headlines = headlines

	r.printf("Found %d headlines. Sending to AI for analysis...\n", len(headlines))

	prompt := ai.BuildPrompt(headlines)
	report.Candidates = r.resolveCandidates(ctx)

	result, err := r.fallback.Run(ctx, report.Candidates, prompt)
	report.Result = result
	if err != nil {
		log.Printf("ERROR: Model fallback failed: %v", err)
		if errors.Is(err, ai.ErrAllModelsFailed) {
			r.printf("Error: all candidate models failed (%s)\n", result.Describe())
		} else {
			r.printf("Error during analysis: %v\n", err)
		}
		return report, err
	}

	digest := notify.Digest{
		Title:         r.opts.Title,
		Model:         result.Model,
		Summary:       result.Text,
		HeadlineCount: len(headlines),
		GeneratedAt:   r.now(),
	}

	for i, n := range r.notifiers {
		if err := n.Notify(ctx, digest); err != nil {
			if i == 0 {
				return report, fmt.Errorf("failed to deliver digest: %w", err)
			}
			log.Printf("WARNING: Notifier %d failed: %v", i, err)
		}
	}

	return report, nil
}

// resolveCandidates applies model discovery when enabled
func (r *Runner) resolveCandidates(ctx context.Context) []string {
	if !r.opts.DiscoverModels || r.lister == nil {
		return r.opts.Candidates
	}

	available, err := r.lister.ListModels(ctx)
	if err != nil {
		log.Printf("WARNING: Failed to list models, using configured candidates: %v", err)
		return r.opts.Candidates
	}

	resolved := ai.ResolveCandidates(r.opts.Candidates, available)
	log.Printf("Model discovery: %d available, candidates %v", len(available), resolved)
	return resolved
}

func (r *Runner) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		log.Printf("WARNING: Failed to write output: %v", err)
	}
}
