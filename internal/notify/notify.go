package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const bannerWidth = 30

// Digest is the finished analysis handed to notifiers
type Digest struct {
	Title         string
	Model         string
	Summary       string
	HeadlineCount int
	GeneratedAt   time.Time
}

// Notifier delivers a digest somewhere
type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

// ConsoleNotifier prints the digest between banner rules
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier creates a notifier that writes to out
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Notify writes the banner, the title and the summary
func (n *ConsoleNotifier) Notify(ctx context.Context, digest Digest) error {
	rule := strings.Repeat("=", bannerWidth)

	_, err := fmt.Fprintf(n.out, "\n%s\n%s\n%s\n%s\n%s\n", rule, digest.Title, rule, digest.Summary, rule)
	if err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}
