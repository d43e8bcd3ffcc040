package notify

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord limits embed descriptions to 4096 characters
const maxEmbedDescription = 4096

// webhookExecutor is the part of *discordgo.Session the notifier needs
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts the digest to a Discord channel through a webhook
type DiscordNotifier struct {
	session   webhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier creates a notifier from a full webhook URL
// (https://discord.com/api/webhooks/<id>/<token>)
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution is authorized by the token in the URL, not a bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &DiscordNotifier{
		session:   session,
		webhookID: id,
		token:     token,
	}, nil
}

// ParseWebhookURL extracts the webhook ID and token from a webhook URL
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", "", fmt.Errorf("invalid webhook URL: unsupported scheme %q", u.Scheme)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "webhooks" && i+2 < len(segments) {
			id, token := segments[i+1], segments[i+2]
			if id != "" && token != "" {
				return id, token, nil
			}
		}
	}

	return "", "", fmt.Errorf("invalid webhook URL: expected .../webhooks/<id>/<token>")
}

// Notify posts the digest as an embed
func (n *DiscordNotifier) Notify(ctx context.Context, digest Digest) error {
	embed := createDigestEmbed(digest)

	_, err := n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post digest to Discord webhook: %w", err)
	}

	log.Printf("Digest posted to Discord webhook %s", n.webhookID)
	return nil
}

// createDigestEmbed creates a Discord embed for the digest
func createDigestEmbed(digest Digest) *discordgo.MessageEmbed {
	description := digest.Summary
	if runes := []rune(description); len(runes) > maxEmbedDescription {
		description = string(runes[:maxEmbedDescription-3]) + "..."
	}

	generatedAt := digest.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	return &discordgo.MessageEmbed{
		Title:       digest.Title,
		Description: description,
		Color:       0x1F6FEB,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d headlines · %s", digest.HeadlineCount, digest.Model),
		},
		Timestamp: generatedAt.Format(time.RFC3339),
	}
}
