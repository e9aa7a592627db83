package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

// Webhook posts the report to a Slack or Discord incoming webhook.
// Discord is detected from the URL; anything else gets the Slack payload.
type Webhook struct {
	url        string
	name       string
	httpClient *http.Client
}

// NewWebhook constructs a webhook notifier for url. name is the bot username
// shown in the channel and defaults to "dipwatch".
func NewWebhook(url, name string) *Webhook {
	if name == "" {
		name = "dipwatch"
	}
	return &Webhook{
		url:        url,
		name:       name,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts the subject and body as one chat message.
//
// Returns:
//   - error: when the request cannot be sent or the webhook answers with a
//     non-2xx status (the first 512 bytes of the reply are included).
func (w *Webhook) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(w.payload(n.Subject + "\n\n" + n.Body))
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (w *Webhook) payload(msg string) map[string]string {
	if strings.Contains(w.url, "discord") {
		return map[string]string{
			"content":  msg,
			"username": w.name,
		}
	}
	return map[string]string{
		"text":     msg,
		"username": w.name,
	}
}
