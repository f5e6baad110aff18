package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier delivers one plain-text analysis summary. Implementations
// must be safe for sequential reuse across a watch loop.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Multi fans a notification out to every configured channel and returns
// the first delivery error after attempting them all.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Discord posts to a webhook URL.
type Discord struct {
	WebhookURL string
	HTTP       *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		WebhookURL: webhookURL,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *Discord) Notify(ctx context.Context, text string) error {
	payload, _ := json.Marshal(map[string]string{"content": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord webhook: status %d body=%s", resp.StatusCode, string(blob))
	}
	return nil
}
