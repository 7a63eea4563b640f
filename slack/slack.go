package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pantryapp/pantry"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// Notifier announces pantry changes on a channel.
type Notifier struct {
	client  *Client
	channel string
}

func NewNotifier(client *Client, channel string) *Notifier {
	return &Notifier{client: client, channel: channel}
}

func (n *Notifier) Notify(ctx context.Context, change pantry.Change) error {
	return n.client.PostMessage(ctx, n.channel, FormatChange(change))
}

// FormatChange renders a change as a one-line message.
func FormatChange(change pantry.Change) string {
	if change.Op == pantry.OpDeleted {
		return fmt.Sprintf("pantry: %s %s", change.Op, change.Name)
	}
	return fmt.Sprintf("pantry: %s %s (count %d)", change.Op, change.Name, change.Count)
}
