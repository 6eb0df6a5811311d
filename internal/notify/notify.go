package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kcalpace/internal/goal"
)

const userAgent = "kcalpace/0.1.0"

// Sender publishes goal-crossing events. Implementations must be safe for
// concurrent use.
type Sender interface {
	NotifyCrossing(ctx context.Context, crossing goal.Crossing, total, goalKcal float64) error
	TestNotification(ctx context.Context) error
}

// New builds a sender backed by ntfy when a topic URL is configured. An
// empty topic yields a noop sender.
func New(topic string, timeout time.Duration) Sender {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopSender{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfySender{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfySender struct {
	endpoint string
	client   *http.Client
}

func (n *ntfySender) NotifyCrossing(ctx context.Context, crossing goal.Crossing, total, goalKcal float64) error {
	var data payload
	switch crossing {
	case goal.BelowToAbove:
		data = payload{
			title:    "kcalpace - Goal Reached",
			message:  fmt.Sprintf("Projected total %.0f kcal crossed your %.0f kcal goal", total, goalKcal),
			tags:     []string{"kcalpace", "goal", "reached"},
			priority: "high",
		}
	case goal.AboveToBelow:
		data = payload{
			title:   "kcalpace - Behind Goal",
			message: fmt.Sprintf("Projected total dropped to %.0f kcal, below your %.0f kcal goal", total, goalKcal),
			tags:    []string{"kcalpace", "goal", "behind"},
		}
	default:
		return nil
	}
	return n.send(ctx, data)
}

func (n *ntfySender) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "kcalpace - Test",
		message:  "Notification system test",
		tags:     []string{"kcalpace", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfySender) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopSender struct{}

func (noopSender) NotifyCrossing(context.Context, goal.Crossing, float64, float64) error { return nil }
func (noopSender) TestNotification(context.Context) error                                { return nil }
