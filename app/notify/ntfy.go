package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const ntfyTitle = "Libria client"

// NtfySink forwards notifications to an ntfy topic URL in the background.
type NtfySink struct {
	endpoint  string
	client    *http.Client
	userAgent string
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewNtfySink returns nil when topic is empty so callers can skip it in Multi.
func NewNtfySink(topic, userAgent string, timeout time.Duration) *NtfySink {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &NtfySink{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

func (n *NtfySink) Notify(message string, detail error) {
	if n == nil {
		return
	}

	body := message
	if detail != nil {
		body = fmt.Sprintf("%s\n%s", message, detail.Error())
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.send(ctx, body); err != nil {
			slog.Warn("Failed to forward notification", "endpoint", n.endpoint, "error", err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (n *NtfySink) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *NtfySink) send(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", ntfyTitle)
	req.Header.Set("Tags", "warning")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
