package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier envia avisos para canais externos.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Message é o aviso enviado ao canal configurado.
type Message struct {
	Title    string
	Text     string
	Severity string
}

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// WebhookNotifier publica mensagens em webhooks compatíveis com Slack.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier devolve nil quando nenhum webhook foi configurado.
func NewWebhookNotifier(webhookURL string, timeout time.Duration, retries int) *WebhookNotifier {
	if webhookURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})
	return &WebhookNotifier{client: client, url: webhookURL}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	if n == nil || n.url == "" {
		return errors.New("webhook não configurado")
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"text": format(msg)}).
		Post(n.url)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode())
	}
	return nil
}

func format(msg Message) string {
	emoji := ":information_source:"
	switch msg.Severity {
	case SeverityWarning:
		emoji = ":warning:"
	}
	if msg.Title != "" {
		return emoji + " *" + msg.Title + "*\n" + msg.Text
	}
	return emoji + " " + msg.Text
}
