package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const webhookTimeout = 10 * time.Second

// WebhookPublisher POSTs every event as JSON to a fixed URL.
type WebhookPublisher struct {
	url    string
	client *resty.Client
}

func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{
		url:    url,
		client: resty.New().SetTimeout(webhookTimeout),
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, event Event) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Event-Type", string(event.Type)).
		SetBody(event).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s failed with status %d: %s", event.Type, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
