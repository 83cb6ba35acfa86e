// Package destination provides the dispatch executor delivering the
// current data to external systems: generic webhooks, Slack and Discord.
package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hookflow/hookflow/pkg/models"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxErrorBodyBytes     = 512
)

// DeliveryError reports a non-2xx response from a destination endpoint.
type DeliveryError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	body := e.Body
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}

	return fmt.Sprintf("%s returned %d: %s", e.Platform, e.StatusCode, body)
}

// DestinationNode delivers the current data to its configured target. The
// current data is read but never altered: destination output is recorded on
// the step only.
type DestinationNode struct {
	id              string
	destinationType string
	url             string
	message         string
	client          *resty.Client
}

func NewDestinationNode(id string, config map[string]any) (*DestinationNode, error) {
	destinationType, _ := config["type"].(string)
	if destinationType == "" {
		return nil, errors.New("missing required field 'type'")
	}

	url, _ := config["url"].(string)

	message, _ := config["message"].(string)
	if message == "" {
		message = "New flow event"
	}

	timeout := defaultRequestTimeout
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &DestinationNode{
		id:              id,
		destinationType: destinationType,
		url:             url,
		message:         message,
		client:          resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
	}, nil
}

func (n *DestinationNode) ID() string {
	return n.id
}

func (n *DestinationNode) Type() string {
	return "destination"
}

func (n *DestinationNode) Execute(ctx context.Context, execCtx *models.ExecutionContext) (any, error) {
	switch n.destinationType {
	case models.DestinationTypeWebhook:
		return n.deliver(ctx, "Webhook", execCtx.CurrentData)
	case models.DestinationTypeSlack:
		return n.deliver(ctx, "Slack", slackEnvelope(n.message, execCtx.CurrentData))
	case models.DestinationTypeDiscord:
		return n.deliver(ctx, "Discord", discordEnvelope(n.message, execCtx.CurrentData))
	default:
		// Unknown destinations are skipped, not failed, so one stale node
		// type cannot break an otherwise healthy flow.
		return map[string]any{
			"skipped": true,
			"reason":  "Unknown destination type",
		}, nil
	}
}

func (n *DestinationNode) deliver(ctx context.Context, platform string, body any) (any, error) {
	if n.url == "" {
		return nil, &DeliveryError{Platform: platform, StatusCode: 0, Body: "destination URL is not configured"}
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(n.url)
	if err != nil {
		return nil, fmt.Errorf("%s delivery failed: %w", platform, err)
	}

	// Anything outside 2xx is a failed delivery, including unresolved
	// redirects and 304s.
	if !resp.IsSuccess() {
		return nil, &DeliveryError{
			Platform:   platform,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return map[string]any{
		"success":  true,
		"status":   resp.StatusCode(),
		"response": responseValue(resp.Body()),
	}, nil
}

// responseValue decodes a JSON response body when possible, otherwise
// returns the raw text.
func responseValue(body []byte) any {
	if len(body) == 0 {
		return ""
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}

	return string(body)
}
