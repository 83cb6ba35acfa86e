// Package notifier delivers operational callbacks to the product backend,
// such as flow failure alerts and event volume checks. Calls are best
// effort and never propagate failures to the caller.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// Notifier posts JSON callbacks to the configured backend base URL. A
// Notifier with an empty base URL is a no-op, which keeps development
// setups working without a backend.
type Notifier struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewNotifier(logger *slog.Logger, baseURL string) *Notifier {
	client := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")

	return &Notifier{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type flowFailurePayload struct {
	WorkspaceID string `json:"workspaceId"`
	FlowName    string `json:"flowName"`
	Error       string `json:"error"`
}

type volumeCheckPayload struct {
	WorkspaceID string `json:"workspaceId"`
}

// NotifyFlowFailure reports a failed execution so the workspace owner can
// be alerted. Errors are logged and swallowed.
func (n *Notifier) NotifyFlowFailure(ctx context.Context, workspaceID, flowName, errorMessage string) {
	if n.baseURL == "" {
		return
	}

	payload := flowFailurePayload{
		WorkspaceID: workspaceID,
		FlowName:    flowName,
		Error:       errorMessage,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.baseURL + "/notify/flow-failure")
	if err != nil {
		n.logger.WarnContext(ctx, "Failed to send flow failure notification", "error", err)

		return
	}

	if resp.IsError() {
		n.logger.WarnContext(ctx, "Flow failure notification rejected",
			"status", resp.StatusCode(), "workspace_id", workspaceID)
	}
}

// CheckEventVolume asks the backend to evaluate the workspace's event
// quota. Fire and forget.
func (n *Notifier) CheckEventVolume(ctx context.Context, workspaceID string) {
	if n.baseURL == "" {
		return
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(volumeCheckPayload{WorkspaceID: workspaceID}).
		Post(n.baseURL + "/check-event-volume")
	if err != nil {
		n.logger.WarnContext(ctx, "Failed to send event volume check", "error", err)

		return
	}

	if resp.IsError() {
		n.logger.WarnContext(ctx, "Event volume check rejected",
			"status", resp.StatusCode(), "workspace_id", workspaceID)
	}
}
