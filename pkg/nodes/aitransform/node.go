// Package aitransform provides the AI-assisted transform executor, backed
// by an external text-completion service.
package aitransform

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
	defaultRequestTimeout = 60 * time.Second
	defaultModel          = "completion-default"
)

// AITransformError wraps a failed completion call. It halts the run when
// returned; an unparseable response text does NOT produce this error.
type AITransformError struct {
	Err error
}

func (e *AITransformError) Error() string {
	return fmt.Sprintf("ai transform failed: %v", e.Err)
}

func (e *AITransformError) Unwrap() error {
	return e.Err
}

// CompletionRequest is the outbound payload to the completion service.
type CompletionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Input  string `json:"input"`
}

// CompletionResponse is the expected service response envelope.
type CompletionResponse struct {
	Text string `json:"text"`
}

// ClientConfig carries the completion service connection settings shared by
// every AI transform node.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AITransformNode sends the configured prompt plus the serialized current
// data to the completion service. When the response text parses as JSON it
// becomes the new current data; otherwise the step still succeeds with a
// wrapped raw-text result.
type AITransformNode struct {
	id     string
	prompt string
	model  string
	client *resty.Client
}

func NewAITransformNode(id string, config map[string]any, clientConfig ClientConfig) (*AITransformNode, error) {
	prompt, ok := config["prompt"].(string)
	if !ok || prompt == "" {
		return nil, errors.New("missing required field 'prompt'")
	}

	model, _ := config["model"].(string)
	if model == "" {
		model = defaultModel
	}

	timeout := clientConfig.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client := resty.New().
		SetBaseURL(clientConfig.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	if clientConfig.APIKey != "" {
		client.SetAuthToken(clientConfig.APIKey)
	}

	return &AITransformNode{
		id:     id,
		prompt: prompt,
		model:  model,
		client: client,
	}, nil
}

func (n *AITransformNode) ID() string {
	return n.id
}

func (n *AITransformNode) Type() string {
	return "transform:ai"
}

func (n *AITransformNode) Execute(ctx context.Context, execCtx *models.ExecutionContext) (any, error) {
	if n.client.BaseURL == "" {
		return nil, &AITransformError{Err: errors.New("completion service URL is not configured")}
	}

	serialized, err := json.Marshal(execCtx.CurrentData)
	if err != nil {
		return nil, &AITransformError{Err: fmt.Errorf("failed to serialize current data: %w", err)}
	}

	var completion CompletionResponse

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(CompletionRequest{
			Model:  n.model,
			Prompt: n.prompt,
			Input:  string(serialized),
		}).
		SetResult(&completion).
		Post("/completions")
	if err != nil {
		return nil, &AITransformError{Err: err}
	}

	if resp.IsError() {
		return nil, &AITransformError{
			Err: fmt.Errorf("completion service returned %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	// The model is asked for JSON but is not trusted to produce it. A
	// non-JSON reply wraps the raw text instead of failing the step.
	var parsed any
	if err := json.Unmarshal([]byte(completion.Text), &parsed); err != nil {
		return map[string]any{
			"aiResponse":   completion.Text,
			"originalData": execCtx.CurrentData,
		}, nil
	}

	return parsed, nil
}
