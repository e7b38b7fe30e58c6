package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/medibridge/carepipe/internal/domain/ai"
)

const maxTokens = 1024

type Client struct {
	*openai.Client
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// Options for NewClient. BaseURL is optional (OpenAI-compatible gateways, tests).
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

func NewClient(o Options) *Client {
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	return &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       o.Model,
		VisionModel: o.VisionModel,
		Timeout:     o.Timeout,
	}
}

// Complete runs one chat completion. A request with ImageURL goes to the
// vision model as a text + image_url message.
func (c *Client) Complete(ctx context.Context, r ai.Request) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	model := c.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	var msgs []openai.ChatCompletionMessage
	if r.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: r.System})
	}
	if r.ImageURL != "" {
		if c.VisionModel != "" {
			model = c.VisionModel
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: r.Prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    r.ImageURL,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		})
	} else {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: r.Prompt})
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: r.Temperature,
	}
	limit := r.MaxTokens
	if limit <= 0 {
		limit = maxTokens
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = limit
		req.Temperature = 0
	} else {
		req.MaxTokens = limit
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ai.ErrModelUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Join(fmt.Errorf("%w: %v", ai.ErrModelUnavailable, err), ai.ErrQuotaExceeded)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Join(fmt.Errorf("%w: %v", ai.ErrModelUnavailable, err), ai.ErrQuotaExceeded)
	}
	return fmt.Errorf("%w: failed to create chat completion: %v", ai.ErrModelUnavailable, err)
}
