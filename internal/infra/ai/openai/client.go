package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/codereview/internal/config"
	"github.com/bryanwahyu/codereview/internal/domain/ai"
)

// Client talks to any OpenAI-compatible chat completion endpoint (Groq by
// default). It is safe for concurrent use and keeps no per-call state.
type Client struct {
	api         *openai.Client
	apiKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient builds a client from config. A missing API key is not an error
// here; Ready and Complete report it without touching the network.
func NewClient(cfg config.AI) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAITimeout
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	temperature := config.DefaultAITemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		apiKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     timeout,
	}
}

func (c *Client) Ready() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return ai.ErrMissingCredential
	}
	return nil
}

// Complete sends one user message and returns the first choice's text. It
// never retries.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}

	model := c.Model
	if model == "" {
		model = config.DefaultAIModel
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = c.MaxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = c.MaxTokens
		// go-openai omits a zero temperature, which the provider reads as its default
		if req.Temperature == 0 {
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ai.ModelError{Kind: ai.ErrEmptyCompletion, Err: errors.New("no choices in response")}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &ai.ModelError{Kind: ai.ErrEmptyCompletion, Err: errors.New("empty message content")}
	}
	return content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps go-openai errors onto the ai error kinds.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ModelError{Kind: kindForStatus(apiErr.HTTPStatusCode), StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ai.ModelError{Kind: kindForStatus(reqErr.HTTPStatusCode), StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		// 2xx but the body was not a completion
		return &ai.ModelError{Kind: ai.ErrEmptyCompletion, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ai.ModelError{Kind: ai.ErrTransport, Err: err}
	}
	return &ai.ModelError{Kind: ai.ErrTransport, Err: fmt.Errorf("create chat completion: %w", err)}
}

func kindForStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ai.ErrAuth
	case http.StatusTooManyRequests:
		return ai.ErrQuotaExceeded
	default:
		return ai.ErrTransport
	}
}
