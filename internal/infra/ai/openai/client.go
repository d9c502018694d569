package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/incident-orchestrator/internal/domain/oracle"
	"github.com/bryanwahyu/incident-orchestrator/internal/infra/ai/prompt"
)

const (
	maxTokens = 2048
	// maxContentChars bounds token usage per extraction call.
	maxContentChars = 12000
)

type Client struct {
	*openai.Client
	Model string
	// Timeout bounds a single extraction call. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Extract implements oracle.Client. Output is requested in JSON mode and
// unmarshaled into the extraction shape; unparseable output surfaces as
// oracle.ErrMalformedResponse so the processor can retry.
func (c *Client) Extract(ctx context.Context, evidenceType, content, instructions string) (*oracle.Extraction, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(evidenceType, instructions, content)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", oracle.ErrMalformedResponse)
	}

	var ext oracle.Extraction
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrMalformedResponse, err)
	}
	return &ext, nil
}

// classifyErr maps provider errors onto the oracle taxonomy so the processor
// retry policy can tell transient from permanent failures.
func classifyErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return fmt.Errorf("%w: %v", oracle.ErrQuotaExceeded, err)
		case 408, 500, 502, 503, 504:
			return fmt.Errorf("%w: %v", oracle.ErrTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", oracle.ErrTimeout, err)
	}
	return fmt.Errorf("oracle call failed: %w", err)
}

// EmbeddingClient exposes the embeddings endpoint for the similarity index.
type EmbeddingClient struct {
	*openai.Client
	Model string
}

func NewEmbeddingClient(apiKey, model string) *EmbeddingClient {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &EmbeddingClient{Client: openai.NewClient(apiKey), Model: model}
}

// Embed returns the embedding vector for one descriptor string.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.Model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}
