package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// OpenAIProvider speaks the OpenAI chat-completion wire format, which also
// covers DeepSeek and other compatible endpoints via a custom base URL.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxElapsed time.Duration
	weights    extractor.Weights
}

// OpenAIOptions configures the remote client.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxElapsed time.Duration
	Weights    extractor.Weights
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(opts OpenAIOptions) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("remote API key is required")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	m := opts.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 25 * time.Second
	}
	maxElapsed := opts.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = 45 * time.Second
	}
	weights := opts.Weights
	if weights == (extractor.Weights{}) {
		weights = extractor.DefaultWeights()
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		model:      m,
		timeout:    timeout,
		maxElapsed: maxElapsed,
		weights:    weights,
	}, nil
}

// Kind returns the provider kind.
func (p *OpenAIProvider) Kind() model.ProviderKind {
	return model.ProviderRemote
}

// Ping probes the endpoint by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.ListModels(ctx)
	return err
}

// complete runs one prompt with retry. Client errors (4xx) are permanent;
// everything else backs off until maxElapsed.
func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (string, error) {
	var content string

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		resp, err := p.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0,
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("%w: no choices returned", ErrMalformedResponse))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.maxElapsed

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("remote completion failed: %w", err)
	}
	return content, nil
}

// Summarize produces the conversation summary analysis.
func (p *OpenAIProvider) Summarize(ctx context.Context, messages []model.Message, meta Meta) (*model.SummaryPayload, error) {
	body, err := p.complete(ctx, summaryPrompt(messages, meta))
	if err != nil {
		return nil, err
	}
	return decodeSummary(body, messages, p.weights)
}

// ExtractLeadInfo produces the lead extraction analysis.
func (p *OpenAIProvider) ExtractLeadInfo(ctx context.Context, messages []model.Message, meta Meta) (*model.LeadPayload, error) {
	body, err := p.complete(ctx, leadPrompt(messages, meta))
	if err != nil {
		return nil, err
	}
	return decodeLead(body, p.weights)
}

// AnalyzeForKPIs produces the per-conversation KPI bundle.
func (p *OpenAIProvider) AnalyzeForKPIs(ctx context.Context, messages []model.Message) (*model.ConversationKPIs, error) {
	body, err := p.complete(ctx, kpiPrompt(messages))
	if err != nil {
		return nil, err
	}
	return decodeKPIs(body, messages, p.weights)
}
