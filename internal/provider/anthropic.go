package provider

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// AnthropicProvider is the alternate remote provider.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
	weights extractor.Weights
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, modelName string, timeout time.Duration, w extractor.Weights) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	if modelName == "" {
		modelName = "claude-3-5-haiku-20241022"
	}
	if timeout == 0 {
		timeout = 25 * time.Second
	}
	if w == (extractor.Weights{}) {
		w = extractor.DefaultWeights()
	}

	return &AnthropicProvider{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   modelName,
		timeout: timeout,
		weights: w,
	}, nil
}

// Kind returns the provider kind.
func (p *AnthropicProvider) Kind() model.ProviderKind {
	return model.ProviderRemote
}

// Ping probes the endpoint with a minimal completion.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.complete(ctx, "ping", 1)
	return err
}

func (p *AnthropicProvider) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(maxTokens),
		Messages: anthropic.F([]anthropic.MessageParam{
			{
				Role: anthropic.F(anthropic.MessageParamRoleUser),
				Content: anthropic.F([]anthropic.ContentBlockParamUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(prompt),
					},
				}),
			},
		}),
	})
	if err != nil {
		return "", err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	return content, nil
}

// Summarize produces the conversation summary analysis.
func (p *AnthropicProvider) Summarize(ctx context.Context, messages []model.Message, meta Meta) (*model.SummaryPayload, error) {
	body, err := p.complete(ctx, summaryPrompt(messages, meta), 2048)
	if err != nil {
		return nil, err
	}
	return decodeSummary(body, messages, p.weights)
}

// ExtractLeadInfo produces the lead extraction analysis.
func (p *AnthropicProvider) ExtractLeadInfo(ctx context.Context, messages []model.Message, meta Meta) (*model.LeadPayload, error) {
	body, err := p.complete(ctx, leadPrompt(messages, meta), 2048)
	if err != nil {
		return nil, err
	}
	return decodeLead(body, p.weights)
}

// AnalyzeForKPIs produces the per-conversation KPI bundle.
func (p *AnthropicProvider) AnalyzeForKPIs(ctx context.Context, messages []model.Message) (*model.ConversationKPIs, error) {
	body, err := p.complete(ctx, kpiPrompt(messages), 512)
	if err != nil {
		return nil, err
	}
	return decodeKPIs(body, messages, p.weights)
}
