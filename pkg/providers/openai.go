package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey, apiBase string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := strings.TrimSpace(apiBase); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) DefaultModel() string {
	return "gpt-5.2"
}

func (p *OpenAIProvider) Interpret(ctx context.Context, req InterpretRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	params := responses.ResponseNewParams{
		Model:        model,
		Instructions: openai.Opt(BuildSystemPrompt(req)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				{
					OfMessage: &responses.EasyInputMessageParam{
						Role:    responses.EasyInputMessageRoleUser,
						Content: responses.EasyInputMessageContentUnionParam{OfString: openai.Opt(req.Text)},
					},
				},
			},
		},
		Store: openai.Opt(false),
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Opt(int64(req.MaxTokens))
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai interpret: %w", err)
	}

	var content strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				content.WriteString(c.Text)
			}
		}
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("openai interpret: response carried no text content")
	}
	return content.String(), nil
}
