package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"patientsim/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// openingTurn is sent when a conversation starts on the assistant side,
// since the Messages API expects a user turn first.
const openingTurn = "(The consultation begins.)"

type AnthropicBackend struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	log.Printf("[INFO] Using Anthropic model %s", model)
	return &AnthropicBackend{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: 1024,
	}
}

func (b *AnthropicBackend) Generate(ctx context.Context, req Request) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages:  toAnthropicMessages(req.Messages),
		System:    []anthropic.TextBlockParam{{Text: req.System}},
	}
	if req.Tool != nil {
		params.Tools = []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        req.Tool.Name,
				Description: anthropic.String(req.Tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: req.Tool.Schema.Properties,
				},
			},
		}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.Tool.Name},
		}
	}

	response, err := b.client.Messages.New(ctx, params)
	if err != nil {
		log.Printf("[ERROR] Failed to call Anthropic API: %v", err)
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	completion := &Completion{
		Usage: Usage{
			PromptTokens:     int(response.Usage.InputTokens),
			CompletionTokens: int(response.Usage.OutputTokens),
			TotalTokens:      int(response.Usage.InputTokens + response.Usage.OutputTokens),
		},
	}
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			completion.Text += block.Text
		case anthropic.ToolUseBlock:
			input, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to encode tool input: %w", err)
			}
			completion.ToolInput = input
		}
	}
	if req.Tool != nil && len(completion.ToolInput) == 0 {
		return nil, fmt.Errorf("no tool calls in response for %s", req.Tool.Name)
	}
	return completion, nil
}

func toAnthropicMessages(messages []models.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	if len(messages) == 0 || messages[0].Role == RoleAssistant {
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(openingTurn)))
	}
	for _, msg := range messages {
		if msg.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}
