package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainBackend runs agents on any langchaingo model.
type LangchainBackend struct {
	model       llms.Model
	temperature float64
}

func NewLangchainBackend(model llms.Model) *LangchainBackend {
	return &LangchainBackend{model: model, temperature: 0.7}
}

func NewOpenAIBackend(apiKey, model string) (*LangchainBackend, error) {
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	log.Printf("[INFO] Using OpenAI model %s", model)
	return NewLangchainBackend(llm), nil
}

func (b *LangchainBackend) Generate(ctx context.Context, req Request) (*Completion, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
	}
	for _, msg := range req.Messages {
		msgType := llms.ChatMessageTypeHuman
		if msg.Role == RoleAssistant {
			msgType = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(msgType, msg.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(b.temperature)}
	if req.Tool != nil {
		opts = append(opts,
			llms.WithTools([]llms.Tool{{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        req.Tool.Name,
					Description: req.Tool.Description,
					Parameters:  req.Tool.Schema,
				},
			}}),
			llms.WithToolChoice("required"))
	}

	resp, err := b.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	choice := resp.Choices[0]
	completion := &Completion{
		Text: choice.Content,
		Usage: Usage{
			PromptTokens:     intFromInfo(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: intFromInfo(choice.GenerationInfo, "CompletionTokens"),
			TotalTokens:      intFromInfo(choice.GenerationInfo, "TotalTokens"),
		},
	}
	if req.Tool != nil {
		if len(choice.ToolCalls) == 0 || choice.ToolCalls[0].FunctionCall == nil {
			return nil, fmt.Errorf("no tool calls in response for %s", req.Tool.Name)
		}
		completion.ToolInput = json.RawMessage(choice.ToolCalls[0].FunctionCall.Arguments)
	}
	return completion, nil
}

func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
