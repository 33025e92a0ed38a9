package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"patientsim/models"

	"github.com/invopop/jsonschema"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage is the token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ToolSpec asks the backend to answer through a single structured tool call.
type ToolSpec struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

type Request struct {
	System   string
	Messages []models.Message
	Tool     *ToolSpec
}

type Completion struct {
	Text      string
	ToolInput json.RawMessage
	Usage     Usage
}

// Backend is a chat model that both simulated agents talk to.
type Backend interface {
	Generate(ctx context.Context, req Request) (*Completion, error)
}

func schemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func decodeToolInput[T any](c *Completion) (T, error) {
	var v T
	if len(c.ToolInput) == 0 {
		return v, fmt.Errorf("no tool call in completion")
	}
	if err := json.Unmarshal(c.ToolInput, &v); err != nil {
		return v, fmt.Errorf("failed to parse tool input: %w", err)
	}
	return v, nil
}
