package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/shopease/backend/internal/model/catalog"
	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

// DefaultHistoryWindow is how many trailing conversation messages reach the model.
const DefaultHistoryWindow = 9

// Builder assembles the completion payload for each turn. The system prompt is
// rendered once from the catalog and reused for every request.
type Builder struct {
	system string
	window int
}

// NewBuilder renders the system prompt with the catalog documents injected.
func NewBuilder(ctx context.Context, docs *catalog.Catalog, window int) (*Builder, error) {
	if docs == nil {
		return nil, errors.New("catalog is required")
	}
	if window < 1 {
		return nil, fmt.Errorf("history window must be positive, got %d", window)
	}

	template := prompt.FromMessages(schema.FString, schema.SystemMessage(systemTemplate))
	rendered, err := template.Format(ctx, map[string]any{
		"product_data": docs.Products(),
		"order_data":   docs.Orders(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}
	if len(rendered) != 1 {
		return nil, fmt.Errorf("system prompt rendered %d messages, want 1", len(rendered))
	}

	return &Builder{system: rendered[0].Content, window: window}, nil
}

// SystemPrompt returns the rendered instruction text.
func (b *Builder) SystemPrompt() string {
	return b.system
}

// Build returns the system message followed by the trailing window of history.
func (b *Builder) Build(history []chat.Message) []chat.Message {
	start := 0
	if len(history) > b.window {
		start = len(history) - b.window
	}

	payload := make([]chat.Message, 0, len(history)-start+1)
	payload = append(payload, chat.Message{Role: chat.RoleSystem, Content: b.system})
	payload = append(payload, history[start:]...)
	return payload
}

func toSchemaMessages(payload []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(payload))
	for _, msg := range payload {
		switch msg.Role {
		case chat.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		default:
			out = append(out, schema.UserMessage(msg.Content))
		}
	}
	return out
}
