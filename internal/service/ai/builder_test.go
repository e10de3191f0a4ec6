package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/zhouzirui/shopease/backend/internal/model/catalog"
	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	docs := catalog.New(
		json.RawMessage(`[{"id":"P100","name":"Wireless Earbuds","rating":4.3}]`),
		json.RawMessage(`[{"order_id":"ORD123","status":"Shipped"}]`),
	)
	b, err := NewBuilder(context.Background(), docs, DefaultHistoryWindow)
	if err != nil {
		t.Fatalf("NewBuilder err: %v", err)
	}
	return b
}

func history(n int) []chat.Message {
	messages := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		role := chat.RoleUser
		if i%2 == 0 {
			role = chat.RoleAssistant
		}
		messages = append(messages, chat.Message{Role: role, Content: fmt.Sprintf("message %d", i)})
	}
	return messages
}

func TestSystemPromptInjectsCatalogInOrder(t *testing.T) {
	b := newTestBuilder(t)
	system := b.SystemPrompt()

	base := strings.Index(system, `platform called "ShopEase"`)
	products := strings.Index(system, `"name": "Wireless Earbuds"`)
	orders := strings.Index(system, `"order_id": "ORD123"`)
	if base < 0 || products < 0 || orders < 0 {
		t.Fatalf("system prompt missing sections:\n%s", system)
	}
	if !(base < products && products < orders) {
		t.Fatalf("unexpected section order base=%d products=%d orders=%d", base, products, orders)
	}
	if strings.Contains(system, "{product_data}") || strings.Contains(system, "{order_data}") {
		t.Fatal("placeholders were not interpolated")
	}
}

func TestBuildKeepsTrailingWindow(t *testing.T) {
	b := newTestBuilder(t)

	for _, n := range []int{0, 1, 5, 9, 10, 25} {
		msgs := history(n)
		payload := b.Build(msgs)

		keep := n
		if keep > DefaultHistoryWindow {
			keep = DefaultHistoryWindow
		}
		if len(payload) != keep+1 {
			t.Fatalf("n=%d: payload length %d, want %d", n, len(payload), keep+1)
		}
		if payload[0].Role != chat.RoleSystem || payload[0].Content != b.SystemPrompt() {
			t.Fatalf("n=%d: first entry is not the system prompt", n)
		}
		if !reflect.DeepEqual(payload[1:], msgs[n-keep:]) {
			t.Fatalf("n=%d: window mismatch %+v", n, payload[1:])
		}
	}
}

func TestBuildDoesNotAliasHistory(t *testing.T) {
	b := newTestBuilder(t)
	msgs := history(3)

	payload := b.Build(msgs)
	payload[1].Content = "changed"

	if msgs[0].Content != "message 0" {
		t.Fatal("Build must not share backing storage with history")
	}
}

func TestNewBuilderValidation(t *testing.T) {
	if _, err := NewBuilder(context.Background(), nil, 9); err == nil {
		t.Fatal("expected error for nil catalog")
	}
	if _, err := NewBuilder(context.Background(), catalog.New(nil, nil), 0); err == nil {
		t.Fatal("expected error for zero window")
	}
}
