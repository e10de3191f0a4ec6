package transcript_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newStore(t *testing.T, clock *fakeClock) *transcript.Store {
	t.Helper()
	store, err := transcript.NewStore(filepath.Join(t.TempDir(), "chat_history"), transcript.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewStore err: %v", err)
	}
	return store
}

func conversation(question string) []chat.Message {
	return []chat.Message{
		{Role: chat.RoleAssistant, Content: "👋 Hello! I'm Chatbot. How can I help you today?"},
		{Role: chat.RoleUser, Content: question},
		{Role: chat.RoleAssistant, Content: "Let me check that for you."},
	}
}

func TestSaveThenLoadRestoresTranscript(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := newStore(t, clock)
	ctx := context.Background()

	messages := conversation("Where is my order ORD123?")
	saved, err := store.Save(ctx, chat.Session{ID: "abc", Messages: messages})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if saved.Title != "Where is my order ORD123?..." {
		t.Fatalf("unexpected derived title %q", saved.Title)
	}

	got, err := store.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if got.ID != "abc" {
		t.Fatalf("unexpected id %s", got.ID)
	}
	if !reflect.DeepEqual(got.Messages, messages) {
		t.Fatalf("messages mismatch: %+v", got.Messages)
	}
	if !got.CreatedAt.Equal(clock.now) {
		t.Fatalf("unexpected timestamp %v", got.CreatedAt)
	}
}

func TestSaveRefusesGreetingOnly(t *testing.T) {
	store := newStore(t, &fakeClock{now: time.Now()})

	_, err := store.Save(context.Background(), chat.Session{
		ID:       "greeting",
		Messages: []chat.Message{{Role: chat.RoleAssistant, Content: "hi"}},
	})
	if !errors.Is(err, transcript.ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(store.Dir(), "greeting.json")); !os.IsNotExist(err) {
		t.Fatalf("expected no file written, stat err=%v", err)
	}
}

func TestSaveKeepsSuppliedTitleAndTruncatesDerived(t *testing.T) {
	store := newStore(t, &fakeClock{now: time.Now()})
	ctx := context.Background()

	saved, err := store.Save(ctx, chat.Session{ID: "t1", Title: "Refund help", Messages: conversation("hello")})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if saved.Title != "Refund help" {
		t.Fatalf("unexpected title %q", saved.Title)
	}

	long := strings.Repeat("क", 40)
	saved, err = store.Save(ctx, chat.Session{ID: "t2", Messages: conversation(long)})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if saved.Title != strings.Repeat("क", 30)+"..." {
		t.Fatalf("unexpected derived title %q", saved.Title)
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	clock := &fakeClock{}
	store := newStore(t, clock)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		clock.now = base.Add(time.Duration(i) * time.Hour)
		if _, err := store.Save(ctx, chat.Session{ID: id, Messages: conversation(id)}); err != nil {
			t.Fatalf("Save %s err: %v", id, err)
		}
	}

	listing, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}

	var ids []string
	for _, s := range listing.Sessions {
		ids = append(ids, s.ID)
	}
	if !reflect.DeepEqual(ids, []string{"third", "second", "first"}) {
		t.Fatalf("unexpected order %v", ids)
	}
}

func TestListSkipsCorruptRecordsAndSortsUndatedLast(t *testing.T) {
	store := newStore(t, &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	ctx := context.Background()

	if _, err := store.Save(ctx, chat.Session{ID: "dated", Messages: conversation("dated")}); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	files := map[string]string{
		"broken.json":  `{"id": "broken", "messages": [`,
		"nomsgs.json":  `{"id": "nomsgs", "title": "x"}`,
		"undated.json": `{"id": "undated", "title": "Old", "messages": [{"role": "user", "content": "old question"}]}`,
		"legacy.json":  `{"id": "legacy", "title": "Py", "timestamp": "2023-06-01T12:30:00.123456", "messages": []}`,
		"notes.txt":    `ignored`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(store.Dir(), name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	listing, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}

	var ids []string
	for _, s := range listing.Sessions {
		ids = append(ids, s.ID)
	}
	if !reflect.DeepEqual(ids, []string{"dated", "legacy", "undated"}) {
		t.Fatalf("unexpected listing %v", ids)
	}
	if len(listing.Errors) != 2 {
		t.Fatalf("expected 2 skipped records, got %v", listing.Errors)
	}
	for _, err := range listing.Errors {
		var parseErr *transcript.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	}

	if listing.Sessions[1].Preview != "No messages" {
		t.Fatalf("unexpected preview %q", listing.Sessions[1].Preview)
	}
	if listing.Sessions[2].Preview != "Q: old question" {
		t.Fatalf("unexpected preview %q", listing.Sessions[2].Preview)
	}
}

func TestLoadDistinguishesNotFoundAndParseError(t *testing.T) {
	store := newStore(t, &fakeClock{now: time.Now()})
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, transcript.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := store.Load(ctx, "bad")
	var parseErr *transcript.ParseError
	if !errors.As(err, &parseErr) || parseErr.ID != "bad" {
		t.Fatalf("expected ParseError for bad, got %v", err)
	}

	if _, err := store.Load(ctx, "../escape"); !errors.Is(err, transcript.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteMissingLeavesListingUnchanged(t *testing.T) {
	store := newStore(t, &fakeClock{now: time.Now()})
	ctx := context.Background()

	if _, err := store.Save(ctx, chat.Session{ID: "keep", Messages: conversation("keep me")}); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	before, _ := store.List(ctx)

	if err := store.Delete(ctx, "never-saved"); !errors.Is(err, transcript.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	after, _ := store.List(ctx)
	if !reflect.DeepEqual(before.Sessions, after.Sessions) {
		t.Fatalf("listing changed: %+v -> %+v", before.Sessions, after.Sessions)
	}

	if err := store.Delete(ctx, "keep"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := store.Load(ctx, "keep"); !errors.Is(err, transcript.ErrSessionNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
}

func TestPreviewTruncates(t *testing.T) {
	messages := []chat.Message{
		{Role: chat.RoleAssistant, Content: strings.Repeat("a", 60)},
		{Role: chat.RoleUser, Content: "short"},
	}
	want := "Q: short\nA: " + strings.Repeat("a", 50) + "..."
	if got := transcript.Preview(messages); got != want {
		t.Fatalf("Preview() = %q, want %q", got, want)
	}
}
