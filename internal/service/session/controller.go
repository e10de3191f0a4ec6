package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

// Greeting seeds every new conversation. It is not user content.
const Greeting = "👋 Hello! I'm Chatbot. How can I help you today?"

var (
	ErrEmptyInput     = errors.New("message is empty")
	ErrTurnInFlight   = errors.New("a reply is still being generated")
	ErrNoTurnInFlight = errors.New("no turn in flight")
	ErrStaleTurn      = errors.New("turn belongs to a conversation that was replaced")
	ErrInvalidFormat  = errors.New("invalid chat format: missing 'messages' field")
)

// State 表示当前会话所处的阶段。
type State int

const (
	Idle State = iota
	AwaitingCompletion
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingCompletion:
		return "awaiting_completion"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Persister is the part of the transcript store the controller needs.
type Persister interface {
	Save(ctx context.Context, session chat.Session) (chat.Session, error)
	Load(ctx context.Context, id string) (chat.Session, error)
}

// Turn identifies an accepted user submission awaiting its reply.
type Turn struct {
	SessionID string
	UserText  string
	epoch     uint64
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	ID         string         `json:"id"`
	Messages   []chat.Message `json:"messages"`
	Processing bool           `json:"processing"`
}

// Option customises a Controller.
type Option func(*Controller)

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns the current conversation: its id, its messages and the
// processing flag. At most one turn is in flight at a time.
type Controller struct {
	mu       sync.Mutex
	store    Persister
	id       string
	messages []chat.Message
	state    State
	// epoch changes whenever the conversation is replaced so late replies can be discarded.
	epoch uint64
	newID func() string
	now   func() time.Time
}

// NewController starts with a fresh conversation.
func NewController(store Persister, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset(c.newID(), []chat.Message{{Role: chat.RoleAssistant, Content: Greeting}})
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:         c.id,
		Messages:   chat.Clone(c.messages),
		Processing: c.state == AwaitingCompletion,
	}
}

// State reports whether a turn is in flight.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit appends the user's message and opens a turn.
func (c *Controller) Submit(text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AwaitingCompletion {
		return Turn{}, ErrTurnInFlight
	}

	c.messages = append(c.messages, chat.Message{Role: chat.RoleUser, Content: text})
	c.state = AwaitingCompletion
	return Turn{SessionID: c.id, UserText: text, epoch: c.epoch}, nil
}

// History returns the messages visible to the turn, ending with its user message.
func (c *Controller) History(turn Turn) ([]chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.epoch != c.epoch {
		return nil, ErrStaleTurn
	}
	return chat.Clone(c.messages), nil
}

// CompleteTurn appends the assistant reply (or the failure text standing in for it)
// and closes the turn.
func (c *Controller) CompleteTurn(turn Turn, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.epoch != c.epoch {
		log.Printf("[session] dropping reply for replaced session=%s", turn.SessionID)
		return ErrStaleTurn
	}
	if c.state != AwaitingCompletion {
		return ErrNoTurnInFlight
	}

	c.messages = append(c.messages, chat.Message{Role: chat.RoleAssistant, Content: content})
	c.state = Idle
	return nil
}

// StartNew discards the current conversation and seeds a greeting.
func (c *Controller) StartNew() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset(c.newID(), []chat.Message{{Role: chat.RoleAssistant, Content: Greeting}})
	log.Printf("[session] started session=%s", c.id)
	return c.id
}

// LoadExisting replaces the conversation with a stored transcript. A failed
// load leaves the current conversation intact.
func (c *Controller) LoadExisting(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AwaitingCompletion {
		return ErrTurnInFlight
	}

	stored, err := c.store.Load(ctx, id)
	if err != nil {
		return err
	}

	c.reset(stored.ID, stored.Messages)
	log.Printf("[session] loaded session=%s messages=%d", c.id, len(c.messages))
	return nil
}

// Save persists the current conversation under its id.
func (c *Controller) Save(ctx context.Context, title string) (chat.Session, error) {
	c.mu.Lock()
	current := chat.Session{ID: c.id, Title: title, Messages: chat.Clone(c.messages)}
	c.mu.Unlock()

	return c.store.Save(ctx, current)
}

type importDocument struct {
	Messages *[]chat.Message `json:"messages"`
	Metadata *struct {
		ChatID string `json:"chat_id"`
	} `json:"metadata"`
}

// ImportFrom replaces the conversation with an exported document. The embedded
// chat id is reused when present.
func (c *Controller) ImportFrom(data []byte) error {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode chat import: %w", err)
	}
	if doc.Messages == nil {
		return ErrInvalidFormat
	}
	for i, msg := range *doc.Messages {
		switch msg.Role {
		case chat.RoleSystem, chat.RoleUser, chat.RoleAssistant:
		default:
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidFormat, i, msg.Role)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AwaitingCompletion {
		return ErrTurnInFlight
	}

	id := ""
	if doc.Metadata != nil {
		id = strings.TrimSpace(doc.Metadata.ChatID)
	}
	if id == "" {
		id = c.newID()
	}

	c.reset(id, *doc.Messages)
	log.Printf("[session] imported session=%s messages=%d", c.id, len(c.messages))
	return nil
}

// ExportCurrent snapshots the conversation as a portable record.
func (c *Controller) ExportCurrent() chat.ExportRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	return chat.ExportRecord{
		Messages: chat.Clone(c.messages),
		Metadata: chat.ExportMetadata{
			CreatedAt: c.now().Format(time.RFC3339Nano),
			ChatID:    c.id,
		},
	}
}

// reset must be called with mu held.
func (c *Controller) reset(id string, messages []chat.Message) {
	c.id = id
	c.messages = chat.Clone(messages)
	if c.messages == nil {
		c.messages = []chat.Message{}
	}
	c.state = Idle
	c.epoch++
}
