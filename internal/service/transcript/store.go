package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

const (
	fileExt       = ".json"
	titleRunes    = 30
	previewRunes  = 50
	ellipsis      = "..."
	untitledTitle = "Untitled Chat"
)

// legacyLayouts are accepted when reading timestamps written without a zone.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// record is the on-disk document, one file per session id.
type record struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Timestamp string         `json:"timestamp,omitempty"`
	Messages  []chat.Message `json:"messages"`
}

// storedRecord mirrors record for decoding so a missing messages field is detectable.
type storedRecord struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Timestamp string          `json:"timestamp"`
	Messages  *[]chat.Message `json:"messages"`
}

// Result is the outcome of reading one record during a scan.
type Result struct {
	Summary chat.Summary
	Err     error
}

// Listing is the aggregate of a scan: readable summaries, most recent first,
// plus the records that were skipped.
type Listing struct {
	Sessions []chat.Summary
	Errors   []error
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store persists transcripts as JSON files keyed by session id.
// Writers to the same id are not coordinated across processes; last write wins.
type Store struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

// NewStore prepares dir for use, creating it when missing.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("transcript directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the full transcript of session, overwriting any previous copy.
// A transcript without user content is refused with ErrNothingToSave.
func (s *Store) Save(_ context.Context, session chat.Session) (chat.Session, error) {
	path, err := s.pathFor(session.ID)
	if err != nil {
		return chat.Session{}, err
	}
	if !chat.HasUserContent(session.Messages) {
		return chat.Session{}, ErrNothingToSave
	}

	title := strings.TrimSpace(session.Title)
	if title == "" {
		title = DeriveTitle(session.Messages)
	}
	savedAt := s.now()

	data, err := json.MarshalIndent(record{
		ID:        session.ID,
		Title:     title,
		Timestamp: savedAt.Format(time.RFC3339Nano),
		Messages:  session.Messages,
	}, "", "  ")
	if err != nil {
		return chat.Session{}, fmt.Errorf("encode transcript %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := filepath.Join(s.dir, "."+session.ID+fileExt+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return chat.Session{}, &StorageError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return chat.Session{}, &StorageError{Op: "write", Path: path, Err: err}
	}

	log.Printf("[transcript] saved session=%s messages=%d title=%q", session.ID, len(session.Messages), title)
	return chat.Session{
		ID:        session.ID,
		Title:     title,
		CreatedAt: savedAt,
		Messages:  chat.Clone(session.Messages),
	}, nil
}

// Load reads the transcript stored under id.
func (s *Store) Load(_ context.Context, id string) (chat.Session, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return chat.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := readRecord(id, path)
	if err != nil {
		return chat.Session{}, err
	}

	createdAt, _ := parseTimestamp(rec.Timestamp)
	return chat.Session{
		ID:        id,
		Title:     titleOrDefault(rec.Title),
		CreatedAt: createdAt,
		Messages:  *rec.Messages,
	}, nil
}

// Delete removes the transcript stored under id.
func (s *Store) Delete(_ context.Context, id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrSessionNotFound
		}
		return &StorageError{Op: "remove", Path: path, Err: err}
	}

	log.Printf("[transcript] deleted session=%s", id)
	return nil
}

// Scan reads every record and reports each one independently; a corrupt file
// yields an errored Result instead of aborting the scan.
func (s *Store) Scan(_ context.Context) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &StorageError{Op: "scan", Path: s.dir, Err: err}
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}

		id := strings.TrimSuffix(name, fileExt)
		rec, err := readRecord(id, filepath.Join(s.dir, name))
		if err != nil {
			results = append(results, Result{Summary: chat.Summary{ID: id}, Err: err})
			continue
		}

		createdAt, _ := parseTimestamp(rec.Timestamp)
		results = append(results, Result{Summary: chat.Summary{
			ID:        id,
			Title:     titleOrDefault(rec.Title),
			CreatedAt: createdAt,
			Preview:   Preview(*rec.Messages),
		}})
	}
	return results, nil
}

// List returns summaries ordered by save time, most recent first. Records
// without a usable timestamp sort as oldest.
func (s *Store) List(ctx context.Context) (Listing, error) {
	results, err := s.Scan(ctx)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Sessions: make([]chat.Summary, 0, len(results))}
	for _, res := range results {
		if res.Err != nil {
			log.Printf("[transcript] skipping record %s: %v", res.Summary.ID, res.Err)
			listing.Errors = append(listing.Errors, res.Err)
			continue
		}
		listing.Sessions = append(listing.Sessions, res.Summary)
	}

	sort.SliceStable(listing.Sessions, func(i, j int) bool {
		return listing.Sessions[i].CreatedAt.After(listing.Sessions[j].CreatedAt)
	})
	return listing, nil
}

func (s *Store) pathFor(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+fileExt), nil
}

func readRecord(id, path string) (*storedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}

	var rec storedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}
	if rec.Messages == nil {
		return nil, &ParseError{ID: id, Err: errors.New("missing messages field")}
	}
	return &rec, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func titleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return untitledTitle
	}
	return title
}

// DeriveTitle builds a title from the first user message.
func DeriveTitle(messages []chat.Message) string {
	first, ok := chat.FirstByRole(messages, chat.RoleUser)
	if !ok {
		return untitledTitle
	}
	head, _ := truncate(first.Content, titleRunes)
	return head + ellipsis
}

// Preview summarises the opening question and answer of a transcript.
func Preview(messages []chat.Message) string {
	if len(messages) == 0 {
		return "No messages"
	}

	var b strings.Builder
	if msg, ok := chat.FirstByRole(messages, chat.RoleUser); ok {
		b.WriteString("Q: ")
		b.WriteString(clip(msg.Content, previewRunes))
	}
	if msg, ok := chat.FirstByRole(messages, chat.RoleAssistant); ok {
		b.WriteString("\nA: ")
		b.WriteString(clip(msg.Content, previewRunes))
	}
	return b.String()
}

func clip(s string, n int) string {
	head, cut := truncate(s, n)
	if cut {
		return head + ellipsis
	}
	return head
}

func truncate(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]), true
}
