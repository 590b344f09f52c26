package timedquiz

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/sessions"
)

// DescriptorVersion is bumped whenever the saved session layout changes.
// Descriptors with any other version are discarded on load.
const DescriptorVersion = 2

// DescriptorKey is the well-known name the session descriptor is stored under
const DescriptorKey = "quiz-progress"

// Descriptor is the saved snapshot of an in-progress session, used to resume after
// a reload. AttemptID names the session in the result store, so a replayed or
// concurrent finish cannot store a second result. PendingResults carries results
// whose submission failed; they outlive the session part and are retried on the
// next Start.
type Descriptor struct {
	Version             int               `json:"version"`
	AttemptID           string            `json:"attemptId,omitempty"`
	SelectedQuestionIDs []string          `json:"selectedQuestionIds,omitempty"`
	CurrentIndex        int               `json:"currentIndex"`
	Answers             map[string]string `json:"answers,omitempty"`
	StartTime           time.Time         `json:"startTime"`
	PendingResults      []PendingResult   `json:"pendingResults,omitempty"`
}

// PendingResult is a finished attempt that has not reached the result store yet
type PendingResult struct {
	AttemptID  string    `json:"attemptId"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finishedAt"`
}

func init() {
	gob.Register(Descriptor{})
}

// HasSession reports whether the descriptor holds an in-progress session
func (d *Descriptor) HasSession() bool {
	return d != nil && len(d.SelectedQuestionIDs) > 0
}

// Clone returns a deep copy
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.SelectedQuestionIDs = slices.Clone(d.SelectedQuestionIDs)
	c.Answers = maps.Clone(d.Answers)
	c.PendingResults = slices.Clone(d.PendingResults)
	return &c
}

// Resolve maps the saved question ids onto bank. Every id must resolve, appear
// once, and the index and answers must refer to the selection; otherwise the
// descriptor is rejected with ErrDescriptorInvalid.
func (d *Descriptor) Resolve(bank []Question) ([]Question, error) {
	if !d.HasSession() {
		return nil, ErrNoSession
	}
	if d.Version != DescriptorVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrDescriptorInvalid, d.Version, DescriptorVersion)
	}
	if d.AttemptID == "" {
		return nil, fmt.Errorf("%w: missing attempt id", ErrDescriptorInvalid)
	}
	if d.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrDescriptorInvalid)
	}
	if d.CurrentIndex < 0 || d.CurrentIndex >= len(d.SelectedQuestionIDs) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrDescriptorInvalid, d.CurrentIndex)
	}

	byID := make(map[string]Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	selected := make([]Question, 0, len(d.SelectedQuestionIDs))
	seen := make(map[string]bool, len(d.SelectedQuestionIDs))
	for _, id := range d.SelectedQuestionIDs {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown question %s", ErrDescriptorInvalid, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: question %s selected twice", ErrDescriptorInvalid, id)
		}
		seen[id] = true
		selected = append(selected, q)
	}

	for id := range d.Answers {
		if !seen[id] {
			return nil, fmt.Errorf("%w: answer for unselected question %s", ErrDescriptorInvalid, id)
		}
	}
	return selected, nil
}

// DescriptorStore persists the single session descriptor of one test-taker.
// Load returns ErrNoSession when nothing has been saved.
type DescriptorStore interface {
	Load() (*Descriptor, error)
	Save(d *Descriptor) error
	Clear() error
}

// MemoryDescriptorStore keeps the descriptor in process memory
type MemoryDescriptorStore struct {
	mu    sync.Mutex
	d     *Descriptor
	saves int
}

// NewMemoryDescriptorStore creates an empty in-memory descriptor store
func NewMemoryDescriptorStore() *MemoryDescriptorStore {
	return &MemoryDescriptorStore{}
}

func (m *MemoryDescriptorStore) Load() (*Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.d == nil {
		return nil, ErrNoSession
	}
	return m.d.Clone(), nil
}

func (m *MemoryDescriptorStore) Save(d *Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d = d.Clone()
	m.saves++
	return nil
}

func (m *MemoryDescriptorStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d = nil
	return nil
}

// Saves returns how many times Save has been called
func (m *MemoryDescriptorStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FileDescriptorStore keeps the descriptor as a JSON file
type FileDescriptorStore struct {
	path string
}

// NewFileDescriptorStore creates a store writing to path
func NewFileDescriptorStore(path string) *FileDescriptorStore {
	return &FileDescriptorStore{path: path}
}

func (f *FileDescriptorStore) Load() (*Descriptor, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session descriptor: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorInvalid, err)
	}
	return &d, nil
}

func (f *FileDescriptorStore) Save(d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session descriptor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session descriptor: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session descriptor: %w", err)
	}
	return nil
}

func (f *FileDescriptorStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session descriptor: %w", err)
	}
	return nil
}

// SessionDescriptorStore keeps the descriptor in a gorilla session bound to one
// request/response pair. Save writes the session before the response body, so
// callers must finish all engine calls before writing output.
type SessionDescriptorStore struct {
	store sessions.Store
	r     *http.Request
	w     http.ResponseWriter
}

const descriptorValueKey = "descriptor"

// NewSessionDescriptorStore binds store to the current request
func NewSessionDescriptorStore(store sessions.Store, w http.ResponseWriter, r *http.Request) *SessionDescriptorStore {
	return &SessionDescriptorStore{store: store, r: r, w: w}
}

func (s *SessionDescriptorStore) session() (*sessions.Session, error) {
	session, err := s.store.Get(s.r, DescriptorKey)
	if err != nil {
		// A session that fails to decode (rotated key, truncated cookie) is
		// treated as garbage; gorilla still hands back a fresh session.
		return session, fmt.Errorf("%w: %v", ErrDescriptorInvalid, err)
	}
	return session, nil
}

func (s *SessionDescriptorStore) Load() (*Descriptor, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	v, ok := session.Values[descriptorValueKey]
	if !ok {
		return nil, ErrNoSession
	}
	d, ok := v.(Descriptor)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected value %T", ErrDescriptorInvalid, v)
	}
	return d.Clone(), nil
}

func (s *SessionDescriptorStore) Save(d *Descriptor) error {
	session, err := s.session()
	if session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	session.Values[descriptorValueKey] = *d.Clone()
	if err := session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionDescriptorStore) Clear() error {
	session, err := s.session()
	if session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	delete(session.Values, descriptorValueKey)
	if err := session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
