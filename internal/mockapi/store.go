// Package mockapi implements an in-memory AgentSight backend for local
// development and demos. It serves the REST endpoints the SDK talks to and
// keeps everything in mutex-guarded maps.
package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a conversation does not exist or is
// soft-deleted.
var ErrNotFound = errors.New("conversation not found")

// Conversation is one stored conversation record.
type Conversation struct {
	PK             int            `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Name           string         `json:"name,omitempty"`
	Environment    string         `json:"environment,omitempty"`
	IsUsed         bool           `json:"is_used"`
	IsMarked       bool           `json:"is_marked"`
	Deleted        bool           `json:"deleted"`
	CustomerID     string         `json:"customer_id,omitempty"`
	Device         string         `json:"device,omitempty"`
	Language       string         `json:"language,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Record is a tracked item stored against a conversation: a message, an
// action log, a button click or an attachment batch.
type Record struct {
	ID             string         `json:"id"`
	ConversationPK int            `json:"conversation"`
	Kind           string         `json:"type"`
	Timestamp      string         `json:"timestamp"`
	Data           map[string]any `json:"data"`
}

// Feedback is one end-user feedback entry.
type Feedback struct {
	ID             string `json:"id"`
	ConversationPK int    `json:"conversation"`
	Sentiment      string `json:"sentiment"`
	Comment        string `json:"comment,omitempty"`
	Source         string `json:"source,omitempty"`
}

// Store holds all mock backend state.
type Store struct {
	mu            sync.RWMutex
	nextPK        int
	conversations map[string]*Conversation // keyed by conversation_id
	byPK          map[int]*Conversation
	records       map[int][]Record // keyed by conversation pk
	feedbacks     []Feedback
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nextPK:        1,
		conversations: make(map[string]*Conversation),
		byPK:          make(map[int]*Conversation),
		records:       make(map[int][]Record),
	}
}

// GetOrCreate returns the conversation with the given id, creating it from
// the request data when missing.
func (s *Store) GetOrCreate(conversationID string, data map[string]any) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[conversationID]; ok {
		if used, found := data["is_used"].(bool); found && used {
			conv.IsUsed = true
		}
		return conv
	}

	conv := &Conversation{
		PK:             s.nextPK,
		ConversationID: conversationID,
		StartedAt:      time.Now().UTC(),
	}
	s.nextPK++
	applyConversationData(conv, data)

	s.conversations[conversationID] = conv
	s.byPK[conv.PK] = conv
	return conv
}

func applyConversationData(conv *Conversation, data map[string]any) {
	if v, ok := data["environment"].(string); ok {
		conv.Environment = v
	}
	if v, ok := data["is_used"].(bool); ok {
		conv.IsUsed = v
	}
	if v, ok := data["customer_id"].(string); ok {
		conv.CustomerID = v
	}
	if v, ok := data["device"].(string); ok {
		conv.Device = v
	}
	if v, ok := data["language"].(string); ok {
		conv.Language = v
	}
	if v, ok := data["metadata"].(map[string]any); ok {
		conv.Metadata = v
	}
}

// Lookup finds a live conversation by its client-side id.
func (s *Store) Lookup(conversationID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok || conv.Deleted {
		return nil, ErrNotFound
	}
	return conv, nil
}

// ByPK finds a live conversation by primary key.
func (s *Store) ByPK(pk int) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byPK[pk]
	if !ok || conv.Deleted {
		return nil, ErrNotFound
	}
	return conv, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	ConversationID  string
	CustomerID      string
	Device          string
	Language        string
	Name            string
	MessageContains string
	IsMarked        *bool
	IncludeDeleted  bool
	Page            int
	PageSize        int
}

// ListResult is a paginated conversation listing.
type ListResult struct {
	Count   int            `json:"count"`
	Results []Conversation `json:"results"`
}

// List returns conversations matching the filter, ordered by primary key.
func (s *Store) List(filter ListFilter) ListResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Conversation
	for _, conv := range s.byPK {
		if conv.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.ConversationID != "" && conv.ConversationID != filter.ConversationID {
			continue
		}
		if filter.CustomerID != "" && conv.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Device != "" && conv.Device != filter.Device {
			continue
		}
		if filter.Language != "" && conv.Language != filter.Language {
			continue
		}
		if filter.Name != "" && !strings.Contains(conv.Name, filter.Name) {
			continue
		}
		if filter.IsMarked != nil && conv.IsMarked != *filter.IsMarked {
			continue
		}
		if filter.MessageContains != "" && !s.messageContainsLocked(conv.PK, filter.MessageContains) {
			continue
		}
		matches = append(matches, *conv)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].PK < matches[j].PK })

	total := len(matches)
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return ListResult{Count: total, Results: matches[start:end]}
}

func (s *Store) messageContainsLocked(pk int, needle string) bool {
	for _, rec := range s.records[pk] {
		if rec.Kind != "question" && rec.Kind != "answer" {
			continue
		}
		if content, ok := rec.Data["content"].(string); ok && strings.Contains(content, needle) {
			return true
		}
	}
	return false
}

// Rename sets the conversation's display name.
func (s *Store) Rename(pk int, name string) (*Conversation, error) {
	return s.mutate(pk, func(conv *Conversation) {
		conv.Name = name
	})
}

// Mark flags or unflags the conversation.
func (s *Store) Mark(pk int, marked bool) (*Conversation, error) {
	return s.mutate(pk, func(conv *Conversation) {
		conv.IsMarked = marked
	})
}

// SoftDelete hides the conversation from listings and lookups without
// removing its records.
func (s *Store) SoftDelete(pk int) (*Conversation, error) {
	return s.mutate(pk, func(conv *Conversation) {
		conv.Deleted = true
	})
}

// Update applies a partial update; absent keys leave fields untouched.
func (s *Store) Update(pk int, data map[string]any) (*Conversation, error) {
	return s.mutate(pk, func(conv *Conversation) {
		if v, ok := data["name"].(string); ok {
			conv.Name = v
		}
		if v, ok := data["is_marked"].(bool); ok {
			conv.IsMarked = v
		}
		if v, ok := data["customer_id"].(string); ok {
			conv.CustomerID = v
		}
		if v, ok := data["device"].(string); ok {
			conv.Device = v
		}
		if v, ok := data["language"].(string); ok {
			conv.Language = v
		}
		if v, ok := data["metadata"].(map[string]any); ok {
			conv.Metadata = v
		}
	})
}

func (s *Store) mutate(pk int, fn func(*Conversation)) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byPK[pk]
	if !ok || conv.Deleted {
		return nil, ErrNotFound
	}
	fn(conv)
	return conv, nil
}

// AddRecord stores a tracked item for a conversation, creating the
// conversation implicitly when the item names one that does not exist yet.
func (s *Store) AddRecord(conversationID, kind, timestamp string, data map[string]any) Record {
	conv := s.GetOrCreate(conversationID, nil)

	rec := Record{
		ID:             uuid.New().String(),
		ConversationPK: conv.PK,
		Kind:           kind,
		Timestamp:      timestamp,
		Data:           data,
	}

	s.mu.Lock()
	s.records[conv.PK] = append(s.records[conv.PK], rec)
	s.mu.Unlock()
	return rec
}

// Records returns a conversation's stored items of the given kind; an empty
// kind returns all of them.
func (s *Store) Records(pk int, kind string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records[pk] {
		if kind == "" || rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// AddFeedback stores an end-user feedback entry.
func (s *Store) AddFeedback(pk int, sentiment, comment, source string) Feedback {
	fb := Feedback{
		ID:             uuid.New().String(),
		ConversationPK: pk,
		Sentiment:      sentiment,
		Comment:        comment,
		Source:         source,
	}

	s.mu.Lock()
	s.feedbacks = append(s.feedbacks, fb)
	s.mu.Unlock()
	return fb
}
