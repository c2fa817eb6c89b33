// Package history stores parsed conversation state per session. It is the
// message-store collaborator behind the dispatch.Sink interface: the
// dispatcher pushes updates, the store decides how they merge into the
// transcript.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/timeline"
)

// ErrSessionNotFound is returned when a session id has no conversation.
var ErrSessionNotFound = errors.New("history: session not found")

// DefaultMaxMessages bounds each conversation unless overridden.
const DefaultMaxMessages = 200

// Record is one stored message.
type Record struct {
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Status    string           `json:"status"`
	Steps     []timeline.Entry `json:"steps,omitempty"`
	Streaming bool             `json:"streaming"`
}

// Conversation is the stored transcript of one session.
type Conversation struct {
	SessionID string   `json:"sessionId"`
	Records   []Record `json:"records"`
}

type session struct {
	conv Conversation
	// live indexes the assistant record still receiving updates, -1 when
	// the next content starts a new record.
	live int
}

// Store is a bounded in-memory conversation store keyed by session id.
// Safe for concurrent use.
type Store struct {
	sessions map[string]*session
	saveDir  string
	max      int
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMessages bounds each conversation to n records, dropping the
// oldest on overflow.
func WithMaxMessages(n int) Option {
	return func(s *Store) { s.max = n }
}

// WithSaveDir enables JSON persistence under dir.
func WithSaveDir(dir string) Option {
	return func(s *Store) { s.saveDir = dir }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		max:      DefaultMaxMessages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser records a user message and closes out any live assistant record.
func (s *Store) AddUser(sessionID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	sess.live = -1
	sess.push(Record{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   text,
		Status:    dispatch.StatusCompleted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, s.max)
}

// Append adds delta text to the session's live assistant record, starting
// one if none is open.
func (s *Store) Append(sessionID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.session(sessionID).liveRecord(s.max)
	r.Content += delta
	r.UpdatedAt = time.Now()
}

// Replace overwrites the live assistant record's content. Used for
// full-mode parsers that re-emit the whole transcript each chunk.
func (s *Store) Replace(sessionID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.session(sessionID).liveRecord(s.max)
	r.Content = content
	r.UpdatedAt = time.Now()
}

// SetSteps replaces the step timeline on the live assistant record.
func (s *Store) SetSteps(sessionID string, steps []timeline.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.session(sessionID).liveRecord(s.max)
	r.Steps = steps
	r.UpdatedAt = time.Now()
}

// Apply implements dispatch.Sink. Content merges by update mode: full
// replaces, delta appends, and updates without content leave prior text
// intact. A completed status closes the live record so the next content
// starts a fresh one.
func (s *Store) Apply(u dispatch.MessageUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(u.SessionID)
	r := sess.liveRecord(s.max)

	if u.HasContent {
		switch u.Mode {
		case convo.ModeFull:
			r.Content = u.Content
		default:
			r.Content += u.Content
		}
	}
	if u.Steps != nil {
		r.Steps = u.Steps
	}
	r.Status = u.Status
	r.Streaming = u.IsStreaming
	r.UpdatedAt = time.Now()

	if u.Status == dispatch.StatusCompleted {
		sess.live = -1
	}
}

// Snapshot returns a copy of the session's conversation.
func (s *Store) Snapshot(sessionID string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return Conversation{}, ErrSessionNotFound
	}
	conv := Conversation{SessionID: sessionID}
	conv.Records = append(conv.Records, sess.conv.Records...)
	return conv, nil
}

// SessionIDs returns the ids of all in-memory conversations.
func (s *Store) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) session(id string) *session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{conv: Conversation{SessionID: id}, live: -1}
		s.sessions[id] = sess
	}
	return sess
}

// liveRecord returns the record currently receiving updates, opening a new
// assistant record when none is live.
func (sess *session) liveRecord(max int) *Record {
	if sess.live >= 0 && sess.live < len(sess.conv.Records) {
		return &sess.conv.Records[sess.live]
	}
	sess.push(Record{
		ID:        uuid.NewString(),
		Role:      convo.RoleAssistant,
		Status:    dispatch.StatusRunning,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, max)
	sess.live = len(sess.conv.Records) - 1
	return &sess.conv.Records[sess.live]
}

// push appends r, dropping the oldest record when the bound is exceeded.
func (sess *session) push(r Record, max int) {
	sess.conv.Records = append(sess.conv.Records, r)
	if max > 0 && len(sess.conv.Records) > max {
		over := len(sess.conv.Records) - max
		sess.conv.Records = append(sess.conv.Records[:0], sess.conv.Records[over:]...)
		if sess.live >= 0 {
			sess.live -= over
			if sess.live < 0 {
				sess.live = -1
			}
		}
	}
}
