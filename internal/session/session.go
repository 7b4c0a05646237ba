// Package session holds the conversation state of one principal's chat: the ordered messages, the
// adjustable generation settings and the prompt prepared by a template form.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/google/uuid"
)

// Session is the state of one interactive conversation. Messages are append-only: an entry is never
// reordered or modified after it is appended, and the only way to remove entries is Reset, which drops
// all of them. A Session is safe for concurrent use, but at most one model call runs at a time (see
// Submit).
type Session struct {
	id string

	mu            sync.Mutex
	messages      []models.Message
	settings      models.Settings
	pendingPrompt string
	// epoch is incremented by Reset so that a reply arriving after a reset is not appended to the
	// fresh conversation.
	epoch uint64

	turn sync.Mutex

	now    func() time.Time
	notify func(*Session)
}

// Option configures a Session.
type Option func(*Session)

// WithNotify registers fn to be called after every state mutation. fn is called without any session
// lock held, so it may read the session.
func WithNotify(fn func(*Session)) Option {
	return func(s *Session) {
		s.notify = fn
	}
}

// WithClock overrides the clock used to timestamp messages.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates an empty session with the given ID and starting settings.
func New(id string, settings models.Settings, opts ...Option) *Session {
	s := &Session{
		id:       id,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds a message with the given role and content to the end of the conversation and returns it.
func (s *Session) Append(role models.Role, content string) models.Message {
	s.mu.Lock()
	msg := s.appendLocked(role, content, false)
	s.mu.Unlock()

	s.changed()
	return msg
}

// AppendError adds an assistant entry tagged as an error.
func (s *Session) AppendError(content string) models.Message {
	s.mu.Lock()
	msg := s.appendLocked(models.RoleAssistant, content, true)
	s.mu.Unlock()

	s.changed()
	return msg
}

func (s *Session) appendLocked(role models.Role, content string, isErr bool) models.Message {
	msg := models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
		Error:     isErr,
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the conversation in chronological order.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.messages)
}

// Len returns the number of messages in the conversation.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.messages)
}

// Reset drops every message. Settings and the pending prompt are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.messages = nil
	s.epoch++
	s.mu.Unlock()

	s.changed()
}

// SetPendingPrompt stores text as the prompt prepared by a template, replacing any previous one.
func (s *Session) SetPendingPrompt(text string) {
	s.mu.Lock()
	s.pendingPrompt = text
	s.mu.Unlock()

	s.changed()
}

// RestorePendingPrompt puts back a prompt taken with ConsumePendingPrompt, unless another prompt was
// prepared since. It reports whether text was restored.
func (s *Session) RestorePendingPrompt(text string) bool {
	s.mu.Lock()
	if s.pendingPrompt != "" || text == "" {
		s.mu.Unlock()
		return false
	}
	s.pendingPrompt = text
	s.mu.Unlock()

	s.changed()
	return true
}

// PendingPrompt returns the prepared prompt without clearing it.
func (s *Session) PendingPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingPrompt
}

// ConsumePendingPrompt returns the prepared prompt and clears it, so a second call returns "".
func (s *Session) ConsumePendingPrompt() string {
	s.mu.Lock()
	p := s.pendingPrompt
	s.pendingPrompt = ""
	s.mu.Unlock()

	if p != "" {
		s.changed()
	}
	return p
}

// Settings returns the current generation settings.
func (s *Session) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

// UpdateSettings replaces the generation settings after validating them. Invalid settings leave the
// session unchanged.
func (s *Session) UpdateSettings(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.changed()
	return nil
}

func (s *Session) changed() {
	if s.notify != nil {
		s.notify(s)
	}
}
