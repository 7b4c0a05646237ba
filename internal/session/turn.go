package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
)

// Gateway issues one chat completion call to an external language model and returns the generated
// text.
type Gateway interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

var (
	// ErrBusy is returned by Submit when another turn of the same session is still waiting for the model.
	ErrBusy = errors.New("a reply is still being generated for this session")
	// ErrGatewayDisabled is returned by Submit when no gateway is configured, usually because the API
	// key is missing. The conversation is left untouched.
	ErrGatewayDisabled = errors.New("model gateway is disabled: API key is not set")
	// ErrEmptyMessage is returned by Submit for blank input.
	ErrEmptyMessage = errors.New("message is required")
)

// ErrorReplyPrefix starts the assistant entry that replaces a failed reply.
const ErrorReplyPrefix = "Terjadi kesalahan saat memanggil model: "

// Submit runs one conversation turn. It appends text as a user entry, sends the system prompt, the
// messages that preceded this turn and text to gw, and appends the reply as an assistant entry.
//
// A failing model call never fails the turn: the error is appended as an assistant entry tagged as an
// error and returned as that entry, so the failure is visible in the transcript and the session stays
// usable. Submit only returns an error for blank input, a disabled gateway, or a concurrent turn; in
// those cases nothing is appended.
func (s *Session) Submit(ctx context.Context, gw Gateway, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if gw == nil {
		return models.Message{}, ErrGatewayDisabled
	}
	if !s.turn.TryLock() {
		return models.Message{}, ErrBusy
	}
	defer s.turn.Unlock()

	s.mu.Lock()
	settings := s.settings
	epoch := s.epoch
	req := models.CompletionRequest{
		SystemPrompt: prompts.SystemPrompt(settings.Language),
		History:      slices.Clone(s.messages),
		UserText:     text,
		Model:        settings.Model,
		Temperature:  settings.Temperature,
		MaxTokens:    settings.MaxTokens,
	}
	s.appendLocked(models.RoleUser, text, false)
	s.mu.Unlock()
	s.changed()

	reply, err := gw.Complete(ctx, req)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return models.Message{}, nil
	}
	var msg models.Message
	if err != nil {
		msg = s.appendLocked(models.RoleAssistant, fmt.Sprintf("%s%v", ErrorReplyPrefix, err), true)
	} else {
		msg = s.appendLocked(models.RoleAssistant, reply, false)
	}
	s.mu.Unlock()
	s.changed()

	return msg, nil
}
