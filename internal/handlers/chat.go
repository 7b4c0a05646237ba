package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
)

// HandleChat runs one conversation turn with the "message" form field and answers with the updated
// chat panel. The request blocks until the model replies or fails; a failed model call still answers
// 200, with the error shown as an assistant entry.
func (m Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)
	m.submit(w, r, s, r.FormValue("message"))
}

// HandleUsePending sends the prompt prepared by a template form as the next user message. The prompt is
// consumed: using it a second time finds nothing to send.
func (m Main) HandleUsePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)
	if m.gateway == nil {
		http.Error(w, m.disabledReason, http.StatusServiceUnavailable)
		return
	}

	prompt := s.ConsumePendingPrompt()
	if prompt == "" {
		http.Error(w, "No prepared prompt", http.StatusBadRequest)
		return
	}

	if !m.submit(w, r, s, prompt) {
		// The turn never started, keep the prompt for another try.
		s.RestorePendingPrompt(prompt)
	}
}

// submit runs the turn and writes the response. It reports whether the turn ran.
func (m Main) submit(w http.ResponseWriter, r *http.Request, s *session.Session, text string) bool {
	_, err := s.Submit(r.Context(), m.gateway, text)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		http.Error(w, "Message is required", http.StatusBadRequest)
		return false
	case errors.Is(err, session.ErrGatewayDisabled):
		http.Error(w, m.disabledReason, http.StatusServiceUnavailable)
		return false
	case errors.Is(err, session.ErrBusy):
		http.Error(w, "Jawaban sebelumnya masih diproses", http.StatusConflict)
		return false
	case err != nil:
		m.logger.Error("Failed to submit message",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}

	m.writeChatPanel(w, s)
	return true
}

// HandleReset starts a new conversation in the caller's session.
func (m Main) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)
	s.Reset()
	m.logger.Info("Conversation reset", slog.String("sessionID", s.ID()))

	m.writeChatPanel(w, s)
}

func (m Main) writeChatPanel(w http.ResponseWriter, s *session.Session) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := m.templates.ExecuteTemplate(w, "chat_panel", m.chatPanelData(s)); err != nil {
		m.logger.Error("Failed to render chat panel",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
