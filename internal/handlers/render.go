package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
)

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time

	Error bool
}

type chatPanelData struct {
	Messages       []message
	PendingPrompt  string
	GatewayEnabled bool
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Format("15:04")
	},
}

func (m Main) chatPanelData(s *session.Session) chatPanelData {
	msgs := s.Messages()
	out := make([]message, len(msgs))
	for i, msg := range msgs {
		out[i] = message{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   m.renderContent(msg),
			Timestamp: msg.Timestamp,
			Error:     msg.Error,
		}
	}
	return chatPanelData{
		Messages:       out,
		PendingPrompt:  s.PendingPrompt(),
		GatewayEnabled: m.gateway != nil,
	}
}

// renderContent renders assistant replies as Markdown. User input and error entries are shown as typed.
func (m Main) renderContent(msg models.Message) template.HTML {
	if msg.Role != models.RoleAssistant || msg.Error {
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}

	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(msg.Content), &buf); err != nil {
		m.logger.Error("Failed to render markdown",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}
	// Raw HTML in the reply is omitted by goldmark unless the unsafe renderer option is set.
	return template.HTML(buf.String())
}
