package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	asistenkepsek "github.com/MegaGrindStone/asisten-kepsek"
	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
	"github.com/tmaxmax/go-sse"
	"github.com/yuin/goldmark"
)

// CallLister lists recorded model calls, most recent first.
type CallLister interface {
	Calls(ctx context.Context, limit int) ([]models.CallRecord, error)
}

// Config holds the collaborators and options of Main.
type Config struct {
	// Gateway answers the chat. A nil Gateway disables the chat and the page shows DisabledReason.
	Gateway        session.Gateway
	DisabledReason string
	// CredentialEnv names the environment variable holding the provider's API key, shown as a hint on
	// the page. Empty when the provider needs no key.
	CredentialEnv string

	// CallLog is optional; without it /api/calls answers 404.
	CallLog CallLister

	// Models lists the selectable model identifiers. The default settings' model is always selectable.
	Models      []string
	Defaults    models.Settings
	MaxSessions int
}

// Main handles the core functionality of the assistant: it owns the live sessions, renders the page and
// its partials, runs conversation turns through the gateway and pushes every session change to the
// session's open pages over server-sent events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template
	markdown  goldmark.Markdown

	sessions *session.Registry
	gateway  session.Gateway
	callLog  CallLister

	disabledReason string
	credentialEnv  string
	models         []string

	logger *slog.Logger
}

const (
	errLoggerKey = "err"

	sessionCookieName = "kepsek_session"

	defaultDisabledReason = "OPENAI_API_KEY belum disetel pada environment. Set sebelum menggunakan Asisten AI."
)

// SSE event types for real-time updates.
var chatSSEType = sse.Type("chat")

// NewMain creates a new Main instance. It parses the HTML templates from the embedded filesystem, sets
// up the SSE server so that each page subscribes to the topic of its own session, and creates the
// session registry whose change notifications are published on that topic.
func NewMain(cfg Config, logger *slog.Logger) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(
		asistenkepsek.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger = logger.With(slog.String("module", "handlers"))

	m := Main{
		sseSrv: &sse.Server{
			OnSession: func(w http.ResponseWriter, r *http.Request) ([]string, bool) {
				c, err := r.Cookie(sessionCookieName)
				if err != nil || c.Value == "" {
					http.Error(w, "Session is required", http.StatusBadRequest)
					return nil, false
				}
				return []string{sse.DefaultTopic, sessionTopic(c.Value)}, true
			},
			Logger: func(*http.Request) *slog.Logger {
				return logger
			},
		},
		templates:      tmpl,
		markdown:       goldmark.New(),
		gateway:        cfg.Gateway,
		callLog:        cfg.CallLog,
		disabledReason: cfg.DisabledReason,
		credentialEnv:  cfg.CredentialEnv,
		models:         selectableModels(cfg.Models, cfg.Defaults.Model),
		logger:         logger,
	}
	if m.disabledReason == "" {
		m.disabledReason = defaultDisabledReason
	}

	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 256
	}
	// The copy of m captured here has everything publish needs; it never touches the registry.
	publisher := m
	m.sessions, err = session.NewRegistry(maxSessions, cfg.Defaults, publisher.publish, logger)
	if err != nil {
		return Main{}, err
	}

	if m.gateway == nil {
		m.logger.Warn("Model gateway disabled", slog.String("reason", m.disabledReason))
	}

	return m, nil
}

func selectableModels(models []string, defaultModel string) []string {
	for _, mdl := range models {
		if mdl == defaultModel {
			return models
		}
	}
	return append([]string{defaultModel}, models...)
}

func sessionTopic(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// HandleSSE streams the session's change notifications.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// publish renders the chat panel of s and sends it to every page subscribed to the session.
func (m Main) publish(s *session.Session) {
	panel, err := m.renderChatPanel(s)
	if err != nil {
		m.logger.Error("Failed to render chat panel",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
		return
	}

	msg := sse.Message{
		Type: chatSSEType,
	}
	msg.AppendData(panel)
	if err := m.sseSrv.Publish(&msg, sessionTopic(s.ID())); err != nil {
		m.logger.Error("Failed to publish chat panel",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
	}
}

func (m Main) renderChatPanel(s *session.Session) (string, error) {
	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, "chat_panel", m.chatPanelData(s)); err != nil {
		return "", fmt.Errorf("failed to execute chat_panel template: %w", err)
	}
	return sb.String(), nil
}

// session returns the caller's session, starting a new one and setting its cookie when the request
// carries no live session.
func (m Main) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		id = c.Value
	}

	s, created := m.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close message to all
// connected clients and waits up to 5 seconds for connections to terminate. After the timeout, any
// remaining connections are forcefully closed.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("closeChat")}
	// An SSE event must carry data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := m.sseSrv.Shutdown(ctx)
	if errors.Is(err, sse.ErrProviderClosed) {
		return nil
	}
	return err
}
