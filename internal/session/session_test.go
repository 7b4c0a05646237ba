package session_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	reply string
	err   error

	requests []models.CompletionRequest

	// block, when set, is waited on before replying.
	block chan struct{}
	// entered, when set, is closed once Complete is entered.
	entered chan struct{}
}

func (m *mockGateway) Complete(_ context.Context, req models.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.entered != nil {
		close(m.entered)
	}
	if m.block != nil {
		<-m.block
	}
	return m.reply, m.err
}

func newSession(opts ...session.Option) *session.Session {
	return session.New("test", models.DefaultSettings(), opts...)
}

func TestAppendPreservesOrder(t *testing.T) {
	s := newSession()

	roles := []models.Role{models.RoleUser, models.RoleAssistant, models.RoleUser, models.RoleAssistant, models.RoleUser}
	for i, r := range roles {
		s.Append(r, fmt.Sprintf("msg-%d", i))
	}

	msgs := s.Messages()
	require.Len(t, msgs, len(roles))
	for i, m := range msgs {
		assert.Equal(t, roles[i], m.Role)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
		assert.NotEmpty(t, m.ID)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := newSession()
	s.Append(models.RoleUser, "original")

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", s.Messages()[0].Content)
}

func TestReset(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("%d messages", n), func(t *testing.T) {
			s := newSession()
			for i := 0; i < n; i++ {
				s.Append(models.RoleUser, "x")
			}
			s.SetPendingPrompt("kept")

			s.Reset()

			assert.Empty(t, s.Messages())
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, "kept", s.PendingPrompt())
		})
	}
}

func TestPendingPrompt(t *testing.T) {
	s := newSession()

	assert.Equal(t, "", s.ConsumePendingPrompt())

	s.SetPendingPrompt("first")
	s.SetPendingPrompt("second")
	assert.Equal(t, "second", s.PendingPrompt())

	assert.Equal(t, "second", s.ConsumePendingPrompt())
	assert.Equal(t, "", s.ConsumePendingPrompt())
}

func TestRestorePendingPrompt(t *testing.T) {
	s := newSession()

	s.SetPendingPrompt("old")
	taken := s.ConsumePendingPrompt()
	assert.True(t, s.RestorePendingPrompt(taken))
	assert.Equal(t, "old", s.PendingPrompt())

	taken = s.ConsumePendingPrompt()
	s.SetPendingPrompt("new")
	assert.False(t, s.RestorePendingPrompt(taken), "a newer prompt must not be overwritten")
	assert.Equal(t, "new", s.PendingPrompt())

	s.ConsumePendingPrompt()
	assert.False(t, s.RestorePendingPrompt(""))
	assert.Equal(t, "", s.PendingPrompt())
}

func TestUpdateSettings(t *testing.T) {
	s := newSession()

	next := models.Settings{Language: models.LanguageEnglish, Model: "gpt-3.5-turbo", Temperature: 0.65, MaxTokens: 1024}
	require.NoError(t, s.UpdateSettings(next))
	assert.Equal(t, next, s.Settings())

	bad := next
	bad.MaxTokens = 10
	assert.ErrorIs(t, s.UpdateSettings(bad), models.ErrInvalidSettings)
	assert.Equal(t, next, s.Settings())
}

func TestNotify(t *testing.T) {
	var calls int
	s := newSession(session.WithNotify(func(got *session.Session) {
		calls++
		// The callback must be able to read the session.
		_ = got.Messages()
	}))

	s.Append(models.RoleUser, "a")
	s.SetPendingPrompt("p")
	s.ConsumePendingPrompt()
	s.ConsumePendingPrompt()
	s.Reset()

	assert.Equal(t, 4, calls)
}

func TestSubmit(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s := newSession(session.WithClock(func() time.Time { return now }))
	s.Append(models.RoleUser, "earlier question")
	s.Append(models.RoleAssistant, "earlier answer")

	gw := &mockGateway{reply: "Tentu, berikut draf suratnya."}
	reply, err := s.Submit(context.Background(), gw, "Buatkan surat")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Tentu, berikut draf suratnya.", reply.Content)
	assert.False(t, reply.Error)
	assert.Equal(t, now, reply.Timestamp)

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleUser, msgs[2].Role)
	assert.Equal(t, "Buatkan surat", msgs[2].Content)
	assert.Equal(t, reply, msgs[3])

	require.Len(t, gw.requests, 1)
	req := gw.requests[0]
	settings := models.DefaultSettings()
	assert.Equal(t, prompts.SystemPrompt(settings.Language), req.SystemPrompt)
	assert.Equal(t, settings.Model, req.Model)
	assert.Equal(t, settings.Temperature, req.Temperature)
	assert.Equal(t, settings.MaxTokens, req.MaxTokens)
	assert.Equal(t, "Buatkan surat", req.UserText)

	// The current turn is sent once, as the last entry, after the prior history.
	sent := req.Messages()
	require.Len(t, sent, 4)
	assert.Equal(t, models.RoleSystem, sent[0].Role)
	assert.Equal(t, "earlier question", sent[1].Content)
	assert.Equal(t, "earlier answer", sent[2].Content)
	assert.Equal(t, "Buatkan surat", sent[3].Content)
}

func TestSubmitUsesLanguageSetting(t *testing.T) {
	s := newSession()
	settings := models.DefaultSettings()
	settings.Language = models.LanguageEnglish
	require.NoError(t, s.UpdateSettings(settings))

	gw := &mockGateway{reply: "ok"}
	_, err := s.Submit(context.Background(), gw, "hello")
	require.NoError(t, err)

	assert.Equal(t, prompts.SystemPrompt(models.LanguageEnglish), gw.requests[0].SystemPrompt)
}

func TestSubmitGatewayFailure(t *testing.T) {
	s := newSession()
	failing := &mockGateway{err: errors.New("401 unauthorized")}

	reply, err := s.Submit(context.Background(), failing, "Halo")
	require.NoError(t, err)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.True(t, msgs[1].Error)
	assert.True(t, strings.HasPrefix(msgs[1].Content, session.ErrorReplyPrefix))
	assert.Contains(t, msgs[1].Content, "401 unauthorized")
	assert.Equal(t, msgs[1], reply)

	// The session keeps working after the failure.
	working := &mockGateway{reply: "Halo juga"}
	_, err = s.Submit(context.Background(), working, "Halo lagi")
	require.NoError(t, err)

	msgs = s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Halo juga", msgs[3].Content)
	assert.False(t, msgs[3].Error)
}

func TestSubmitRejected(t *testing.T) {
	tests := []struct {
		name    string
		gw      session.Gateway
		text    string
		wantErr error
	}{
		{name: "blank text", gw: &mockGateway{}, text: "  \n", wantErr: session.ErrEmptyMessage},
		{name: "disabled gateway", gw: nil, text: "Halo", wantErr: session.ErrGatewayDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			_, err := s.Submit(context.Background(), tt.gw, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.Messages())
		})
	}
}

func TestSubmitBusy(t *testing.T) {
	s := newSession()
	gw := &mockGateway{reply: "done", block: make(chan struct{}), entered: make(chan struct{})}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Submit(context.Background(), gw, "first")
	}()
	<-gw.entered

	_, err := s.Submit(context.Background(), &mockGateway{reply: "second"}, "second")
	assert.ErrorIs(t, err, session.ErrBusy)

	close(gw.block)
	wg.Wait()

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "done", msgs[1].Content)
}

func TestSubmitResetDuringTurn(t *testing.T) {
	s := newSession()
	gw := &mockGateway{reply: "late", block: make(chan struct{}), entered: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Submit(context.Background(), gw, "question")
	}()
	<-gw.entered

	s.Reset()
	close(gw.block)
	<-done

	assert.Empty(t, s.Messages())
}

func TestRegistry(t *testing.T) {
	var notified []string
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := session.NewRegistry(2, models.DefaultSettings(), func(s *session.Session) {
		notified = append(notified, s.ID())
	}, logger)
	require.NoError(t, err)

	first, created := r.GetOrCreate("")
	require.True(t, created)
	assert.Equal(t, models.DefaultSettings(), first.Settings())

	again, created := r.GetOrCreate(first.ID())
	assert.False(t, created)
	assert.Same(t, first, again)

	unknown, created := r.GetOrCreate("does-not-exist")
	assert.True(t, created)
	assert.NotEqual(t, "does-not-exist", unknown.ID())

	first.Append(models.RoleUser, "hi")
	assert.Equal(t, []string{first.ID()}, notified)

	// A third session evicts the least recently used one.
	_, _ = r.GetOrCreate(first.ID())
	_, _ = r.GetOrCreate("")
	assert.Equal(t, 2, r.Len())
	_, ok := r.Get(unknown.ID())
	assert.False(t, ok)
	_, ok = r.Get(first.ID())
	assert.True(t, ok)

	r.End(first.ID())
	_, ok = r.Get(first.ID())
	assert.False(t, ok)
}

func TestNewRegistryInvalid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := session.NewRegistry(0, models.DefaultSettings(), nil, logger)
	assert.Error(t, err)

	bad := models.DefaultSettings()
	bad.Temperature = 2
	_, err = session.NewRegistry(4, bad, nil, logger)
	assert.ErrorIs(t, err, models.ErrInvalidSettings)
}
