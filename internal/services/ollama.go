package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the session gateway for a local Ollama server. It needs no API
// key, so a deployment without cloud credentials can still chat.
type Ollama struct {
	client *api.Client

	logger *slog.Logger
}

// NewOllama creates a new Ollama instance for the server at host.
func NewOllama(host string, logger *slog.Logger) (Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return Ollama{}, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return Ollama{
		client: api.NewClient(u, &http.Client{}),
		logger: logger.With(slog.String("module", "ollama")),
	}, nil
}

// Complete asks the Ollama model for a single, non-streamed reply to the conversation.
func (o Ollama) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	messages := req.Messages()
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	f := false
	chatReq := api.ChatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   &f,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	o.logger.Debug("Request",
		slog.String("model", req.Model),
		slog.Int("messages", len(msgs)))

	var reply string
	if err := o.client.Chat(ctx, &chatReq, func(res api.ChatResponse) error {
		reply += res.Message.Content
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	return reply, nil
}
