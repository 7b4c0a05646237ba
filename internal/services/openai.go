package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the session gateway for OpenAI's chat completion API.
type OpenAI struct {
	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance with the specified API key. An empty baseURL uses the
// official endpoint; any OpenAI-compatible endpoint may be given instead.
func NewOpenAI(apiKey, baseURL string, logger *slog.Logger) OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return OpenAI{
		client: goopenai.NewClientWithConfig(cfg),
		logger: logger.With(slog.String("module", "openai")),
	}
}

func openAIMessages(messages []models.Message) []goopenai.ChatCompletionMessage {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return msgs
}

// openAITemperature maps t to the request value. The request field is omitted when zero, which the API
// reads as its default of 1, so an explicit zero is sent as the smallest positive float instead.
func openAITemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Complete is a wrapper around the OpenAI chat completion API.
func (o OpenAI) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	oReq := goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    openAIMessages(req.Messages()),
		Temperature: openAITemperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	reqJSON, err := json.Marshal(oReq)
	if err == nil {
		o.logger.Debug("Request", slog.String("req", string(reqJSON)))
	}

	resp, err := o.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}
