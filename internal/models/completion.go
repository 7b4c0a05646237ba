package models

import (
	"slices"
	"time"
)

// CompletionRequest carries everything a gateway needs for one chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	// History holds the messages that preceded the current turn, in conversation order.
	History  []Message
	UserText string

	Model       string
	Temperature float64
	MaxTokens   int
}

// Messages returns the ordered request: the system entry first, then the history in its original
// order, then the new user entry.
func (r CompletionRequest) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: r.SystemPrompt})
	msgs = append(msgs, slices.Clone(r.History)...)
	msgs = append(msgs, Message{Role: RoleUser, Content: r.UserText})
	return msgs
}

// PromptChars returns the number of characters sent to the model.
func (r CompletionRequest) PromptChars() int {
	n := 0
	for _, m := range r.Messages() {
		n += len([]rune(m.Content))
	}
	return n
}

// CallRecord describes one gateway call. It deliberately carries no message content.
type CallRecord struct {
	ID          string        `json:"id"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	PromptChars int           `json:"prompt_chars"`
	ReplyChars  int           `json:"reply_chars"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
