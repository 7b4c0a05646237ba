package models

import (
	"fmt"
	"time"
)

// Message represents an individual entry within a conversation. It contains the participant's role,
// the text content and the time the message was appended. A message is never modified once it is part
// of a conversation.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time

	// Error is set when the message is an assistant entry produced from a failed model call.
	Error bool
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleSystem represents the instruction entry that establishes the model's role. It is sent ahead of
	// the history on every request and is never stored in a conversation.
	RoleSystem Role = "system"
	// RoleUser represents a message typed by the principal or taken from a prepared template prompt.
	RoleUser Role = "user"
	// RoleAssistant represents a reply from the model, or a visible error in place of one.
	RoleAssistant Role = "assistant"
)

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSystem, RoleUser, RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}
