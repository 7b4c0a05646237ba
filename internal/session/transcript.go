package session

import (
	"strings"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
)

// TranscriptFileName is the name under which a transcript is offered for download.
const TranscriptFileName = "transkrip_asisten_kepsek.txt"

// Transcript renders messages as plain text, one "ROLE:\ncontent\n" block per message in conversation
// order, blocks separated by an empty line. System entries are left out.
func Transcript(messages []models.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			continue
		}
		role := "ASSISTANT"
		if m.Role == models.RoleUser {
			role = "USER"
		}
		blocks = append(blocks, role+":\n"+m.Content+"\n")
	}
	return strings.Join(blocks, "\n")
}

// Transcript renders the session's conversation. See Transcript.
func (s *Session) Transcript() string {
	return Transcript(s.Messages())
}
