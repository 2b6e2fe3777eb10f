package chat

import (
	"time"

	"github.com/google/uuid"

	"mason/internal/ingest"
)

// Session is the explicitly constructed, explicitly passed container for
// everything a command mutates: conversation history, the added-file set,
// and the last raw model response. Lifecycle: create on start, mutate per
// command, clear on /reset.
type Session struct {
	ID           string
	StartTime    time.Time
	Conversation *Conversation
	AddedFiles   *ingest.AddedFileContext
	LastResponse string
}

// NewSession creates a fresh session.
func NewSession(maxTotalSize int64) *Session {
	return &Session{
		ID:           uuid.NewString(),
		StartTime:    time.Now(),
		Conversation: NewConversation(),
		AddedFiles:   ingest.NewAddedFileContext(maxTotalSize),
	}
}

// Reset clears conversation history, added files and the last response.
// The session keeps its identity.
func (s *Session) Reset() {
	s.Conversation.Clear()
	s.AddedFiles.Clear()
	s.LastResponse = ""
}
