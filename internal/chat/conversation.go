// Package chat holds session-scoped conversational state: the bounded
// conversation history and the session container the command loop owns.
package chat

// MaxEntries bounds the conversation to the most recent entries. Older
// entries are dropped first, never summarized.
const MaxEntries = 20

// Speaker identifies who produced a conversation entry.
type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerAI   Speaker = "AI"
)

// Entry is one turn half: either the user's text or the model's reply.
type Entry struct {
	Speaker Speaker
	Text    string
}

// Conversation is an append-only, FIFO-truncated sequence of entries.
type Conversation struct {
	entries []Entry
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendTurn records a user message and the model's reply, evicting the
// oldest entries beyond MaxEntries.
func (c *Conversation) AppendTurn(userText, aiText string) {
	c.entries = append(c.entries,
		Entry{Speaker: SpeakerUser, Text: userText},
		Entry{Speaker: SpeakerAI, Text: aiText},
	)
	if overflow := len(c.entries) - MaxEntries; overflow > 0 {
		c.entries = c.entries[overflow:]
	}
}

// Entries returns the retained entries, oldest first.
func (c *Conversation) Entries() []Entry {
	return c.entries
}

// Len returns the number of retained entries.
func (c *Conversation) Len() int {
	return len(c.entries)
}

// Clear removes all entries.
func (c *Conversation) Clear() {
	c.entries = nil
}
