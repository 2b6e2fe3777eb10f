// Package assemble merges conversation history and added-file contents
// into the single outbound message each round-trip sends.
package assemble

import (
	"fmt"
	"strings"

	"mason/internal/chat"
	"mason/internal/client"
	"mason/internal/ingest"
	"mason/internal/logging"
)

// Assembler builds outbound message sequences. The payload ceiling is
// advisory on the chat path; a request over it is logged, not rejected.
type Assembler struct {
	maxPayload int64
}

// New creates an assembler with the given advisory payload ceiling.
func New(maxPayload int64) *Assembler {
	return &Assembler{maxPayload: maxPayload}
}

// Assemble produces the outbound sequence for one round-trip. The
// added-file block comes first, then (for non-edit requests) the
// flattened history, then the new user text. Prior turns are linearized
// into the same single user message rather than sent as native
// multi-turn history; the adapters accept full sequences, so this is the
// only place to change if native multi-turn is ever adopted.
func (a *Assembler) Assemble(conv *chat.Conversation, added *ingest.AddedFileContext, userText string, isEdit bool) []client.Message {
	var b strings.Builder

	if added != nil && added.Len() > 0 {
		b.WriteString(FileBlock(added))
		b.WriteString("\n")

		if a.maxPayload > 0 && added.TotalSize() > a.maxPayload {
			logging.Warn("outbound payload exceeds advisory ceiling",
				"size", added.TotalSize(), "ceiling", a.maxPayload)
		}
	}

	if !isEdit && conv != nil && conv.Len() > 0 {
		b.WriteString(Flatten(conv))
		b.WriteString("\n")
		b.WriteString("User: ")
	}

	b.WriteString(userText)

	return []client.Message{{Role: client.RoleUser, Content: b.String()}}
}

// FileBlock renders the added files deterministically, in the order they
// were staged.
func FileBlock(added *ingest.AddedFileContext) string {
	var b strings.Builder
	b.WriteString("Added files:\n")
	for _, path := range added.Paths() {
		content, _ := added.Get(path)
		fmt.Fprintf(&b, "File: %s\nContent:\n%s\n\n", path, content)
	}
	return b.String()
}

// Flatten linearizes prior turns into alternating "User:"/"AI:" lines.
func Flatten(conv *chat.Conversation) string {
	var lines []string
	for _, e := range conv.Entries() {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Speaker, e.Text))
	}
	return strings.Join(lines, "\n")
}
