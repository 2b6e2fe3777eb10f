// Package edit implements the edit path: split model output into
// per-file instruction blocks, obtain full rewrites, and apply them
// behind diff review.
package edit

import "strings"

const fileMarker = "File: "

// InstructionMap holds the per-file edit instructions parsed from one
// model response, keyed by path in marker order.
type InstructionMap struct {
	order        []string
	instructions map[string]string
}

// Get returns the instruction block for a path.
func (m *InstructionMap) Get(path string) (string, bool) {
	if m == nil {
		return "", false
	}
	ins, ok := m.instructions[path]
	return ins, ok
}

// Paths returns the mentioned paths in marker order.
func (m *InstructionMap) Paths() []string {
	if m == nil {
		return nil
	}
	return m.order
}

// Len returns the number of files mentioned.
func (m *InstructionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// ParseInstructions splits the raw model text on "File: <path>" marker
// lines. Lines before the first marker are ignored; a response with no
// markers yields an empty map, meaning no files need changes.
func ParseInstructions(response string) *InstructionMap {
	m := &InstructionMap{instructions: make(map[string]string)}

	var current string
	var lines []string

	flush := func() {
		if current == "" {
			return
		}
		block := strings.Join(lines, "\n")
		if _, exists := m.instructions[current]; !exists {
			m.order = append(m.order, current)
		}
		m.instructions[current] = block
		lines = nil
	}

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, fileMarker) {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, fileMarker))
			continue
		}
		if current != "" && trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	flush()

	return m
}
