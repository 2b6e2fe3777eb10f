package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstructions(t *testing.T) {
	response := "File: src/main.go\n" +
		"Instructions:\n" +
		"1. Rename the handler\n" +
		"2. Add error logging\n" +
		"\n" +
		"File: src/util.go\n" +
		"Instructions:\n" +
		"1. Remove the dead branch\n"

	m := ParseInstructions(response)
	require.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"src/main.go", "src/util.go"}, m.Paths())

	block, ok := m.Get("src/main.go")
	require.True(t, ok)
	assert.Equal(t, "Instructions:\n1. Rename the handler\n2. Add error logging", block)

	block, ok = m.Get("src/util.go")
	require.True(t, ok)
	assert.Equal(t, "Instructions:\n1. Remove the dead branch", block)
}

func TestParseInstructionsNoMarkers(t *testing.T) {
	m := ParseInstructions("Everything looks fine, no changes needed.")
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Paths())
}

func TestParseInstructionsIgnoresPreamble(t *testing.T) {
	response := "Here is my analysis of the request.\n" +
		"File: a.txt\n" +
		"Change the greeting\n"

	m := ParseInstructions(response)
	require.Equal(t, 1, m.Len())

	block, _ := m.Get("a.txt")
	assert.Equal(t, "Change the greeting", block)
}

func TestParseInstructionsDuplicateMarkerKeepsLast(t *testing.T) {
	response := "File: a.txt\nfirst\nFile: a.txt\nsecond\n"

	m := ParseInstructions(response)
	require.Equal(t, 1, m.Len())

	block, _ := m.Get("a.txt")
	assert.Equal(t, "second", block)
}

func TestParseInstructionsEmptyResponse(t *testing.T) {
	m := ParseInstructions("")
	assert.Equal(t, 0, m.Len())
}
