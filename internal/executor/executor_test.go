package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mason/internal/directive"
)

func newTestExecutor() (*Executor, *[]time.Duration) {
	var slept []time.Duration
	ex := New()
	ex.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}
	return ex, &slept
}

func TestRunAppliesParsedDirectives(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ex, _ := newTestExecutor()
	response := "```\n### FILE: a/b.txt\nX\n```\n"

	result, err := ex.Run(context.Background(), "create it", response, func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("chat should not be called when the response parses")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.txt"}, result.FilesWritten)

	data, err := os.ReadFile(filepath.Join(dir, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "X", string(data))
}

func TestRunRetriesWithAugmentedPrompt(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ex, slept := newTestExecutor()

	var prompts []string
	chat := func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "```\n### FOLDER: fixed\n```\n", nil
	}

	result, err := ex.Run(context.Background(), "original prompt", "no blocks here", chat)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed"}, result.FoldersCreated)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "original prompt")
	assert.Contains(t, prompts[0], "could not be parsed")

	require.Len(t, *slept, 1)
	assert.Equal(t, 2*time.Second, (*slept)[0])
}

func TestRunExhaustsRetriesWithoutMutation(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ex, slept := newTestExecutor()

	calls := 0
	chat := func(ctx context.Context, prompt string) (string, error) {
		calls++
		return fmt.Sprintf("still not parsable %d", calls), nil
	}

	result, err := ex.Run(context.Background(), "prompt", "garbage", chat)
	assert.Nil(t, result)

	var exhausted *RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, "still not parsable 2", exhausted.LastResponse)

	// 3 attempts total means 2 re-issued round-trips and 2 backoffs,
	// doubling from the 2s base.
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)

	// Nothing was written.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunPropagatesChatFailure(t *testing.T) {
	ex, _ := newTestExecutor()

	chat := func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("transport down")
	}

	_, err := ex.Run(context.Background(), "prompt", "garbage", chat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport down")
}

func TestApplyFolderIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ex, _ := newTestExecutor()
	directives := []directive.Directive{
		directive.Folder{Path: "out"},
		directive.Folder{Path: "out"},
	}

	result := ex.Apply(directives)
	assert.Equal(t, []string{"out", "out"}, result.FoldersCreated)
	assert.Empty(t, result.Skipped)
}

func TestApplyFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ex, _ := newTestExecutor()

	ex.Apply([]directive.Directive{directive.File{Path: "f.txt", Content: "old"}})
	ex.Apply([]directive.Directive{directive.File{Path: "f.txt", Content: "new"}})

	data, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestApplySkipsFailedDirectiveAndContinues(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// A file where a parent directory is expected makes MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocked"), []byte("x"), 0o644))

	ex, _ := newTestExecutor()
	result := ex.Apply([]directive.Directive{
		directive.File{Path: "blocked/inner.txt", Content: "nope"},
		directive.File{Path: "ok.txt", Content: "fine"},
	})

	assert.Equal(t, []string{"blocked/inner.txt"}, result.Skipped)
	assert.Equal(t, []string{"ok.txt"}, result.FilesWritten)
}
