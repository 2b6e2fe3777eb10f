package edit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mason/internal/ingest"
)

type fakeConfirmer struct {
	answer bool
	calls  int
	diffs  []string
}

func (f *fakeConfirmer) Confirm(path, diff string) (bool, error) {
	f.calls++
	f.diffs = append(f.diffs, diff)
	return f.answer, nil
}

func instructionsFor(t *testing.T, paths ...string) *InstructionMap {
	t.Helper()
	var response string
	for _, p := range paths {
		response += fmt.Sprintf("File: %s\nrewrite it\n", p)
	}
	return ParseInstructions(response)
}

func TestApplyConfirmedWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	added := ingest.NewAddedFileContext(0)
	added.Set(path, "hello")

	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		assert.Equal(t, path, p)
		assert.Equal(t, "hello", original)
		return "goodbye", nil
	}

	confirmer := &fakeConfirmer{answer: true}
	applier := NewApplier(rewrite, confirmer)

	outcomes := applier.Apply(context.Background(), instructionsFor(t, path), added)
	assert.Equal(t, OutcomeApplied, outcomes[path])
	assert.Equal(t, 1, confirmer.calls)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "goodbye", string(data))

	// The staged copy tracks the write.
	staged, _ := added.Get(path)
	assert.Equal(t, "goodbye", staged)
}

func TestApplyDeclinedLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	added := ingest.NewAddedFileContext(0)
	added.Set(path, "original")

	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		return "replacement", nil
	}

	applier := NewApplier(rewrite, &fakeConfirmer{answer: false})
	outcomes := applier.Apply(context.Background(), instructionsFor(t, path), added)
	assert.Equal(t, OutcomeDeclined, outcomes[path])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	staged, _ := added.Get(path)
	assert.Equal(t, "original", staged)
}

func TestApplyIdenticalRewriteSkipsConfirmation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	added := ingest.NewAddedFileContext(0)
	added.Set(path, "content")

	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		// Trailing whitespace still counts as identical.
		return "content\n", nil
	}

	confirmer := &fakeConfirmer{answer: true}
	applier := NewApplier(rewrite, confirmer)

	outcomes := applier.Apply(context.Background(), instructionsFor(t, path), added)
	assert.Equal(t, OutcomeUnchanged, outcomes[path])
	assert.Equal(t, 0, confirmer.calls)
}

func TestApplyUnmentionedFilesPassThrough(t *testing.T) {
	dir := t.TempDir()
	mentioned := filepath.Join(dir, "a.txt")
	untouched := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(mentioned, []byte("aaa"), 0o644))
	require.NoError(t, os.WriteFile(untouched, []byte("bbb"), 0o644))

	added := ingest.NewAddedFileContext(0)
	added.Set(mentioned, "aaa")
	added.Set(untouched, "bbb")

	rewrites := 0
	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		rewrites++
		return "AAA", nil
	}

	applier := NewApplier(rewrite, &fakeConfirmer{answer: true})
	outcomes := applier.Apply(context.Background(), instructionsFor(t, mentioned), added)

	assert.Equal(t, 1, rewrites)
	assert.Len(t, outcomes, 1)
	_, present := outcomes[untouched]
	assert.False(t, present)

	data, err := os.ReadFile(untouched)
	require.NoError(t, err)
	assert.Equal(t, "bbb", string(data))
}

func TestApplyRewriteFailureContinuesBatch(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(good, []byte("y"), 0o644))

	added := ingest.NewAddedFileContext(0)
	added.Set(bad, "x")
	added.Set(good, "y")

	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		if p == bad {
			return "", fmt.Errorf("transport failed")
		}
		return "Y", nil
	}

	applier := NewApplier(rewrite, &fakeConfirmer{answer: true})
	outcomes := applier.Apply(context.Background(), instructionsFor(t, bad, good), added)

	assert.Equal(t, OutcomeFailed, outcomes[bad])
	assert.Equal(t, OutcomeApplied, outcomes[good])
}

func TestApplyUnknownFileFails(t *testing.T) {
	added := ingest.NewAddedFileContext(0)

	rewrite := func(ctx context.Context, p, original, instructions string) (string, error) {
		t.Fatal("rewrite should not run for files that were never staged")
		return "", nil
	}

	applier := NewApplier(rewrite, &fakeConfirmer{answer: true})
	outcomes := applier.Apply(context.Background(), instructionsFor(t, "ghost.txt"), added)
	assert.Equal(t, OutcomeFailed, outcomes["ghost.txt"])
}

func TestSummary(t *testing.T) {
	outcomes := map[string]Outcome{
		"a": OutcomeApplied,
		"b": OutcomeApplied,
		"c": OutcomeDeclined,
		"d": OutcomeUnchanged,
		"e": OutcomeFailed,
	}
	assert.Equal(t, "2 applied, 1 declined, 1 unchanged, 1 failed", Summary(outcomes))
}
