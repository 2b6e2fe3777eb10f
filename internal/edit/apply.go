package edit

import (
	"context"
	"fmt"
	"strings"

	"mason/internal/fileutil"
	"mason/internal/ingest"
	"mason/internal/logging"
)

// RewriteFunc performs the per-file rewrite round-trip: given the
// original content and its instruction block, it returns the complete
// rewritten file.
type RewriteFunc func(ctx context.Context, path, original, instructions string) (string, error)

// Confirmer gates each write behind human review of a rendered diff.
type Confirmer interface {
	Confirm(path, diff string) (bool, error)
}

// Outcome reports what happened to one file during an edit pass.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota // identical rewrite, nothing to do
	OutcomeApplied
	OutcomeDeclined
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeApplied:
		return "applied"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Applier runs the apply contract over the files mentioned in an
// InstructionMap. Files not mentioned pass through untouched.
type Applier struct {
	rewrite RewriteFunc
	confirm Confirmer
}

func NewApplier(rewrite RewriteFunc, confirm Confirmer) *Applier {
	return &Applier{rewrite: rewrite, confirm: confirm}
}

// Apply processes each instructed file in marker order: rewrite
// round-trip, diff against the original, confirmation, atomic write.
// Per-file failures are logged and recorded; the batch continues.
func (a *Applier) Apply(ctx context.Context, instructions *InstructionMap, added *ingest.AddedFileContext) map[string]Outcome {
	outcomes := make(map[string]Outcome)

	for _, path := range instructions.Paths() {
		original, ok := added.Get(path)
		if !ok {
			logging.Warn("model mentioned a file that was never added", "path", path)
			outcomes[path] = OutcomeFailed
			continue
		}

		block, _ := instructions.Get(path)
		outcomes[path] = a.applyOne(ctx, path, original, block, added)
	}

	return outcomes
}

func (a *Applier) applyOne(ctx context.Context, path, original, instructions string, added *ingest.AddedFileContext) Outcome {
	rewritten, err := a.rewrite(ctx, path, original, instructions)
	if err != nil {
		logging.Error("rewrite round-trip failed", "path", path, "error", err)
		return OutcomeFailed
	}

	if strings.TrimSpace(rewritten) == strings.TrimSpace(original) {
		logging.Info("no changes proposed", "path", path)
		return OutcomeUnchanged
	}

	diff := UnifiedDiff(path, original, rewritten)
	ok, err := a.confirm.Confirm(path, diff)
	if err != nil {
		logging.Error("confirmation failed", "path", path, "error", err)
		return OutcomeFailed
	}
	if !ok {
		logging.Info("edit declined", "path", path)
		return OutcomeDeclined
	}

	if err := fileutil.EnsureParentDir(path); err != nil {
		logging.Error("failed to create parent directory", "path", path, "error", err)
		return OutcomeFailed
	}
	if err := fileutil.AtomicWrite(path, []byte(rewritten), 0o644); err != nil {
		logging.Error("failed to write file", "path", path, "error", err)
		return OutcomeFailed
	}

	// Keep the staged copy current so a follow-up edit diffs against
	// what is now on disk.
	added.Set(path, rewritten)

	logging.Info("applied edit", "path", path, "size", len(rewritten))
	return OutcomeApplied
}

// Summary renders a one-line human report of an edit pass.
func Summary(outcomes map[string]Outcome) string {
	var applied, declined, unchanged, failed int
	for _, o := range outcomes {
		switch o {
		case OutcomeApplied:
			applied++
		case OutcomeDeclined:
			declined++
		case OutcomeUnchanged:
			unchanged++
		case OutcomeFailed:
			failed++
		}
	}
	return fmt.Sprintf("%d applied, %d declined, %d unchanged, %d failed", applied, declined, unchanged, failed)
}
