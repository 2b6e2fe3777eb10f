// Package executor drives the creation path: parse a model response into
// directives and apply them to the filesystem, retrying the round-trip
// when parsing fails.
package executor

import (
	"context"
	"fmt"
	"time"

	"mason/internal/directive"
	"mason/internal/fileutil"
	"mason/internal/logging"
)

const (
	maxAttempts = 3
	baseDelay   = 2 * time.Second
)

// ChatFunc re-issues the creation round-trip with an augmented prompt
// and returns the raw model text.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

// Result summarizes one successful application.
type Result struct {
	FoldersCreated []string
	FilesWritten   []string
	Skipped        []string
}

// RetriesExhaustedError is returned when every parse attempt failed. The
// last response is carried for human inspection; no filesystem mutation
// has happened.
type RetriesExhaustedError struct {
	Attempts     int
	LastResponse string
	LastErr      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("failed to parse model response after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.LastErr }

// Executor applies parsed directives in order. The sleep function is a
// field so tests can observe backoff without waiting.
type Executor struct {
	sleep func(time.Duration)
}

func New() *Executor {
	return &Executor{sleep: time.Sleep}
}

// Run parses response and applies the resulting directives. On parse
// failure it re-issues the round-trip via chat with the parse error
// appended to the prompt, backing off between attempts. Filesystem
// writes only begin once a response parses in full.
func (ex *Executor) Run(ctx context.Context, prompt, response string, chat ChatFunc) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		directives, err := directive.Parse(response)
		if err == nil {
			return ex.Apply(directives), nil
		}
		lastErr = err
		logging.Warn("model response did not parse", "attempt", attempt, "error", err)

		if attempt == maxAttempts {
			break
		}

		ex.sleep(baseDelay << (attempt - 1))

		augmented := fmt.Sprintf("%s\n\nYour previous response could not be parsed: %v\nRespond again following the required format exactly.", prompt, err)
		response, err = chat(ctx, augmented)
		if err != nil {
			return nil, fmt.Errorf("retry round-trip: %w", err)
		}
	}

	return nil, &RetriesExhaustedError{Attempts: maxAttempts, LastResponse: response, LastErr: lastErr}
}

// Apply executes directives in parse order. Filesystem failures are
// logged and skip that directive only.
func (ex *Executor) Apply(directives []directive.Directive) *Result {
	res := &Result{}
	for _, d := range directives {
		switch d := d.(type) {
		case directive.Folder:
			if err := fileutil.EnsureDir(d.Path); err != nil {
				logging.Error("failed to create folder", "path", d.Path, "error", err)
				res.Skipped = append(res.Skipped, d.Path)
				continue
			}
			logging.Info("created folder", "path", d.Path)
			res.FoldersCreated = append(res.FoldersCreated, d.Path)

		case directive.File:
			if err := fileutil.EnsureParentDir(d.Path); err != nil {
				logging.Error("failed to create parent directory", "path", d.Path, "error", err)
				res.Skipped = append(res.Skipped, d.Path)
				continue
			}
			if err := fileutil.AtomicWrite(d.Path, []byte(d.Content), 0o644); err != nil {
				logging.Error("failed to write file", "path", d.Path, "error", err)
				res.Skipped = append(res.Skipped, d.Path)
				continue
			}
			logging.Info("wrote file", "path", d.Path, "size", len(d.Content))
			res.FilesWritten = append(res.FilesWritten, d.Path)
		}
	}
	return res
}
