package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mason/internal/config"
	"mason/internal/model"
	"mason/internal/ui"
)

// scriptedBackend serves canned chat completions and records every
// request body it sees.
type scriptedBackend struct {
	mu        sync.Mutex
	requests  []string
	responses []string
}

func (s *scriptedBackend) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, string(body))
	content := ""
	if len(s.responses) > 0 {
		content = s.responses[0]
		s.responses = s.responses[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}],"usage":{"total_tokens":3}}`, content)
}

func (s *scriptedBackend) requestBodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func newTestApp(t *testing.T, backend *scriptedBackend, input string) (*App, *bytes.Buffer) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")

	srv := httptest.NewServer(http.HandlerFunc(backend.handler))
	t.Cleanup(srv.Close)

	cfg := config.Defaults()
	cfg.Model.Name = "openai/gpt-4o"
	cfg.API.OpenAIBaseURL = srv.URL

	manager, err := model.NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	var out bytes.Buffer
	printer := ui.NewPrinter(&out, ui.NewStyles())
	return New(cfg, manager, nil, strings.NewReader(input), printer), &out
}

func TestReviewWithPathsKeepsChatContextTransient(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("lib.go", []byte("package lib\n\nconst Answer = 42\n"), 0o644))

	backend := &scriptedBackend{responses: []string{"Looks solid."}}
	a, _ := newTestApp(t, backend, "")

	require.NoError(t, a.cmdReview(context.Background(), []string{"lib.go"}))

	// The reviewed file rode along for this one round-trip only.
	assert.Equal(t, 0, a.session.AddedFiles.Len())

	bodies := backend.requestBodies()
	require.Len(t, bodies, 1)
	assert.Equal(t, 1, strings.Count(bodies[0], "Answer = 42"))
}

func TestEditDeclinedAtBatchGateIssuesNoRewrites(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("f.txt", []byte("v1\n"), 0o644))

	backend := &scriptedBackend{responses: []string{
		"File: f.txt\nInstructions:\nChange v1 to v2",
	}}
	a, out := newTestApp(t, backend, "bump the version\nno\n")

	require.NoError(t, a.cmdEdit(context.Background(), []string{"f.txt"}))

	// The proposed instructions were shown before anything was applied.
	assert.Contains(t, out.String(), "v1 to v2")
	assert.Contains(t, out.String(), "Edit cancelled.")

	// Only the instruction round-trip went out.
	assert.Len(t, backend.requestBodies(), 1)

	data, err := os.ReadFile("f.txt")
	require.NoError(t, err)
	assert.Equal(t, "v1\n", string(data))
}

func TestEditConfirmedAtBatchGateAppliesRewrites(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("f.txt", []byte("v1\n"), 0o644))

	backend := &scriptedBackend{responses: []string{
		"File: f.txt\nInstructions:\nChange v1 to v2",
		"v2",
	}}
	a, _ := newTestApp(t, backend, "bump the version\nyes\nyes\n")

	require.NoError(t, a.cmdEdit(context.Background(), []string{"f.txt"}))

	// Instruction round-trip plus one rewrite round-trip.
	assert.Len(t, backend.requestBodies(), 2)

	data, err := os.ReadFile("f.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", strings.TrimSpace(string(data)))
}
