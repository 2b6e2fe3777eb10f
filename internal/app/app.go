// Package app runs the interactive session loop and dispatches slash
// commands to the creation, edit and ingestion pipelines.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"mason/internal/assemble"
	"mason/internal/chat"
	"mason/internal/config"
	"mason/internal/edit"
	"mason/internal/executor"
	"mason/internal/ingest"
	"mason/internal/logging"
	"mason/internal/model"
	"mason/internal/ui"
	"mason/internal/watcher"
)

// App owns the session loop. Everything mutable lives in the session;
// pipeline components are stateless collaborators.
type App struct {
	cfg       *config.Config
	manager   *model.Manager
	session   *chat.Session
	assembler *assemble.Assembler
	ingestor  *ingest.Ingestor
	executor  *executor.Executor
	watcher   *watcher.Watcher
	printer   *ui.Printer
	confirmer edit.Confirmer
	in        *bufio.Reader
}

// New wires an App from its collaborators. The watcher may be nil when
// change tracking is unavailable.
func New(cfg *config.Config, manager *model.Manager, w *watcher.Watcher, in io.Reader, printer *ui.Printer) *App {
	reader := bufio.NewReader(in)
	return &App{
		cfg:       cfg,
		manager:   manager,
		session:   chat.NewSession(cfg.Ingest.MaxTotalSize),
		assembler: assemble.New(cfg.Ingest.MaxTotalSize),
		ingestor:  ingest.NewIngestor(&cfg.Ingest, "."),
		executor:  executor.New(),
		watcher:   w,
		printer:   printer,
		confirmer: ui.NewLineConfirmer(reader, printer),
		in:        reader,
	}
}

// Run drives the read-dispatch loop until /quit or EOF.
func (a *App) Run(ctx context.Context) error {
	logging.Info("session started", "session_id", a.session.ID, "model", a.manager.Identifier())

	a.printer.Banner(fmt.Sprintf("mason · %s", a.manager.Identifier()))
	a.printer.Muted("Type your request, or /help for commands.")

	for {
		fmt.Print("You: ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "/quit" || line == "/exit" {
			return nil
		}

		if err := a.dispatch(ctx, line); err != nil {
			// Per-request failures never end the session.
			logging.Error("command failed", "input", line, "error", err)
			a.printer.Error("%v", err)
		}
	}
}

func (a *App) dispatch(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/help":
		a.printHelp()
		return nil
	case "/create":
		return a.cmdCreate(ctx, rest)
	case "/edit":
		return a.cmdEdit(ctx, strings.Fields(rest))
	case "/add":
		return a.cmdAdd(strings.Fields(rest))
	case "/review":
		return a.cmdReview(ctx, strings.Fields(rest))
	case "/planning":
		return a.cmdPlanning(ctx, rest)
	case "/debug":
		return a.cmdDebug()
	case "/copy":
		return a.cmdCopy()
	case "/reset":
		return a.cmdReset()
	case "/model":
		return a.cmdModel(rest)
	default:
		if strings.HasPrefix(cmd, "/") {
			return fmt.Errorf("unknown command %s", cmd)
		}
		return a.cmdChat(ctx, line)
	}
}

// chat performs one round-trip and records it. Edit-path round-trips
// skip history on the way out and are not recorded in the conversation.
func (a *App) chat(ctx context.Context, userText string, isEdit bool) (string, error) {
	a.refreshStale()
	messages := a.assembler.Assemble(a.session.Conversation, a.session.AddedFiles, userText, isEdit)

	resp, err := a.manager.ChatCompletion(ctx, messages)
	if err != nil {
		return "", err
	}

	a.session.LastResponse = resp.Content
	if !isEdit {
		a.session.Conversation.AppendTurn(userText, resp.Content)
	}

	if resp.Usage.TotalTokens > 0 {
		logging.Debug("round-trip complete", "tokens", resp.Usage.TotalTokens)
	}
	return resp.Content, nil
}

func (a *App) cmdChat(ctx context.Context, text string) error {
	response, err := a.chat(ctx, text, false)
	if err != nil {
		return err
	}
	a.printer.Markdown(response)
	return nil
}

func (a *App) cmdCreate(ctx context.Context, instruction string) error {
	if instruction == "" {
		return fmt.Errorf("usage: /create <instruction>")
	}

	prompt := fmt.Sprintf("%s\n\nUser request: %s", createPrompt, instruction)
	response, err := a.chat(ctx, prompt, false)
	if err != nil {
		return err
	}

	a.printer.Markdown(response)

	for {
		ok, err := a.askYesNo("Execute the file creation?")
		if err != nil {
			return err
		}
		if !ok {
			a.printer.Muted("File creation skipped.")
			return nil
		}

		result, err := a.executor.Run(ctx, prompt, response, func(ctx context.Context, retryPrompt string) (string, error) {
			return a.chat(ctx, retryPrompt, false)
		})
		if err == nil {
			for _, path := range result.FoldersCreated {
				a.printer.Success("Created folder %s", path)
			}
			for _, path := range result.FilesWritten {
				a.printer.Success("Created file %s", path)
			}
			for _, path := range result.Skipped {
				a.printer.Warning("Skipped %s", path)
			}
			return nil
		}

		// On exhausted parsing retries, show the last raw response and
		// let the user decide whether to start over.
		var exhausted *executor.RetriesExhaustedError
		if !errors.As(err, &exhausted) {
			return err
		}
		a.printer.Error("%v", err)
		a.printer.Muted("Last model response:")
		fmt.Println(exhausted.LastResponse)

		retry, rerr := a.askYesNo("Request a fresh creation response and try again?")
		if rerr != nil {
			return rerr
		}
		if !retry {
			return nil
		}

		response, err = a.chat(ctx, prompt, false)
		if err != nil {
			return err
		}
		a.printer.Markdown(response)
	}
}

func (a *App) cmdEdit(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("usage: /edit <path> [path...]")
	}

	if err := a.ingestor.Stage(paths, a.session.AddedFiles); err != nil {
		return err
	}
	if a.session.AddedFiles.Len() == 0 {
		return fmt.Errorf("no readable files to edit")
	}
	a.trackAdded()

	fmt.Print("Edit instruction: ")
	instruction, err := a.in.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read edit instruction: %w", err)
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		a.printer.Muted("No instruction given, nothing to do.")
		return nil
	}

	prompt := fmt.Sprintf("%s\n\nUser request: %s", editInstructionPrompt, instruction)
	response, err := a.chat(ctx, prompt, true)
	if err != nil {
		return err
	}

	instructions := edit.ParseInstructions(response)
	if instructions.Len() == 0 {
		a.printer.Muted("The model proposed no changes.")
		return nil
	}

	a.printer.Markdown(response)
	proceed, err := a.askYesNo(fmt.Sprintf("Apply these edit instructions to %d file(s)?", instructions.Len()))
	if err != nil {
		return err
	}
	if !proceed {
		a.printer.Muted("Edit cancelled.")
		return nil
	}

	applier := edit.NewApplier(a.rewriteFile, a.confirmer)
	outcomes := applier.Apply(ctx, instructions, a.session.AddedFiles)
	a.printer.Info("Edit pass: %s", edit.Summary(outcomes))
	return nil
}

// rewriteFile is the per-file rewrite round-trip of the edit path.
func (a *App) rewriteFile(ctx context.Context, path, original, instructions string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nOriginal File: %s\nContent:\n%s\n\nEdit Instructions:\n%s\n\nUpdated File Content:",
		applyEditsPrompt, path, original, instructions)

	messages := a.assembler.Assemble(nil, nil, prompt, true)
	resp, err := a.manager.ChatCompletion(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (a *App) cmdAdd(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("usage: /add <path> [path...]")
	}

	before := a.session.AddedFiles.Len()
	if err := a.ingestor.Stage(paths, a.session.AddedFiles); err != nil {
		return err
	}
	a.trackAdded()

	a.printer.Success("Added %d file(s), %d total in context (%dKB)",
		a.session.AddedFiles.Len()-before, a.session.AddedFiles.Len(), a.session.AddedFiles.TotalSize()/1024)
	return nil
}

func (a *App) cmdReview(ctx context.Context, paths []string) error {
	// Review files live in a transient set so a one-off /review neither
	// enlarges the persistent chat context nor doubles up with the
	// assembler's added-files block.
	reviewFiles := a.session.AddedFiles
	if len(paths) > 0 {
		reviewFiles = ingest.NewAddedFileContext(a.session.AddedFiles.MaxTotalSize())
		if err := a.ingestor.Stage(paths, reviewFiles); err != nil {
			return err
		}
	}
	if reviewFiles.Len() == 0 {
		return fmt.Errorf("no files to review; use /review <path> or /add first")
	}

	// The assembler already sends the persistent set; only transient
	// review files need to ride along in the prompt itself.
	prompt := reviewPrompt
	if len(paths) > 0 {
		prompt = fmt.Sprintf("%s\n\nFiles to review:\n%s", reviewPrompt, assemble.FileBlock(reviewFiles))
	}
	response, err := a.chat(ctx, prompt, false)
	if err != nil {
		return err
	}
	a.printer.Markdown(response)
	return nil
}

func (a *App) cmdPlanning(ctx context.Context, instruction string) error {
	if instruction == "" {
		return fmt.Errorf("usage: /planning <instruction>")
	}

	prompt := fmt.Sprintf("%s\n\nUser request: %s", planningPrompt, instruction)
	response, err := a.chat(ctx, prompt, false)
	if err != nil {
		return err
	}
	a.printer.Markdown(response)
	return nil
}

func (a *App) cmdDebug() error {
	if a.session.LastResponse == "" {
		a.printer.Muted("No response recorded yet.")
		return nil
	}
	fmt.Println(a.session.LastResponse)
	return nil
}

func (a *App) cmdCopy() error {
	if a.session.LastResponse == "" {
		return fmt.Errorf("no response to copy")
	}
	if err := clipboard.WriteAll(a.session.LastResponse); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	a.printer.Success("Copied last response to clipboard")
	return nil
}

func (a *App) cmdReset() error {
	for _, path := range a.session.AddedFiles.Paths() {
		if a.watcher != nil {
			a.watcher.Untrack(path)
		}
	}
	a.session.Reset()
	a.printer.Success("Session cleared")
	return nil
}

// cmdModel switches the active model mid-session. A bad identifier or
// missing credential leaves the current manager untouched.
func (a *App) cmdModel(id string) error {
	if id == "" {
		a.printer.Info("Current model: %s", a.manager.Identifier())
		for _, m := range config.RegisteredModels() {
			a.printer.Muted("  %s", m)
		}
		return nil
	}

	cfg := *a.cfg
	cfg.Model.Name = id

	manager, err := model.NewManager(&cfg)
	if err != nil {
		return err
	}

	if err := a.manager.Close(); err != nil {
		logging.Warn("failed to close previous client", "error", err)
	}
	a.cfg.Model.Name = id
	a.manager = manager
	a.printer.Success("Switched to %s", id)
	return nil
}

// refreshStale re-reads staged files that changed on disk so every
// round-trip sees current content.
func (a *App) refreshStale() {
	if a.watcher == nil {
		return
	}
	for _, path := range a.session.AddedFiles.Paths() {
		if a.watcher.Stale(path) {
			a.ingestor.AddFile(path, a.session.AddedFiles)
			a.watcher.ClearStale(path)
		}
	}
}

func (a *App) trackAdded() {
	if a.watcher == nil {
		return
	}
	for _, path := range a.session.AddedFiles.Paths() {
		a.watcher.Track(path)
	}
}

func (a *App) askYesNo(question string) (bool, error) {
	a.printer.Muted("%s (yes/no)", question)

	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y", nil
}

func (a *App) printHelp() {
	a.printer.Info("Commands:")
	for _, line := range []string{
		"/create <instruction>   generate and apply files and folders",
		"/edit <paths...>        stage files and apply reviewed edits",
		"/add <paths...>         stage files into the chat context",
		"/review [paths...]      review staged files",
		"/planning <instruction> produce a step-by-step plan",
		"/debug                  print the last raw model response",
		"/copy                   copy the last response to the clipboard",
		"/reset                  clear history and staged files",
		"/model [id]             show or switch the active model",
		"/quit                   exit",
	} {
		a.printer.Muted("  %s", line)
	}
}
