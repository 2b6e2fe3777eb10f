package ingest

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mason/internal/config"
	"mason/internal/git"
	"mason/internal/logging"
)

// ErrTotalSizeExceeded is returned by Stage when the aggregate ceiling is
// hit; the whole added-file set has been cleared by then.
type ErrTotalSizeExceeded struct {
	Limit int64
}

func (e *ErrTotalSizeExceeded) Error() string {
	return fmt.Sprintf("total size of added files exceeds %dKB limit; context cleared", e.Limit/1024)
}

// Ingestor reads files into an AddedFileContext, applying the exclusion,
// gitignore, binary and size policies.
type Ingestor struct {
	cfg    *config.IngestConfig
	ignore *git.Ignore
}

// NewIngestor creates an ingestor rooted at workDir. The .gitignore there
// is honored when present.
func NewIngestor(cfg *config.IngestConfig, workDir string) *Ingestor {
	ignore, err := git.LoadIgnore(workDir)
	if err != nil {
		logging.Warn("failed to load .gitignore, continuing without it", "error", err)
		ignore = nil
	}
	return &Ingestor{cfg: cfg, ignore: ignore}
}

// Stage adds the given file or directory paths to the context, walking
// directories recursively. On aggregate-ceiling overflow the entire
// context is cleared and ErrTotalSizeExceeded returned: the set is valid
// as a whole or not at all.
func (ing *Ingestor) Stage(paths []string, added *AddedFileContext) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logging.Error("path does not exist", "path", path)
			continue
		}

		if info.IsDir() {
			ing.stageDir(path, added)
		} else {
			ing.AddFile(path, added)
		}
	}

	if added.OverCeiling() {
		limit := added.MaxTotalSize()
		logging.Error("total size of added files exceeds limit", "limit", limit, "size", added.TotalSize())
		added.Clear()
		return &ErrTotalSizeExceeded{Limit: limit}
	}
	return nil
}

func (ing *Ingestor) stageDir(root string, added *AddedFileContext) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if ing.cfg.Excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		ing.AddFile(path, added)
		return nil
	})
	if err != nil {
		logging.Error("failed to walk directory", "path", root, "error", err)
	}
}

// AddFile reads one file into the context, applying the per-file policy.
// Rejected files are logged and skipped; they are not errors.
func (ing *Ingestor) AddFile(path string, added *AddedFileContext) {
	info, err := os.Stat(path)
	if err != nil {
		logging.Error("path does not exist", "path", path)
		return
	}
	if info.IsDir() {
		logging.Error("path is not a file", "path", path)
		return
	}

	for _, segment := range splitPath(path) {
		if ing.cfg.Excluded(segment) {
			logging.Info("skipped file in excluded directory", "path", path)
			return
		}
	}

	if ing.ignore != nil && ing.ignore.Match(path, false) {
		logging.Info("skipped file matching .gitignore pattern", "path", path)
		return
	}

	if ing.cfg.MaxFileSize > 0 && info.Size() > ing.cfg.MaxFileSize {
		logging.Error("file exceeds maximum size limit", "path", path, "size", info.Size(), "limit", ing.cfg.MaxFileSize)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error("failed to read file", "path", path, "error", err)
		return
	}

	if IsBinary(data) {
		logging.Info("skipped binary file", "path", path)
		return
	}

	added.Set(path, string(data))
	logging.Info("added file to context", "path", path, "size", len(data))
}

// IsBinary applies the classic heuristic to the head of a file: any NUL
// byte, or more than 30% of bytes outside the text range.
func IsBinary(data []byte) bool {
	chunk := data
	if len(chunk) > 1024 {
		chunk = chunk[:1024]
	}
	if len(chunk) == 0 {
		return false
	}

	if bytes.IndexByte(chunk, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range chunk {
		if !isTextByte(b) {
			nonText++
		}
	}
	return float64(nonText)/float64(len(chunk)) > 0.30
}

func isTextByte(b byte) bool {
	switch b {
	case 7, 8, 9, 10, 12, 13, 27:
		return true
	}
	return b >= 0x20
}

func splitPath(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}
