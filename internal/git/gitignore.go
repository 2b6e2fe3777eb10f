// Package git provides .gitignore pattern matching for ingestion
// filtering.
package git

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern is a single parsed gitignore line.
type pattern struct {
	glob     string
	negation bool // starts with !
	dirOnly  bool // ends with /
	anchored bool // contains a non-trailing /
}

// Ignore matches paths against the patterns of a working directory's
// .gitignore file. Last matching pattern wins, as git does it.
type Ignore struct {
	workDir  string
	patterns []pattern
}

// LoadIgnore parses the .gitignore at the root of workDir. A missing file
// yields a matcher that ignores nothing.
func LoadIgnore(workDir string) (*Ignore, error) {
	ig := &Ignore{workDir: workDir}

	file, err := os.Open(filepath.Join(workDir, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return ig, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if p := parseLine(scanner.Text()); p != nil {
			ig.patterns = append(ig.patterns, *p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ig, nil
}

func parseLine(line string) *pattern {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &pattern{}

	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}

	p.glob = line
	return p
}

// Match reports whether path should be ignored. The path may be absolute
// or relative to the working directory.
func (ig *Ignore) Match(path string, isDir bool) bool {
	relPath := path
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(ig.workDir, path); err == nil {
			relPath = rel
		}
	}
	relPath = filepath.ToSlash(relPath)

	ignored := false
	for _, p := range ig.patterns {
		if p.matches(relPath, isDir) {
			ignored = !p.negation
		}
	}
	return ignored
}

func (p *pattern) matches(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		// A directory-only pattern still covers files beneath the
		// directory.
		if !globMatch("**/"+p.glob+"/**", relPath) && !globMatch(p.glob+"/**", relPath) {
			return false
		}
		return true
	}

	if p.anchored {
		return globMatch(p.glob, relPath) || globMatch(p.glob+"/**", relPath)
	}

	if globMatch("**/"+p.glob, relPath) || globMatch("**/"+p.glob+"/**", relPath) {
		return true
	}
	return globMatch(p.glob, filepath.Base(relPath))
}

func globMatch(glob, path string) bool {
	matched, err := doublestar.Match(glob, path)
	if err != nil {
		return false
	}
	return matched
}
