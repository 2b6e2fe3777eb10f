// Package directive parses model responses into filesystem creation
// directives.
package directive

import (
	"fmt"
	"strings"
)

// Directive is one parsed creation instruction. Exactly one of the
// concrete types below is produced per fenced block.
type Directive interface {
	directive()
}

// Folder creates a directory (and any missing parents).
type Folder struct {
	Path string
}

// File creates or overwrites a file with the given content.
type File struct {
	Path    string
	Content string
}

func (Folder) directive() {}
func (File) directive()   {}

// ParseError reports a response whose fenced blocks could not all be
// interpreted. Parsing is all-or-nothing per response.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %s", e.Reason)
}

const (
	fileMarker   = "### FILE:"
	folderMarker = "### FOLDER:"
)

// Parse scans the raw model text for fenced code blocks and converts
// each into a Directive. Every block must open with a FILE or FOLDER
// marker line; a single malformed block fails the whole response.
func Parse(response string) ([]Directive, error) {
	blocks := fencedBlocks(response)
	if len(blocks) == 0 {
		return nil, &ParseError{Reason: "no fenced code blocks found"}
	}

	directives := make([]Directive, 0, len(blocks))
	for i, block := range blocks {
		d, err := parseBlock(block)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("block %d: %v", i+1, err)}
		}
		directives = append(directives, d)
	}
	return directives, nil
}

func parseBlock(block string) (Directive, error) {
	trimmed := strings.TrimSpace(block)
	line, rest, _ := strings.Cut(trimmed, "\n")
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, folderMarker):
		path := strings.TrimSpace(strings.TrimPrefix(line, folderMarker))
		if path == "" {
			return nil, fmt.Errorf("FOLDER marker has empty path")
		}
		return Folder{Path: path}, nil

	case strings.HasPrefix(line, fileMarker):
		path := strings.TrimSpace(strings.TrimPrefix(line, fileMarker))
		if path == "" {
			return nil, fmt.Errorf("FILE marker has empty path")
		}
		return File{Path: path, Content: strings.TrimSpace(rest)}, nil
	}

	return nil, fmt.Errorf("missing FILE or FOLDER marker")
}

// fencedBlocks returns the inner text of every ``` fence in order. The
// opening fence's info string (language tag) is discarded.
func fencedBlocks(text string) []string {
	var blocks []string
	lines := strings.Split(text, "\n")

	inBlock := false
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			inBlock = !inBlock
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}
	return blocks
}
