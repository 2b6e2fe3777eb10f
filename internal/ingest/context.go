// Package ingest stages user-selected files into the added-file context
// that rides along with every outbound request.
package ingest

// AddedFileContext maps filesystem paths to file contents, preserving
// insertion order. The aggregate size is bounded; exceeding the ceiling
// invalidates the whole set rather than evicting individual entries.
type AddedFileContext struct {
	order        []string
	contents     map[string]string
	maxTotalSize int64
}

// NewAddedFileContext creates an empty context with the given aggregate
// ceiling in bytes. A non-positive ceiling disables the check.
func NewAddedFileContext(maxTotalSize int64) *AddedFileContext {
	return &AddedFileContext{
		contents:     make(map[string]string),
		maxTotalSize: maxTotalSize,
	}
}

// Set adds or replaces a file's content.
func (c *AddedFileContext) Set(path, content string) {
	if _, exists := c.contents[path]; !exists {
		c.order = append(c.order, path)
	}
	c.contents[path] = content
}

// Get returns a file's content.
func (c *AddedFileContext) Get(path string) (string, bool) {
	content, ok := c.contents[path]
	return content, ok
}

// Paths returns all paths in insertion order.
func (c *AddedFileContext) Paths() []string {
	return c.order
}

// Len returns the number of staged files.
func (c *AddedFileContext) Len() int {
	return len(c.order)
}

// TotalSize returns the sum of content byte lengths.
func (c *AddedFileContext) TotalSize() int64 {
	var total int64
	for _, content := range c.contents {
		total += int64(len(content))
	}
	return total
}

// OverCeiling reports whether the aggregate size exceeds the ceiling.
func (c *AddedFileContext) OverCeiling() bool {
	return c.maxTotalSize > 0 && c.TotalSize() > c.maxTotalSize
}

// MaxTotalSize returns the configured aggregate ceiling.
func (c *AddedFileContext) MaxTotalSize() int64 {
	return c.maxTotalSize
}

// Clear removes every staged file.
func (c *AddedFileContext) Clear() {
	c.order = nil
	c.contents = make(map[string]string)
}
