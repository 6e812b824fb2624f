package browse

import "strings"

// Cursor is the browsed directory. Segments is always derived from Path.
type Cursor struct {
	Path     string
	Segments []string
	Filter   string
}

// NewCursor creates a cursor at path, normalized by CleanDir.
func NewCursor(path string) Cursor {
	path = CleanDir(path)
	return Cursor{
		Path:     path,
		Segments: splitSegments(path),
	}
}

func splitSegments(path string) []string {
	var segments []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// CleanDir normalizes a directory path: no leading slash, a single trailing
// slash, and the empty string for the root.
func CleanDir(path string) string {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/") + "/"
}

// Crumb returns the path of the i-th breadcrumb segment. It returns false if
// i is out of range.
func (c Cursor) Crumb(i int) (string, bool) {
	if i < 0 || i >= len(c.Segments) {
		return "", false
	}
	return strings.Join(c.Segments[:i+1], "/") + "/", true
}

// Parent returns the path of the parent directory. The root is its own
// parent.
func (c Cursor) Parent() string {
	if len(c.Segments) < 2 {
		return ""
	}
	return strings.Join(c.Segments[:len(c.Segments)-1], "/") + "/"
}

// IsRoot returns true if the cursor is at the root.
func (c Cursor) IsRoot() bool {
	return len(c.Segments) == 0
}
