// Package browse holds the remote directory browser: the current listing,
// its breadcrumb, and the local filter with its server-side fallback.
package browse

import (
	"strings"

	"github.com/skyjuke/skyjuke/internal/api"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
)

// Request describes a fetch the caller must perform and hand back to the
// cache with its token.
type Request struct {
	Token Token
	Path  string
	Term  string
	Limit int
}

// View is what the browser shows.
type View struct {
	Cursor Cursor
	Dirs   []string
	// Tracks are full track identifiers.
	Tracks []string
	// Remote is true if Tracks came from a recursive server search.
	Remote bool
	// Pending is true while a recursive search has not answered yet.
	Pending bool
}

// Cache is the browser state. It is not thread-safe.
type Cache struct {
	seq     Sequencer
	cursor  Cursor
	dirs    []string
	files   []string
	limit   int
	loading map[api.Op]Token

	filter struct {
		dirs    []string
		tracks  []string
		remote  bool
		pending bool
	}
}

// NewCache creates an empty cache at the root. limit bounds the results of a
// recursive filter search.
func NewCache(limit int) *Cache {
	return &Cache{
		cursor:  NewCursor(""),
		limit:   limit,
		loading: make(map[api.Op]Token),
	}
}

// Cursor returns the current directory.
func (c *Cache) Cursor() Cursor {
	return c.cursor
}

// Loading returns true if a request of op is in flight.
func (c *Cache) Loading(op api.Op) bool {
	_, ok := c.loading[op]
	return ok
}

func (c *Cache) issue(op api.Op) Token {
	tok := c.seq.Issue(op)
	c.loading[op] = tok
	return tok
}

// accept checks a returning token. A stale one is counted and dropped.
func (c *Cache) accept(tok Token) bool {
	if !c.seq.Latest(tok) {
		logging.Debug("browse: dropping stale %s response %d", tok.Op, tok.Seq)
		metrics.StaleResponsesTotal.WithLabelValues(string(tok.Op)).Inc()
		return false
	}

	delete(c.loading, tok.Op)
	return true
}

// Navigate clears the filter and requests the listing of path. The current
// listing stays until the new one arrives.
func (c *Cache) Navigate(path string) Request {
	c.ClearFilter()
	return Request{
		Token: c.issue(api.OpDir),
		Path:  CleanDir(path),
	}
}

// Home navigates to the root.
func (c *Cache) Home() Request {
	return c.Navigate("")
}

// Reload requests the current directory again.
func (c *Cache) Reload() Request {
	return c.Navigate(c.cursor.Path)
}

// Enter navigates into the named subdirectory of the current one.
func (c *Cache) Enter(name string) Request {
	return c.Navigate(c.cursor.Path + name + "/")
}

// Crumb navigates to the i-th breadcrumb segment.
func (c *Cache) Crumb(i int) (Request, bool) {
	path, ok := c.cursor.Crumb(i)
	if !ok {
		return Request{}, false
	}
	return c.Navigate(path), true
}

// Up navigates to the parent directory.
func (c *Cache) Up() Request {
	return c.Navigate(c.cursor.Parent())
}

// HandleListing stores the listing if tok is still current. It returns false
// if the response was stale.
func (c *Cache) HandleListing(tok Token, l *api.Listing) bool {
	if !c.accept(tok) {
		return false
	}

	c.cursor = NewCursor(l.Dir)
	c.dirs = l.Dirs
	c.files = l.Files
	c.ClearFilter()

	return true
}

// HandleError ends the request of tok, leaving the cached data unchanged.
func (c *Cache) HandleError(tok Token) bool {
	if !c.accept(tok) {
		return false
	}

	if tok.Op == api.OpSearchInDir {
		c.filter.pending = false
	}

	return true
}

// ApplyFilter filters the cached listing by a case-insensitive substring of
// directory names, file names and track titles. If nothing matches locally,
// it returns a recursive search request scoped to the current directory. An
// empty query clears the filter.
func (c *Cache) ApplyFilter(query string) (Request, bool) {
	if strings.TrimSpace(query) == "" {
		c.ClearFilter()
		return Request{}, false
	}

	c.resetFilter()
	c.cursor.Filter = query

	needle := strings.ToLower(query)

	for _, dir := range c.dirs {
		if strings.Contains(strings.ToLower(dir), needle) {
			c.filter.dirs = append(c.filter.dirs, dir)
		}
	}

	for _, file := range c.files {
		if strings.Contains(strings.ToLower(file), needle) ||
			strings.Contains(strings.ToLower(playlist.TitleFromPath(file)), needle) {

			c.filter.tracks = append(c.filter.tracks, c.cursor.Path+file)
		}
	}

	if len(c.filter.dirs) > 0 || len(c.filter.tracks) > 0 {
		c.seq.Invalidate(api.OpSearchInDir)
		delete(c.loading, api.OpSearchInDir)
		return Request{}, false
	}

	c.filter.pending = true

	return Request{
		Token: c.issue(api.OpSearchInDir),
		Path:  c.cursor.Path,
		Term:  query,
		Limit: c.limit,
	}, true
}

// HandleMatches shows the recursive search results if tok is still current.
func (c *Cache) HandleMatches(tok Token, matches []api.Match) bool {
	if !c.accept(tok) {
		return false
	}

	c.filter.pending = false
	c.filter.remote = true
	c.filter.dirs = nil
	c.filter.tracks = make([]string, 0, len(matches))

	for _, match := range matches {
		if match.Path != "" {
			c.filter.tracks = append(c.filter.tracks, match.Path)
		}
	}

	return true
}

// ClearFilter restores the plain listing. A recursive search in flight is
// abandoned.
func (c *Cache) ClearFilter() {
	c.resetFilter()
	c.seq.Invalidate(api.OpSearchInDir)
	delete(c.loading, api.OpSearchInDir)
}

func (c *Cache) resetFilter() {
	c.cursor.Filter = ""
	c.filter.dirs = nil
	c.filter.tracks = nil
	c.filter.remote = false
	c.filter.pending = false
}

// Filtering returns true if a filter is applied.
func (c *Cache) Filtering() bool {
	return c.cursor.Filter != ""
}

// View returns what the browser shows.
func (c *Cache) View() View {
	if !c.Filtering() {
		tracks := make([]string, len(c.files))
		for i, file := range c.files {
			tracks[i] = c.cursor.Path + file
		}

		return View{
			Cursor: c.cursor,
			Dirs:   c.dirs,
			Tracks: tracks,
		}
	}

	return View{
		Cursor:  c.cursor,
		Dirs:    c.filter.dirs,
		Tracks:  c.filter.tracks,
		Remote:  c.filter.remote,
		Pending: c.filter.pending,
	}
}
