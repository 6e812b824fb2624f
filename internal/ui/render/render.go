// Package render draws the console views as plain text lines fitted to the
// terminal width.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/skyjuke/skyjuke/internal/browse"
	"github.com/skyjuke/skyjuke/internal/durafmt"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
	"github.com/skyjuke/skyjuke/internal/state"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

const (
	playingMark = "▶"
	pausedMark  = "⏸"
	listedMark  = "★"
	ellipsis    = "…"
)

// Width returns the width of the terminal f, or DefaultWidth.
func Width(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}

	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w < 20 {
		return DefaultWidth
	}

	return w
}

// Model is everything a frame shows.
type Model struct {
	Tab   state.Source
	Width int

	Browser  browse.View
	Loading  bool
	Playlist []string

	Search struct {
		Dirs    []string
		Tracks  []string
		Loading bool
	}

	// Folders is the last folder listing; nil hides it.
	Folders []string

	Source  state.Source
	Index   int
	Track   string
	Shuffle bool
	Paused  bool
	Pos     float64
	Rem     float64

	// Count returns how often a track is in the playlist.
	Count func(id string) int

	Alerts []string
}

func (m *Model) width() int {
	if m.Width < 20 {
		return DefaultWidth
	}
	return m.Width
}

func (m *Model) count(id string) int {
	if m.Count == nil {
		return 0
	}
	return m.Count(id)
}

// Frame writes the tab, the folder listing if any, the alerts and the status
// line.
func Frame(w io.Writer, m *Model) error {
	var b strings.Builder

	switch m.Tab {
	case state.SourceBrowser:
		writeBrowser(&b, m)
	case state.SourcePlaylist:
		writePlaylist(&b, m)
	case state.SourceSearch:
		writeSearch(&b, m)
	}

	if m.Folders != nil {
		writeFolders(&b, m)
	}

	for _, alert := range m.Alerts {
		b.WriteString(fit("! "+alert, m.width()))
		b.WriteByte('\n')
	}

	b.WriteString(StatusLine(m))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// Breadcrumb returns the labels of the cursor's path, root first.
func Breadcrumb(c browse.Cursor) string {
	parts := make([]string, 0, len(c.Segments)+1)
	parts = append(parts, playlist.RootLabel)

	for _, segment := range c.Segments {
		parts = append(parts, strings.ReplaceAll(segment, "_", " "))
	}

	return strings.Join(parts, playlist.DirSeparator)
}

func writeBrowser(b *strings.Builder, m *Model) {
	v := m.Browser
	width := m.width()

	header := "[b] " + Breadcrumb(v.Cursor)
	if v.Cursor.Filter != "" {
		header += fmt.Sprintf("  (filter: %s)", v.Cursor.Filter)
	}
	if m.Loading {
		header += "  loading…"
	}
	writeLine(b, header, width)

	for i, dir := range v.Dirs {
		writeLine(b, fmt.Sprintf("  %3d) %s/", i+1, strings.ReplaceAll(dir, "_", " ")), width)
	}

	switch {
	case v.Pending:
		writeLine(b, "  Searching subdirectories…", width)
	case v.Cursor.Filter != "" && len(v.Dirs) == 0 && len(v.Tracks) == 0:
		writeLine(b, "  No matches.", width)
	}

	writeTracks(b, m, state.SourceBrowser, v.Tracks, v.Remote)
}

func writePlaylist(b *strings.Builder, m *Model) {
	width := m.width()

	switch n := len(m.Playlist); n {
	case 0:
		writeLine(b, "[p] Playlist is empty. Add tracks from the browser or a search.", width)
	case 1:
		writeLine(b, "[p] 1 track in playlist", width)
	default:
		writeLine(b, fmt.Sprintf("[p] %d tracks in playlist", n), width)
	}

	writeTracks(b, m, state.SourcePlaylist, m.Playlist, true)
}

func writeSearch(b *strings.Builder, m *Model) {
	width := m.width()

	header := "[s] Search"
	if m.Search.Loading {
		header += "  searching…"
	}
	writeLine(b, header, width)

	for i, dir := range m.Search.Dirs {
		writeLine(b, fmt.Sprintf("  %3d) %s", i+1, DirLabel(dir)), width)
	}

	writeTracks(b, m, state.SourceSearch, m.Search.Tracks, true)
}

func writeFolders(b *strings.Builder, m *Model) {
	width := m.width()

	writeLine(b, fmt.Sprintf("Folders (%d):", len(m.Folders)), width)
	for i, dir := range m.Folders {
		writeLine(b, fmt.Sprintf("  %3d) %s", i+1, DirLabel(dir)), width)
	}
}

// writeTracks writes one row per track. withDir appends the directory label,
// for lists whose tracks come from several directories.
func writeTracks(b *strings.Builder, m *Model, src state.Source, ids []string, withDir bool) {
	width := m.width()

	for i, id := range ids {
		mark := " "
		if id != "" && id == m.Track {
			mark = playingMark
			if m.Paused {
				mark = pausedMark
			}
		}

		left := fmt.Sprintf("%s %3d. %s", mark, i+1, playlist.TitleFromPath(id))

		if src != state.SourcePlaylist {
			if n := m.count(id); n > 0 {
				left += " " + listedMark
				if n > 1 {
					left += fmt.Sprint(n)
				}
			}
		}

		var right string
		if withDir {
			right = playlist.DirectoryLabel(id)
		}

		writeLine(b, columns(left, right, width), width)
	}
}

// StatusLine returns the playing track, the play time and the modes.
func StatusLine(m *Model) string {
	width := m.width()

	if m.Source == state.SourceNone || m.Track == "" {
		line := "■ stopped"
		if m.Shuffle {
			line += "  [shuffle]"
		}
		return fit(line, width)
	}

	mark := playingMark
	if m.Paused {
		mark = pausedMark
	}

	right := durafmt.FormatSeconds(m.Pos)
	if rem := durafmt.FormatSeconds(m.Rem); rem != "" {
		right += " / -" + rem
	}
	right += "  " + m.Source.String()
	if m.Shuffle {
		right += " [shuffle]"
	}

	left := fmt.Sprintf("%s %s", mark, playlist.TitleFromPath(m.Track))
	return columns(left, right, width)
}

// columns fits left and right into width, with right aligned to the edge.
// left is truncated first.
func columns(left, right string, width int) string {
	if right == "" {
		return fit(left, width)
	}

	rw := runewidth.StringWidth(right)
	if rw+2 >= width {
		return fit(left, width)
	}

	left = runewidth.FillRight(fit(left, width-rw-2), width-rw-2)
	return left + "  " + right
}

func fit(s string, width int) string {
	return runewidth.Truncate(s, width, ellipsis)
}

func writeLine(b *strings.Builder, s string, width int) {
	b.WriteString(fit(s, width))
	b.WriteByte('\n')
}

// DirLabel labels a directory path, with the root as RootLabel. The trailing
// slash is optional.
func DirLabel(dir string) string {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return playlist.DirectoryLabel(dir)
}
