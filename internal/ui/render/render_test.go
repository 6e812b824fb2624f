package render

import (
	"math"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/skyjuke/skyjuke/internal/browse"
	"github.com/skyjuke/skyjuke/internal/state"
)

func TestBreadcrumb(t *testing.T) {
	var tests = []struct {
		path   string
		expect string
	}{
		{"", "Home"},
		{"Rock/", "Home ➙ Rock"},
		{"Rock/Live_Sets/", "Home ➙ Rock ➙ Live Sets"},
	}

	for _, test := range tests {
		if got := Breadcrumb(browse.NewCursor(test.path)); got != test.expect {
			t.Errorf("Breadcrumb(%q) = %q, expected %q", test.path, got, test.expect)
		}
	}
}

func TestStatusLine(t *testing.T) {
	m := Model{
		Width:  80,
		Source: state.SourcePlaylist,
		Track:  "Rock/Some_Song.mp3",
		Pos:    62.7,
		Rem:    123,
	}

	line := StatusLine(&m)
	for _, part := range []string{"▶ Some Song", "00:01:02 / -00:02:03", "playlist"} {
		if !strings.Contains(line, part) {
			t.Errorf("status line %q is missing %q", line, part)
		}
	}

	if w := runewidth.StringWidth(line); w != 80 {
		t.Errorf("status line is %d wide, expected 80", w)
	}

	m.Paused = true
	m.Shuffle = true
	m.Pos = math.NaN()
	m.Rem = math.NaN()

	line = StatusLine(&m)
	if !strings.HasPrefix(line, pausedMark) {
		t.Errorf("paused status line %q does not start with the paused mark", line)
	}
	if strings.Contains(line, "/ -") || !strings.Contains(line, "[shuffle]") {
		t.Errorf("unexpected status line %q", line)
	}

	m.Source = state.SourceNone
	m.Track = ""
	if line := StatusLine(&m); !strings.HasPrefix(line, "■ stopped") {
		t.Errorf("unexpected detached status line %q", line)
	}
}

func TestColumnsTruncate(t *testing.T) {
	long := strings.Repeat("長い曲名", 20)

	line := columns(long, "Home ➙ Rock", 40)
	if w := runewidth.StringWidth(line); w > 40 {
		t.Fatalf("line is %d wide, expected at most 40", w)
	}
	if !strings.HasSuffix(line, "Home ➙ Rock") {
		t.Fatalf("right column lost: %q", line)
	}
	if !strings.Contains(line, ellipsis) {
		t.Fatalf("truncated line has no ellipsis: %q", line)
	}
}

func TestFrameBrowser(t *testing.T) {
	m := Model{
		Tab:   state.SourceBrowser,
		Width: 60,
		Browser: browse.View{
			Cursor: browse.NewCursor("Rock/"),
			Dirs:   []string{"Live_Sets"},
			Tracks: []string{"Rock/A.mp3", "Rock/B.mp3"},
		},
		Source: state.SourceBrowser,
		Index:  1,
		Track:  "Rock/B.mp3",
		Count: func(id string) int {
			if id == "Rock/A.mp3" {
				return 2
			}
			return 0
		},
		Alerts: []string{"Network error"},
	}

	var b strings.Builder
	if err := Frame(&b, &m); err != nil {
		t.Fatal("failed to render:", err)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), b.String())
	}

	var expect = []string{
		"[b] Home ➙ Rock",
		"    1) Live Sets/",
		"    1. A ★2",
		"▶   2. B",
		"! Network error",
		"▶ B",
	}

	for i, prefix := range expect {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, expected prefix %q", i, lines[i], prefix)
		}
	}
}

func TestFramePlaylist(t *testing.T) {
	var tests = []struct {
		tracks []string
		header string
	}{
		{nil, "[p] Playlist is empty."},
		{[]string{"A.mp3"}, "[p] 1 track in playlist"},
		{[]string{"A.mp3", "A.mp3"}, "[p] 2 tracks in playlist"},
	}

	for _, test := range tests {
		m := Model{Tab: state.SourcePlaylist, Playlist: test.tracks}

		var b strings.Builder
		Frame(&b, &m)

		if !strings.HasPrefix(b.String(), test.header) {
			t.Errorf("unexpected playlist frame:\n%s", b.String())
		}
	}
}

func TestFrameSearchAndFolders(t *testing.T) {
	m := Model{Tab: state.SourceSearch, Folders: []string{"", "Jazz/"}}
	m.Search.Dirs = []string{"Jazz/Blue_Notes/"}

	var b strings.Builder
	Frame(&b, &m)

	out := b.String()
	for _, part := range []string{
		"1) Home ➙ Jazz ➙ Blue Notes",
		"Folders (2):",
		"1) Home\n",
		"2) Home ➙ Jazz\n",
	} {
		if !strings.Contains(out, part) {
			t.Errorf("frame is missing %q:\n%s", part, out)
		}
	}
}
