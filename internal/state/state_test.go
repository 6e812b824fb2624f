package state

import (
	"context"
	"testing"

	"github.com/go-test/deep"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
	"github.com/skyjuke/skyjuke/internal/state/kv"
)

func newTestSession(tracks ...string) *Session {
	pl := NewPlaylist(kv.NewMemory(), PlaylistTTL)
	pl.Add(tracks...)
	return NewSession(pl)
}

func assertPlaying(t *testing.T, s *Session, src Source, ix int, track string) {
	t.Helper()

	gotSrc, gotIx, gotTrack := s.NowPlaying()
	if gotSrc != src || gotIx != ix || gotTrack != track {
		t.Fatalf("expected (%s, %d, %q), got (%s, %d, %q)",
			src, ix, track, gotSrc, gotIx, gotTrack)
	}
}

func TestSessionInert(t *testing.T) {
	s := newTestSession("a", "b")

	if _, ok := s.Next(); ok {
		t.Fatal("Next moved a detached session")
	}
	if _, ok := s.Previous(); ok {
		t.Fatal("Previous moved a detached session")
	}

	assertPlaying(t, s, SourceNone, 0, "")
}

func TestSessionSelect(t *testing.T) {
	s := newTestSession("a", "b", "c")

	if _, ok := s.Select(SourceBrowser, 0); ok {
		t.Fatal("Select on an empty list succeeded")
	}

	if track, _ := s.Select(SourcePlaylist, 5); track != "c" {
		t.Fatalf("expected clamped track c, got %q", track)
	}
	assertPlaying(t, s, SourcePlaylist, 2, "c")

	s.Select(SourcePlaylist, -3)
	assertPlaying(t, s, SourcePlaylist, 0, "a")
}

func TestSessionCyclic(t *testing.T) {
	s := newTestSession()
	s.SetList(SourceSearch, []string{"a", "b", "c", "d", "e"})
	s.Select(SourceSearch, 3)

	for i := 0; i < 5; i++ {
		s.Next()
	}
	assertPlaying(t, s, SourceSearch, 3, "d")

	for i := 0; i < 5; i++ {
		s.Previous()
	}
	assertPlaying(t, s, SourceSearch, 3, "d")
}

func TestSessionWrap(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.Select(SourcePlaylist, 2)

	s.Next()
	assertPlaying(t, s, SourcePlaylist, 0, "a")

	s.Previous()
	assertPlaying(t, s, SourcePlaylist, 2, "c")
}

func TestSessionShuffleOrder(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.Select(SourcePlaylist, 2)
	s.SetShuffling(true)
	s.order = playlist.ShuffleOrder{2, 0, 1}

	s.Next()
	assertPlaying(t, s, SourcePlaylist, 0, "a")

	s.Next()
	assertPlaying(t, s, SourcePlaylist, 1, "b")

	s.Next()
	assertPlaying(t, s, SourcePlaylist, 2, "c")

	if diff := deep.Equal(s.order, playlist.ShuffleOrder{2, 0, 1}); diff != nil {
		t.Fatal("shuffle order regenerated:", diff)
	}
}

func TestSessionShuffleBackAndForth(t *testing.T) {
	s := newTestSession()
	s.SetList(SourceBrowser, []string{"a", "b", "c", "d", "e", "f", "g"})
	s.SetShuffling(true)

	for start := 0; start < 7; start++ {
		s.Select(SourceBrowser, start)
		s.Next()
		s.Previous()
		assertPlaying(t, s, SourceBrowser, start, string(rune('a'+start)))
	}
}

func TestSessionShuffleRegenerate(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.Select(SourcePlaylist, 0)
	s.SetShuffling(true)
	s.order = playlist.ShuffleOrder{2, 0, 1}

	// Same length, different contents: the order stays.
	s.RemoveTrack(2)
	s.AddTracks("d")
	s.Next()

	if diff := deep.Equal(s.order, playlist.ShuffleOrder{2, 0, 1}); diff != nil {
		t.Fatal("shuffle order regenerated on same length:", diff)
	}

	s.AddTracks("e")
	s.Next()

	if len(s.order) != 4 {
		t.Fatalf("expected order of length 4, got %v", s.order)
	}
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession()
	s.SetList(SourceBrowser, []string{"a", "b", "c"})
	s.Select(SourceBrowser, 1)

	// Navigating elsewhere replaces the live list but not the snapshot.
	s.SetList(SourceBrowser, []string{"x"})

	s.Next()
	assertPlaying(t, s, SourceBrowser, 2, "c")

	s.Next()
	assertPlaying(t, s, SourceBrowser, 0, "a")
}

func TestSessionRemoveTrack(t *testing.T) {
	type removeTest struct {
		name    string
		tracks  []string
		playing int
		remove  int
		expect  int
	}

	var tests = []removeTest{
		{"before", []string{"a", "b", "c"}, 2, 0, 1},
		{"playing", []string{"a", "b", "c"}, 1, 1, 0},
		{"after", []string{"a", "b", "c"}, 0, 2, 0},
		{"negative wraps to length", []string{"a", "b", "c"}, 0, 0, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSession(test.tracks...)
			s.Select(SourcePlaylist, test.playing)

			if !s.RemoveTrack(test.remove) {
				t.Fatal("RemoveTrack failed")
			}

			if _, ix, _ := s.NowPlaying(); ix != test.expect {
				t.Fatalf("expected playing index %d, got %d", test.expect, ix)
			}
		})
	}
}

func TestSessionRemoveSentinel(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.Select(SourcePlaylist, 0)
	s.RemoveTrack(0)

	// The index sits one past the end; moving forward starts at the top.
	s.Next()
	assertPlaying(t, s, SourcePlaylist, 0, "b")

	s.RemoveTrack(0)
	s.Previous()
	assertPlaying(t, s, SourcePlaylist, 0, "c")
}

func TestSessionRemoveOtherSource(t *testing.T) {
	s := newTestSession("a", "b")
	s.SetList(SourceSearch, []string{"x", "y"})
	s.Select(SourceSearch, 1)

	s.RemoveLastTrack("a")
	assertPlaying(t, s, SourceSearch, 1, "y")

	if s.RemoveLastTrack("missing") {
		t.Fatal("removed a missing track")
	}
}

func TestSessionAddUnique(t *testing.T) {
	s := newTestSession("a", "b")

	if n := s.AddTracksUnique("b", "c", "a", "d"); n != 2 {
		t.Fatalf("expected 2 tracks added, got %d", n)
	}

	if diff := deep.Equal(s.Playlist().Tracks, []string{"a", "b", "c", "d"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestSessionPersists(t *testing.T) {
	store := kv.NewMemory()

	pl := NewPlaylist(store, PlaylistTTL)
	s := NewSession(pl)
	s.AddTracks("a", "b", "a")
	s.RemoveLastTrack("b")

	loaded, err := LoadPlaylist(context.Background(), store, PlaylistTTL)
	if err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal(loaded.Tracks, []string{"a", "a"}); diff != nil {
		t.Fatal(diff)
	}

	s.ClearPlaylist()

	loaded, _ = LoadPlaylist(context.Background(), store, PlaylistTTL)
	if loaded.Len() != 0 {
		t.Fatalf("expected cleared playlist, got %v", loaded.Tracks)
	}
}

func TestSessionOnUpdate(t *testing.T) {
	var calls int

	s := newTestSession("a")
	s.OnUpdate(func(*Session) { calls++ })
	s.OnUpdate(func(*Session) { calls++ })

	s.Select(SourcePlaylist, 0)

	if calls != 2 {
		t.Fatalf("expected 2 callback calls, got %d", calls)
	}
}
