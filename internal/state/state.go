package state

import (
	"context"
	"time"

	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
)

// saveTimeout bounds a single playlist save.
const saveTimeout = 5 * time.Second

func failIf(b bool, e string) {
	if b {
		logging.Fatal("BUG: assertion failed: %s", e)
	}
}

// Session is the player session aggregate. It holds the three candidate track
// lists, the playback pointer, and the shuffle state. It is not thread-safe;
// all methods must be called from the same goroutine.
type Session struct {
	// onUpdate is called after every change.
	onUpdate func(s *Session)

	playlist *Playlist
	// lists holds the live browser and search lists. The playlist entry is
	// unused; the playlist is always read live.
	lists [sourceLen][]string

	playing struct {
		Source Source
		Index  int
		Track  string
		// List is the snapshot taken when a browser or search track was
		// selected.
		List []string
	}

	shuffling bool
	order     playlist.ShuffleOrder
}

// NewSession creates a detached session around the loaded playlist.
func NewSession(pl *Playlist) *Session {
	if pl == nil {
		pl = NewPlaylist(nil, PlaylistTTL)
	}

	return &Session{
		onUpdate: func(*Session) {},
		playlist: pl,
	}
}

// OnUpdate adds into the call stack a callback that is triggered when the
// session is changed.
func (s *Session) OnUpdate(fn func(*Session)) {
	old := s.onUpdate
	s.onUpdate = func(s *Session) {
		old(s)
		fn(s)
	}
}

// Playlist returns the playlist store. Mutate it through the Session methods
// so the playback pointer stays valid.
func (s *Session) Playlist() *Playlist {
	return s.playlist
}

// SetList replaces the live browser or search list wholesale. The snapshot of
// an attached list is not affected.
func (s *Session) SetList(src Source, ids []string) {
	failIf(src != SourceBrowser && src != SourceSearch, "SetList called with "+src.String())

	s.lists[src] = ids
	s.onUpdate(s)
}

// List returns the live list of the given source.
func (s *Session) List(src Source) []string {
	switch src {
	case SourcePlaylist:
		return s.playlist.Tracks
	case SourceBrowser, SourceSearch:
		return s.lists[src]
	default:
		return nil
	}
}

// activeList returns the list navigation runs on: the live playlist, or the
// snapshot of the browser or search list.
func (s *Session) activeList() []string {
	switch s.playing.Source {
	case SourcePlaylist:
		return s.playlist.Tracks
	case SourceBrowser, SourceSearch:
		return s.playing.List
	default:
		return nil
	}
}

// NowPlaying returns the attached source, the playing index and track. The
// source is SourceNone if nothing is attached.
func (s *Session) NowPlaying() (Source, int, string) {
	return s.playing.Source, s.playing.Index, s.playing.Track
}

// Select attaches the source's live list and plays the track at index. An
// out of range index is clamped. It returns false if the list is empty.
func (s *Session) Select(src Source, index int) (string, bool) {
	if src == SourceNone || src >= sourceLen {
		return "", false
	}

	list := s.List(src)
	if len(list) == 0 {
		return "", false
	}

	if index < 0 {
		index = 0
	}
	if index >= len(list) {
		index = len(list) - 1
	}

	s.playing.Source = src
	s.playing.Index = index
	s.playing.Track = list[index]
	s.playing.List = nil

	if src != SourcePlaylist {
		s.playing.List = append([]string(nil), list...)
	}

	s.onUpdate(s)
	return s.playing.Track, true
}

// Next moves to the next track of the attached list. It returns false if
// nothing is attached or the list is empty.
func (s *Session) Next() (string, bool) {
	return s.move(+1)
}

// Previous moves to the previous track, similarly to Next.
func (s *Session) Previous() (string, bool) {
	return s.move(-1)
}

func (s *Session) move(delta int) (string, bool) {
	if s.playing.Source == SourceNone {
		return "", false
	}

	list := s.activeList()
	if len(list) == 0 {
		return "", false
	}

	var next int

	if s.shuffling {
		s.order.Ensure(len(list))
		next = s.order.Step(s.playing.Index, delta)
	} else {
		next = spinIndex(s.playing.Index+delta, len(list))
	}

	s.playing.Index = next
	s.playing.Track = list[next]
	s.onUpdate(s)

	return s.playing.Track, true
}

// spinIndex wraps i back into [0, max): past the end goes to the top, before
// the top goes to the end.
func spinIndex(i, max int) int {
	if i > max-1 {
		return 0
	}
	if i < 0 {
		return max - 1
	}
	return i
}

// Detach detaches playback entirely.
func (s *Session) Detach() {
	s.playing.Source = SourceNone
	s.playing.Index = 0
	s.playing.Track = ""
	s.playing.List = nil
	s.onUpdate(s)
}

// IsShuffling returns true if navigation follows the shuffle order.
func (s *Session) IsShuffling() bool {
	return s.shuffling
}

// SetShuffling sets the shuffling mode. The cached order is kept; it is only
// rebuilt when the active list's length changes.
func (s *Session) SetShuffling(shuffling bool) {
	if s.shuffling == shuffling {
		return
	}

	s.shuffling = shuffling
	s.onUpdate(s)
}

// AddTracks appends the tracks to the playlist.
func (s *Session) AddTracks(ids ...string) {
	s.playlist.Add(ids...)
	s.persist()
}

// AddTracksUnique appends the tracks that are not in the playlist yet and
// returns how many were added.
func (s *Session) AddTracksUnique(ids ...string) int {
	var added int
	for _, id := range ids {
		if id != "" && s.playlist.Count(id) == 0 {
			s.playlist.Add(id)
			added++
		}
	}

	if added > 0 {
		s.persist()
	}

	return added
}

// RemoveTrack removes the playlist track at ix. If the playlist is attached
// and ix is at or before the playing index, the index moves back by one; going
// negative puts it at the new length, so the next track is the first one.
func (s *Session) RemoveTrack(ix int) bool {
	if !s.playlist.Remove(ix) {
		return false
	}

	if s.playing.Source == SourcePlaylist && ix <= s.playing.Index {
		s.playing.Index--
		if s.playing.Index < 0 {
			s.playing.Index = s.playlist.Len()
		}
	}

	s.persist()
	return true
}

// RemoveLastTrack removes the last occurrence of id from the playlist.
func (s *Session) RemoveLastTrack(id string) bool {
	ix := s.playlist.LastIndex(id)
	if ix < 0 {
		return false
	}
	return s.RemoveTrack(ix)
}

// ClearPlaylist empties the playlist. Asking the user is the caller's job.
func (s *Session) ClearPlaylist() {
	s.playlist.Clear()

	if s.playing.Source == SourcePlaylist {
		s.playing.Index = 0
	}

	s.persist()
}

// persist saves the playlist and notifies listeners. A failed save is logged
// and otherwise ignored.
func (s *Session) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.playlist.Save(ctx); err != nil {
		logging.Error("playlist not saved: %v", err)
		metrics.PlaylistSaves.WithLabelValues("error").Inc()
	} else {
		metrics.PlaylistSaves.WithLabelValues("ok").Inc()
	}

	s.onUpdate(s)
}
