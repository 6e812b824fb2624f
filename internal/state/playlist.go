package state

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/state/kv"
)

const (
	// PlaylistKey is the store key the playlist is saved under.
	PlaylistKey = "playlist"
	// PlaylistTTL is the default lifetime of the saved playlist.
	PlaylistTTL = 365 * 24 * time.Hour

	trackDelimiter = "|"
)

// Playlist is the user-curated track list. Duplicates are allowed and order
// is significant. It is saved into a kv.Store, but saving is left to the
// caller so a failing store never blocks a mutation.
type Playlist struct {
	Tracks []string

	store kv.Store
	key   string
	ttl   time.Duration
}

// NewPlaylist creates an empty playlist saved into store. A nil store keeps
// the playlist in memory only.
func NewPlaylist(store kv.Store, ttl time.Duration) *Playlist {
	return &Playlist{
		store: store,
		key:   PlaylistKey,
		ttl:   ttl,
	}
}

// LoadPlaylist reads the playlist from store once. A missing value gives an
// empty playlist.
func LoadPlaylist(ctx context.Context, store kv.Store, ttl time.Duration) (*Playlist, error) {
	pl := NewPlaylist(store, ttl)

	if store == nil {
		return pl, nil
	}

	v, err := store.Get(ctx, pl.key)
	if err != nil {
		return pl, errors.Wrap(err, "failed to load playlist")
	}

	pl.Tracks = decodeTracks(v)
	return pl, nil
}

// Save writes the whole list into the store.
func (pl *Playlist) Save(ctx context.Context) error {
	if pl.store == nil {
		return nil
	}

	err := pl.store.Set(ctx, pl.key, encodeTracks(pl.Tracks), pl.ttl)
	return errors.Wrap(err, "failed to save playlist")
}

// Len returns the number of tracks.
func (pl *Playlist) Len() int { return len(pl.Tracks) }

// Add appends the tracks. Empty identifiers are skipped.
func (pl *Playlist) Add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			pl.Tracks = append(pl.Tracks, id)
		}
	}
}

// Remove removes the track at ix. It returns false if ix is out of bounds.
func (pl *Playlist) Remove(ix int) bool {
	if ix < 0 || ix >= len(pl.Tracks) {
		return false
	}

	// https://github.com/golang/go/wiki/SliceTricks
	copy(pl.Tracks[ix:], pl.Tracks[ix+1:])
	pl.Tracks[len(pl.Tracks)-1] = ""
	pl.Tracks = pl.Tracks[:len(pl.Tracks)-1]

	return true
}

// LastIndex returns the index of the last occurrence of id, or -1.
func (pl *Playlist) LastIndex(id string) int {
	for i := len(pl.Tracks) - 1; i >= 0; i-- {
		if pl.Tracks[i] == id {
			return i
		}
	}
	return -1
}

// Count returns how many times id occurs.
func (pl *Playlist) Count(id string) (n int) {
	for _, track := range pl.Tracks {
		if track == id {
			n++
		}
	}
	return
}

// Clear empties the playlist.
func (pl *Playlist) Clear() {
	pl.Tracks = nil
}

var trackEscaper = strings.NewReplacer("%", "%25", trackDelimiter, "%7C")

// encodeTracks joins the identifiers with the delimiter after escaping both
// the delimiter and the escape character itself.
func encodeTracks(tracks []string) string {
	var b strings.Builder
	for i, track := range tracks {
		if i > 0 {
			b.WriteString(trackDelimiter)
		}
		trackEscaper.WriteString(&b, track)
	}
	return b.String()
}

// decodeTracks reverses encodeTracks. Values written before escaping was
// introduced decode unchanged unless they contain a valid escape sequence.
func decodeTracks(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, trackDelimiter)
	for i, part := range parts {
		if !strings.Contains(part, "%") {
			continue
		}
		if u, err := url.PathUnescape(part); err == nil {
			parts[i] = u
		}
	}

	return parts
}
