// Package m3u stores playlists as extended M3U files. Entries are library
// track identifiers, so the files only make sense against the same server.
package m3u

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
	"github.com/ushis/m3u"
)

func init() {
	playlist.Register(".m3u", Parse, Write)
}

// Parse reads the M3U file at path. The playlist is named after the file.
func Parse(path string) (*playlist.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, err
	}

	p.Name = basename(path)
	p.Path = path
	return p, nil
}

// Decode reads M3U entries from r. Entries pointing outside the library, such
// as absolute paths or URLs, are skipped.
func Decode(r io.Reader) (*playlist.Playlist, error) {
	entries, err := m3u.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse m3u")
	}

	var pl = playlist.Playlist{
		Tracks: make([]playlist.Track, 0, len(entries)),
	}

	for _, entry := range entries {
		id := strings.TrimSpace(entry.Path)
		if !isTrackID(id) {
			if id != "" {
				logging.Warn("m3u: ignoring entry outside the library: %s", id)
			}
			continue
		}

		title := entry.Title
		if title == "" {
			title = playlist.TitleFromPath(id)
		}

		pl.Tracks = append(pl.Tracks, playlist.Track{
			Title:    title,
			Length:   time.Duration(entry.Time) * time.Second,
			Filepath: id,
		})
	}

	return &pl, nil
}

func isTrackID(id string) bool {
	return id != "" && !strings.HasPrefix(id, "/") && !strings.Contains(id, "://")
}

func basename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if u, err := url.PathUnescape(name); err == nil {
		return u
	}
	return name
}

// Write writes the playlist to p.Path.
func Write(p *playlist.Playlist) error {
	f, err := os.Create(p.Path)
	if err != nil {
		return errors.Wrap(err, "failed to create playlist file")
	}

	if err := Encode(f, p); err != nil {
		f.Close()
		return err
	}

	return errors.Wrap(f.Close(), "failed to close playlist file")
}

// Encode writes the playlist entries to w. A track without a known length is
// written with -1 as its duration.
func Encode(w io.Writer, p *playlist.Playlist) error {
	var entries = make(m3u.Playlist, len(p.Tracks))

	for i, track := range p.Tracks {
		secs := int64(-1)
		if track.Length > 0 {
			secs = int64(track.Length / time.Second)
		}

		entries[i] = m3u.Track{
			Path:  track.Filepath,
			Title: track.Title,
			Time:  secs,
		}
	}

	buf := bufio.NewWriter(w)

	if _, err := entries.WriteTo(buf); err != nil {
		return errors.Wrap(err, "failed to write playlist")
	}

	return errors.Wrap(buf.Flush(), "failed to flush")
}
