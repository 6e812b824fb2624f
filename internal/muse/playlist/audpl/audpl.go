package audpl

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diamondburned/audpl"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
)

// uriScheme prefixes remote track identifiers inside audpl files, which only
// carry URIs.
const uriScheme = "skyjuke:///"

func init() {
	playlist.Register(".audpl", Parse, Write)
}

// Parse reads an Audacious playlist. Only entries written by Write (or plain
// relative paths) are kept.
func Parse(path string) (*playlist.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	f.SetDeadline(time.Now().Add(15 * time.Second))

	p, err := audpl.Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse audpl")
	}

	var playlistCopy = playlist.Playlist{
		Name:   p.Name,
		Path:   path,
		Tracks: make([]playlist.Track, 0, len(p.Tracks)),
	}

	for _, track := range p.Tracks {
		id, ok := trackID(track.URI)
		if !ok {
			logging.Warn("audpl: ignoring entry outside the library: %s", track.URI)
			continue
		}

		trackNum, _ := strconv.Atoi(track.TrackNumber)
		lengthMs, _ := strconv.Atoi(track.Length)
		bitrateKbit, _ := strconv.Atoi(track.Bitrate)

		title := track.Title
		if title == "" {
			title = playlist.TitleFromPath(id)
		}

		playlistCopy.Tracks = append(playlistCopy.Tracks, playlist.Track{
			Title:    title,
			Artist:   track.Artist,
			Album:    track.Album,
			Number:   trackNum,
			Length:   time.Duration(lengthMs) * time.Millisecond,
			Bitrate:  bitrateKbit * 1000,
			Filepath: id,
		})
	}

	return &playlistCopy, nil
}

func trackID(uri string) (string, bool) {
	switch {
	case strings.HasPrefix(uri, uriScheme):
		return strings.TrimPrefix(uri, uriScheme), true
	case strings.Contains(uri, "://"), strings.HasPrefix(uri, "/"), uri == "":
		return "", false
	default:
		return uri, true
	}
}

// Write writes the playlist as an Audacious playlist at p.Path.
func Write(p *playlist.Playlist) error {
	plist := audpl.Playlist{
		Name:   p.Name,
		Tracks: make([]audpl.Track, len(p.Tracks)),
	}

	for i, track := range p.Tracks {
		plist.Tracks[i] = audpl.Track{
			Title:       track.Title,
			Artist:      track.Artist,
			Album:       track.Album,
			TrackNumber: strconv.Itoa(track.Number),
			Length:      strconv.Itoa(int(track.Length / time.Millisecond)),
			Bitrate:     strconv.Itoa(track.Bitrate / 1000),
			URI:         uriScheme + track.Filepath,
		}
	}

	f, err := os.Create(p.Path)
	if err != nil {
		return errors.Wrap(err, "failed to create playlist file")
	}
	defer f.Close()

	buf := bufio.NewWriter(f)

	if err := plist.SaveTo(buf); err != nil {
		return errors.Wrap(err, "failed to write playlist")
	}

	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush")
	}

	return nil
}
