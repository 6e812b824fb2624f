package playlist

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned when no codec is registered for a file
// extension.
var ErrUnknownFormat = errors.New("unknown playlist format")

type (
	// Reader parses the playlist file at the given path.
	Reader func(path string) (*Playlist, error)
	// Writer writes the playlist to p.Path.
	Writer func(p *Playlist) error
)

type codec struct {
	read  Reader
	write Writer
}

var codecs = map[string]codec{}

// Register registers a playlist codec for the given file extension, including
// the leading dot.
func Register(fileExt string, r Reader, w Writer) {
	codecs[strings.ToLower(fileExt)] = codec{r, w}
}

// SupportedExtensions returns the sorted list of registered extensions.
func SupportedExtensions() []string {
	var exts = make([]string, 0, len(codecs))
	for ext := range codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func lookup(path string) (codec, error) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return codec{}, errors.Wrapf(ErrUnknownFormat, "%q", filepath.Ext(path))
	}
	return c, nil
}

// ParseFile parses the playlist file using the codec matching its extension.
func ParseFile(path string) (*Playlist, error) {
	c, err := lookup(path)
	if err != nil {
		return nil, err
	}

	return c.read(path)
}

// WriteFile writes the playlist to p.Path using the codec matching its
// extension.
func WriteFile(p *Playlist) error {
	c, err := lookup(p.Path)
	if err != nil {
		return err
	}

	return c.write(p)
}

// Playlist is a playlist file's content. Track paths are remote track
// identifiers, not local file paths.
type Playlist struct {
	Name   string
	Path   string
	Tracks []Track
}

// FromTrackIDs creates a playlist whose tracks carry only their identifier
// and the title decoded from it.
func FromTrackIDs(name, path string, ids []string) *Playlist {
	pl := Playlist{
		Name:   name,
		Path:   path,
		Tracks: make([]Track, len(ids)),
	}

	for i, id := range ids {
		pl.Tracks[i] = Track{
			Title:    TitleFromPath(id),
			Filepath: id,
		}
	}

	return &pl
}

// TrackIDs returns the track identifiers in order.
func (pl *Playlist) TrackIDs() []string {
	ids := make([]string, 0, len(pl.Tracks))
	for _, track := range pl.Tracks {
		if track.Filepath == "" {
			continue
		}
		ids = append(ids, track.Filepath)
	}
	return ids
}
