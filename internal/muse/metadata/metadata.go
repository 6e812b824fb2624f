// Package metadata reads the embedded tags of a remote track.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
)

// HeadBytes is how much of the file is fetched. ID3v2 and the other leading
// tag formats fit in it unless the embedded picture is huge.
const HeadBytes = 512 << 10

// ErrNoTags is returned when the file has no readable tags.
var ErrNoTags = tag.ErrNoTagsFound

// Metadata is the tag data of a track.
type Metadata struct {
	Format   string
	FileType string

	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	Track       int
	Tracks      int

	Picture *Picture
}

// Picture describes an embedded album art.
type Picture struct {
	MIMEType  string
	Extension string // jpeg, ...
	Size      int
}

// Probe fetches the start of the file at url with a range request and reads
// its tags.
func Probe(ctx context.Context, client *http.Client, url string) (*Metadata, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", HeadBytes-1))

	r, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch track")
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusPartialContent {
		return nil, errors.Errorf("failed to fetch track: HTTP error %d", r.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, HeadBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read track")
	}

	return Read(bytes.NewReader(b))
}

// Read reads the tags from r.
func Read(r io.ReadSeeker) (*Metadata, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tags")
	}

	track, tracks := m.Track()

	md := Metadata{
		Format:      string(m.Format()),
		FileType:    string(m.FileType()),
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		AlbumArtist: strings.TrimSpace(m.AlbumArtist()),
		Album:       strings.TrimSpace(m.Album()),
		Genre:       strings.TrimSpace(m.Genre()),
		Year:        m.Year(),
		Track:       track,
		Tracks:      tracks,
	}

	if pic := m.Picture(); pic != nil {
		md.Picture = &Picture{
			MIMEType:  pic.MIMEType,
			Extension: normalizeExt(pic.Ext),
			Size:      len(pic.Data),
		}
	}

	return &md, nil
}

// Apply copies the tags into t, keeping the fields that have no tag.
func (md *Metadata) Apply(t *playlist.Track) {
	if md.Title != "" {
		t.Title = md.Title
	}
	if md.Artist != "" {
		t.Artist = md.Artist
	} else if md.AlbumArtist != "" {
		t.Artist = md.AlbumArtist
	}
	if md.Album != "" {
		t.Album = md.Album
	}
	if md.Track > 0 {
		t.Number = md.Track
	}
}

func normalizeExt(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	ext = strings.ToLower(ext)

	if ext == "jpg" {
		ext = "jpeg"
	}

	return ext
}
