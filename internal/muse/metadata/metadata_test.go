package metadata

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
)

// id3v1 builds a file ending with an ID3v1.1 tag.
func id3v1(title, artist, album string, track byte) []byte {
	field := func(s string, n int) []byte {
		b := make([]byte, n)
		copy(b, s)
		return b
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, 256)) // audio
	buf.WriteString("TAG")
	buf.Write(field(title, 30))
	buf.Write(field(artist, 30))
	buf.Write(field(album, 30))
	buf.Write(field("1999", 4))

	comment := field("", 30)
	comment[29] = track
	buf.Write(comment)
	buf.WriteByte(255)

	return buf.Bytes()
}

func TestRead(t *testing.T) {
	md, err := Read(bytes.NewReader(id3v1("Intro", "Artist", "Album", 3)))
	if err != nil {
		t.Fatal("failed to read:", err)
	}

	if md.Title != "Intro" || md.Artist != "Artist" || md.Album != "Album" {
		t.Fatalf("unexpected tags: %+v", md)
	}

	var track = playlist.Track{Title: "01 Intro", Filepath: "Artist/Album/01_Intro.mp3"}
	md.Apply(&track)

	expect := playlist.Track{
		Title:    "Intro",
		Artist:   "Artist",
		Album:    "Album",
		Number:   md.Track,
		Filepath: "Artist/Album/01_Intro.mp3",
	}

	if diff := deep.Equal(track, expect); diff != nil {
		t.Fatal("applied track mismatch:", diff)
	}
}

func TestReadNoTags(t *testing.T) {
	if _, err := Read(bytes.NewReader(make([]byte, 512))); err == nil {
		t.Fatal("expected an error for an untagged file")
	}
}

func TestProbe(t *testing.T) {
	file := id3v1("Song", "Band", "Record", 1)

	var ranged bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ranged = r.Header.Get("Range") != ""
		http.ServeContent(w, r, "song.mp3", time.Time{}, bytes.NewReader(file))
	}))
	defer srv.Close()

	md, err := Probe(context.Background(), srv.Client(), srv.URL+"/song.mp3")
	if err != nil {
		t.Fatal("failed to probe:", err)
	}

	if !ranged {
		t.Error("probe did not send a range request")
	}

	if md.Title != "Song" || md.Artist != "Band" {
		t.Fatalf("unexpected tags: %+v", md)
	}
}

func TestProbeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Probe(context.Background(), nil, srv.URL); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNormalizeExt(t *testing.T) {
	for in, expect := range map[string]string{".JPG": "jpeg", "png": "png", "": ""} {
		if got := normalizeExt(in); got != expect {
			t.Errorf("normalizeExt(%q) = %q, expected %q", in, got, expect)
		}
	}
}
