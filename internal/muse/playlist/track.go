package playlist

import (
	"strings"
	"time"
)

const (
	// RootLabel is the virtual root shown in front of every directory label.
	RootLabel = "Home"
	// DirSeparator separates directory labels.
	DirSeparator = " ➙ "
)

// Track is a playlist entry. Filepath holds the track identifier.
type Track struct {
	Title   string
	Artist  string
	Album   string
	Number  int
	Length  time.Duration
	Bitrate int

	Filepath string
}

var underscores = strings.NewReplacer("_", " ")

// TitleFromPath decodes the display title of a track identifier: the last
// path segment with underscores turned into spaces and the extension removed.
func TitleFromPath(path string) string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	name = underscores.Replace(name)

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	return name
}

// DirectoryLabel decodes the directory part of a track identifier into a
// breadcrumb-like label starting with RootLabel. The final segment is always
// dropped, so a directory path must end with a slash.
func DirectoryLabel(path string) string {
	parts := strings.Split(RootLabel+"/"+underscores.Replace(path), "/")
	return strings.Join(parts[:len(parts)-1], DirSeparator)
}

// DirOf returns the directory of the track identifier with a trailing slash,
// or an empty string for root-level tracks.
func DirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i+1]
}
