package state

// Source identifies which track list is attached to playback.
type Source uint8

const (
	SourceNone Source = iota
	SourceBrowser
	SourcePlaylist
	SourceSearch
	sourceLen
)

var sourceNames = [sourceLen]string{
	SourceNone:     "none",
	SourceBrowser:  "browser",
	SourcePlaylist: "playlist",
	SourceSearch:   "search",
}

func (s Source) String() string {
	if s < sourceLen {
		return sourceNames[s]
	}
	return "invalid"
}
