package state

// Snapshot is a JSON-friendly copy of the session.
type Snapshot struct {
	Source    string `json:"source"`
	Index     int    `json:"index"`
	Track     string `json:"track,omitempty"`
	Shuffling bool   `json:"shuffling"`
	Playlist  int    `json:"playlist_length"`
	Browser   int    `json:"browser_length"`
	Search    int    `json:"search_length"`
	Active    int    `json:"active_length"`
}

// Snapshot copies the session for reporting.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Source:    s.playing.Source.String(),
		Index:     s.playing.Index,
		Track:     s.playing.Track,
		Shuffling: s.shuffling,
		Playlist:  s.playlist.Len(),
		Browser:   len(s.lists[SourceBrowser]),
		Search:    len(s.lists[SourceSearch]),
		Active:    len(s.activeList()),
	}
}
