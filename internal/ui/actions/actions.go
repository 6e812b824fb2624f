// Package actions defines the typed commands of the console and parses them
// from text lines.
package actions

import "github.com/skyjuke/skyjuke/internal/state"

// Action is the base interface for all commands.
type Action interface{}

// ===== PLAYBACK ACTIONS =====

// SelectAction plays the track at Index of a list, attaching the list.
type SelectAction struct {
	Source state.Source
	Index  int
}
type NextAction struct{}
type PreviousAction struct{}
type TogglePlayAction struct{}

// StopAction pauses and rewinds, or detaches if already paused at the start.
type StopAction struct{}
type SeekAction struct {
	Seconds  float64
	Relative bool
}
type ShuffleAction struct {
	Toggle bool
	On     bool
}

// ===== BROWSER ACTIONS =====

type HomeAction struct{}
type EnterAction struct {
	Index int
}
type CrumbAction struct {
	Index int
}
type UpAction struct{}
type BrowseAction struct {
	Path string
}

// PlayingDirAction opens the directory of the playing track.
type PlayingDirAction struct{}
type FilterAction struct {
	Query string
}
type ClearFilterAction struct{}
type ReloadAction struct{}

// ===== SEARCH ACTIONS =====

type SearchTitleAction struct {
	Term string
}
type SearchDirAction struct {
	Term string
}

// OpenSearchDirAction browses a directory found by SearchDirAction.
type OpenSearchDirAction struct {
	Index int
}

// ===== PLAYLIST ACTIONS =====

type AddAction struct {
	Source state.Source
	Index  int
}

// RemoveAction removes a playlist entry. From the playlist it removes the
// entry at Index; from another list it removes the last playlist occurrence
// of the track at Index.
type RemoveAction struct {
	Source state.Source
	Index  int
}
type ClearPlaylistAction struct {
	Confirmed bool
}

// FoldersAction lists the server's directories, best matches of Query first.
type FoldersAction struct {
	Query string
}

// AddFoldersAction adds every track below the listed folders at Indices,
// skipping tracks already in the playlist.
type AddFoldersAction struct {
	Indices []int
}
type ExportAction struct {
	Path string
}
type ImportAction struct {
	Path string
}

// ===== VIEW ACTIONS =====

type ShowAction struct {
	Tab state.Source
}
type InfoAction struct {
	Source state.Source
	Index  int
}
type StatusAction struct{}
type HelpAction struct{}
type QuitAction struct{}
