package ui

import (
	"fmt"

	"github.com/skyjuke/skyjuke/internal/state"
	"github.com/skyjuke/skyjuke/internal/ui/actions"
)

// Dispatch runs an action on the event loop's state and draws the result.
func (c *Console) Dispatch(action actions.Action) {
	switch a := action.(type) {
	// Playback.
	case actions.SelectAction:
		c.Select(a.Source, a.Index)
	case actions.NextAction:
		c.Next()
	case actions.PreviousAction:
		c.Previous()
	case actions.TogglePlayAction:
		c.TogglePlay()
	case actions.StopAction:
		c.Stop()
	case actions.SeekAction:
		if a.Relative {
			c.Skip(a.Seconds)
		} else {
			c.Seek(a.Seconds)
		}
	case actions.ShuffleAction:
		on := a.On
		if a.Toggle {
			on = !c.session.IsShuffling()
		}
		c.SetShuffle(on)

	// Browser.
	case actions.HomeAction:
		c.navigate(c.cache.Home())
	case actions.UpAction:
		c.navigate(c.cache.Up())
	case actions.ReloadAction:
		c.navigate(c.cache.Reload())
	case actions.BrowseAction:
		c.navigate(c.cache.Navigate(a.Path))
	case actions.EnterAction:
		c.enter(a.Index)
	case actions.CrumbAction:
		req, ok := c.cache.Crumb(a.Index)
		if !ok {
			c.alert("There is no breadcrumb %d.", a.Index+1)
			break
		}
		c.navigate(req)
	case actions.PlayingDirAction:
		c.playingDir()
	case actions.FilterAction:
		c.filter(a.Query)
	case actions.ClearFilterAction:
		c.clearFilter()

	// Search.
	case actions.SearchTitleAction:
		c.searchTitle(a.Term)
	case actions.SearchDirAction:
		c.searchDir(a.Term)
	case actions.OpenSearchDirAction:
		c.openSearchDir(a.Index)

	// Playlist.
	case actions.AddAction:
		c.add(a.Source, a.Index)
	case actions.RemoveAction:
		c.remove(a.Source, a.Index)
	case actions.ClearPlaylistAction:
		c.clearPlaylist(a.Confirmed)
	case actions.FoldersAction:
		c.listFolders(a.Query)
	case actions.AddFoldersAction:
		c.addFolders(a.Indices)
	case actions.ExportAction:
		c.export(a.Path)
	case actions.ImportAction:
		c.importFile(a.Path)

	// View.
	case actions.ShowAction:
		// Showing the browser again goes up one directory.
		if a.Tab == state.SourceBrowser && c.tab == state.SourceBrowser && !c.cache.Cursor().IsRoot() {
			c.navigate(c.cache.Up())
			break
		}
		c.tab = a.Tab
	case actions.InfoAction:
		c.info(a.Source, a.Index)
	case actions.StatusAction:
		c.flush()
		return
	case actions.HelpAction:
		fmt.Fprintln(c.out, actions.Help)
		return
	case actions.QuitAction:
		c.Quit()
		return

	default:
		c.alert("Unhandled action %T.", action)
	}

	c.render()
}
