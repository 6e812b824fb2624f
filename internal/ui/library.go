package ui

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/api"
	"github.com/skyjuke/skyjuke/internal/browse"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/muse/metadata"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
	"github.com/skyjuke/skyjuke/internal/state"
	"github.com/skyjuke/skyjuke/internal/ui/render"
)

// minSearchLength is the shortest search term the server accepts.
const minSearchLength = 1

// syncBrowser publishes the browser view as the live browser list.
func (c *Console) syncBrowser() {
	c.session.SetList(state.SourceBrowser, c.cache.View().Tracks)
}

// navigate fetches the listing of a navigation request.
func (c *Console) navigate(req browse.Request) {
	c.tab = state.SourceBrowser
	c.syncBrowser()

	c.async(func() {
		l, err := c.client.Dir(c.ctx, req.Path)

		c.IdleAdd(func() {
			if err != nil {
				if c.cache.HandleError(req.Token) {
					c.alert("%s", api.Message(err))
					c.render()
				}
				return
			}

			if c.cache.HandleListing(req.Token, l) {
				c.syncBrowser()
				c.render()
			}
		})
	})
}

// enter browses the subdirectory at ix of the browser view.
func (c *Console) enter(ix int) {
	dirs := c.cache.View().Dirs
	if ix < 0 || ix >= len(dirs) {
		c.alert("There is no directory %d.", ix+1)
		return
	}

	c.navigate(c.cache.Enter(dirs[ix]))
}

// playingDir browses the directory of the playing track.
func (c *Console) playingDir() {
	_, _, track := c.session.NowPlaying()
	if track == "" {
		c.alert("Nothing is playing.")
		return
	}

	c.navigate(c.cache.Navigate(playlist.DirOf(track)))
}

// filter filters the browser, searching subdirectories if nothing in the
// current directory matches.
func (c *Console) filter(query string) {
	c.tab = state.SourceBrowser

	req, remote := c.cache.ApplyFilter(query)
	c.syncBrowser()

	if !remote {
		return
	}

	c.async(func() {
		matches, err := c.client.SearchInDir(c.ctx, req.Path, req.Term, req.Limit)

		c.IdleAdd(func() {
			if err != nil {
				if c.cache.HandleError(req.Token) {
					c.alert("%s", api.Message(err))
					c.render()
				}
				return
			}

			if c.cache.HandleMatches(req.Token, matches) {
				c.syncBrowser()
				c.render()
			}
		})
	})
}

func (c *Console) clearFilter() {
	c.cache.ClearFilter()
	c.syncBrowser()
}

// issueSearch starts a search, making any search in flight stale.
func (c *Console) issueSearch(op api.Op, term string) (browse.Token, bool) {
	if len(strings.TrimSpace(term)) < minSearchLength {
		c.alert("Minimum search characters: %d", minSearchLength)
		return browse.Token{}, false
	}

	c.search.seq.Invalidate(api.OpSearchTitle)
	c.search.seq.Invalidate(api.OpSearchDir)
	c.search.loading = true
	c.tab = state.SourceSearch

	return c.search.seq.Issue(op), true
}

// searchDone ends a search. It returns false if the answer is stale.
func (c *Console) searchDone(tok browse.Token, err error) bool {
	if !latest(&c.search.seq, tok) {
		return false
	}

	c.search.loading = false

	if err != nil {
		c.alert("%s", api.Message(err))
		c.render()
		return false
	}

	return true
}

func (c *Console) searchTitle(term string) {
	tok, ok := c.issueSearch(api.OpSearchTitle, term)
	if !ok {
		return
	}

	c.async(func() {
		titles, err := c.client.SearchTitle(c.ctx, term)

		c.IdleAdd(func() {
			if !c.searchDone(tok, err) {
				return
			}

			c.search.dirs = nil
			c.session.SetList(state.SourceSearch, titles)
			c.render()
		})
	})
}

func (c *Console) searchDir(term string) {
	tok, ok := c.issueSearch(api.OpSearchDir, term)
	if !ok {
		return
	}

	c.async(func() {
		dirs, err := c.client.SearchDir(c.ctx, term)

		c.IdleAdd(func() {
			if !c.searchDone(tok, err) {
				return
			}

			c.search.dirs = dirs
			c.session.SetList(state.SourceSearch, nil)
			c.render()
		})
	})
}

// openSearchDir browses the found directory at ix.
func (c *Console) openSearchDir(ix int) {
	if ix < 0 || ix >= len(c.search.dirs) {
		c.alert("There is no directory %d.", ix+1)
		return
	}

	c.navigate(c.cache.Navigate(c.search.dirs[ix]))
}

func (c *Console) add(src state.Source, ix int) {
	if track, ok := c.track(src, ix); ok {
		c.session.AddTracks(track)
	}
}

func (c *Console) remove(src state.Source, ix int) {
	if src == state.SourcePlaylist {
		if !c.session.RemoveTrack(ix) {
			c.alert("There is no track %d in the playlist.", ix+1)
		}
		return
	}

	track, ok := c.track(src, ix)
	if !ok {
		return
	}

	if !c.session.RemoveLastTrack(track) {
		c.alert("%s is not in the playlist.", playlist.TitleFromPath(track))
	}
}

func (c *Console) clearPlaylist(confirmed bool) {
	n := c.session.Playlist().Len()
	if n == 0 {
		return
	}

	if !confirmed {
		c.alert(`Clear all %d tracks from the playlist? Type "clearlist yes" to confirm.`, n)
		return
	}

	c.session.ClearPlaylist()
}

// listFolders fetches every directory, ranked by how well it matches query.
func (c *Console) listFolders(query string) {
	c.async(func() {
		dirs, err := c.client.AllDirs(c.ctx)

		c.IdleAdd(func() {
			if err != nil {
				c.alert("%s", api.Message(err))
				c.render()
				return
			}

			c.folders = rankFolders(query, dirs)
			c.render()
		})
	})
}

// rankFolders returns the dirs fuzzily matching query, best first. An empty
// query keeps every directory in order.
func rankFolders(query string, dirs []string) []string {
	if strings.TrimSpace(query) == "" {
		return append([]string{}, dirs...)
	}

	ranks := fuzzy.RankFindFold(query, dirs)
	sort.Stable(ranks)

	folders := make([]string, len(ranks))
	for i, rank := range ranks {
		folders[i] = rank.Target
	}

	return folders
}

// addFolders adds the tracks below the listed folders at indices that are not
// in the playlist yet. Folders are fetched one after another; a folder that
// fails is skipped.
func (c *Console) addFolders(indices []int) {
	var dirs = make([]string, 0, len(indices))
	for _, ix := range indices {
		if ix < 0 || ix >= len(c.folders) {
			c.alert("There is no folder %d.", ix+1)
			return
		}
		dirs = append(dirs, c.folders[ix])
	}

	c.async(func() {
		var tracks []string
		var failed []string

		for _, dir := range dirs {
			t, err := c.client.AllInDir(c.ctx, dir)
			if err != nil {
				logging.Warn("Failed to list folder %q: %v", dir, err)
				failed = append(failed, dir)
				continue
			}
			tracks = append(tracks, t...)
		}

		c.IdleAdd(func() {
			added := c.session.AddTracksUnique(tracks...)
			c.alert("Added %d of %d tracks to the playlist.", added, len(tracks))

			for _, dir := range failed {
				c.alert("Could not read folder %s.", render.DirLabel(dir))
			}

			c.render()
		})
	})
}

// export writes the playlist to a playlist file.
func (c *Console) export(path string) {
	ids := append([]string(nil), c.session.List(state.SourcePlaylist)...)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	c.async(func() {
		err := playlist.WriteFile(playlist.FromTrackIDs(name, path, ids))

		c.IdleAdd(func() {
			if err != nil {
				logging.Error("Failed to export playlist: %v", err)
				c.alert("Failed to export playlist: %v", err)
			} else {
				c.alert("Exported %d tracks to %s.", len(ids), path)
			}
			c.flush()
		})
	})
}

// importFile appends the tracks of a playlist file to the playlist.
func (c *Console) importFile(path string) {
	c.async(func() {
		p, err := playlist.ParseFile(path)

		c.IdleAdd(func() {
			if err != nil {
				logging.Error("Failed parsing playlist: %v", err)
				c.alert("Failed to import playlist: %v", err)
				c.flush()
				return
			}

			ids := p.TrackIDs()
			c.session.AddTracks(ids...)
			c.alert("Imported %d tracks from %s.", len(ids), path)
			c.render()
		})
	})
}

// info shows the tags of a track.
func (c *Console) info(src state.Source, ix int) {
	id, ok := c.track(src, ix)
	if !ok {
		return
	}

	c.async(func() {
		var md *metadata.Metadata

		url, err := c.client.AudioURL(c.ctx, id)
		if err == nil {
			md, err = metadata.Probe(c.ctx, c.http, url)
		}

		c.IdleAdd(func() {
			switch {
			case errors.Is(err, metadata.ErrNoTags):
				c.alert("%s has no tags.", playlist.TitleFromPath(id))
			case err != nil:
				c.alert("%s", api.Message(err))
			default:
				c.alertTags(id, md)
			}
			c.flush()
		})
	})
}

func (c *Console) alertTags(id string, md *metadata.Metadata) {
	track := playlist.Track{
		Title:    playlist.TitleFromPath(id),
		Filepath: id,
	}
	md.Apply(&track)

	c.alert("Title: %s", track.Title)
	if track.Artist != "" {
		c.alert("Artist: %s", track.Artist)
	}
	if track.Album != "" {
		c.alert("Album: %s", track.Album)
	}
	if track.Number > 0 {
		c.alert("Track: %d", track.Number)
	}
	if md.Genre != "" {
		c.alert("Genre: %s", md.Genre)
	}
	if md.Year > 0 {
		c.alert("Year: %d", md.Year)
	}
	c.alert("Format: %s %s", md.FileType, md.Format)
	if md.Picture != nil {
		c.alert("Cover: %s, %d bytes", md.Picture.MIMEType, md.Picture.Size)
	}
}
