package browse

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/skyjuke/skyjuke/internal/api"
)

func loadedCache(t *testing.T, dir string, dirs, files []string) *Cache {
	t.Helper()

	c := NewCache(200)
	req := c.Navigate(dir)

	if !c.HandleListing(req.Token, &api.Listing{Dir: req.Path, Dirs: dirs, Files: files}) {
		t.Fatal("fresh listing dropped")
	}

	return c
}

var tenFiles = []string{
	"Alpha.mp3", "Bravo.mp3", "Charlie.mp3", "Delta.mp3", "Echo.mp3",
	"Foxtrot.mp3", "Golf.mp3", "Hotel.mp3", "India.mp3", "Juliett.mp3",
}

func TestFilterLocal(t *testing.T) {
	c := loadedCache(t, "Music/", nil, tenFiles)

	// Charlie and Echo.
	req, remote := c.ApplyFilter("CH")
	if remote {
		t.Fatalf("unexpected remote search %+v", req)
	}

	view := c.View()
	expect := []string{"Music/Charlie.mp3", "Music/Echo.mp3"}

	if diff := deep.Equal(view.Tracks, expect); diff != nil {
		t.Fatal("filtered tracks mismatch:", diff)
	}

	if c.Loading(api.OpSearchInDir) {
		t.Fatal("local filter left a search loading")
	}
}

func TestFilterMatchesTitle(t *testing.T) {
	c := loadedCache(t, "", []string{"Live_Sets", "Studio"}, []string{"My_Song.mp3", "Other.mp3"})

	if _, remote := c.ApplyFilter("my song"); remote {
		t.Fatal("title match went remote")
	}

	if diff := deep.Equal(c.View().Tracks, []string{"My_Song.mp3"}); diff != nil {
		t.Fatal(diff)
	}

	if _, remote := c.ApplyFilter("studio"); remote {
		t.Fatal("directory match went remote")
	}

	view := c.View()
	if diff := deep.Equal(view.Dirs, []string{"Studio"}); diff != nil {
		t.Fatal(diff)
	}
	if len(view.Tracks) != 0 {
		t.Fatalf("unexpected tracks %v", view.Tracks)
	}
}

func TestFilterRemote(t *testing.T) {
	c := loadedCache(t, "Music/", []string{"Sub"}, tenFiles)

	req, remote := c.ApplyFilter("zulu")
	if !remote {
		t.Fatal("expected a remote search")
	}

	expect := Request{
		Token: req.Token,
		Path:  "Music/",
		Term:  "zulu",
		Limit: 200,
	}

	if diff := deep.Equal(req, expect); diff != nil {
		t.Fatal("request mismatch:", diff)
	}

	if req.Token.Op != api.OpSearchInDir {
		t.Fatalf("unexpected op %s", req.Token.Op)
	}

	if !c.View().Pending {
		t.Fatal("view not pending")
	}

	ok := c.HandleMatches(req.Token, []api.Match{
		{Path: "Music/Sub/Zulu.mp3", Title: "Zulu", Dir: "Music/Sub/"},
	})
	if !ok {
		t.Fatal("fresh matches dropped")
	}

	view := c.View()
	if !view.Remote || view.Pending {
		t.Fatalf("unexpected view flags %+v", view)
	}

	if diff := deep.Equal(view.Tracks, []string{"Music/Sub/Zulu.mp3"}); diff != nil {
		t.Fatal(diff)
	}

	// The fallback is not a navigation.
	if c.Cursor().Path != "Music/" {
		t.Fatalf("path changed to %q", c.Cursor().Path)
	}

	c.ClearFilter()

	view = c.View()
	if view.Remote || len(view.Tracks) != 10 || len(view.Dirs) != 1 {
		t.Fatalf("plain view not restored: %+v", view)
	}
}

func TestFilterStale(t *testing.T) {
	c := loadedCache(t, "", nil, tenFiles)

	first, _ := c.ApplyFilter("x1")
	second, _ := c.ApplyFilter("x2")

	if c.HandleMatches(first.Token, []api.Match{{Path: "old.mp3"}}) {
		t.Fatal("stale matches accepted")
	}

	if !c.HandleMatches(second.Token, []api.Match{{Path: "new.mp3"}}) {
		t.Fatal("fresh matches dropped")
	}

	if diff := deep.Equal(c.View().Tracks, []string{"new.mp3"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestFilterClearedBeforeAnswer(t *testing.T) {
	c := loadedCache(t, "", nil, tenFiles)

	req, _ := c.ApplyFilter("nothing")
	c.ClearFilter()

	if c.HandleMatches(req.Token, []api.Match{{Path: "late.mp3"}}) {
		t.Fatal("matches accepted after the filter was cleared")
	}

	if len(c.View().Tracks) != 10 {
		t.Fatal("plain view lost")
	}
}

func TestNavigateStale(t *testing.T) {
	c := NewCache(200)

	a := c.Navigate("A")
	b := c.Navigate("B/")

	if !c.Loading(api.OpDir) {
		t.Fatal("not loading")
	}

	if !c.HandleListing(b.Token, &api.Listing{Dir: "B/", Files: []string{"b.mp3"}}) {
		t.Fatal("fresh listing dropped")
	}

	if c.HandleListing(a.Token, &api.Listing{Dir: "A/", Files: []string{"a.mp3"}}) {
		t.Fatal("stale listing accepted")
	}

	if c.Cursor().Path != "B/" || c.Loading(api.OpDir) {
		t.Fatalf("unexpected state %+v", c.Cursor())
	}
}

func TestNavigateClearsFilter(t *testing.T) {
	c := loadedCache(t, "A/", []string{"B"}, tenFiles)
	c.ApplyFilter("alpha")

	req := c.Enter("B")
	if c.Filtering() {
		t.Fatal("filter kept after navigating")
	}

	if req.Path != "A/B/" {
		t.Fatalf("unexpected path %q", req.Path)
	}
}

func TestListingAbandonsFilterSearch(t *testing.T) {
	c := loadedCache(t, "A/", nil, tenFiles)

	nav := c.Navigate("B/")
	search, remote := c.ApplyFilter("zulu")
	if !remote {
		t.Fatal("expected a remote search")
	}

	if !c.HandleListing(nav.Token, &api.Listing{Dir: "B/", Files: []string{"b.mp3"}}) {
		t.Fatal("fresh listing dropped")
	}

	if c.Loading(api.OpSearchInDir) {
		t.Fatal("search still loading after the listing landed")
	}

	if c.HandleMatches(search.Token, []api.Match{{Path: "A/Zulu.mp3"}}) {
		t.Fatal("matches of the old directory accepted")
	}

	if diff := deep.Equal(c.View().Tracks, []string{"B/b.mp3"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestNavigateError(t *testing.T) {
	c := loadedCache(t, "A/", nil, tenFiles)

	req := c.Navigate("Missing/")
	if !c.HandleError(req.Token) {
		t.Fatal("error of the latest request dropped")
	}

	if c.Cursor().Path != "A/" || len(c.View().Tracks) != 10 {
		t.Fatal("cache changed by a failed request")
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor("/Artist//Album")

	if c.Path != "Artist/Album/" {
		t.Fatalf("unexpected path %q", c.Path)
	}

	if diff := deep.Equal(c.Segments, []string{"Artist", "Album"}); diff != nil {
		t.Fatal(diff)
	}

	if crumb, _ := c.Crumb(0); crumb != "Artist/" {
		t.Fatalf("unexpected crumb %q", crumb)
	}

	if _, ok := c.Crumb(2); ok {
		t.Fatal("crumb out of range")
	}

	if c.Parent() != "Artist/" {
		t.Fatalf("unexpected parent %q", c.Parent())
	}

	root := NewCursor("")
	if !root.IsRoot() || root.Parent() != "" || len(root.Segments) != 0 {
		t.Fatalf("unexpected root %+v", root)
	}
}

func TestSequencer(t *testing.T) {
	var s Sequencer

	dir := s.Issue(api.OpDir)
	search := s.Issue(api.OpSearchInDir)

	if !s.Latest(dir) || !s.Latest(search) {
		t.Fatal("tokens of different operations fence each other")
	}

	s.Invalidate(api.OpDir)

	if s.Latest(dir) {
		t.Fatal("invalidated token still latest")
	}

	if s.Latest(Token{}) {
		t.Fatal("zero token accepted")
	}
}
