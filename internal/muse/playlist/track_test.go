package playlist

import "testing"

type decodeTest struct {
	path  string
	title string
	dir   string
}

func TestDecodeTrackID(t *testing.T) {
	tests := []decodeTest{
		{"Artist/Album/My_Song.mp3", "My Song", "Home ➙ Artist ➙ Album"},
		{"Root_Song.ogg", "Root Song", "Home"},
		{"Deep_Dir/Sub_Dir/a.b.c.mp3", "a.b.c", "Home ➙ Deep Dir ➙ Sub Dir"},
		{"Dir/noext", "noext", "Home ➙ Dir"},
		{"Dir/Sub/", "", "Home ➙ Dir ➙ Sub"},
		{"", "", "Home"},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			if title := TitleFromPath(test.path); title != test.title {
				t.Errorf("TitleFromPath(%q) = %q, expected %q", test.path, title, test.title)
			}
			if dir := DirectoryLabel(test.path); dir != test.dir {
				t.Errorf("DirectoryLabel(%q) = %q, expected %q", test.path, dir, test.dir)
			}
		})
	}
}

func TestDirOf(t *testing.T) {
	if dir := DirOf("A/B/c.mp3"); dir != "A/B/" {
		t.Errorf("DirOf = %q", dir)
	}
	if dir := DirOf("c.mp3"); dir != "" {
		t.Errorf("DirOf root = %q", dir)
	}
}
