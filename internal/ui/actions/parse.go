package actions

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/state"
)

// Help lists the commands understood by Parse.
const Help = `Commands (list indices start at 1; lists are b=browser, p=playlist, s=search):
  play L N           play track N of list L
  next, prev         next or previous track
  pause              toggle pause
  stop               pause and rewind; again to stop
  seek [+|-]T        seek to or by T (seconds or [HH:]MM:SS)
  shuffle [on|off]   toggle or set shuffle
  home, up           browse the root or the parent directory
  cd N|PATH          enter directory N or browse PATH
  crumb N            browse breadcrumb segment N
  goto               browse the directory of the playing track
  filter TEXT, /TEXT filter the directory, clear with "filter"
  reload             reload the directory
  title TERM         search track titles
  dir TERM           search directories
  open N             browse found directory N
  add L N            add track N of list L to the playlist
  rm L N             remove track N of list L from the playlist
  clearlist [yes]    clear the playlist
  folders [QUERY]    list directories to add
  addfolders N...    add every track of the listed directories
  export FILE        write the playlist to an .m3u or .audpl file
  import FILE        append an .m3u or .audpl file to the playlist
  info L N           show the tags of track N of list L
  tab L              show list L
  status             show the status line
  help, quit`

// Parse parses a command line. An empty line gives a StatusAction.
func Parse(line string) (Action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return StatusAction{}, nil
	}

	if strings.HasPrefix(line, "/") {
		return FilterAction{Query: strings.TrimPrefix(line, "/")}, nil
	}

	cmd, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		cmd, rest = line[:i], strings.TrimSpace(line[i+1:])
	}

	args := strings.Fields(rest)

	switch strings.ToLower(cmd) {
	case "play", "p":
		src, ix, err := parseItem(args)
		if err != nil {
			return nil, err
		}
		return SelectAction{Source: src, Index: ix}, nil

	case "next", "n":
		return NextAction{}, nil
	case "prev", "previous":
		return PreviousAction{}, nil
	case "pause", "toggle":
		return TogglePlayAction{}, nil
	case "stop":
		return StopAction{}, nil

	case "seek":
		if len(args) != 1 {
			return nil, errors.New("usage: seek [+|-]T")
		}
		return parseSeek(args[0])

	case "shuffle":
		switch len(args) {
		case 0:
			return ShuffleAction{Toggle: true}, nil
		case 1:
			on, err := parseSwitch(args[0])
			if err != nil {
				return nil, err
			}
			return ShuffleAction{On: on}, nil
		}
		return nil, errors.New("usage: shuffle [on|off]")

	case "home":
		return HomeAction{}, nil
	case "up", "..":
		return UpAction{}, nil
	case "goto":
		return PlayingDirAction{}, nil
	case "reload":
		return ReloadAction{}, nil

	case "cd":
		if rest == "" {
			return HomeAction{}, nil
		}
		if n, err := strconv.Atoi(rest); err == nil {
			ix, err := index(n)
			if err != nil {
				return nil, err
			}
			return EnterAction{Index: ix}, nil
		}
		return BrowseAction{Path: rest}, nil

	case "crumb":
		ix, err := parseIndex(args)
		if err != nil {
			return nil, err
		}
		return CrumbAction{Index: ix}, nil

	case "filter":
		if rest == "" {
			return ClearFilterAction{}, nil
		}
		return FilterAction{Query: rest}, nil

	case "title":
		return SearchTitleAction{Term: rest}, nil
	case "dir":
		return SearchDirAction{Term: rest}, nil

	case "open":
		ix, err := parseIndex(args)
		if err != nil {
			return nil, err
		}
		return OpenSearchDirAction{Index: ix}, nil

	case "add":
		src, ix, err := parseItem(args)
		if err != nil {
			return nil, err
		}
		if src == state.SourcePlaylist {
			return nil, errors.New("add takes tracks from b or s")
		}
		return AddAction{Source: src, Index: ix}, nil

	case "rm", "remove":
		src, ix, err := parseItem(args)
		if err != nil {
			return nil, err
		}
		return RemoveAction{Source: src, Index: ix}, nil

	case "clearlist":
		return ClearPlaylistAction{Confirmed: rest == "yes" || rest == "y"}, nil

	case "folders":
		return FoldersAction{Query: rest}, nil

	case "addfolders":
		if len(args) == 0 {
			return nil, errors.New("usage: addfolders N...")
		}
		var a AddFoldersAction
		for _, arg := range args {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, errors.Errorf("invalid folder number %q", arg)
			}
			ix, err := index(n)
			if err != nil {
				return nil, err
			}
			a.Indices = append(a.Indices, ix)
		}
		return a, nil

	case "export":
		if rest == "" {
			return nil, errors.New("usage: export FILE")
		}
		return ExportAction{Path: rest}, nil
	case "import":
		if rest == "" {
			return nil, errors.New("usage: import FILE")
		}
		return ImportAction{Path: rest}, nil

	case "info":
		src, ix, err := parseItem(args)
		if err != nil {
			return nil, err
		}
		return InfoAction{Source: src, Index: ix}, nil

	case "tab":
		if len(args) != 1 {
			return nil, errors.New("usage: tab b|p|s")
		}
		src, err := ParseSource(args[0])
		if err != nil {
			return nil, err
		}
		return ShowAction{Tab: src}, nil

	case "status":
		return StatusAction{}, nil
	case "help", "?":
		return HelpAction{}, nil
	case "quit", "q", "exit":
		return QuitAction{}, nil
	}

	return nil, errors.Errorf("unknown command %q, try help", cmd)
}

// ParseSource parses a list name.
func ParseSource(s string) (state.Source, error) {
	switch strings.ToLower(s) {
	case "b", "browser":
		return state.SourceBrowser, nil
	case "p", "playlist":
		return state.SourcePlaylist, nil
	case "s", "search":
		return state.SourceSearch, nil
	}
	return state.SourceNone, errors.Errorf("unknown list %q", s)
}

// parseItem parses "L N" into a source and a zero-based index.
func parseItem(args []string) (state.Source, int, error) {
	if len(args) != 2 {
		return state.SourceNone, 0, errors.New("expected a list and a track number")
	}

	src, err := ParseSource(args[0])
	if err != nil {
		return state.SourceNone, 0, err
	}

	ix, err := parseIndex(args[1:])
	if err != nil {
		return state.SourceNone, 0, err
	}

	return src, ix, nil
}

func parseIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a number")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errors.Errorf("invalid number %q", args[0])
	}

	return index(n)
}

// index converts a one-based number into an index.
func index(n int) (int, error) {
	if n < 1 {
		return 0, errors.Errorf("invalid number %d", n)
	}
	return n - 1, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, errors.Errorf("expected on or off, got %q", s)
}

func parseSeek(arg string) (Action, error) {
	var a SeekAction

	switch {
	case strings.HasPrefix(arg, "+"):
		a.Relative = true
		arg = arg[1:]
	case strings.HasPrefix(arg, "-"):
		a.Relative = true
	}

	secs, err := parseTime(strings.TrimPrefix(arg, "-"))
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(arg, "-") {
		secs = -secs
	}

	a.Seconds = secs
	return a, nil
}

// parseTime parses seconds or [HH:]MM:SS.
func parseTime(s string) (float64, error) {
	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.Errorf("invalid time %q", s)
		}
		return f, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errors.Errorf("invalid time %q", s)
	}

	var d time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, errors.Errorf("invalid time %q", s)
		}
		d = d*60 + time.Duration(n)
	}

	return (d * time.Second).Seconds(), nil
}
