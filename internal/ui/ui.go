// Package ui is the interactive console. Every state change runs on a single
// event loop; blocking work runs in goroutines that hand their results back
// through IdleAdd.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/skyjuke/skyjuke/internal/api"
	"github.com/skyjuke/skyjuke/internal/browse"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
	"github.com/skyjuke/skyjuke/internal/mpris"
	"github.com/skyjuke/skyjuke/internal/muse"
	"github.com/skyjuke/skyjuke/internal/state"
	"github.com/skyjuke/skyjuke/internal/ui/actions"
	"github.com/skyjuke/skyjuke/internal/ui/render"
)

// maxErrorThreshold is the error threshold before the player stops seeking.
// Refer to errCounter.
const maxErrorThreshold = 3

// statusTimeout bounds how long Status waits for the event loop.
const statusTimeout = time.Second

// opAudio keys the audio URL requests.
const opAudio api.Op = "audio"

// Player plays resolved audio URLs.
type Player interface {
	Play(url string) error
	SetPlay(playing bool) error
	Paused() bool
	PlayTime() (pos, rem float64)
	Seek(pos float64) error
	Rewind() error
	Unload() error
}

var (
	_ Player            = (*muse.Session)(nil)
	_ muse.EventHandler = (*Console)(nil)
	_ mpris.Controller  = (*Console)(nil)
)

// Options are the dependencies of a Console.
type Options struct {
	Session *state.Session
	Client  *api.Client
	Player  Player
	// HTTP fetches track tags. It defaults to http.DefaultClient.
	HTTP *http.Client

	// FilterLimit bounds the recursive filter search.
	FilterLimit int

	Output io.Writer
	// Width returns the output width in columns.
	Width func() int
}

type Console struct {
	session *state.Session
	cache   *browse.Cache
	client  *api.Client
	player  Player
	http    *http.Client

	out   io.Writer
	width func() int

	tab    state.Source
	alerts []string

	search struct {
		seq     browse.Sequencer
		dirs    []string
		loading bool
	}

	// folders is the last folder listing, for AddFoldersAction.
	folders []string
	// audio drops audio URLs resolved for a track that is no longer playing.
	audio browse.Sequencer

	// errCounter is the counter to print errors before pausing.
	errCounter int

	ctx    context.Context
	cancel context.CancelFunc

	events   chan func()
	done     chan struct{}
	quitOnce sync.Once

	// async runs blocking work; idle runs a function on the event loop.
	async func(func())
	idle  func(func())
}

// NewConsole creates a console. It does nothing until Run is called.
func NewConsole(o Options) *Console {
	if o.HTTP == nil {
		o.HTTP = http.DefaultClient
	}
	if o.Output == nil {
		o.Output = io.Discard
	}
	if o.Width == nil {
		o.Width = func() int { return render.DefaultWidth }
	}

	c := &Console{
		session: o.Session,
		cache:   browse.NewCache(o.FilterLimit),
		client:  o.Client,
		player:  o.Player,
		http:    o.HTTP,
		out:     o.Output,
		width:   o.Width,
		tab:     state.SourceBrowser,
		events:  make(chan func(), 64),
		done:    make(chan struct{}),
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.async = func(f func()) { go f() }
	c.idle = func(f func()) {
		select {
		case c.events <- f:
		case <-c.done:
		}
	}

	metrics.PlaylistLength.Set(float64(c.session.Playlist().Len()))
	c.session.OnUpdate(func(s *state.Session) {
		metrics.PlaylistLength.Set(float64(s.Playlist().Len()))
	})

	return c
}

// Run loads the root directory, then reads commands from in until the input
// ends, the user quits or ctx is canceled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	go c.readLines(in)

	c.IdleAdd(func() {
		c.navigate(c.cache.Home())
		c.render()
	})

	for {
		select {
		case <-ctx.Done():
			c.Quit()
			return ctx.Err()
		case <-c.done:
			return nil
		case f := <-c.events:
			f()
		}
	}
}

func (c *Console) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		a, err := actions.Parse(scanner.Text())

		c.IdleAdd(func() {
			if err != nil {
				c.alert("%s", err)
				c.flush()
				return
			}
			c.Dispatch(a)
		})
	}

	if err := scanner.Err(); err != nil {
		logging.Error("Failed to read input: %v", err)
	}

	c.IdleAdd(c.Quit)
}

// IdleAdd runs f on the event loop.
func (c *Console) IdleAdd(f func()) {
	c.idle(f)
}

// Quit stops the event loop and abandons every request in flight.
func (c *Console) Quit() {
	c.quitOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
}

// Status returns a snapshot of the session, or nil if the event loop does not
// answer in time. It may be called from any goroutine.
func (c *Console) Status() interface{} {
	ch := make(chan state.Snapshot, 1)
	// The queue may be full while the loop is stuck, so don't block on it.
	go c.IdleAdd(func() { ch <- c.session.Snapshot() })

	select {
	case s := <-ch:
		return s
	case <-time.After(statusTimeout):
		return nil
	}
}

// alert queues a message shown with the next output.
func (c *Console) alert(format string, v ...interface{}) {
	c.alerts = append(c.alerts, fmt.Sprintf(format, v...))
}

func (c *Console) model() *render.Model {
	src, ix, track := c.session.NowPlaying()
	pos, rem := c.player.PlayTime()
	view := c.cache.View()

	m := render.Model{
		Tab:      c.tab,
		Width:    c.width(),
		Browser:  view,
		Loading:  c.cache.Loading(api.OpDir),
		Playlist: c.session.List(state.SourcePlaylist),
		Folders:  c.folders,
		Source:   src,
		Index:    ix,
		Track:    track,
		Shuffle:  c.session.IsShuffling(),
		Paused:   c.player.Paused(),
		Pos:      pos,
		Rem:      rem,
		Count:    c.session.Playlist().Count,
		Alerts:   c.alerts,
	}

	m.Search.Dirs = c.search.dirs
	m.Search.Tracks = c.session.List(state.SourceSearch)
	m.Search.Loading = c.search.loading

	return &m
}

// render writes the whole frame.
func (c *Console) render() {
	if err := render.Frame(c.out, c.model()); err != nil {
		logging.Error("Failed to render: %v", err)
	}
	c.alerts = nil
}

// flush writes the pending alerts and the status line.
func (c *Console) flush() {
	m := c.model()

	for _, alert := range m.Alerts {
		fmt.Fprintln(c.out, "! "+alert)
	}
	fmt.Fprintln(c.out, render.StatusLine(m))

	c.alerts = nil
}

// latest checks a returning token against seq, counting a stale one.
func latest(seq *browse.Sequencer, tok browse.Token) bool {
	if !seq.Latest(tok) {
		logging.Debug("ui: dropping stale %s response %d", tok.Op, tok.Seq)
		metrics.StaleResponsesTotal.WithLabelValues(string(tok.Op)).Inc()
		return false
	}
	return true
}

// track returns the track at ix of the source's live list.
func (c *Console) track(src state.Source, ix int) (string, bool) {
	list := c.session.List(src)
	if ix < 0 || ix >= len(list) {
		c.alert("There is no track %d in the %s list.", ix+1, src)
		return "", false
	}
	return list[ix], true
}
