package mpris

import (
	"fmt"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/muse"
	"github.com/skyjuke/skyjuke/internal/muse/playlist"
	"github.com/skyjuke/skyjuke/internal/state"
)

type microsecond = int64

func secondsToMicroseconds(secs float64) microsecond {
	const us = float64(time.Second / time.Microsecond)
	if math.IsNaN(secs) {
		return 0
	}
	return int64(math.Round(secs * us))
}

func microsecondsToSeconds(usec microsecond) float64 {
	const us = float64(time.Second / time.Microsecond)
	return float64(usec) / us
}

func trackID(src state.Source, trackIx int) dbus.ObjectPath {
	if src == state.SourceNone || trackIx < 0 {
		return dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	}
	const trackIDfmt = tracksPath + "/%s/%d"
	return dbus.ObjectPath(fmt.Sprintf(trackIDfmt, src, trackIx))
}

type player struct {
	muse.EventHandler
	ctrl Controller

	propQ chan propChange
	stop  chan struct{}

	// state, only touched from the controller's event loop
	trackID  dbus.ObjectPath
	shuffled bool
}

var _ muse.EventHandler = (*player)(nil)

type propChange struct {
	n string
	v interface{}
}

func newPlayer() *player {
	return &player{
		propQ:   make(chan propChange, 10),
		stop:    make(chan struct{}),
		trackID: trackID(state.SourceNone, -1),
	}
}

func (p *player) start(props *prop.Properties) {
	go func() {
		for {
			select {
			case <-p.stop:
				return
			case send := <-p.propQ:
				props.SetMust(playerID, send.n, send.v)
			}
		}
	}()
}

// Destroy stops background workers.
func (p *player) Destroy() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

// sendProp queues the prop to be sent through DBus. It pops off the first item
// of the queue if it's full.
func (p *player) sendProp(n string, v interface{}) {
	prop := propChange{n, v}

	for {
		select {
		case <-p.stop:
			return
		case p.propQ <- prop:
			return
		default:
			logging.Warn("MPRIS prop send buffer overflow.")

			// Try and pop the earliest prop out.
			select {
			case <-p.propQ:
			default:
			}
		}
	}
}

var noTrackMetadata = map[string]interface{}{
	"mpris:trackid": trackID(state.SourceNone, -1),
}

// onShuffleChange is called by the bus when a client toggles shuffle.
func (p *player) onShuffleChange(c *prop.Change) *dbus.Error {
	shuffle, ok := c.Value.(bool)
	if !ok {
		return dbus.MakeFailedError(errors.Errorf("invalid shuffle value %v", c.Value))
	}

	if ctrl := p.ctrl; ctrl != nil {
		ctrl.IdleAdd(func() { ctrl.SetShuffle(shuffle) })
	}

	return nil
}

// Muse event handler methods.

func (p *player) OnPauseUpdate(pause bool) {
	p.EventHandler.OnPauseUpdate(pause)

	if p.trackID == trackID(state.SourceNone, -1) {
		p.sendProp("PlaybackStatus", statusStopped)
		return
	}

	if pause {
		p.sendProp("PlaybackStatus", statusPaused)
	} else {
		p.sendProp("PlaybackStatus", statusPlaying)
	}
}

func (p *player) sendPlaying(s *state.Session, paused bool) {
	src, i, track := s.NowPlaying()
	p.trackID = trackID(src, i)

	if shuffled := s.IsShuffling(); shuffled != p.shuffled {
		p.shuffled = shuffled
		p.sendProp("Shuffle", shuffled)
	}

	// If we don't have anything playing...
	if track == "" {
		p.sendProp("Metadata", noTrackMetadata)
		p.sendProp("PlaybackStatus", statusStopped)
		return
	}

	p.sendProp("Metadata", map[string]interface{}{
		"mpris:trackid": p.trackID,
		"xesam:title":   playlist.TitleFromPath(track),
		"xesam:album":   playlist.DirectoryLabel(track),
		"xesam:url":     track,
	})

	if paused {
		p.sendProp("PlaybackStatus", statusPaused)
	} else {
		p.sendProp("PlaybackStatus", statusPlaying)
	}
}

// DBus methods.

func (p *player) Next() *dbus.Error {
	p.ctrl.IdleAdd(p.ctrl.Next)
	return nil
}

func (p *player) Previous() *dbus.Error {
	p.ctrl.IdleAdd(p.ctrl.Previous)
	return nil
}

func (p *player) Pause() *dbus.Error {
	p.ctrl.IdleAdd(func() { p.ctrl.SetPlaying(false) })
	return nil
}

func (p *player) Play() *dbus.Error {
	p.ctrl.IdleAdd(func() { p.ctrl.SetPlaying(true) })
	return nil
}

func (p *player) Stop() *dbus.Error {
	p.ctrl.IdleAdd(p.ctrl.Stop)
	return nil
}

func (p *player) PlayPause() *dbus.Error {
	p.ctrl.IdleAdd(p.ctrl.TogglePlay)
	return nil
}

func (p *player) Seek(us microsecond) *dbus.Error {
	pos, _ := p.ctrl.PlayTime()
	if math.IsNaN(pos) {
		return nil
	}

	pos += microsecondsToSeconds(us)
	if pos < 0 {
		pos = 0
	}

	p.ctrl.IdleAdd(func() { p.ctrl.Seek(pos) })
	return nil
}

func (p *player) SetPosition(id dbus.ObjectPath, us microsecond) *dbus.Error {
	p.ctrl.IdleAdd(func() {
		// Seek if our trackID is not stale.
		if p.trackID == id {
			p.ctrl.Seek(microsecondsToSeconds(us))
		}
	})

	return nil
}

func (p *player) OpenUri(uri string) *dbus.Error {
	return errUnsupported
}
