package mpris

import (
	"math"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/skyjuke/skyjuke/internal/state"
)

type fakeController struct {
	pos      float64
	seeked   []float64
	shuffle  []bool
	toggles  int
	stopped  int
	playing  []bool
	forwards int
}

func (c *fakeController) IdleAdd(f func()) { f() }
func (c *fakeController) Next() { c.forwards++ }
func (c *fakeController) Previous() { c.forwards-- }
func (c *fakeController) SetPlaying(playing bool) { c.playing = append(c.playing, playing) }
func (c *fakeController) TogglePlay() { c.toggles++ }
func (c *fakeController) Stop() { c.stopped++ }
func (c *fakeController) Seek(pos float64) { c.seeked = append(c.seeked, pos) }
func (c *fakeController) SetShuffle(shuffle bool) { c.shuffle = append(c.shuffle, shuffle) }
func (c *fakeController) PlayTime() (pos, rem float64) { return c.pos, math.NaN() }

func TestTrackID(t *testing.T) {
	if id := trackID(state.SourceNone, 3); id != "/org/mpris/MediaPlayer2/TrackList/NoTrack" {
		t.Fatalf("unexpected no-track ID %q", id)
	}

	id := trackID(state.SourcePlaylist, 3)
	if id != dbus.ObjectPath(tracksPath+"/playlist/3") || !id.IsValid() {
		t.Fatalf("unexpected track ID %q", id)
	}
}

func TestMicroseconds(t *testing.T) {
	if us := secondsToMicroseconds(1.5); us != 1500000 {
		t.Fatalf("expected 1500000, got %d", us)
	}

	if us := secondsToMicroseconds(math.NaN()); us != 0 {
		t.Fatalf("expected 0 for NaN, got %d", us)
	}

	if s := microsecondsToSeconds(250000); s != 0.25 {
		t.Fatalf("expected 0.25, got %v", s)
	}
}

func TestSeek(t *testing.T) {
	ctrl := &fakeController{pos: 10}
	p := newPlayer()
	p.ctrl = ctrl

	p.Seek(5000000)
	p.Seek(-60000000)

	ctrl.pos = math.NaN()
	p.Seek(1000000)

	if len(ctrl.seeked) != 2 || ctrl.seeked[0] != 15 || ctrl.seeked[1] != 0 {
		t.Fatalf("unexpected seeks %v", ctrl.seeked)
	}
}

func TestSetPositionStale(t *testing.T) {
	ctrl := &fakeController{}
	p := newPlayer()
	p.ctrl = ctrl
	p.trackID = trackID(state.SourceBrowser, 1)

	p.SetPosition(trackID(state.SourceBrowser, 2), 1000000)
	p.SetPosition(trackID(state.SourceBrowser, 1), 2000000)

	if len(ctrl.seeked) != 1 || ctrl.seeked[0] != 2 {
		t.Fatalf("unexpected seeks %v", ctrl.seeked)
	}
}

func TestShuffleChange(t *testing.T) {
	ctrl := &fakeController{}
	p := newPlayer()
	p.ctrl = ctrl

	if err := p.onShuffleChange(&prop.Change{Name: "Shuffle", Value: true}); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if err := p.onShuffleChange(&prop.Change{Name: "Shuffle", Value: "yes"}); err == nil {
		t.Fatal("expected an error for a non-boolean value")
	}

	if len(ctrl.shuffle) != 1 || !ctrl.shuffle[0] {
		t.Fatalf("unexpected shuffle calls %v", ctrl.shuffle)
	}
}

func TestMethods(t *testing.T) {
	ctrl := &fakeController{}
	p := newPlayer()
	p.ctrl = ctrl

	p.Next()
	p.Next()
	p.Previous()
	p.PlayPause()
	p.Pause()
	p.Play()
	p.Stop()

	if ctrl.forwards != 1 || ctrl.toggles != 1 || ctrl.stopped != 1 {
		t.Fatalf("unexpected calls %+v", ctrl)
	}

	if len(ctrl.playing) != 2 || ctrl.playing[0] || !ctrl.playing[1] {
		t.Fatalf("unexpected play calls %v", ctrl.playing)
	}
}

func TestPropMap(t *testing.T) {
	p := newPlayer()
	defer p.Destroy()

	props := propMap(p.propDefs())

	for name, writable := range map[string]bool{
		"Shuffle":        true,
		"LoopStatus":     true,
		"PlaybackStatus": false,
		"Metadata":       false,
		"CanSeek":        false,
	} {
		p, ok := props[name]
		if !ok {
			t.Fatalf("missing property %s", name)
		}
		if p.Writable != writable {
			t.Errorf("%s writable = %v, expected %v", name, p.Writable, writable)
		}
	}

	if err := props["LoopStatus"].Callback(&prop.Change{Value: "None"}); err == nil {
		t.Error("LoopStatus change was accepted")
	}
	if props["Position"].Emit != prop.EmitFalse {
		t.Error("Position emits changes")
	}
}

func TestIntrospectable(t *testing.T) {
	p := newPlayer()
	defer p.Destroy()

	xml := string(introspectable(p.propDefs()))

	for _, part := range []string{
		`<interface name="org.mpris.MediaPlayer2.Player">`,
		`<method name="SetPosition">`,
		`<signal name="Seeked">`,
		`<property name="Shuffle" type="b" access="readwrite">`,
		`<property name="Metadata" type="a{sv}" access="read">`,
		`<interface name="org.freedesktop.DBus.Properties">`,
	} {
		if !strings.Contains(xml, part) {
			t.Errorf("introspection data is missing %s", part)
		}
	}
}
