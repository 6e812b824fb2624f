// Package mpris exports the player on the session bus as an MPRIS media
// player, so desktop media keys and applets can drive it.
package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/muse"
	"github.com/skyjuke/skyjuke/internal/state"
)

const (
	skyjukePath = "/com/github/skyjuke/skyjuke"
	tracksPath  = skyjukePath + "/Tracks"

	mprisPath = "/org/mpris/MediaPlayer2"

	introspectID = "org.freedesktop.DBus.Introspectable"
	mprisID      = "org.mpris.MediaPlayer2"
	playerID     = mprisID + ".Player"
	skyjukeID    = mprisID + ".skyjuke"
)

// Controller is the player the bus calls into. IdleAdd must run the function
// on the controller's event loop; every other method is only called from
// there.
type Controller interface {
	IdleAdd(func())

	Next()
	Previous()
	SetPlaying(playing bool)
	TogglePlay()
	Stop()
	Seek(pos float64)
	SetShuffle(shuffle bool)

	// PlayTime may be called from any goroutine.
	PlayTime() (pos, rem float64)
}

// Conn is a single MPRIS DBus connection.
type Conn struct {
	conn   *dbus.Conn
	player *player
}

// New creates a new MPRIS connection. It is not ready to be used until
// PassthroughEvents is called.
func New() (*Conn, error) {
	c, err := newConn()
	if err == nil {
		return c, nil
	}

	c.Close()
	return nil, err
}

func newConn() (*Conn, error) {
	s, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to session bus")
	}

	conn := Conn{
		conn:   s,
		player: newPlayer(),
	}

	defs := conn.player.propDefs()
	props := map[string]map[string]*prop.Prop{
		playerID: propMap(defs),
	}

	p, err := prop.Export(s, mprisPath, props)
	if err != nil {
		return &conn, errors.Wrap(err, "failed to create DBus properties")
	}

	conn.player.start(p)

	if err := s.Export(conn.player, mprisPath, playerID); err != nil {
		return &conn, errors.Wrap(err, "failed to export the MPRIS Player")
	}

	if err := s.Export(introspectable(defs), mprisPath, introspectID); err != nil {
		return &conn, errors.Wrap(err, "failed to export introspection data")
	}

	reply, err := s.RequestName(skyjukeID, dbus.NameFlagDoNotQueue)
	if err != nil {
		return &conn, errors.Wrap(err, "failed to request name")
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		return &conn, errors.New("requested name is not primary, name already taken")
	}

	return &conn, nil
}

// Close closes the current DBus connection and destroys background workers. If
// c is nil, then Close returns nil.
func (c *Conn) Close() error {
	if c == nil {
		return nil
	}

	c.player.Destroy()

	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Update signals to MPRIS to update the properties from the session.
func (c *Conn) Update(s *state.Session, paused bool) {
	c.player.sendPlaying(s, paused)
}

// PassthroughEvents passes-through events from the returned EventHandler into
// h. Events that are intercepted also update the MPRIS state after h handled
// them.
func (c *Conn) PassthroughEvents(ctrl Controller, h muse.EventHandler) muse.EventHandler {
	c.player.ctrl = ctrl
	c.player.EventHandler = h
	return c.player
}
