package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/pkg/errors"
)

const (
	statusPlaying = "Playing"
	statusPaused  = "Paused"
	statusStopped = "Stopped"
)

// propDef is one Player property, used for both the exported values and the
// introspection data.
type propDef struct {
	name  string
	sig   string
	value interface{}
	// onChange makes the property writable by bus clients.
	onChange func(*prop.Change) *dbus.Error
	// silent properties change without a PropertiesChanged signal.
	silent bool
}

// propDefs lists the Player properties. Navigation always wraps, so the loop
// status is fixed to Playlist.
func (p *player) propDefs() []propDef {
	return []propDef{
		{name: "PlaybackStatus", sig: "s", value: statusStopped},
		{name: "LoopStatus", sig: "s", value: "Playlist", onChange: refuseChange},
		{name: "Rate", sig: "d", value: 1.0, onChange: refuseChange},
		{name: "Shuffle", sig: "b", value: false, onChange: p.onShuffleChange},
		{name: "Metadata", sig: "a{sv}", value: noTrackMetadata},
		{name: "Volume", sig: "d", value: 1.0, onChange: refuseChange},
		{name: "Position", sig: "x", value: microsecond(0), silent: true},
		{name: "MinimumRate", sig: "d", value: 1.0},
		{name: "MaximumRate", sig: "d", value: 1.0},
		{name: "CanGoNext", sig: "b", value: true},
		{name: "CanGoPrevious", sig: "b", value: true},
		{name: "CanPlay", sig: "b", value: true},
		{name: "CanPause", sig: "b", value: true},
		{name: "CanSeek", sig: "b", value: true},
		{name: "CanControl", sig: "b", value: true},
	}
}

func propMap(defs []propDef) map[string]*prop.Prop {
	props := make(map[string]*prop.Prop, len(defs))

	for _, def := range defs {
		emit := prop.EmitTrue
		if def.silent {
			emit = prop.EmitFalse
		}

		props[def.name] = &prop.Prop{
			Value:    def.value,
			Writable: def.onChange != nil,
			Emit:     emit,
			Callback: def.onChange,
		}
	}

	return props
}

var errUnsupported = dbus.MakeFailedError(errors.New("not supported by skyjuke"))

func refuseChange(*prop.Change) *dbus.Error {
	return errUnsupported
}

func arg(name, sig, direction string) introspect.Arg {
	return introspect.Arg{Name: name, Type: sig, Direction: direction}
}

var playerMethods = []introspect.Method{
	{Name: "Next"},
	{Name: "Previous"},
	{Name: "Pause"},
	{Name: "PlayPause"},
	{Name: "Stop"},
	{Name: "Play"},
	{Name: "Seek", Args: []introspect.Arg{arg("Offset", "x", "in")}},
	{Name: "SetPosition", Args: []introspect.Arg{
		arg("TrackId", "o", "in"),
		arg("Offset", "x", "in"),
	}},
	{Name: "OpenUri", Args: []introspect.Arg{arg("Uri", "s", "in")}},
}

var playerSignals = []introspect.Signal{
	{Name: "Seeked", Args: []introspect.Arg{arg("Position", "x", "out")}},
}

// introspectable describes the exported object.
func introspectable(defs []propDef) introspect.Introspectable {
	props := make([]introspect.Property, len(defs))
	for i, def := range defs {
		access := "read"
		if def.onChange != nil {
			access = "readwrite"
		}
		props[i] = introspect.Property{Name: def.name, Type: def.sig, Access: access}
	}

	return introspect.NewIntrospectable(&introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       playerID,
				Methods:    playerMethods,
				Signals:    playerSignals,
				Properties: props,
			},
		},
	})
}
