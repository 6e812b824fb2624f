package muse

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/DexterLB/mpvipc"
	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
)

type mpvEvent uint

const (
	allEvent mpvEvent = iota
	pauseEvent
	bitrateEvent
	timePositionEvent
	timeRemainingEvent
	audioDeviceEvent
)

var events = []string{
	"start-file",
	"end-file",
}

var propertyMap = map[mpvEvent]string{
	pauseEvent:         "pause",
	bitrateEvent:       "audio-bitrate",
	timePositionEvent:  "time-pos",
	timeRemainingEvent: "time-remaining",
	audioDeviceEvent:   "audio-device",
}

// EventHandler methods are all called through the idle function given to
// SetHandler.
type EventHandler interface {
	// OnSongFinish is called when a track ends by itself. err is non-nil if
	// it could not be played.
	OnSongFinish(err error)
	OnPauseUpdate(pause bool)
}

var tmpdir = filepath.Join(os.TempDir(), "skyjuke")

func newMpv(mpvPath string) (*Session, error) {
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	sockPath := filepath.Join(tmpdir, "mpv", fmt.Sprintf("mpv-%d.sock", os.Getpid()))

	if err := os.MkdirAll(filepath.Dir(sockPath), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "failed to make socket directory")
	}

	if err := os.RemoveAll(sockPath); err != nil {
		return nil, errors.Wrap(err, "failed to clean up socket")
	}

	args := []string{
		"--idle",
		"--quiet",
		"--pause",
		"--no-input-terminal",
		"--loop-playlist=no",
		"--replaygain=track",
		"--replaygain-clip=no",
		"--input-ipc-server=" + sockPath,
		"--volume=100",
		"--volume-max=100",
		"--no-video",
	}

	// Try and support MPV_MPRIS.
	if scripts := os.Getenv("MPV_SCRIPTS"); scripts != "" {
		for _, script := range strings.Split(scripts, ":") {
			args = append(args, "--script="+script)
		}
	}

	cmd := exec.Command(mpvPath, args...)
	cmd.Env = os.Environ()
	cmd.Stderr = os.Stderr

	conn := mpvipc.NewConnection(sockPath)

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start mpv")
	}

	// Give us a 5-second period timeout.
	ctx, cancel := context.WithTimeout(context.TODO(), 5*time.Second)
	defer cancel()

	// Spin until we can connect.
	var err error
RetryOpen:
	for {
		err = conn.Open()
		if err == nil {
			cancel()
			break RetryOpen
		}
		select {
		case <-ctx.Done():
			break RetryOpen
		default:
			runtime.Gosched()
			continue RetryOpen
		}
	}

	if err != nil {
		cmd.Process.Kill()
		return nil, errors.Wrap(err, "failed to open connection")
	}

	for _, event := range events {
		_, err := conn.Call("enable_event", event)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to enable event %q", event)
		}
	}

	for id, property := range propertyMap {
		_, err := conn.Call("observe_property", id, property)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to observe property %q", property)
		}
	}

	return &Session{
		Playback:   conn,
		PlayState:  NewPlayState(),
		command:    cmd,
		socketPath: sockPath,
	}, nil
}

// SetHandler sets the event handler. Its methods are called through idleAdd,
// which must run them on the caller's event loop.
func (s *Session) SetHandler(h EventHandler, idleAdd func(func())) {
	s.handler = h
	s.idleAdd = idleAdd
}

// Start starts all the event listeners in background goroutines. As such, it is
// non-blocking.
func (s *Session) Start() {
	// Copy the handler so the caller cannot change it.
	var handler = s.handler
	var idleAdd = s.idleAdd

	go s.Playback.ListenForEvents(func(event *mpvipc.Event) {
		if event.Error != "" && event.Error != "success" {
			logging.Debug("mpv: event %q error: %s", event.Name, event.Error)
		}

		if event.Data == nil {
			goto handleAllEvents
		}

		switch mpvEvent(event.ID) {
		case allEvent:
			goto handleAllEvents

		case pauseEvent:
			b, _ := event.Data.(bool)
			s.PlayState.updatePause(b)
			idleAdd(func() { handler.OnPauseUpdate(b) })

		case bitrateEvent:
			f, _ := event.Data.(float64)
			s.PlayState.updateBitrate(f)

		case timePositionEvent:
			f, _ := event.Data.(float64)
			s.PlayState.updatePos(f)

		case timeRemainingEvent:
			f, _ := event.Data.(float64)
			s.PlayState.updateRem(f)

		case audioDeviceEvent:
			logging.Info("Audio device changed to %v", event.Data)
		}

		return

	handleAllEvents:
		switch event.Name {
		case "start-file":
			s.PlayState.reset()

		case "end-file":
			// Replacing or stopping a file also ends it; only a file that
			// ran out or failed counts as finished.
			var err error
			switch event.Reason {
			case "eof":
			case "error":
				err = errors.Errorf("mpv failed to play file: %s", event.Error)
			default:
				return
			}

			idleAdd(func() { handler.OnSongFinish(err) })
		}
	})
}

// Stop stops the mpv session. A stopped session cannot be reused.
func (s *Session) Stop() {
	s.Playback.Close()

	if err := s.command.Process.Signal(os.Interrupt); err != nil {
		logging.Warn("Attempted to send SIGINT failed, error occured: %v", err)
		logging.Warn("Killing anyway.")

		if err = s.command.Process.Kill(); err != nil {
			logging.Error("Failed to kill mpv: %v", err)
		}
	} else {
		// Wait for mpv to finish up.
		s.command.Wait()
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to clean up socket: %v", err)
	}
}
