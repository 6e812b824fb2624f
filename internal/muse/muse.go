// Package muse drives an mpv process over its JSON IPC socket. The session
// plays one resolved URL at a time; choosing the next track is left to the
// caller.
package muse

import (
	"os/exec"
	"strings"

	"github.com/DexterLB/mpvipc"
	"github.com/pkg/errors"
)

type Session struct {
	Playback  *mpvipc.Connection
	PlayState *PlayState

	handler EventHandler
	idleAdd func(func())

	command    *exec.Cmd
	socketPath string
}

// NewSession starts mpv from the given executable path.
func NewSession(mpvPath string) (*Session, error) {
	return newMpv(mpvPath)
}

// Play replaces the current file with url and unpauses.
func (s *Session) Play(url string) error {
	if _, err := s.Playback.Call("loadfile", url, "replace"); err != nil {
		return errors.Wrap(err, "failed to load file")
	}

	return s.SetPlay(true)
}

// SetPlay pauses or unpauses.
func (s *Session) SetPlay(playing bool) error {
	return s.Playback.Set("pause", !playing)
}

// Paused returns the last observed pause state.
func (s *Session) Paused() bool {
	return s.PlayState.Paused()
}

// PlayTime returns the position and the remaining time in seconds. Either is
// NaN when unknown.
func (s *Session) PlayTime() (pos, rem float64) {
	return s.PlayState.PlayTime()
}

// Seek seeks to an absolute position in seconds.
func (s *Session) Seek(pos float64) error {
	return s.Playback.Set("time-pos", pos)
}

// Rewind pauses and seeks back to the start.
func (s *Session) Rewind() error {
	return makeBatchErrors(
		s.SetPlay(false),
		s.Seek(0),
	)
}

// Unload stops playback and unloads the file.
func (s *Session) Unload() error {
	_, err := s.Playback.Call("stop")
	s.PlayState.reset()

	return err
}

type batchErrors []error

func makeBatchErrors(errs ...error) error {
	var nonNils = errs[:0]
	for _, err := range errs {
		if err != nil {
			nonNils = append(nonNils, err)
		}
	}

	if len(nonNils) == 0 {
		return nil
	}

	return batchErrors(nonNils)
}

func (b batchErrors) Error() string {
	var errors = make([]string, len(b))
	for i, err := range b {
		errors[i] = err.Error()
	}

	// English moment.
	return strings.Join(errors, ", and ")
}
