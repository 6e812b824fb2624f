package ui

import (
	"math"

	"github.com/skyjuke/skyjuke/internal/api"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
	"github.com/skyjuke/skyjuke/internal/state"
)

func (c *Console) OnSongFinish(err error) {
	if err != nil {
		c.errCounter++

		logging.Error("Error playing track: %v", err)
		metrics.PlaybackErrorsTotal.Inc()

		if c.errCounter > maxErrorThreshold {
			c.alert("Too many playback errors, pausing.")
			c.SetPlaying(false)
			c.flush()
			return
		}
	} else {
		c.errCounter = 0
	}

	// Play the next song.
	c.Next()
}

func (c *Console) OnPauseUpdate(pause bool) {
	c.flush()
}

// Select plays the track at ix of the source's list.
func (c *Console) Select(src state.Source, ix int) {
	track, ok := c.session.Select(src, ix)
	if !ok {
		c.alert("The %s list is empty.", src)
		return
	}

	c.playTrack(track)
}

func (c *Console) Next() {
	if track, ok := c.session.Next(); ok {
		c.playTrack(track)
	}
}

func (c *Console) Previous() {
	if track, ok := c.session.Previous(); ok {
		c.playTrack(track)
	}
}

// playTrack resolves the audio URL of track and plays it. If the URL cannot
// be fetched, the session stays on the track and the error is shown.
func (c *Console) playTrack(track string) {
	src, _, _ := c.session.NowPlaying()
	tok := c.audio.Issue(opAudio)

	c.async(func() {
		url, err := c.client.AudioURL(c.ctx, track)

		c.IdleAdd(func() {
			if !latest(&c.audio, tok) {
				return
			}

			if err != nil {
				metrics.PlaybackErrorsTotal.Inc()
				c.alert("%s", api.Message(err))
				c.flush()
				return
			}

			if err := c.player.Play(url); err != nil {
				logging.Error("Play failed: %v", err)
				metrics.PlaybackErrorsTotal.Inc()
				c.alert("Failed to play track: %v", err)
				c.flush()
				return
			}

			metrics.TracksPlayedTotal.WithLabelValues(src.String()).Inc()
			c.flush()
		})
	})
}

func (c *Console) SetPlaying(playing bool) {
	if err := c.player.SetPlay(playing); err != nil {
		logging.Error("SetPlay failed: %v", err)
	}
}

// TogglePlay pauses or resumes the attached track.
func (c *Console) TogglePlay() {
	if src, _, _ := c.session.NowPlaying(); src == state.SourceNone {
		c.alert("Nothing is playing.")
		return
	}

	c.SetPlaying(c.player.Paused())
}

// Stop pauses and rewinds the track. Stopping a track that is already paused
// at the start unloads it and detaches the session.
func (c *Console) Stop() {
	if src, _, _ := c.session.NowPlaying(); src == state.SourceNone {
		return
	}

	pos, _ := c.player.PlayTime()

	if c.player.Paused() && !(pos > 0) {
		c.audio.Invalidate(opAudio)

		if err := c.player.Unload(); err != nil {
			logging.Error("Unload failed: %v", err)
		}

		c.session.Detach()
		return
	}

	if err := c.player.Rewind(); err != nil {
		logging.Error("Rewind failed: %v", err)
	}
}

// Seek seeks to pos seconds, clamped into the track.
func (c *Console) Seek(pos float64) {
	if src, _, _ := c.session.NowPlaying(); src == state.SourceNone {
		return
	}
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return
	}

	cur, rem := c.player.PlayTime()
	if total := cur + rem; !math.IsNaN(total) && pos >= total {
		pos = total - 1
	}
	if pos < 0 {
		pos = 0
	}

	if err := c.player.Seek(pos); err != nil {
		logging.Error("Seek failed: %v", err)
	}
}

// Skip seeks by delta seconds from the current position.
func (c *Console) Skip(delta float64) {
	pos, _ := c.player.PlayTime()
	if math.IsNaN(pos) {
		return
	}

	c.Seek(pos + delta)
}

// PlayTime returns the player's position and remaining time.
func (c *Console) PlayTime() (pos, rem float64) {
	return c.player.PlayTime()
}

func (c *Console) SetShuffle(shuffle bool) {
	c.session.SetShuffling(shuffle)

	if shuffle {
		metrics.ShuffleEnabled.Set(1)
	} else {
		metrics.ShuffleEnabled.Set(0)
	}
}
