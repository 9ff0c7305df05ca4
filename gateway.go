package overture

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/teranos/overture/trip"
)

// RequestSoftSkip accelerates the rest of the intro by SoftSkipFactor and
// lets it finish on its own. With nothing left to play it completes at once.
// Repeated requests are no-ops.
func (c *Controller) RequestSoftSkip() tea.Cmd {
	c.disarm()
	switch {
	case c.state.phase == PhaseSkipping:
		return nil
	case c.tl == nil || c.tl.IsComplete():
		c.teardown()
		c.finish(ReasonSoftSkip)
		return c.flush()
	}

	c.state.enter(PhaseSkipping)
	rate := c.tl.PlaybackRate() * c.cfg.SoftSkipFactor
	if err := c.tl.SetPlaybackRate(rate); err != nil {
		// New replaces invalid factors, so this needs a rate overflow.
		c.logger.Warn("overture: soft skip rate rejected, cutting off", "rate", rate, "error", err)
		c.teardown()
		c.finish(ReasonSoftSkip)
		return c.flush()
	}
	c.logger.Info("overture: soft skip",
		"id", c.id,
		"progress", c.progress,
		"rate", rate,
		"remaining", c.tl.Remaining())
	return nil
}

// RequestHardSkip cuts the intro off and completes synchronously. It wins
// over a soft skip in flight.
func (c *Controller) RequestHardSkip() tea.Cmd {
	c.disarm()
	if c.state.phase == PhaseSkipping {
		c.trips.Stumble(trip.DoubleInterruption, "hard skip overrode soft skip", trip.Context{
			"progress": c.progress,
		})
	}
	c.logger.Info("overture: hard skip", "id", c.id, "progress", c.progress, "phase", c.state.phase.String())
	c.teardown()
	c.finish(ReasonHardSkip)
	return c.flush()
}

// disarm stops both trigger sources from issuing another skip.
func (c *Controller) disarm() {
	c.armed = false
}

// Armed reports whether keyboard and skip-control triggers are live.
func (c *Controller) Armed() bool { return c.armed }

func (c *Controller) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		if c.state.done() {
			return nil
		}
		return c.RequestHardSkip()
	case tea.KeyEsc:
		if c.armed {
			return c.RequestSoftSkip()
		}
	case tea.KeyRunes:
		if !c.armed || !c.skipShown {
			return nil
		}
		switch string(msg.Runes) {
		case "s":
			return c.RequestSoftSkip()
		case "S":
			return c.RequestHardSkip()
		}
	}
	return nil
}

// handleMouse treats a left press on the skip control as a soft skip, or a
// hard skip with any modifier held.
func (c *Controller) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !c.armed || !c.skipShown {
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if !skipControlRect(c.width, c.height).contains(msg.X, msg.Y) {
		return nil
	}
	if msg.Shift || msg.Alt || msg.Ctrl {
		return c.RequestHardSkip()
	}
	return c.RequestSoftSkip()
}
