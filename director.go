package overture

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teranos/overture/trip"
)

// frameRequest stands in for a pending tea.Tick under the director.
type frameRequest struct {
	fn func(time.Time) tea.Msg
}

// epoch is where virtual time starts. Any fixed instant works.
var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Director plays a Controller headlessly on a virtual frame clock. Frames
// are delivered only when the director advances, so a run is fully
// deterministic and never sleeps.
//
// Example usage:
//
//	c := overture.New(overture.WithProbe(variant.FixedProbe{Width: 120, Height: 30}))
//	result := overture.NewDirector(c, overture.DefaultStageConfig()).
//		Start().
//		Advance(1200 * time.Millisecond).
//		PressEscape().
//		AdvanceUntilDone().
//		Stop()
//
//	assert.Equal(t, 1, result.Completions)
type Director struct {
	c      *Controller
	config StageConfig
	trips  *trip.Handler

	now      time.Time
	interval time.Duration
	pending  func(time.Time) tea.Msg

	actions   []StageAction
	snapshots []StageSnapshot
	done      []DoneMsg

	completions int
	completedAt time.Duration

	started   bool
	unmounted bool
}

// NewDirector takes over the controller's frame source and observes its
// completion callback. Call it before the controller is mounted.
func NewDirector(c *Controller, config StageConfig) *Director {
	d := &Director{
		c:           c,
		config:      config,
		trips:       trip.NewHandler("director").WithLogger(c.logger),
		now:         epoch,
		interval:    c.cfg.FrameInterval(),
		completedAt: -1,
	}
	if d.config.Limit <= 0 {
		d.config.Limit = DefaultStageConfig().Limit
	}

	c.tick = d.ticker
	c.clock = func() time.Time { return d.now }
	prev := c.onComplete
	c.onComplete = func() {
		d.completions++
		if d.completedAt < 0 {
			d.completedAt = d.Elapsed()
		}
		if prev != nil {
			prev()
		}
	}
	return d
}

func (d *Director) ticker(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return frameRequest{fn: fn} }
}

// Start mounts the controller and delivers the first frame at time zero.
func (d *Director) Start() *Director {
	if d.started {
		return d
	}
	d.started = true
	d.record("mount", nil)
	d.run(d.c.Init())
	d.Step()
	d.capture("mount")
	return d
}

// Step delivers one pending frame at the current virtual time. It reports
// false when the controller has no frame scheduled.
func (d *Director) Step() bool {
	if d.pending == nil {
		return false
	}
	fn := d.pending
	d.pending = nil
	d.deliver(fn(d.now))
	return true
}

// Advance moves virtual time forward by dur, delivering a frame every frame
// interval.
func (d *Director) Advance(dur time.Duration) *Director {
	if !d.ShouldContinue() {
		return d
	}
	target := d.now.Add(dur)
	for !d.now.Add(d.interval).After(target) {
		d.now = d.now.Add(d.interval)
		d.Step()
	}
	d.now = target
	d.record("advance", dur)
	if d.completions == 0 && d.Elapsed() >= d.config.Limit {
		d.stalled()
	}
	return d
}

// AdvanceUntilDone plays frames until the intro completes, the frame loop
// stops or the configured limit is reached.
func (d *Director) AdvanceUntilDone() *Director {
	if !d.ShouldContinue() {
		return d
	}
	start := d.Elapsed()
	for d.completions == 0 && d.pending != nil && d.Elapsed() < d.config.Limit {
		d.now = d.now.Add(d.interval)
		d.Step()
	}
	if d.completions == 0 {
		d.stalled()
	}
	d.record("advance", d.Elapsed()-start)
	d.capture("done")
	return d
}

func (d *Director) stalled() {
	d.fall(trip.Stalled, "intro did not complete", trip.Context{"limit": d.config.Limit.String()})
}

// ShouldContinue is false once the run has been stopped by a fall.
func (d *Director) ShouldContinue() bool {
	return d.trips.ShouldContinue()
}

// Elapsed is the virtual time since Start.
func (d *Director) Elapsed() time.Duration {
	return d.now.Sub(epoch)
}

// Send delivers an arbitrary message to the controller.
func (d *Director) Send(msg tea.Msg) *Director {
	d.deliver(msg)
	return d
}

func (d *Director) deliver(msg tea.Msg) {
	_, cmd := d.c.Update(msg)
	d.run(cmd)
}

// run executes a command synchronously and routes what it produces.
func (d *Director) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			d.run(c)
		}
	case frameRequest:
		d.pending = msg.fn
	case DoneMsg:
		d.done = append(d.done, msg)
		d.record("done", msg.Reason.String())
	default:
		d.deliver(msg)
	}
}

// FramePending reports whether the controller asked for another frame.
func (d *Director) FramePending() bool {
	return d.pending != nil
}

// Controller returns the controller under direction.
func (d *Director) Controller() *Controller {
	return d.c
}

// View is the controller's current view.
func (d *Director) View() string {
	return d.c.View()
}

// Unmount discards the controller the way a host would.
func (d *Director) Unmount() *Director {
	if d.unmounted {
		return d
	}
	d.unmounted = true
	if err := d.c.Close(); err != nil {
		d.fail("close failed", trip.Context{"error": err.Error()})
	}
	d.record("unmount", nil)
	return d
}

// Stop unmounts the controller and reports the run.
func (d *Director) Stop() *StageResult {
	d.Unmount()

	result := &StageResult{
		Actions:     d.actions,
		Snapshots:   d.snapshots,
		Success:     !d.trips.HasTrips(),
		Stopped:     !d.trips.ShouldContinue(),
		Duration:    d.Elapsed(),
		Frames:      d.c.Frames(),
		Completions: d.completions,
		CompletedAt: d.completedAt,
		Reason:      d.c.Reason(),
		Done:        d.done,
		TripReport:  d.c.trips.DetailedReport() + "\n" + d.trips.DetailedReport(),
	}
	if trips := d.trips.Trips(); len(trips) > 0 {
		result.Error = trips[0]
		result.ErrorMessage = trips[0].Message
	}
	return result
}

func (d *Director) record(kind string, details interface{}) {
	d.actions = append(d.actions, StageAction{At: d.Elapsed(), Type: kind, Details: details})
}

func (d *Director) capture(label string) {
	if d.config.CaptureViews {
		d.Snapshot(label)
	}
}

// Snapshot records the current view.
func (d *Director) Snapshot(label string) *Director {
	d.snapshots = append(d.snapshots, StageSnapshot{
		At:       d.Elapsed(),
		Label:    label,
		View:     d.c.View(),
		Phase:    d.c.Phase().String(),
		Progress: d.c.Progress(),
	})
	return d
}
