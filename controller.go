// Package overture plays a staged terminal intro exactly once per mount.
//
// A Controller is a Bubble Tea model. On Init it either completes at once
// (the caller's skip flag or reduced motion) or resolves a variant profile,
// builds the timeline through an injected engine and starts a frame loop.
// Escape and the on-screen skip control accelerate playback to its end; a
// modified click, "S" or Ctrl+C cut it off. Whatever path is taken, the
// completion callback and the DoneMsg fire exactly once, and Close leaves
// no timeline, deferred callback or listener behind.
//
// Basic usage:
//
//	intro := overture.New(
//		overture.WithConfig(cfg),
//		overture.WithOnComplete(func() { log.Println("intro done") }),
//	)
//	// embed intro in your model and forward messages until overture.DoneMsg
package overture

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teranos/overture/timeline"
	"github.com/teranos/overture/trip"
	"github.com/teranos/overture/variant"
)

// Viewport assumed when the terminal cannot be measured.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

var instances atomic.Int64

// DoneMsg is emitted once when the intro has completed.
type DoneMsg struct {
	ID     int64
	Reason Reason
}

// frameMsg carries the owning instance so frames of a torn-down or
// different controller are dropped.
type frameMsg struct {
	id int64
	at time.Time
}

// Ticker schedules the next frame. tea.Tick satisfies it.
type Ticker func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Option configures a Controller.
type Option func(*Controller)

func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithEngine injects the timeline engine.
func WithEngine(e timeline.Engine) Option {
	return func(c *Controller) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithProbe sets how the viewport is measured.
func WithProbe(p variant.Probe) Option {
	return func(c *Controller) { c.probe = p }
}

// WithProfiles overrides Config.ProfilesPath.
func WithProfiles(p variant.Profiles) Option {
	return func(c *Controller) { c.profiles = &p }
}

// WithOnComplete registers the completion callback.
func WithOnComplete(fn func()) Option {
	return func(c *Controller) { c.onComplete = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCaptions replaces DefaultCaptions.
func WithCaptions(captions ...string) Option {
	return func(c *Controller) { c.captions = captions }
}

// WithTicker replaces tea.Tick as the frame source.
func WithTicker(t Ticker) Option {
	return func(c *Controller) {
		if t != nil {
			c.tick = t
		}
	}
}

// WithClock replaces time.Now as the source of the mount time. It must
// agree with the times the Ticker reports.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.clock = now
		}
	}
}

// Controller owns one intro sequence. It is not safe for concurrent use;
// Bubble Tea serialises Update and View.
type Controller struct {
	cfg        Config
	engine     timeline.Engine
	probe      variant.Probe
	profiles   *variant.Profiles
	captions   []string
	logger     *slog.Logger
	onComplete func()
	tick       Ticker
	clock      func() time.Time

	id         int64
	trips      *trip.Handler
	resolver   *variant.Resolver
	resolution variant.Resolution
	tl         *timeline.Timeline
	stage      *stage
	sched      scheduler
	state      completion

	mounted   bool
	closed    bool
	tornDown  bool
	armed     bool
	skipShown bool
	doneSent  bool

	lastFrame     time.Time
	frames        int
	progress      float64
	width, height int
}

// New creates a controller. Nothing happens until Init.
func New(opts ...Option) *Controller {
	c := &Controller{
		cfg:      DefaultConfig(),
		engine:   timeline.DefaultEngine{},
		probe:    variant.NewTerminalProbe(),
		captions: DefaultCaptions,
		logger:   slog.Default(),
		tick:     tea.Tick,
		clock:    time.Now,
		id:       instances.Add(1),
		stage:    newStage(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.trips = trip.NewHandler("overture").WithLogger(c.logger)
	c.state.notify = c.notify

	if cfg, fixed := c.cfg.withDefaults(); len(fixed) > 0 {
		c.logger.Warn("overture: invalid config, using defaults", "fields", fixed)
		c.trips.Stumble(trip.InvalidConfig, "config settings replaced by defaults", trip.Context{
			"fields": strings.Join(fixed, ","),
		})
		c.cfg = cfg
	}
	return c
}

// Init mounts the controller.
func (c *Controller) Init() tea.Cmd {
	if c.mounted || c.closed {
		c.logger.Warn("overture: mount ignored", "id", c.id, "mounted", c.mounted, "closed", c.closed)
		return nil
	}
	c.mounted = true
	if c.state.done() {
		return c.flush()
	}

	if c.cfg.SkipEntirely() {
		c.logger.Info("overture: intro skipped",
			"skip_intro", c.cfg.SkipIntro,
			"reduced_motion", c.cfg.ReducedMotion)
		c.finish(ReasonSkipped)
		return c.flush()
	}

	c.resolver = variant.NewResolver(c.probe, c.loadProfiles()).WithTrips(c.trips).WithLogger(c.logger)
	c.resolution = c.resolver.Resolve()
	c.width, c.height = c.resolution.Width, c.resolution.Height
	if c.resolution.Fallback {
		c.width, c.height = fallbackWidth, fallbackHeight
	}

	tl, err := c.engine.CreateTimeline(c.stage, Build(c.resolution.Profile, c.captions)...)
	if err != nil {
		c.abandon("timeline could not be built", err)
		return c.flush()
	}
	if err := tl.OnComplete(c.timelineFinished); err != nil {
		tl.Cancel()
		c.abandon("timeline completion slot taken", err)
		return c.flush()
	}

	c.tl = tl
	c.resolver.Listen(c.viewportChanged)
	c.state.enter(PhaseRunning)
	if err := tl.Play(0); err != nil {
		c.abandon("timeline refused to play", err)
		return c.flush()
	}
	c.sched.after("skip-control", c.cfg.SkipRevealDelay, c.revealSkipControl)
	c.armed = true
	// The first frame advances by the time since mount.
	c.lastFrame = c.clock()

	c.logger.Info("overture: intro started",
		"id", c.id,
		"variant", c.resolution.Key.String(),
		"duration", tl.TotalDuration(),
		"segments", len(tl.Segments()),
		"width", c.width,
		"height", c.height)

	return c.nextFrame()
}

func (c *Controller) loadProfiles() variant.Profiles {
	if c.profiles != nil {
		return *c.profiles
	}
	profiles, err := c.cfg.Profiles()
	if err != nil {
		c.logger.Warn("overture: profiles unavailable, using defaults", "path", c.cfg.ProfilesPath, "error", err)
		c.trips.Stumble(trip.EnvironmentUnavailable, "profiles could not be loaded", trip.Context{
			"path":  c.cfg.ProfilesPath,
			"error": err.Error(),
		})
		return variant.DefaultProfiles()
	}
	return profiles
}

// abandon degrades a failed start to an immediate completion.
func (c *Controller) abandon(message string, err error) {
	c.logger.Warn("overture: "+message, "error", err)
	c.trips.Stumble(trip.TimelineUnavailable, message, trip.Context{"error": err.Error()})
	c.teardown()
	c.finish(ReasonSkipped)
}

// Update advances frames and routes input through the gateway.
func (c *Controller) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return c, c.handleFrame(msg)
	case tea.KeyMsg:
		return c, c.handleKey(msg)
	case tea.MouseMsg:
		return c, c.handleMouse(msg)
	case tea.WindowSizeMsg:
		if c.resolver != nil {
			c.resolver.Notify(msg.Width, msg.Height)
		}
	}
	return c, nil
}

func (c *Controller) handleFrame(msg frameMsg) tea.Cmd {
	tl := c.tl
	if msg.id != c.id || tl == nil {
		return nil
	}

	dt := max(msg.at.Sub(c.lastFrame), 0)
	c.lastFrame = msg.at
	c.frames++

	c.sched.advance(dt)
	tl.Advance(dt)
	c.progress = tl.Progress()

	if c.tl == nil {
		return c.flush()
	}
	return c.nextFrame()
}

func (c *Controller) nextFrame() tea.Cmd {
	id := c.id
	return c.tick(c.cfg.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg{id: id, at: t}
	})
}

// timelineFinished is the timeline's completion callback. It runs inside
// Advance as the last thing the timeline does.
func (c *Controller) timelineFinished() {
	reason := ReasonNatural
	if c.state.phase == PhaseSkipping {
		reason = ReasonSoftSkip
	} else {
		c.state.enter(PhaseCompleting)
	}
	c.progress = 1
	c.teardown()
	c.finish(reason)
}

func (c *Controller) revealSkipControl() {
	c.skipShown = true
	c.logger.Debug("overture: skip control revealed", "id", c.id, "progress", c.progress)
}

func (c *Controller) viewportChanged(width, height int) {
	c.width, c.height = width, height
	c.logger.Debug("overture: viewport changed", "width", width, "height", height, "variant", c.resolution.Key.String())
}

// finish enters Completed. A second attempt is recorded and dropped.
func (c *Controller) finish(reason Reason) {
	if !c.state.complete(reason) {
		c.trips.Stumble(trip.DuplicateCompletion, "completion already fired", trip.Context{
			"reason": reason.String(),
			"first":  c.state.reason.String(),
		})
		return
	}
	c.logger.Info("overture: intro complete", "id", c.id, "reason", reason.String(), "frames", c.frames)
}

func (c *Controller) notify() {
	if c.onComplete != nil {
		c.onComplete()
	}
}

// flush returns the DoneMsg command the first time it is called after
// completion.
func (c *Controller) flush() tea.Cmd {
	if !c.state.done() || c.doneSent {
		return nil
	}
	c.doneSent = true
	msg := DoneMsg{ID: c.id, Reason: c.state.reason}
	return func() tea.Msg { return msg }
}

// View renders the current frame, or nothing once the intro is over.
func (c *Controller) View() string {
	if !c.mounted || c.tornDown || c.state.done() {
		return ""
	}
	return c.stage.view(frame{
		width:     c.width,
		height:    c.height,
		profile:   c.resolution.Profile,
		captions:  c.captions,
		skipShown: c.skipShown,
	})
}

// ID identifies this controller in DoneMsg and logs.
func (c *Controller) ID() int64 { return c.id }

func (c *Controller) Phase() Phase { return c.state.phase }

// Reason is ReasonNone until the intro completes.
func (c *Controller) Reason() Reason { return c.state.reason }

// Variant is the resolved profile key. It is Desktop before Init.
func (c *Controller) Variant() variant.Key { return c.resolution.Key }

// Progress is the playhead position in [0,1] as of the last frame.
func (c *Controller) Progress() float64 { return c.progress }

// FrameInterval is the time between the frames this controller requests.
func (c *Controller) FrameInterval() time.Duration { return c.cfg.FrameInterval() }

// Frames counts the frames that advanced the timeline.
func (c *Controller) Frames() int { return c.frames }

// SkipControlVisible reports whether the skip control is on screen.
func (c *Controller) SkipControlVisible() bool { return c.skipShown }

// Trips exposes the recoverable mishaps recorded so far.
func (c *Controller) Trips() *trip.Handler { return c.trips }
