// Package variant picks the parameter profile an intro is built from.
//
// The viewport predicate is evaluated exactly once per Resolver; later
// viewport changes reach registered listeners but never re-select the
// profile, so a sequence that has started is never re-laid out.
package variant

import (
	"errors"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/teranos/overture/trip"
)

// Probe measures the viewport in terminal cells.
type Probe interface {
	Size() (width, height int, err error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() (int, int, error)

func (f ProbeFunc) Size() (int, int, error) { return f() }

// TerminalProbe measures the terminal attached to a file descriptor.
type TerminalProbe struct {
	Fd uintptr
}

// NewTerminalProbe measures standard output.
func NewTerminalProbe() TerminalProbe {
	return TerminalProbe{Fd: os.Stdout.Fd()}
}

func (p TerminalProbe) Size() (int, int, error) {
	if !term.IsTerminal(p.Fd) {
		return 0, 0, errors.New("not a terminal")
	}
	return term.GetSize(p.Fd)
}

// FixedProbe reports a constant size.
type FixedProbe struct {
	Width, Height int
}

func (p FixedProbe) Size() (int, int, error) {
	return p.Width, p.Height, nil
}

// Resolution is the outcome of evaluating the viewport predicate.
type Resolution struct {
	Key     Key
	Profile Profile
	Width   int
	Height  int
	// Fallback is set when the viewport could not be measured.
	Fallback bool
}

// Resolver evaluates the viewport predicate once and keeps the listeners
// registered against viewport changes until Revert.
type Resolver struct {
	probe    Probe
	profiles Profiles
	trips    *trip.Handler
	logger   *slog.Logger

	resolved   bool
	resolution Resolution

	listeners map[int]func(width, height int)
	nextID    int
}

// NewResolver creates a resolver. A nil probe behaves like an unavailable
// viewport.
func NewResolver(probe Probe, profiles Profiles) *Resolver {
	return &Resolver{
		probe:     probe,
		profiles:  profiles,
		logger:    slog.Default(),
		listeners: make(map[int]func(int, int)),
	}
}

// WithTrips records environment stumbles into h.
func (r *Resolver) WithTrips(h *trip.Handler) *Resolver {
	r.trips = h
	return r
}

func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve evaluates the predicate on first use and returns the cached
// resolution afterwards. It never fails: an unmeasurable viewport resolves
// to Desktop.
func (r *Resolver) Resolve() Resolution {
	if r.resolved {
		return r.resolution
	}
	r.resolved = true

	width, height, err := r.measure()
	if err != nil {
		r.resolution = Resolution{Key: Desktop, Profile: r.profiles.Desktop, Fallback: true}
		r.logger.Warn("variant: viewport unavailable, using desktop profile", "error", err)
		if r.trips != nil {
			r.trips.Stumble(trip.EnvironmentUnavailable, "viewport could not be measured", trip.Context{
				"error":    err.Error(),
				"fallback": Desktop.String(),
			})
		}
		return r.resolution
	}

	key := Desktop
	if width < r.profiles.Breakpoint {
		key = Mobile
	}
	r.resolution = Resolution{Key: key, Profile: r.profiles.For(key), Width: width, Height: height}
	r.logger.Debug("variant: resolved", "variant", key.String(), "width", width, "height", height)
	return r.resolution
}

func (r *Resolver) measure() (int, int, error) {
	if r.probe == nil {
		return 0, 0, errors.New("no viewport probe")
	}
	width, height, err := r.probe.Size()
	if err != nil {
		return 0, 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.New("viewport has no size")
	}
	return width, height, nil
}

// Listen registers fn for viewport changes and returns its removal.
func (r *Resolver) Listen(fn func(width, height int)) (remove func()) {
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

// Notify forwards a viewport change to the registered listeners.
func (r *Resolver) Notify(width, height int) {
	for _, fn := range r.listeners {
		fn(width, height)
	}
}

// Revert removes every listener.
func (r *Resolver) Revert() {
	if len(r.listeners) > 0 {
		r.logger.Debug("variant: listeners removed", "count", len(r.listeners))
	}
	r.listeners = make(map[int]func(int, int))
}

// Listening reports whether any listener is registered.
func (r *Resolver) Listening() bool {
	return len(r.listeners) > 0
}
