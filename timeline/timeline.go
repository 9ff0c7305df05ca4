// Package timeline composes timed property tracks into one seekable,
// rate-scalable schedule driven by host frame ticks.
//
// A Timeline owns no clock. The host calls Advance once per frame with the
// wall-clock time elapsed since the previous frame; the timeline scales it by
// the playback rate, applies every due track to its Sink in declaration order
// and fires its completion callback at most once when the playhead reaches
// the end.
package timeline

import (
	"errors"
	"math"
	"time"
)

var (
	ErrEmptyTimeline        = errors.New("timeline: no segments")
	ErrInvalidTrack         = errors.New("timeline: invalid track")
	ErrInvalidRate          = errors.New("timeline: playback rate must be positive")
	ErrCompletionAlreadySet = errors.New("timeline: completion callback already registered")
	ErrCancelled            = errors.New("timeline: cancelled")
)

// Sink receives interpolated property values.
type Sink interface {
	Apply(target, property string, value float64)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(target, property string, value float64)

func (f SinkFunc) Apply(target, property string, value float64) { f(target, property, value) }

type discard struct{}

func (discard) Apply(string, string, float64) {}

// Engine hands out independent, disposable timelines.
type Engine interface {
	CreateTimeline(sink Sink, placements ...Placement) (*Timeline, error)
}

// DefaultEngine builds timelines with New.
type DefaultEngine struct{}

func (DefaultEngine) CreateTimeline(sink Sink, placements ...Placement) (*Timeline, error) {
	return New(sink, placements...)
}

// Timeline is the ordered composition of segments.
type Timeline struct {
	sink   Sink
	tracks []Scheduled
	bounds []Bounds
	total  float64

	rate      float64
	head      float64
	playing   bool
	complete  bool
	cancelled bool

	onComplete func()
	fired      bool
}

// New resolves placements into a paused timeline. Nothing is applied to the
// sink until Play.
func New(sink Sink, placements ...Placement) (*Timeline, error) {
	tracks, bounds, total, err := Resolve(placements)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = discard{}
	}
	return &Timeline{
		sink:   sink,
		tracks: tracks,
		bounds: bounds,
		total:  total,
		rate:   1,
	}, nil
}

// OnComplete registers the completion callback. Only the first registration
// is kept.
func (tl *Timeline) OnComplete(cb func()) error {
	if tl.onComplete != nil {
		return ErrCompletionAlreadySet
	}
	tl.onComplete = cb
	return nil
}

// Play starts advancing from the given progress, clamped to [0,1].
func (tl *Timeline) Play(fromProgress float64) error {
	if tl.cancelled {
		return ErrCancelled
	}
	if tl.complete {
		return nil
	}
	if math.IsNaN(fromProgress) {
		fromProgress = 0
	}
	tl.head = math.Min(math.Max(fromProgress, 0), 1) * tl.total
	tl.playing = true
	tl.prime()
	tl.render()
	return nil
}

// Pause stops advancing without releasing anything.
func (tl *Timeline) Pause() {
	tl.playing = false
}

// Playing reports whether Advance moves the playhead.
func (tl *Timeline) Playing() bool {
	return tl.playing
}

// SetPlaybackRate scales the wall-clock time of everything not yet played.
// The playhead does not move, so in-flight interpolations continue from
// where they are.
func (tl *Timeline) SetPlaybackRate(r float64) error {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return ErrInvalidRate
	}
	tl.rate = r
	return nil
}

func (tl *Timeline) PlaybackRate() float64 {
	return tl.rate
}

// Advance moves the playhead by dt of wall-clock time.
func (tl *Timeline) Advance(dt time.Duration) {
	if !tl.playing || tl.complete || tl.cancelled {
		return
	}
	if dt > 0 {
		tl.head += dt.Seconds() * tl.rate
	}
	if tl.head >= tl.total {
		tl.head = tl.total
	}
	tl.render()
	if tl.head >= tl.total {
		tl.finish()
	}
}

// Cancel stops the timeline for good and releases its tracks. The
// completion callback is not invoked.
func (tl *Timeline) Cancel() {
	tl.cancelled = true
	tl.playing = false
	tl.tracks = nil
	tl.bounds = nil
	tl.sink = discard{}
	tl.onComplete = nil
}

// Progress is the playhead position in [0,1].
func (tl *Timeline) Progress() float64 {
	if tl.total == 0 {
		if tl.complete {
			return 1
		}
		return 0
	}
	return tl.head / tl.total
}

// Elapsed is the playhead position in timeline seconds.
func (tl *Timeline) Elapsed() float64 {
	return tl.head
}

// TotalDuration is the nominal length in seconds at rate 1.
func (tl *Timeline) TotalDuration() float64 {
	return tl.total
}

// Remaining is the wall-clock time left at the current rate.
func (tl *Timeline) Remaining() time.Duration {
	if tl.complete || tl.cancelled {
		return 0
	}
	return time.Duration((tl.total - tl.head) / tl.rate * float64(time.Second))
}

func (tl *Timeline) IsComplete() bool {
	return tl.complete
}

func (tl *Timeline) IsCancelled() bool {
	return tl.cancelled
}

// Segments returns the resolved bounds of every segment.
func (tl *Timeline) Segments() []Bounds {
	out := make([]Bounds, len(tl.bounds))
	copy(out, tl.bounds)
	return out
}

// prime applies the starting value of the first track animating each
// target property, so nothing flashes in its final state before its track
// begins.
func (tl *Timeline) prime() {
	seen := make(map[[2]string]bool, len(tl.tracks))
	for _, tr := range tl.tracks {
		key := [2]string{tr.Target, tr.Property}
		if seen[key] {
			continue
		}
		seen[key] = true
		tl.sink.Apply(tr.Target, tr.Property, tr.From)
	}
}

func (tl *Timeline) render() {
	for _, tr := range tl.tracks {
		local := tl.head - tr.Start
		if local < 0 {
			continue
		}
		tl.sink.Apply(tr.Target, tr.Property, tr.ValueAt(local))
	}
}

// finish must stay the last step of Advance: the callback may cancel the
// timeline.
func (tl *Timeline) finish() {
	tl.complete = true
	tl.playing = false
	if tl.fired || tl.onComplete == nil {
		return
	}
	tl.fired = true
	tl.onComplete()
}
