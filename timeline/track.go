package timeline

import (
	"fmt"
	"math"
)

// RepeatForever makes a track loop until its timeline completes.
const RepeatForever = -1

// StageTrack is a single named property change on one target.
//
// Offset is relative to the start of the owning Segment. Duration covers one
// iteration; with Repeat > 0 the track runs Repeat extra iterations, and with
// Yoyo every odd iteration plays backwards.
type StageTrack struct {
	Target   string
	Property string
	From     float64
	To       float64
	Offset   float64
	Duration float64
	Ease     Ease
	Repeat   int
	Yoyo     bool
}

// Infinite reports whether the track repeats forever.
func (tr StageTrack) Infinite() bool {
	return tr.Repeat == RepeatForever
}

// Span is the active time of the track across all iterations.
func (tr StageTrack) Span() float64 {
	if tr.Infinite() {
		return math.Inf(1)
	}
	return tr.Duration * float64(tr.Repeat+1)
}

// Validate checks the track can be scheduled.
func (tr StageTrack) Validate() error {
	switch {
	case tr.Target == "" || tr.Property == "":
		return fmt.Errorf("%w: track needs a target and a property", ErrInvalidTrack)
	case tr.Duration < 0 || math.IsNaN(tr.Duration) || math.IsInf(tr.Duration, 0):
		return fmt.Errorf("%w: %s.%s has duration %v", ErrInvalidTrack, tr.Target, tr.Property, tr.Duration)
	case tr.Repeat < RepeatForever:
		return fmt.Errorf("%w: %s.%s has repeat %d", ErrInvalidTrack, tr.Target, tr.Property, tr.Repeat)
	case tr.Infinite() && tr.Duration == 0:
		return fmt.Errorf("%w: %s.%s repeats forever with zero duration", ErrInvalidTrack, tr.Target, tr.Property)
	}
	return nil
}

// ValueAt returns the property value local seconds after the track started.
func (tr StageTrack) ValueAt(local float64) float64 {
	if local <= 0 && tr.Duration > 0 {
		return tr.From
	}
	if tr.Duration == 0 || (!tr.Infinite() && local >= tr.Span()) {
		return tr.final()
	}

	iteration := math.Floor(local / tr.Duration)
	frac := (local - iteration*tr.Duration) / tr.Duration
	if tr.Yoyo && int64(iteration)%2 == 1 {
		frac = 1 - frac
	}
	return Lerp(tr.From, tr.To, tr.ease()(frac))
}

// final is the value the track rests at once all iterations are done.
func (tr StageTrack) final() float64 {
	if tr.Yoyo && tr.Repeat%2 == 1 {
		return tr.From
	}
	return tr.To
}

func (tr StageTrack) ease() Ease {
	if tr.Ease == nil {
		return Linear
	}
	return tr.Ease
}
