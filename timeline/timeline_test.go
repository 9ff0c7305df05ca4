package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps the last value applied per target property.
func recorder() (map[string]float64, SinkFunc) {
	values := map[string]float64{}
	return values, func(target, property string, value float64) {
		values[target+"."+property] = value
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// sixSeconds is a three-beat timeline lasting exactly 6.0s.
func sixSeconds() []Placement {
	return []Placement{
		{Segment: Segment{Label: "in", Tracks: []StageTrack{
			{Target: "logo", Property: "opacity", From: 0, To: 1, Duration: 2},
		}}},
		{Segment: Segment{Label: "hold", Tracks: []StageTrack{
			{Target: "caption", Property: "chars", From: 0, To: 10, Duration: 2.5},
		}}, Anchor: AnchorPrevEnd, Offset: -0.5},
		{Segment: Segment{Label: "out", Tracks: []StageTrack{
			{Target: "logo", Property: "opacity", From: 1, To: 0, Duration: 2},
		}}, Anchor: AnchorPrevEnd},
	}
}

func TestResolve_AnchorsAndTotal(t *testing.T) {
	_, bounds, total, err := Resolve(sixSeconds())
	require.NoError(t, err)

	require.Len(t, bounds, 3)
	assert.Equal(t, Bounds{Label: "in", Start: 0, End: 2}, bounds[0])
	assert.Equal(t, Bounds{Label: "hold", Start: 1.5, End: 4}, bounds[1])
	assert.Equal(t, Bounds{Label: "out", Start: 4, End: 6}, bounds[2])
	assert.Equal(t, 6.0, total)
}

func TestResolve_PrevStartAnchor(t *testing.T) {
	placements := []Placement{
		{Segment: Segment{Label: "a", Tracks: []StageTrack{{Target: "x", Property: "p", Duration: 3}}}, Offset: 1},
		{Segment: Segment{Label: "b", Tracks: []StageTrack{{Target: "y", Property: "p", Duration: 1}}}, Anchor: AnchorPrevStart, Offset: 0.25},
	}
	_, bounds, total, err := Resolve(placements)
	require.NoError(t, err)
	assert.Equal(t, 1.25, bounds[1].Start)
	assert.Equal(t, 4.0, total)
}

func TestResolve_NegativeStartClampsToOrigin(t *testing.T) {
	placements := []Placement{
		{Segment: Segment{Label: "a", Tracks: []StageTrack{{Target: "x", Property: "p", Duration: 1}}}, Anchor: AnchorPrevEnd, Offset: -3},
	}
	tracks, _, _, err := Resolve(placements)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tracks[0].Start)
}

func TestResolve_InfiniteTracksDoNotHoldTimelineOpen(t *testing.T) {
	placements := []Placement{
		{Segment: Segment{Label: "blink", Tracks: []StageTrack{
			{Target: "cursor", Property: "opacity", From: 0, To: 1, Duration: 0.4, Repeat: RepeatForever, Yoyo: true},
			{Target: "caption", Property: "chars", From: 0, To: 5, Duration: 1.5},
		}}},
	}
	_, _, total, err := Resolve(placements)
	require.NoError(t, err)
	assert.Equal(t, 1.5, total)
}

func TestResolve_Errors(t *testing.T) {
	_, _, _, err := Resolve(nil)
	assert.ErrorIs(t, err, ErrEmptyTimeline)

	_, _, _, err = Resolve([]Placement{{Segment: Segment{Label: "bad", Tracks: []StageTrack{
		{Target: "x", Property: "p", Duration: -1},
	}}}})
	assert.ErrorIs(t, err, ErrInvalidTrack)

	_, _, _, err = Resolve([]Placement{{Segment: Segment{Label: "bad", Tracks: []StageTrack{
		{Target: "x", Property: "p", Repeat: RepeatForever},
	}}}})
	assert.ErrorIs(t, err, ErrInvalidTrack)
}

func TestStagger_Offsets(t *testing.T) {
	tests := []struct {
		name string
		from StaggerFrom
		want []float64
	}{
		{"start", FromStart, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"end", FromEnd, []float64{1, 0.75, 0.5, 0.25, 0}},
		{"center", FromCenter, []float64{1, 0.5, 0, 0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stagger{Amount: 1, From: tt.from}
			for i, want := range tt.want {
				assert.InDelta(t, want, s.offset(i, 5), 1e-9, "track %d", i)
			}
		})
	}

	assert.Equal(t, 0.0, Stagger{Amount: 1}.offset(0, 1))
}

func TestStageTrack_RepeatAndYoyo(t *testing.T) {
	tr := StageTrack{Target: "x", Property: "p", From: 0, To: 10, Duration: 1, Repeat: 2, Yoyo: true}

	assert.Equal(t, 3.0, tr.Span())
	assert.InDelta(t, 5, tr.ValueAt(0.5), 1e-9)
	assert.InDelta(t, 7.5, tr.ValueAt(1.25), 1e-9, "second iteration runs backwards")
	assert.InDelta(t, 5, tr.ValueAt(2.5), 1e-9)
	assert.Equal(t, 10.0, tr.ValueAt(5), "three iterations end forward")

	tr.Repeat = 1
	assert.Equal(t, 0.0, tr.ValueAt(5), "yoyo with one repeat ends where it began")
}

func TestStageTrack_ZeroDurationSetsImmediately(t *testing.T) {
	tr := StageTrack{Target: "x", Property: "p", From: 0, To: 3}
	assert.Equal(t, 3.0, tr.ValueAt(0))
}

func TestEasing_Endpoints(t *testing.T) {
	for name, ease := range map[string]Ease{
		"linear": Linear, "quad-out": QuadOut, "cubic-in-out": CubicInOut,
		"sine-in-out": SineInOut, "expo-in": ExpoIn, "back-out": BackOut,
	} {
		assert.InDelta(t, 0, ease(0), 1e-3, name)
		assert.InDelta(t, 1, ease(1), 1e-9, name)
	}
}

func TestTimeline_PlaysToCompletionOnce(t *testing.T) {
	rec, sink := recorder()
	tl, err := New(sink, sixSeconds()...)
	require.NoError(t, err)

	calls := 0
	require.NoError(t, tl.OnComplete(func() { calls++ }))
	require.NoError(t, tl.Play(0))
	assert.Equal(t, 0.0, rec["logo.opacity"], "primed with the first track's start value")

	for i := 0; i < 400; i++ {
		tl.Advance(20 * time.Millisecond)
	}

	assert.True(t, tl.IsComplete())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, tl.Progress())
	assert.Equal(t, 0.0, rec["logo.opacity"])
	assert.Equal(t, 10.0, rec["caption.chars"])
}

func TestTimeline_OnCompleteKeepsFirst(t *testing.T) {
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)

	var got string
	require.NoError(t, tl.OnComplete(func() { got = "first" }))
	assert.ErrorIs(t, tl.OnComplete(func() { got = "second" }), ErrCompletionAlreadySet)

	require.NoError(t, tl.Play(0))
	tl.Advance(seconds(7))
	assert.Equal(t, "first", got)
}

func TestTimeline_AdvanceDoesNothingUntilPlayed(t *testing.T) {
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)

	tl.Advance(seconds(10))
	assert.Equal(t, 0.0, tl.Progress())
	assert.False(t, tl.IsComplete())
}

func TestTimeline_RateChangeIsContinuous(t *testing.T) {
	rec, sink := recorder()
	tl, err := New(sink, sixSeconds()...)
	require.NoError(t, err)
	require.NoError(t, tl.Play(0))

	tl.Advance(seconds(1))
	before := rec["logo.opacity"]
	require.NoError(t, tl.SetPlaybackRate(8))
	tl.Advance(0)

	assert.InDelta(t, before, rec["logo.opacity"], 1e-9)
	assert.InDelta(t, 1.0, tl.Elapsed(), 1e-9)

	tl.Advance(seconds(0.1))
	assert.InDelta(t, 1.8, tl.Elapsed(), 1e-9)
}

func TestTimeline_SoftSkipScenario(t *testing.T) {
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)
	require.NoError(t, tl.Play(0))

	tl.Advance(seconds(1.2))
	atRateOne := tl.Remaining()
	require.NoError(t, tl.SetPlaybackRate(tl.PlaybackRate()*8))

	assert.InDelta(t, seconds(0.6), tl.Remaining(), float64(time.Millisecond))
	assert.Less(t, tl.Remaining(), atRateOne)

	tl.Advance(seconds(0.59))
	assert.False(t, tl.IsComplete())
	assert.GreaterOrEqual(t, tl.Elapsed(), 1.2, "never moves backwards")

	tl.Advance(seconds(0.02))
	assert.True(t, tl.IsComplete())
}

func TestTimeline_SetPlaybackRateRejectsNonPositive(t *testing.T) {
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)

	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, tl.SetPlaybackRate(r), ErrInvalidRate)
	}
	assert.Equal(t, 1.0, tl.PlaybackRate())
}

func TestTimeline_CancelStopsWithoutCompletion(t *testing.T) {
	rec, sink := recorder()
	tl, err := New(sink, sixSeconds()...)
	require.NoError(t, err)

	calls := 0
	require.NoError(t, tl.OnComplete(func() { calls++ }))
	require.NoError(t, tl.Play(0))
	tl.Advance(seconds(1))
	snapshot := rec["logo.opacity"]

	tl.Cancel()
	tl.Advance(seconds(10))

	assert.True(t, tl.IsCancelled())
	assert.False(t, tl.IsComplete())
	assert.Equal(t, 0, calls)
	assert.Equal(t, snapshot, rec["logo.opacity"], "no frame applied after cancel")
	assert.ErrorIs(t, tl.Play(0), ErrCancelled)
	assert.Equal(t, time.Duration(0), tl.Remaining())
}

func TestTimeline_CallbackMayCancel(t *testing.T) {
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)
	require.NoError(t, tl.OnComplete(func() { tl.Cancel() }))
	require.NoError(t, tl.Play(0))

	assert.NotPanics(t, func() { tl.Advance(seconds(6)) })
	assert.True(t, tl.IsComplete())
	assert.True(t, tl.IsCancelled())
}

func TestTimeline_PauseHoldsPlayhead(t *testing.T) {
	rec, sink := recorder()
	tl, err := New(sink, sixSeconds()...)
	require.NoError(t, err)
	assert.False(t, tl.Playing())

	require.NoError(t, tl.Play(0))
	tl.Advance(seconds(1))
	assert.True(t, tl.Playing())

	tl.Pause()
	progress, opacity, remaining := tl.Progress(), rec["logo.opacity"], tl.Remaining()
	tl.Advance(seconds(3))

	assert.False(t, tl.Playing())
	assert.Equal(t, progress, tl.Progress(), "a paused timeline does not advance")
	assert.Equal(t, opacity, rec["logo.opacity"])
	assert.Equal(t, remaining, tl.Remaining())

	require.NoError(t, tl.Play(tl.Progress()))
	assert.InDelta(t, 1.0, tl.Elapsed(), 1e-9, "resuming does not jump")
	assert.InDelta(t, opacity, rec["logo.opacity"], 1e-9)

	tl.Advance(seconds(0.5))
	assert.InDelta(t, 1.5, tl.Elapsed(), 1e-9)
}

func TestTimeline_Segments(t *testing.T) {
	_, bounds, _, err := Resolve(sixSeconds())
	require.NoError(t, err)
	tl, err := New(nil, sixSeconds()...)
	require.NoError(t, err)

	segments := tl.Segments()
	assert.Equal(t, bounds, segments)

	segments[0].Label = "changed"
	assert.Equal(t, "in", tl.Segments()[0].Label, "callers get a copy")

	tl.Cancel()
	assert.Empty(t, tl.Segments())
}

func TestTimeline_PlayFromProgress(t *testing.T) {
	rec, sink := recorder()
	tl, err := New(sink, sixSeconds()...)
	require.NoError(t, err)

	require.NoError(t, tl.Play(0.5))
	assert.InDelta(t, 3.0, tl.Elapsed(), 1e-9)
	assert.InDelta(t, 6.0, rec["caption.chars"], 1e-9)

	require.NoError(t, tl.Play(7))
	assert.Equal(t, 1.0, tl.Progress())
}

func TestDefaultEngine_IndependentTimelines(t *testing.T) {
	var engine Engine = DefaultEngine{}

	a, err := engine.CreateTimeline(nil, sixSeconds()...)
	require.NoError(t, err)
	b, err := engine.CreateTimeline(nil, sixSeconds()...)
	require.NoError(t, err)

	require.NoError(t, a.Play(0))
	a.Advance(seconds(2))
	a.Cancel()

	assert.Equal(t, 0.0, b.Elapsed())
	assert.False(t, b.IsCancelled())
}
