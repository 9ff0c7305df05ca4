package overture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/overture/timeline"
	"github.com/teranos/overture/trip"
	"github.com/teranos/overture/variant"
)

func TestDirector_RecordsActionsAndSnapshots(t *testing.T) {
	c := New(WithProbe(variant.FixedProbe{Width: 100, Height: 30}))
	result := NewDirector(c, DefaultStageConfig()).
		Start().
		Advance(600 * time.Millisecond).
		Snapshot("revealed").
		PressEscape().
		AdvanceUntilDone().
		Stop()

	require.True(t, result.Success, result.TripReport)

	var types []string
	for _, a := range result.Actions {
		types = append(types, a.Type)
	}
	assert.Equal(t, []string{"mount", "advance", "keypress", "done", "advance", "unmount"}, types)

	labels := map[string]StageSnapshot{}
	for _, s := range result.Snapshots {
		labels[s.Label] = s
	}
	require.Contains(t, labels, "revealed")
	assert.Contains(t, labels["revealed"].View, skipLabel)
	assert.Equal(t, "running", labels["revealed"].Phase)
	assert.Equal(t, 600*time.Millisecond, labels["revealed"].At)
	assert.Equal(t, "skipping", labels["escape"].Phase)
	assert.Equal(t, "completed", labels["done"].Phase)
	assert.Empty(t, labels["done"].View)
}

func TestDirector_FailedAssertions(t *testing.T) {
	c := New(WithProbe(variant.FixedProbe{Width: 100, Height: 30}))
	result := NewDirector(c, StageConfig{}).
		Start().
		AssertViewContains("no such text").
		AssertPhase(PhaseCompleted).
		Stop()

	assert.False(t, result.Success)
	assert.Equal(t, `view does not contain "no such text"`, result.ErrorMessage)
	var tr *trip.Trip
	require.ErrorAs(t, result.Error, &tr)
	assert.Equal(t, trip.Assertion, tr.Type)
	assert.Contains(t, result.TripReport, "phase is running, expected completed")
	assert.Equal(t, 1, result.Completions, "Stop still unmounts")
	assert.Equal(t, ReasonTeardown, result.Reason)
}

func TestDirector_AdvanceUntilDoneGivesUp(t *testing.T) {
	long := []timeline.Placement{{Segment: timeline.Segment{Label: "long", Tracks: []timeline.StageTrack{
		{Target: "stage", Property: "opacity", From: 1, To: 0, Duration: 60},
	}}}}
	c := New(
		WithProbe(variant.FixedProbe{Width: 100, Height: 30}),
		WithEngine(&fixtureEngine{placements: long}),
	)

	result := NewDirector(c, StageConfig{Limit: 2 * time.Second}).Start().AdvanceUntilDone().Stop()

	assert.False(t, result.Success)
	assert.True(t, result.Stopped)
	assert.Equal(t, "intro did not complete", result.ErrorMessage)
	assert.InDelta(t, 2, result.Duration.Seconds(), 0.02)
	assert.Equal(t, ReasonTeardown, result.Reason)

	var stall *trip.Trip
	require.ErrorAs(t, result.Error, &stall)
	assert.Equal(t, trip.Stalled, stall.Type)
	assert.True(t, stall.IsFall())
}

func TestDirector_StopsAdvancingPastLimit(t *testing.T) {
	long := []timeline.Placement{{Segment: timeline.Segment{Label: "long", Tracks: []timeline.StageTrack{
		{Target: "stage", Property: "opacity", From: 1, To: 0, Duration: 60},
	}}}}
	c := New(
		WithProbe(variant.FixedProbe{Width: 100, Height: 30}),
		WithEngine(&fixtureEngine{placements: long}),
	)
	d := NewDirector(c, StageConfig{Limit: time.Second}).Start()

	d.Advance(500 * time.Millisecond)
	assert.True(t, d.ShouldContinue())

	d.Advance(time.Second)
	assert.False(t, d.ShouldContinue(), "passing the limit stops the run")
	frames := c.Frames()

	d.Advance(time.Second).AdvanceUntilDone()
	assert.Equal(t, frames, c.Frames(), "a stopped run plays no more frames")

	result := d.Stop()
	assert.True(t, result.Stopped)
	assert.InDelta(t, 1.5, result.Duration.Seconds(), 0.001)
}

func TestDirector_ChainsExistingCallback(t *testing.T) {
	fired := 0
	c := New(
		WithConfig(Config{SkipIntro: true, SoftSkipFactor: 8, FPS: 60}),
		WithOnComplete(func() { fired++ }),
	)
	result := NewDirector(c, StageConfig{}).Start().Stop()

	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, result.Completions)
	assert.Zero(t, result.CompletedAt)
	assert.Equal(t, ReasonSkipped, result.Reason)
	require.Len(t, result.Done, 1)
}
