package overture

import (
	"time"

	"github.com/teranos/overture/trip"
)

// StageAction records a single thing the director did to the controller.
type StageAction struct {
	At      time.Duration // virtual time since Start
	Type    string        // "mount", "keypress", "click", "resize", "advance", "assertion", "unmount"
	Details interface{}
}

// StageSnapshot captures the controller at a moment of virtual time.
type StageSnapshot struct {
	At       time.Duration
	Label    string
	View     string
	Phase    string
	Progress float64
}

// StageResult is the outcome of a director run.
//
// Example usage:
//
//	result := director.Stop()
//	if !result.Success {
//		t.Logf("run failed after %v: %s", result.Duration, result.ErrorMessage)
//		t.Log(result.TripReport)
//	}
type StageResult struct {
	Actions     []StageAction
	Snapshots   []StageSnapshot
	Success     bool          // no director assertion failed
	Stopped     bool          // a fall ended the run before it finished
	Duration    time.Duration // virtual time covered
	Frames      int           // frames that advanced the timeline
	Completions int           // completion callback invocations
	CompletedAt time.Duration // virtual time of the first completion, -1 if none
	Reason      Reason
	Done        []DoneMsg

	ErrorMessage string
	Error        error
	TripReport   string
}

// StageConfig configures a Director.
type StageConfig struct {
	// CaptureViews snapshots the view after every interaction.
	CaptureViews bool
	// Limit is the virtual time the intro has to complete in. Passing it
	// stops the run.
	Limit time.Duration
}

// DefaultStageConfig captures views and gives up after 30 seconds of
// virtual time.
func DefaultStageConfig() StageConfig {
	return StageConfig{
		CaptureViews: true,
		Limit:        30 * time.Second,
	}
}

func newStageTrip(message string, context trip.Context) *trip.Trip {
	return trip.NewTrip(trip.Assertion, message, context)
}
