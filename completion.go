package overture

// Phase is the completion state of a controller.
//
//	NotStarted ─┬─> Running ─┬─> Completing ──> Completed
//	            │            ├─> Skipping ────> Completed
//	            │            └──────────────────> Completed
//	            └──────────────────────────────> Completed
//
// Completed is terminal and entered once.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseCompleting
	PhaseSkipping
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRunning:
		return "running"
	case PhaseCompleting:
		return "completing"
	case PhaseSkipping:
		return "skipping"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

var transitions = map[Phase][]Phase{
	PhaseNotStarted: {PhaseRunning, PhaseCompleted},
	PhaseRunning:    {PhaseCompleting, PhaseSkipping, PhaseCompleted},
	PhaseCompleting: {PhaseCompleted},
	PhaseSkipping:   {PhaseCompleted},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Reason records which path completed the sequence.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonNatural: the timeline reached its end at its own pace.
	ReasonNatural
	// ReasonSoftSkip: the timeline reached its end after being accelerated,
	// or a soft skip found nothing left to play.
	ReasonSoftSkip
	// ReasonHardSkip: playback was cut off.
	ReasonHardSkip
	// ReasonSkipped: reduced motion or the caller's skip flag bypassed the intro.
	ReasonSkipped
	// ReasonTeardown: the controller was discarded with the sequence pending.
	ReasonTeardown
)

func (r Reason) String() string {
	switch r {
	case ReasonNatural:
		return "natural"
	case ReasonSoftSkip:
		return "soft_skip"
	case ReasonHardSkip:
		return "hard_skip"
	case ReasonSkipped:
		return "skipped"
	case ReasonTeardown:
		return "teardown"
	default:
		return "none"
	}
}

// completion owns the phase and the single outbound notification.
type completion struct {
	phase  Phase
	reason Reason
	notify func()
}

// enter moves to a non-terminal phase.
func (c *completion) enter(next Phase) bool {
	if next == PhaseCompleted || !CanTransition(c.phase, next) {
		return false
	}
	c.phase = next
	return true
}

// complete enters Completed and fires the notification. It returns false,
// without notifying, when the sequence already completed.
func (c *completion) complete(reason Reason) bool {
	if c.phase == PhaseCompleted {
		return false
	}
	c.phase = PhaseCompleted
	c.reason = reason
	if c.notify != nil {
		c.notify()
	}
	return true
}

func (c *completion) done() bool {
	return c.phase == PhaseCompleted
}
