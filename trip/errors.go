// Package trip records the recoverable mishaps of an intro sequence.
//
// Nothing in an intro may block the application behind it, so every failure
// the controller meets degrades to "finish immediately" and is recorded here
// as a Trip instead of being returned to the caller. Stumbles are the
// expected, self-healing kinds; Errors and Falls are reserved for the
// headless director's assertions.
package trip

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Kinds recorded by the controller.
const (
	// EnvironmentUnavailable: the viewport could not be measured, the
	// desktop profile was used instead.
	EnvironmentUnavailable = "environment_unavailable"
	// DuplicateCompletion: a second completion raced the first and was dropped.
	DuplicateCompletion = "duplicate_completion"
	// DoubleInterruption: a hard skip overrode an in-flight soft skip.
	DoubleInterruption = "double_interruption"
	// TeardownBeforeStart: the controller was discarded before it played.
	TeardownBeforeStart = "teardown_before_start"
	// InvalidConfig: settings the controller cannot honour were replaced
	// by their defaults.
	InvalidConfig = "invalid_config"
	// TimelineUnavailable: the engine could not build the sequence.
	TimelineUnavailable = "timeline_unavailable"
	// Assertion: a director expectation did not hold.
	Assertion = "assertion"
	// Stalled: the intro did not complete within the director's limit.
	Stalled = "stalled"
)

// Trip is one recorded mishap with its context.
type Trip struct {
	Type      string
	Message   string
	Context   Context
	Timestamp time.Time
	Severity  Severity
}

// Context carries debugging details for a trip.
type Context map[string]interface{}

// Severity indicates how serious a trip is.
type Severity int

const (
	// Stumble is recovered locally and never affects the caller.
	Stumble Severity = iota
	// Error invalidates a director run.
	Error
	// Fall stops a director run.
	Fall
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	case Fall:
		return "fall"
	default:
		return "unknown"
	}
}

// NewTrip creates a trip with Error severity.
func NewTrip(kind, message string, context Context) *Trip {
	return &Trip{
		Type:      kind,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Error,
	}
}

// NewStumble creates a trip with Stumble severity.
func NewStumble(kind, message string, context Context) *Trip {
	return NewTrip(kind, message, context).WithSeverity(Stumble)
}

// NewFall creates a trip with Fall severity.
func NewFall(kind, message string, context Context) *Trip {
	return NewTrip(kind, message, context).WithSeverity(Fall)
}

func (t *Trip) WithSeverity(severity Severity) *Trip {
	t.Severity = severity
	return t
}

// Error implements the error interface.
func (t *Trip) Error() string {
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// CanRecover reports whether the run may continue despite this trip.
func (t *Trip) CanRecover() bool {
	return t.Severity == Stumble
}

func (t *Trip) IsFall() bool {
	return t.Severity == Fall
}

// DetailedString describes the trip with its context, keys sorted.
func (t *Trip) DetailedString() string {
	var b strings.Builder
	b.WriteString(t.Error())
	b.WriteString(fmt.Sprintf("\n  Time: %s", t.Timestamp.Format("15:04:05.000")))

	if len(t.Context) > 0 {
		keys := make([]string, 0, len(t.Context))
		for k := range t.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n  Context:")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n    %s: %v", k, t.Context[k]))
		}
	}
	return b.String()
}

// Handler collects trips for one component.
type Handler struct {
	component string
	trips     []*Trip
	stumbles  []*Trip
	logger    *slog.Logger
}

// NewHandler creates an empty handler logging through slog.Default.
func NewHandler(component string) *Handler {
	return &Handler{
		component: component,
		logger:    slog.Default(),
	}
}

// WithLogger replaces the handler's logger.
func (h *Handler) WithLogger(logger *slog.Logger) *Handler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Record stores a trip and logs it.
func (h *Handler) Record(t *Trip) {
	if t.CanRecover() {
		h.stumbles = append(h.stumbles, t)
		h.logger.Debug(h.component+": stumble", "type", t.Type, "message", t.Message)
		return
	}
	h.trips = append(h.trips, t)
	h.logger.Warn(h.component+": trip", "type", t.Type, "severity", t.Severity.String(), "message", t.Message)
}

// Stumble records a recovered mishap.
func (h *Handler) Stumble(kind, message string, context Context) {
	h.Record(NewStumble(kind, message, context))
}

// ShouldContinue is false once a Fall has been recorded.
func (h *Handler) ShouldContinue() bool {
	for _, t := range h.trips {
		if t.IsFall() {
			return false
		}
	}
	return true
}

func (h *Handler) HasTrips() bool {
	return len(h.trips) > 0
}

func (h *Handler) Trips() []*Trip {
	return h.trips
}

func (h *Handler) Stumbles() []*Trip {
	return h.stumbles
}

// Count returns how many trips of the given kind were recorded, at any severity.
func (h *Handler) Count(kind string) int {
	n := 0
	for _, group := range [][]*Trip{h.trips, h.stumbles} {
		for _, t := range group {
			if t.Type == kind {
				n++
			}
		}
	}
	return n
}

// Summary gives a one-line overview.
func (h *Handler) Summary() string {
	if len(h.trips) == 0 && len(h.stumbles) == 0 {
		return fmt.Sprintf("[%s] No issues", h.component)
	}
	return fmt.Sprintf("[%s] %d trips, %d stumbles", h.component, len(h.trips), len(h.stumbles))
}

// DetailedReport lists every trip and stumble.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s Component Report ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	if len(h.trips) > 0 {
		report.WriteString("\nTrips:\n")
		for i, t := range h.trips {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, t.DetailedString()))
		}
	}

	if len(h.stumbles) > 0 {
		report.WriteString("\nStumbles:\n")
		for i, s := range h.stumbles {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.DetailedString()))
		}
	}

	return report.String()
}
