package overture

import "github.com/teranos/overture/trip"

// Close tears the controller down when its host discards it. If the intro
// is still pending it completes with ReasonTeardown. Safe to call more than
// once.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.state.phase == PhaseNotStarted {
		c.trips.Stumble(trip.TeardownBeforeStart, "controller discarded before it played", trip.Context{
			"id": c.id,
		})
	}
	c.teardown()
	if !c.state.done() {
		c.finish(ReasonTeardown)
	}
	return nil
}

// teardown releases everything the controller registered: the timeline,
// deferred callbacks, viewport listeners and the skip triggers.
func (c *Controller) teardown() {
	if c.tornDown {
		return
	}
	c.tornDown = true

	if c.tl != nil {
		c.tl.Cancel()
		c.tl = nil
	}
	if n := c.sched.cancelAll(); n > 0 {
		c.logger.Debug("overture: deferred callbacks cancelled", "id", c.id, "count", n)
	}
	if c.resolver != nil {
		c.resolver.Revert()
	}
	c.disarm()
	c.skipShown = false
}

// Leaks reports what teardown failed to release. It is empty once the
// controller has completed.
func (c *Controller) Leaks() []string {
	var leaks []string
	if c.tl != nil && !c.tl.IsCancelled() && !c.tl.IsComplete() {
		leaks = append(leaks, "timeline")
	}
	if n := c.sched.pendingCount(); n > 0 {
		leaks = append(leaks, "deferred")
	}
	if c.resolver != nil && c.resolver.Listening() {
		leaks = append(leaks, "listener")
	}
	if c.armed {
		leaks = append(leaks, "triggers")
	}
	return leaks
}
