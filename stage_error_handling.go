package overture

import (
	"fmt"
	"strings"

	"github.com/teranos/overture/trip"
)

// AssertViewContains records a failed assertion if the view lacks text.
func (d *Director) AssertViewContains(text string) *Director {
	view := d.c.View()
	ok := strings.Contains(view, text)
	if !ok {
		d.fail(fmt.Sprintf("view does not contain %q", text), trip.Context{
			"expected": text,
			"view":     view,
		})
	}
	d.record("assertion", map[string]interface{}{"contains": text, "ok": ok})
	return d
}

// AssertViewNotContains records a failed assertion if the view shows text.
func (d *Director) AssertViewNotContains(text string) *Director {
	view := d.c.View()
	ok := !strings.Contains(view, text)
	if !ok {
		d.fail(fmt.Sprintf("view unexpectedly contains %q", text), trip.Context{
			"unexpected": text,
			"view":       view,
		})
	}
	d.record("assertion", map[string]interface{}{"not_contains": text, "ok": ok})
	return d
}

// AssertPhase records a failed assertion unless the controller is in p.
func (d *Director) AssertPhase(p Phase) *Director {
	got := d.c.Phase()
	if got != p {
		d.fail(fmt.Sprintf("phase is %s, expected %s", got, p), trip.Context{
			"expected": p.String(),
			"actual":   got.String(),
		})
	}
	d.record("assertion", map[string]interface{}{"phase": p.String(), "ok": got == p})
	return d
}

// AssertNoLeaks records a failed assertion for anything teardown left behind.
func (d *Director) AssertNoLeaks() *Director {
	leaks := d.c.Leaks()
	if len(leaks) > 0 {
		d.fail("controller leaked resources", trip.Context{"leaks": strings.Join(leaks, ",")})
	}
	d.record("assertion", map[string]interface{}{"no_leaks": len(leaks) == 0})
	return d
}

// fall records a trip that ends the run. Later advances are ignored.
func (d *Director) fall(kind, message string, context trip.Context) {
	if context == nil {
		context = trip.Context{}
	}
	context["at"] = d.Elapsed().String()
	d.trips.Record(trip.NewFall(kind, message, context))
}

func (d *Director) fail(message string, context trip.Context) {
	if context == nil {
		context = trip.Context{}
	}
	context["at"] = d.Elapsed().String()
	d.trips.Record(newStageTrip(message, context))
}
