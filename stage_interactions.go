package overture

import (
	tea "github.com/charmbracelet/bubbletea"
)

// PressEscape sends Escape, the keyboard soft skip.
func (d *Director) PressEscape() *Director {
	d.deliver(tea.KeyMsg{Type: tea.KeyEsc})
	d.record("keypress", "escape")
	d.capture("escape")
	return d
}

// PressSkip sends the skip control's shortcut, "s".
func (d *Director) PressSkip() *Director {
	d.deliver(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	d.record("keypress", "s")
	d.capture("skip")
	return d
}

// PressHardSkip sends the shifted shortcut, "S".
func (d *Director) PressHardSkip() *Director {
	d.deliver(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'S'}})
	d.record("keypress", "S")
	d.capture("hard-skip")
	return d
}

// PressCtrlC sends Ctrl+C.
func (d *Director) PressCtrlC() *Director {
	d.deliver(tea.KeyMsg{Type: tea.KeyCtrlC})
	d.record("keypress", "ctrl+c")
	d.capture("ctrl+c")
	return d
}

// ClickSkip left-clicks the middle of the skip control, holding shift when
// modifier is set.
func (d *Director) ClickSkip(modifier bool) *Director {
	r := skipControlRect(d.c.width, d.c.height)
	return d.Click(r.x+r.w/2, r.y, modifier)
}

// Click left-clicks a cell.
func (d *Director) Click(x, y int, shift bool) *Director {
	d.deliver(tea.MouseMsg{
		X:      x,
		Y:      y,
		Shift:  shift,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	d.record("click", map[string]interface{}{"x": x, "y": y, "shift": shift})
	d.capture("click")
	return d
}

// Resize reports a new terminal size.
func (d *Director) Resize(width, height int) *Director {
	d.deliver(tea.WindowSizeMsg{Width: width, Height: height})
	d.record("resize", [2]int{width, height})
	return d
}
