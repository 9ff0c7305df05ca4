package overture

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/teranos/overture/variant"
)

const (
	logoText  = "OVERTURE"
	skipLabel = "[ skip · s ]"
	cursor    = "▌"

	minCanvasWidth  = 24
	minCanvasHeight = 10
)

var (
	logoStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D94"))
	captionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C1C6B2"))
	lineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C50FF"))
	particleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166"))
	skipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D"))
)

// stage is the Sink every track writes into. It keeps the latest value of
// each target property and renders them on demand.
type stage struct {
	values map[string]float64
}

func newStage() *stage {
	return &stage{values: make(map[string]float64)}
}

func (s *stage) Apply(target, property string, value float64) {
	s.values[target+"."+property] = value
}

func (s *stage) get(target, property string, fallback float64) float64 {
	if v, ok := s.values[target+"."+property]; ok {
		return v
	}
	return fallback
}

// rect is a hit area in terminal cells.
type rect struct {
	x, y, w int
}

func (r rect) contains(x, y int) bool {
	return y == r.y && x >= r.x && x < r.x+r.w
}

// skipControlRect places the skip control in the bottom-right corner.
func skipControlRect(width, height int) rect {
	width, height = canvasSize(width, height)
	w := lipgloss.Width(skipLabel)
	return rect{x: width - w - 1, y: height - 1, w: w}
}

func canvasSize(width, height int) (int, int) {
	return max(width, minCanvasWidth), max(height, minCanvasHeight)
}

// row is one canvas line with the style and opacity of whatever owns it.
type row struct {
	cells []rune
	style lipgloss.Style
	alpha float64
	pin   *overlay
}

// overlay is text drawn over a row at full opacity, outside the global fade.
type overlay struct {
	at    int
	text  []rune
	style lipgloss.Style
}

type canvas struct {
	width, height int
	rows          []row
}

func newCanvas(width, height int) *canvas {
	width, height = canvasSize(width, height)
	c := &canvas{width: width, height: height, rows: make([]row, height)}
	for i := range c.rows {
		c.rows[i].cells = []rune(strings.Repeat(" ", width))
	}
	return c
}

// put writes text at (x, y), clipping at the edges. The row takes the style
// of the most opaque writer.
func (c *canvas) put(x, y int, text string, style lipgloss.Style, alpha float64) {
	if y < 0 || y >= c.height || alpha <= 0.05 {
		return
	}
	r := &c.rows[y]
	for i, ch := range []rune(text) {
		if col := x + i; col >= 0 && col < c.width {
			r.cells[col] = ch
		}
	}
	if alpha > r.alpha {
		r.alpha = alpha
		r.style = style
	}
}

func (c *canvas) center(y int, text string, style lipgloss.Style, alpha float64) {
	c.put((c.width-len([]rune(text)))/2, y, text, style, alpha)
}

// pin places text that ignores the global fade. Only its own cells are
// spared; the rest of the row fades as usual.
func (c *canvas) pin(x, y int, text string, style lipgloss.Style) {
	runes := []rune(text)
	if y < 0 || y >= c.height || x < 0 || x+len(runes) > c.width {
		return
	}
	c.rows[y].pin = &overlay{at: x, text: runes, style: style}
}

func (c *canvas) render(global float64) string {
	out := make([]string, len(c.rows))
	for i, r := range c.rows {
		if r.pin == nil {
			out[i] = r.faded(r.cells, global)
			continue
		}
		p := r.pin
		out[i] = r.faded(r.cells[:p.at], global) +
			p.style.Render(string(p.text)) +
			r.faded(r.cells[p.at+len(p.text):], global)
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (r row) faded(cells []rune, global float64) string {
	if len(cells) == 0 {
		return ""
	}
	switch a := r.alpha * global; {
	case a <= 0.05:
		return strings.Repeat(" ", len(cells))
	case a < 0.5:
		return r.style.Faint(true).Render(string(cells))
	default:
		return r.style.Render(string(cells))
	}
}

// frame describes what to draw besides the stage values.
type frame struct {
	width, height int
	profile       variant.Profile
	captions      []string
	skipShown     bool
}

func (s *stage) view(f frame) string {
	c := newCanvas(f.width, f.height)
	global := s.get(targetStage, "opacity", 1)

	logoRow := c.height/2 - (len(f.captions)+f.profile.Lines+3)/2
	if logoRow < 0 {
		logoRow = 0
	}
	c.center(logoRow, scaledLogo(s.get(targetLogo, "scale", 1)), logoStyle, s.get(targetLogo, "opacity", 0))

	captionAlpha := s.get(targetCaptions, "opacity", 0)
	y := logoRow + 2
	last := -1
	for i := range f.captions {
		if s.get(captionTarget(i), "chars", 0) >= 1 {
			last = i
		}
	}
	for i, caption := range f.captions {
		runes := []rune(caption)
		n := int(math.Min(math.Floor(s.get(captionTarget(i), "chars", 0)), float64(len(runes))))
		text := string(runes[:max(n, 0)])
		if i == last && s.get(targetCursor, "visible", 0) >= 0.5 {
			text += cursor
		}
		// Captions are left-aligned to a fixed column so typing does not jitter.
		c.put((c.width-len(runes))/2, y+i, text, captionStyle, captionAlpha)
	}
	y += len(f.captions) + 1

	lineAlpha := s.get(targetLines, "opacity", 1)
	width := min(f.profile.LineWidth, c.width-2)
	for i := 0; i < f.profile.Lines; i++ {
		n := int(math.Round(s.get(lineTarget(i), "reveal", 0) * float64(width)))
		if n > 0 {
			c.center(y+i, strings.Repeat("─", n), lineStyle, lineAlpha)
		}
	}

	if burst := s.get(targetBurst, "progress", 0); burst > 0 && burst < 1 {
		cx := c.width / 2
		for i := 0; i < f.profile.Particles; i++ {
			target := particleTarget(i)
			alpha := s.get(target, "opacity", 0)
			glyph := "*"
			if alpha < 0.5 {
				glyph = "·"
			}
			px := cx + int(math.Round(s.get(target, "x", 0)))
			py := logoRow + int(math.Round(s.get(target, "y", 0)))
			c.put(px, py, glyph, particleStyle, alpha)
		}
	}

	if f.skipShown {
		r := skipControlRect(f.width, f.height)
		c.pin(r.x, r.y, skipLabel, skipStyle)
	}

	return c.render(global)
}

// scaledLogo grows the logo by widening the letter spacing and shrinks it by
// showing fewer letters.
func scaledLogo(scale float64) string {
	letters := []rune(logoText)
	if scale < 1 {
		n := int(math.Round(float64(len(letters)) * math.Max(scale, 0)))
		n = max(n, 1)
		start := (len(letters) - n) / 2
		letters = letters[start : start+n]
		return spaced(letters, 1)
	}
	return spaced(letters, int(math.Round(scale)))
}

func spaced(letters []rune, gap int) string {
	parts := make([]string, len(letters))
	for i, l := range letters {
		parts[i] = string(l)
	}
	return strings.Join(parts, strings.Repeat(" ", gap))
}
