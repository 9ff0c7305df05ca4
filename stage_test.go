package overture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/overture/variant"
)

func testFrame() frame {
	p := variant.DefaultProfiles().Desktop
	p.Lines = 2
	p.LineWidth = 10
	p.Particles = 1
	return frame{width: 60, height: 16, profile: p, captions: []string{"abcdef", "ghij"}}
}

func TestScaledLogo(t *testing.T) {
	assert.Equal(t, "O V E R T U R E", scaledLogo(1))
	assert.Equal(t, "O V E R T U R E", scaledLogo(1.2), "overshoot rounds back")
	assert.Equal(t, "O   V   E   R   T   U   R   E", scaledLogo(3))
	assert.Equal(t, "R T", scaledLogo(0.3))
	assert.Equal(t, "R", scaledLogo(0))
}

func TestSkipControlRect(t *testing.T) {
	r := skipControlRect(120, 30)
	assert.Equal(t, rect{x: 107, y: 29, w: 12}, r)
	assert.True(t, r.contains(107, 29))
	assert.True(t, r.contains(118, 29))
	assert.False(t, r.contains(119, 29))
	assert.False(t, r.contains(110, 28))

	tiny := skipControlRect(0, 0)
	assert.Equal(t, minCanvasHeight-1, tiny.y, "tiny terminals use the minimum canvas")
}

func TestStageView_Layout(t *testing.T) {
	s := newStage()
	s.Apply(targetLogo, "scale", 1)
	s.Apply(targetLogo, "opacity", 1)
	s.Apply(targetCaptions, "opacity", 1)
	s.Apply(captionTarget(0), "chars", 6)
	s.Apply(captionTarget(1), "chars", 2.7)
	s.Apply(targetCursor, "visible", 1)
	s.Apply(lineTarget(0), "reveal", 1)
	s.Apply(lineTarget(1), "reveal", 0.5)

	f := testFrame()
	view := s.view(f)
	rows := strings.Split(view, "\n")

	require.Len(t, rows, f.height)
	assert.Contains(t, view, "O V E R T U R E")
	assert.Contains(t, view, "abcdef")
	assert.Contains(t, view, "gh"+cursor, "the cursor follows the caption being typed")
	assert.NotContains(t, view, "abcdef"+cursor)
	assert.Contains(t, view, strings.Repeat("─", 10))
	assert.Contains(t, view, " "+strings.Repeat("─", 5)+" ")
	assert.NotContains(t, view, skipLabel)
	assert.NotContains(t, view, "*")
}

func TestStageView_HiddenUntilPrimed(t *testing.T) {
	view := newStage().view(testFrame())
	assert.Empty(t, strings.TrimSpace(view), "nothing shows before the first track applies")
}

func TestStageView_Particles(t *testing.T) {
	s := newStage()
	s.Apply(particleTarget(0), "x", 10)
	s.Apply(particleTarget(0), "y", 0)
	s.Apply(particleTarget(0), "opacity", 1)

	s.Apply(targetBurst, "progress", 0.5)
	assert.Contains(t, s.view(testFrame()), "*")

	s.Apply(particleTarget(0), "opacity", 0.3)
	assert.Contains(t, s.view(testFrame()), "·")

	s.Apply(targetBurst, "progress", 1)
	assert.NotContains(t, s.view(testFrame()), "·", "particles are gone once the burst ends")
}

func TestStageView_FadeSparesSkipControl(t *testing.T) {
	s := newStage()
	s.Apply(targetLogo, "scale", 1)
	s.Apply(targetLogo, "opacity", 1)
	s.Apply(targetStage, "opacity", 0)

	f := testFrame()
	f.skipShown = true
	view := s.view(f)

	assert.NotContains(t, view, "O V E R T U R E")
	assert.Contains(t, view, skipLabel)
}

func TestCanvas_PinSparesOnlyItsCells(t *testing.T) {
	c := newCanvas(30, 10)
	r := skipControlRect(30, 10)
	c.put(0, r.y, "*", particleStyle, 1)
	c.put(r.x-2, r.y, "**", particleStyle, 1)
	c.pin(r.x, r.y, skipLabel, skipStyle)

	lines := strings.Split(c.render(0), "\n")
	require.Len(t, lines, 10)
	last := lines[r.y]
	assert.Contains(t, last, skipLabel)
	assert.NotContains(t, last, "*", "particles sharing the row still fade")

	lines = strings.Split(c.render(1), "\n")
	assert.Contains(t, lines[r.y], "*")
	assert.Contains(t, lines[r.y], skipLabel)
}
