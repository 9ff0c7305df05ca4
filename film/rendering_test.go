package film

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 10
	cfg.Height = 3
	return cfg
}

func TestRenderingStage_StripsEscapesAndClips(t *testing.T) {
	rs := NewRenderingStage(smallConfig())

	rs.RenderText("\x1b[1;38;2;242;93;148mHELLO\x1b[0m\n" +
		"0123456789ABC\n" +
		"\x1b[2mfaint\x1b[0m\n" +
		"dropped")

	assert.Equal(t, "HELLO\n0123456789\nfaint", rs.Text())
}

func TestRenderingStage_ReusesBuffer(t *testing.T) {
	rs := NewRenderingStage(smallConfig())
	rs.RenderText("long line\nsecond")
	rs.RenderText("x")

	assert.Equal(t, "x\n\n", rs.Text())
}

func TestRenderingStage_Rasterize(t *testing.T) {
	cfg := smallConfig()
	rs := NewRenderingStage(cfg)
	rs.RenderText("#")

	img := rs.Rasterize()
	assert.Equal(t, 70, img.Bounds().Dx())
	assert.Equal(t, 39, img.Bounds().Dy())

	inked := 0
	for y := 0; y < 13; y++ {
		for x := 0; x < 7; x++ {
			if img.RGBAAt(x, y) == cfg.Foreground {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 0, "the glyph is drawn in its cell")

	for y := 13; y < 39; y++ {
		for x := 0; x < 70; x++ {
			if img.RGBAAt(x, y) != cfg.Background {
				t.Fatalf("pixel (%d,%d) is %v, want background", x, y, img.RGBAAt(x, y))
			}
		}
	}
}

func TestRenderingStage_RasterizeReturnsFreshImages(t *testing.T) {
	rs := NewRenderingStage(smallConfig())
	rs.RenderText("#")
	first := rs.Rasterize()
	rs.RenderText("")
	second := rs.Rasterize()

	assert.NotSame(t, first, second)
	black := color.RGBA{0, 0, 0, 255}
	for y := 0; y < 13; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, black, second.RGBAAt(x, y))
		}
	}
}
