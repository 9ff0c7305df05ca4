// Package film records an intro offline, one PNG per captured frame.
package film

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Config defines the canvas frames are drawn on.
type Config struct {
	Width      int // terminal width in cells
	Height     int // terminal height in cells
	Background color.RGBA
	Foreground color.RGBA
}

// DefaultConfig is an 80x24 terminal, white on black.
func DefaultConfig() Config {
	return Config{
		Width:      80,
		Height:     24,
		Background: color.RGBA{0, 0, 0, 255},
		Foreground: color.RGBA{255, 255, 255, 255},
	}
}

// RenderingStage turns terminal views into images.
type RenderingStage struct {
	config     Config
	buffer     [][]rune
	charWidth  int
	charHeight int
	face       font.Face
}

func NewRenderingStage(config Config) *RenderingStage {
	buffer := make([][]rune, config.Height)
	for i := range buffer {
		buffer[i] = make([]rune, config.Width)
	}
	return &RenderingStage{
		config:     config,
		buffer:     buffer,
		charWidth:  7,
		charHeight: 13,
		face:       basicfont.Face7x13,
	}
}

// RenderText loads a view into the cell buffer, dropping escape sequences
// and clipping to the configured size.
func (rs *RenderingStage) RenderText(view string) {
	for i := range rs.buffer {
		for j := range rs.buffer[i] {
			rs.buffer[i][j] = ' '
		}
	}

	for y, line := range strings.Split(ansi.Strip(view), "\n") {
		if y >= rs.config.Height {
			break
		}
		x := 0
		for _, r := range line {
			if x >= rs.config.Width {
				break
			}
			rs.buffer[y][x] = r
			x++
		}
	}
}

// Text returns the buffer as plain lines.
func (rs *RenderingStage) Text() string {
	lines := make([]string, len(rs.buffer))
	for i, row := range rs.buffer {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

// Bounds is the pixel size of a frame.
func (rs *RenderingStage) Bounds() image.Rectangle {
	return image.Rect(0, 0, rs.config.Width*rs.charWidth, rs.config.Height*rs.charHeight)
}

// Rasterize draws the buffer into a new image, so the result can be encoded
// while the stage moves on to the next frame.
func (rs *RenderingStage) Rasterize() *image.RGBA {
	img := image.NewRGBA(rs.Bounds())
	draw.Draw(img, img.Bounds(), image.NewUniform(rs.config.Background), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(rs.config.Foreground),
		Face: rs.face,
	}
	ascent := rs.face.Metrics().Ascent.Ceil()

	for y, row := range rs.buffer {
		for x, r := range row {
			if r == ' ' || r == 0 {
				continue
			}
			drawer.Dot = fixed.P(x*rs.charWidth, y*rs.charHeight+ascent)
			drawer.DrawString(string(r))
		}
	}
	return img
}
