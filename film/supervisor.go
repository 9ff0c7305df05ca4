package film

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrReelMismatch is returned when two reels do not show the same intro.
var ErrReelMismatch = errors.New("film: reels differ")

// ScriptSupervisor checks that two shoots of the same configuration are
// identical frame for frame. Playback runs on a virtual clock, so any
// difference is a regression.
type ScriptSupervisor struct {
	tolerance float64 // fraction of pixels allowed to differ per frame
	workers   int
}

func NewScriptSupervisor() *ScriptSupervisor {
	return &ScriptSupervisor{workers: 4}
}

// WithTolerance allows a fraction of each frame's pixels to differ.
func (ss *ScriptSupervisor) WithTolerance(tolerance float64) *ScriptSupervisor {
	ss.tolerance = tolerance
	return ss
}

// Compare returns ErrReelMismatch for the first frame that differs beyond
// tolerance, and writes a diff image next to that frame of current.
func (ss *ScriptSupervisor) Compare(ctx context.Context, baseline, current *Reel) error {
	if len(baseline.Frames) != len(current.Frames) {
		return fmt.Errorf("%w: %d frames, baseline has %d", ErrReelMismatch, len(current.Frames), len(baseline.Frames))
	}
	if baseline.Reason != current.Reason {
		return fmt.Errorf("%w: completed by %s, baseline by %s", ErrReelMismatch, current.Reason, baseline.Reason)
	}

	diffs := make([]float64, len(baseline.Frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ss.workers)
	for i := range baseline.Frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := loadImage(baseline.Frames[i])
			if err != nil {
				return fmt.Errorf("load baseline: %w", err)
			}
			b, err := loadImage(current.Frames[i])
			if err != nil {
				return fmt.Errorf("load current: %w", err)
			}
			diffs[i] = difference(a, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, d := range diffs {
		if d <= ss.tolerance {
			continue
		}
		path := current.Frames[i]
		if err := ss.writeDiff(baseline.Frames[i], path, strings.TrimSuffix(path, ".png")+"_diff.png"); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
		return fmt.Errorf("%w: frame %d differs by %.2f%% (tolerance %.2f%%)", ErrReelMismatch, i, d*100, ss.tolerance*100)
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// difference is the fraction of pixels that differ. Images of different
// sizes differ entirely.
func difference(a, b image.Image) float64 {
	bounds := a.Bounds()
	if bounds != b.Bounds() || bounds.Empty() {
		return 1
	}
	different := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.At(x, y) != b.At(x, y) {
				different++
			}
		}
	}
	return float64(different) / float64(bounds.Dx()*bounds.Dy())
}

// writeDiff marks differing pixels red over a dimmed copy of the baseline.
func (ss *ScriptSupervisor) writeDiff(baselinePath, currentPath, out string) error {
	baseline, err := loadImage(baselinePath)
	if err != nil {
		return err
	}
	current, err := loadImage(currentPath)
	if err != nil {
		return err
	}

	bounds := baseline.Bounds()
	diff := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			base := baseline.At(x, y)
			if !image.Pt(x, y).In(current.Bounds()) || base != current.At(x, y) {
				diff.Set(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			r, g, b, a := base.RGBA()
			diff.Set(x, y, color.RGBA{uint8(r >> 9), uint8(g >> 9), uint8(b >> 9), uint8(a >> 8)})
		}
	}
	return writePNG(out, diff)
}
