package film

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/overture"
	"golang.org/x/sync/errgroup"
)

// Options controls a shoot.
type Options struct {
	// Dir receives frame_NNNN.png files.
	Dir string
	// Every captures one frame in Every; 1 captures all of them.
	Every int
	// Workers bounds concurrent PNG encoders.
	Workers int
	// SkipAt issues a skip at this point of the intro. Zero never skips.
	SkipAt time.Duration
	// HardSkip makes SkipAt a hard skip instead of Escape.
	HardSkip bool
	// Limit stops a shoot that never completes. Shoot then returns the
	// director's fall as its error.
	Limit time.Duration
}

// Reel describes a finished shoot.
type Reel struct {
	Frames   []string
	Reason   overture.Reason
	Duration time.Duration
	Played   int // frames the controller advanced
}

// Operator films a controller through a headless director.
type Operator struct {
	c      *overture.Controller
	stage  *RenderingStage
	opts   Options
	logger *slog.Logger
}

// NewOperator prepares to film c. The controller must not be mounted yet.
func NewOperator(c *overture.Controller, config Config, opts Options) *Operator {
	if opts.Every <= 0 {
		opts.Every = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Limit <= 0 {
		opts.Limit = 30 * time.Second
	}
	return &Operator{
		c:      c,
		stage:  NewRenderingStage(config),
		opts:   opts,
		logger: slog.Default(),
	}
}

func (op *Operator) WithLogger(logger *slog.Logger) *Operator {
	if logger != nil {
		op.logger = logger
	}
	return op
}

// Shoot plays the intro to the end, writing frames as it goes.
func (op *Operator) Shoot(ctx context.Context) (*Reel, error) {
	if err := os.MkdirAll(op.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create film dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(op.opts.Workers)

	d := overture.NewDirector(op.c, overture.StageConfig{Limit: op.opts.Limit})
	d.Start()

	reel := &Reel{}
	skipped := op.opts.SkipAt <= 0
	for n := 0; gctx.Err() == nil; n++ {
		if !skipped && d.Elapsed() >= op.opts.SkipAt {
			skipped = true
			if op.opts.HardSkip {
				d.PressCtrlC()
			} else {
				d.PressEscape()
			}
		}

		view := d.View()
		if view == "" {
			break
		}
		if n%op.opts.Every == 0 {
			op.stage.RenderText(view)
			img := op.stage.Rasterize()
			path := filepath.Join(op.opts.Dir, fmt.Sprintf("frame_%04d.png", len(reel.Frames)))
			reel.Frames = append(reel.Frames, path)
			g.Go(func() error { return writePNG(path, img) })
		}

		if !d.FramePending() || !d.ShouldContinue() {
			break
		}
		d.Advance(op.c.FrameInterval())
	}

	if err := g.Wait(); err != nil {
		d.Stop()
		return nil, fmt.Errorf("write frames: %w", err)
	}
	if err := ctx.Err(); err != nil {
		d.Stop()
		return nil, err
	}

	result := d.Stop()
	if result.Stopped {
		return nil, fmt.Errorf("shoot stopped after %v: %w", result.Duration, result.Error)
	}
	reel.Reason = result.Reason
	reel.Duration = result.Duration
	reel.Played = result.Frames

	op.logger.Info("film: shoot complete",
		"frames", len(reel.Frames),
		"reason", reel.Reason.String(),
		"duration", reel.Duration)
	return reel, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
