package overture

import (
	"fmt"
	"math"

	"github.com/teranos/overture/timeline"
	"github.com/teranos/overture/variant"
)

// Segment labels, in playing order.
const (
	SegmentEntrance  = "entrance"
	SegmentCaptions  = "captions"
	SegmentLines     = "lines"
	SegmentExplosion = "explosion"
	SegmentFade      = "fade"
)

// Targets the builder animates and the stage renders.
const (
	targetLogo     = "logo"
	targetCaptions = "captions"
	targetCursor   = "cursor"
	targetLines    = "lines"
	targetBurst    = "burst"
	targetStage    = "stage"
)

// DefaultCaptions are typed out when no captions are configured.
var DefaultCaptions = []string{
	"composing the timeline",
	"staging every segment",
	"ready when you are",
}

func captionTarget(i int) string  { return fmt.Sprintf("caption.%d", i) }
func lineTarget(i int) string     { return fmt.Sprintf("line.%d", i) }
func particleTarget(i int) string { return fmt.Sprintf("particle.%d", i) }

// Build lays out the intro for one resolved profile. Both variants go
// through this one function; only the numbers differ.
func Build(p variant.Profile, captions []string) []timeline.Placement {
	return []timeline.Placement{
		{Segment: entrance(p), Anchor: timeline.AnchorStart},
		{Segment: typewriter(p, captions), Anchor: timeline.AnchorPrevEnd, Offset: -0.2},
		{Segment: lines(p), Anchor: timeline.AnchorPrevEnd, Offset: -0.3},
		{Segment: explosion(p), Anchor: timeline.AnchorPrevEnd, Offset: 0.4},
		{Segment: fade(p), Anchor: timeline.AnchorPrevEnd, Offset: -0.2},
	}
}

func entrance(p variant.Profile) timeline.Segment {
	return timeline.Segment{
		Label: SegmentEntrance,
		Tracks: []timeline.StageTrack{
			{Target: targetLogo, Property: "scale", From: p.LogoScaleFrom, To: 1, Duration: p.EntranceDuration, Ease: timeline.BackOut},
			{Target: targetLogo, Property: "opacity", From: 0, To: 1, Duration: p.EntranceDuration * 0.6, Ease: timeline.QuadOut},
		},
	}
}

func typewriter(p variant.Profile, captions []string) timeline.Segment {
	tracks := []timeline.StageTrack{
		{Target: targetCaptions, Property: "opacity", From: 0, To: 1, Duration: 0.2, Ease: timeline.QuadOut},
		{Target: targetCursor, Property: "visible", From: 1, To: 0, Duration: p.CursorBlink, Repeat: timeline.RepeatForever, Yoyo: true},
	}

	at := 0.0
	for i, caption := range captions {
		n := float64(len([]rune(caption)))
		d := n * p.CaptionCharDuration
		tracks = append(tracks, timeline.StageTrack{
			Target: captionTarget(i), Property: "chars", From: 0, To: n, Offset: at, Duration: d,
		})
		at += d + p.CaptionGap
	}

	return timeline.Segment{Label: SegmentCaptions, Tracks: tracks}
}

func lines(p variant.Profile) timeline.Segment {
	seg := timeline.Segment{Label: SegmentLines}
	for i := 0; i < p.Lines; i++ {
		seg.Tracks = append(seg.Tracks, timeline.StageTrack{
			Target: lineTarget(i), Property: "reveal", From: 0, To: 1, Duration: p.LineRevealDuration, Ease: timeline.CubicInOut,
		})
	}
	if p.Lines > 1 {
		seg.Stagger = &timeline.Stagger{Amount: p.LineStagger * float64(p.Lines-1), From: timeline.FromCenter}
	}
	return seg
}

func explosion(p variant.Profile) timeline.Segment {
	d := p.ExplosionDuration
	tracks := []timeline.StageTrack{
		{Target: targetLogo, Property: "scale", From: 1, To: p.ExplosionScale, Duration: d, Ease: timeline.ExpoIn},
		{Target: targetLogo, Property: "opacity", From: 1, To: 0, Duration: d, Ease: timeline.ExpoIn},
		{Target: targetCaptions, Property: "opacity", From: 1, To: 0, Duration: d * 0.5, Ease: timeline.QuadOut},
		{Target: targetLines, Property: "opacity", From: 1, To: 0, Duration: d * 0.5, Ease: timeline.QuadOut},
		{Target: targetBurst, Property: "progress", From: 0, To: 1, Duration: d},
	}

	for i := 0; i < p.Particles; i++ {
		angle := 2 * math.Pi * float64(i) / float64(p.Particles)
		target := particleTarget(i)
		tracks = append(tracks,
			timeline.StageTrack{Target: target, Property: "x", From: 0, To: math.Cos(angle) * p.ExplosionTravelX, Duration: d, Ease: timeline.QuadOut},
			timeline.StageTrack{Target: target, Property: "y", From: 0, To: math.Sin(angle) * p.ExplosionTravelY, Duration: d, Ease: timeline.QuadOut},
			timeline.StageTrack{Target: target, Property: "opacity", From: 1, To: 0, Duration: d, Ease: timeline.QuadOut},
		)
	}

	return timeline.Segment{Label: SegmentExplosion, Tracks: tracks}
}

func fade(p variant.Profile) timeline.Segment {
	return timeline.Segment{
		Label: SegmentFade,
		Tracks: []timeline.StageTrack{
			{Target: targetStage, Property: "opacity", From: 1, To: 0, Duration: p.FadeDuration, Ease: timeline.SineInOut},
		},
	}
}
