package timeline

import (
	"fmt"
	"math"
)

// StaggerFrom selects which track of a Segment starts first.
type StaggerFrom int

const (
	FromStart StaggerFrom = iota
	FromCenter
	FromEnd
)

// Stagger spreads the start of a Segment's tracks over Amount seconds.
type Stagger struct {
	Amount float64
	From   StaggerFrom
}

// offset is the extra delay for track i of n.
func (s Stagger) offset(i, n int) float64 {
	if n < 2 || s.Amount <= 0 {
		return 0
	}
	last := float64(n - 1)
	pos := float64(i)
	switch s.From {
	case FromEnd:
		return (last - pos) / last * s.Amount
	case FromCenter:
		mid := last / 2
		return math.Abs(pos-mid) / mid * s.Amount
	default:
		return pos / last * s.Amount
	}
}

// Segment is one beat of the sequence: tracks that begin together,
// optionally staggered.
type Segment struct {
	Label   string
	Tracks  []StageTrack
	Stagger *Stagger
}

// Anchor names the point a Placement offset is measured from.
type Anchor int

const (
	// AnchorStart measures from the origin of the timeline.
	AnchorStart Anchor = iota
	// AnchorPrevStart measures from the start of the previous segment.
	AnchorPrevStart
	// AnchorPrevEnd measures from the end of the previous segment.
	AnchorPrevEnd
)

func (a Anchor) String() string {
	switch a {
	case AnchorStart:
		return "start"
	case AnchorPrevStart:
		return "prev-start"
	case AnchorPrevEnd:
		return "prev-end"
	default:
		return "unknown"
	}
}

// Placement positions a Segment relative to an anchor. Offsets may be
// negative to overlap the previous segment.
type Placement struct {
	Segment Segment
	Anchor  Anchor
	Offset  float64
}

// Scheduled is a track with its absolute start resolved.
type Scheduled struct {
	StageTrack
	Segment int
	Start   float64
}

// Bounds is the resolved extent of a segment.
type Bounds struct {
	Label string
	Start float64
	End   float64
}

// Resolve turns placements into absolutely-timed tracks.
//
// Total is the latest end of any finite track; tracks that repeat forever
// never hold the timeline open.
func Resolve(placements []Placement) (tracks []Scheduled, bounds []Bounds, total float64, err error) {
	if len(placements) == 0 {
		return nil, nil, 0, ErrEmptyTimeline
	}

	for i, p := range placements {
		start := p.Offset
		if i > 0 {
			prev := bounds[i-1]
			switch p.Anchor {
			case AnchorPrevStart:
				start += prev.Start
			case AnchorPrevEnd:
				start += prev.End
			}
		}
		if start < 0 {
			start = 0
		}

		end := start
		n := len(p.Segment.Tracks)
		for j, tr := range p.Segment.Tracks {
			if err := tr.Validate(); err != nil {
				return nil, nil, 0, fmt.Errorf("segment %q: %w", p.Segment.Label, err)
			}
			at := start + tr.Offset
			if p.Segment.Stagger != nil {
				at += p.Segment.Stagger.offset(j, n)
			}
			if at < 0 {
				at = 0
			}
			tracks = append(tracks, Scheduled{StageTrack: tr, Segment: i, Start: at})
			if !tr.Infinite() {
				end = math.Max(end, at+tr.Span())
			}
		}

		bounds = append(bounds, Bounds{Label: p.Segment.Label, Start: start, End: end})
		total = math.Max(total, end)
	}

	return tracks, bounds, total, nil
}
