// Package donut aggregates visible-event counts per category into ring
// arcs and interpolates angles between successive snapshots so the chart
// animates instead of redrawing.
package donut

import (
	"math"

	"github.com/formansean/ufo-timline/internal/filter"
	"github.com/formansean/ufo-timline/internal/model"
)

// InnerRadiusRatio fixes the ring hole at 0.6 of the outer radius.
const InnerRadiusRatio = 0.6

// Segment is one category arc. Angles are radians from twelve o'clock,
// clockwise, as a pie generator with sorting disabled would emit them:
// segment order is the canonical category insertion order, not count
// order.
type Segment struct {
	Category   model.Category `json:"category"`
	Count      int            `json:"count"`
	Color      string         `json:"color"`
	StartAngle float64        `json:"startAngle"`
	EndAngle   float64        `json:"endAngle"`
}

// Snapshot is a full chart state: segments plus the running total shown
// at the center.
type Snapshot struct {
	Segments    []Segment `json:"segments"`
	Total       int       `json:"total"`
	OuterRadius float64   `json:"outerRadius"`
	InnerRadius float64   `json:"innerRadius"`
}

// Aggregate buckets the visible events by category, keeping only active
// categories with a non-zero count, and assigns arc angles.
func Aggregate(events []model.Event, st filter.State, outerRadius float64) Snapshot {
	counts := make(map[model.Category]int)
	for i := range events {
		if st.Categories[events[i].Category] {
			counts[events[i].Category]++
		}
	}

	snap := Snapshot{
		OuterRadius: outerRadius,
		InnerRadius: outerRadius * InnerRadiusRatio,
	}
	for _, c := range model.Categories {
		if !st.Categories[c] || counts[c] == 0 {
			continue
		}
		snap.Segments = append(snap.Segments, Segment{
			Category: c,
			Count:    counts[c],
			Color:    model.CategoryColors[c].Base,
		})
		snap.Total += counts[c]
	}

	angle := 0.0
	for i := range snap.Segments {
		span := 2 * math.Pi * float64(snap.Segments[i].Count) / float64(snap.Total)
		snap.Segments[i].StartAngle = angle
		angle += span
		snap.Segments[i].EndAngle = angle
	}
	return snap
}

// Interpolate blends two snapshots at progress t in [0, 1]. Segments
// present in both interpolate their angular extents; entering segments
// grow from a zero-width arc at their new position and exiting ones
// collapse in place, so category changes fade rather than snap.
func Interpolate(prev, next Snapshot, t float64) Snapshot {
	t = math.Min(math.Max(t, 0), 1)
	prevByCat := make(map[model.Category]Segment, len(prev.Segments))
	for _, s := range prev.Segments {
		prevByCat[s.Category] = s
	}
	nextByCat := make(map[model.Category]Segment, len(next.Segments))
	for _, s := range next.Segments {
		nextByCat[s.Category] = s
	}

	out := Snapshot{
		Total:       prev.Total + int(math.Round(float64(next.Total-prev.Total)*t)),
		OuterRadius: next.OuterRadius,
		InnerRadius: next.InnerRadius,
	}

	for _, c := range model.Categories {
		p, inPrev := prevByCat[c]
		n, inNext := nextByCat[c]
		switch {
		case inPrev && inNext:
			out.Segments = append(out.Segments, Segment{
				Category:   c,
				Count:      n.Count,
				Color:      n.Color,
				StartAngle: lerp(p.StartAngle, n.StartAngle, t),
				EndAngle:   lerp(p.EndAngle, n.EndAngle, t),
			})
		case inNext:
			mid := (n.StartAngle + n.EndAngle) / 2
			out.Segments = append(out.Segments, Segment{
				Category:   c,
				Count:      n.Count,
				Color:      n.Color,
				StartAngle: lerp(mid, n.StartAngle, t),
				EndAngle:   lerp(mid, n.EndAngle, t),
			})
		case inPrev:
			mid := (p.StartAngle + p.EndAngle) / 2
			out.Segments = append(out.Segments, Segment{
				Category:   c,
				Count:      p.Count,
				Color:      p.Color,
				StartAngle: lerp(p.StartAngle, mid, t),
				EndAngle:   lerp(p.EndAngle, mid, t),
			})
		}
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
