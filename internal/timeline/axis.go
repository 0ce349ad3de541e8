// Package timeline maps event dates onto a pannable, zoomable horizontal
// pixel axis with one row per active category and tick labels whose
// granularity follows the zoom level.
package timeline

import (
	"math"
	"time"
)

const (
	// MinScale and MaxScale bound the zoom factor.
	MinScale = 0.5
	MaxScale = 75

	// WheelStepFactor is the discrete zoom applied per wheel notch.
	WheelStepFactor = 1.1

	// DecadeZoomMillis is the animated zoom-to-decade duration clients
	// should apply.
	DecadeZoomMillis = 750

	// LongPressMillis separates a favorite-picker long press from a
	// normal click on an event mark.
	LongPressMillis = 500
)

// Axis is the base (untransformed) time scale: a linear mapping from the
// domain [Start, End] onto [0, Width] pixels.
type Axis struct {
	Start, End time.Time
	Width      float64
}

// NewAxis returns the default axis: 1940 through one year past now.
func NewAxis(width float64, now time.Time) Axis {
	return Axis{
		Start: time.Date(1940, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		Width: width,
	}
}

// X maps a time onto the base pixel axis.
func (a Axis) X(t time.Time) float64 {
	span := a.End.Sub(a.Start)
	if span <= 0 {
		return 0
	}
	return float64(t.Sub(a.Start)) / float64(span) * a.Width
}

// TimeAt inverts X.
func (a Axis) TimeAt(x float64) time.Time {
	span := a.End.Sub(a.Start)
	return a.Start.Add(time.Duration(x / a.Width * float64(span)))
}

// Transform is a pan/zoom state over the base axis: screen = K*base + X.
type Transform struct {
	K float64 // scale factor
	X float64 // translation in screen pixels
}

// Identity is the untransformed view.
var Identity = Transform{K: 1, X: 0}

// Apply maps a base-axis coordinate to screen pixels.
func (t Transform) Apply(x float64) float64 { return t.K*x + t.X }

// Invert maps screen pixels back to the base axis.
func (t Transform) Invert(x float64) float64 { return (x - t.X) / t.K }

// Clamp bounds the scale to [MinScale, MaxScale], preserving the screen
// point at the viewport center.
func (t Transform) Clamp(width float64) Transform {
	k := math.Min(math.Max(t.K, MinScale), MaxScale)
	if k == t.K {
		return t
	}
	center := width / 2
	base := t.Invert(center)
	return Transform{K: k, X: center - k*base}
}

// ScaleBy zooms by factor about the given screen pivot, clamped.
func (t Transform) ScaleBy(factor, pivot, width float64) Transform {
	base := t.Invert(pivot)
	k := t.K * factor
	out := Transform{K: k, X: pivot - k*base}
	return out.Clamp(width)
}

// WheelZoom applies one discrete wheel step about the viewport center.
// Wheel deltas map to fixed steps rather than continuous scroll zoom.
func (t Transform) WheelZoom(in bool, width float64) Transform {
	factor := 1 / WheelStepFactor
	if in {
		factor = WheelStepFactor
	}
	return t.ScaleBy(factor, width/2, width)
}

// Pan shifts the view by dx screen pixels.
func (t Transform) Pan(dx float64) Transform {
	return Transform{K: t.K, X: t.X + dx}
}

// VisibleDomain returns the time range currently on screen.
func (a Axis) VisibleDomain(t Transform) (time.Time, time.Time) {
	return a.TimeAt(t.Invert(0)), a.TimeAt(t.Invert(a.Width))
}

// PixelsPerYear is the zoom metric driving tick granularity.
func (a Axis) PixelsPerYear(t Transform) float64 {
	lo, hi := a.VisibleDomain(t)
	years := hi.Sub(lo).Hours() / (24 * 365.25)
	if years <= 0 {
		return math.Inf(1)
	}
	return a.Width / years
}

// ZoomToDecade computes the transform under which the given decade fills
// the horizontal extent, e.g. ZoomToDecade(1980) frames 1980-1990.
func (a Axis) ZoomToDecade(decade int) Transform {
	start := time.Date(decade, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(decade+10, time.January, 1, 0, 0, 0, 0, time.UTC)
	x0, x1 := a.X(start), a.X(end)
	if x1 <= x0 {
		return Identity
	}
	k := a.Width / (x1 - x0)
	return Transform{K: k, X: -k * x0}
}
