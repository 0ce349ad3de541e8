package timeline

import (
	"strconv"
	"time"
)

// Interval is the tick-label granularity selected by zoom level.
type Interval int

const (
	IntervalQuarter Interval = iota // 3-month ticks, most zoomed in
	IntervalYear
	IntervalTwoYear
	IntervalDecade // most zoomed out
)

// IntervalFor selects granularity from pixels-per-year thresholds: coarser
// and coarser as the view zooms out.
func IntervalFor(pixelsPerYear float64) Interval {
	switch {
	case pixelsPerYear > 150:
		return IntervalQuarter
	case pixelsPerYear > 50:
		return IntervalYear
	case pixelsPerYear > 25:
		return IntervalTwoYear
	default:
		return IntervalDecade
	}
}

// Tick is one axis label. Decade ticks are independently clickable and
// trigger the animated zoom-to-decade transition.
type Tick struct {
	Time            time.Time `json:"time"`
	X               float64   `json:"x"`
	Label           string    `json:"label"`
	Bold            bool      `json:"bold"`
	DecadeClickable bool      `json:"decadeClickable"`
}

// Ticks generates the visible axis labels for the current transform.
func (a Axis) Ticks(t Transform) []Tick {
	lo, hi := a.VisibleDomain(t)
	interval := IntervalFor(a.PixelsPerYear(t))

	var out []Tick
	for _, at := range tickTimes(lo, hi, interval) {
		x := t.Apply(a.X(at))
		if x < 0 || x > a.Width {
			continue
		}
		tick := Tick{Time: at, X: x, Label: tickLabel(at, interval)}
		if (interval == IntervalTwoYear || interval == IntervalDecade) && at.Year()%10 == 0 {
			tick.Bold = true
			tick.DecadeClickable = true
		}
		out = append(out, tick)
	}
	return out
}

func tickTimes(lo, hi time.Time, interval Interval) []time.Time {
	var out []time.Time
	switch interval {
	case IntervalQuarter:
		// quarter boundaries: January, April, July, October
		at := time.Date(lo.Year(), (lo.Month()-1)/3*3+1, 1, 0, 0, 0, 0, time.UTC)
		for !at.After(hi) {
			if !at.Before(lo) {
				out = append(out, at)
			}
			at = at.AddDate(0, 3, 0)
		}
	default:
		step := 1
		if interval == IntervalTwoYear {
			step = 2
		} else if interval == IntervalDecade {
			step = 10
		}
		year := lo.Year() / step * step
		for year <= hi.Year() {
			at := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			if !at.Before(lo) && !at.After(hi) {
				out = append(out, at)
			}
			year += step
		}
	}
	return out
}

// tickLabel renders a tick. At quarter granularity January shows the year
// and other quarters show the month name; all coarser levels show years.
func tickLabel(at time.Time, interval Interval) string {
	if interval == IntervalQuarter && at.Month() != time.January {
		return at.Month().String()
	}
	return strconv.Itoa(at.Year())
}
