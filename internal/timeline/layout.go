package timeline

import (
	"sort"

	"github.com/formansean/ufo-timline/internal/filter"
	"github.com/formansean/ufo-timline/internal/model"
)

// cullMargin keeps marks slightly past the viewport edges so partially
// visible labels still render.
const cullMargin = 50

// staggerStep is the vertical offset applied to overlapping events within
// a category row.
const staggerStep = 8

// Mark is one positioned event on the timeline.
type Mark struct {
	EventID  string  `json:"eventId"`
	Title    string  `json:"title"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	Selected bool    `json:"selected"`
	Favorite string  `json:"favorite,omitempty"` // color tag, if any
}

// Row is one category band with its positioned marks, chronological order.
type Row struct {
	Category model.Category `json:"category"`
	Color    string         `json:"color"`
	Y        float64        `json:"y"` // row center
	Marks    []Mark         `json:"marks"`
}

// View is the computed timeline view model.
type View struct {
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Ticks    []Tick   `json:"ticks"`
	Rows     []Row    `json:"rows"`
	Interval Interval `json:"interval"`
	// Undated counts events excluded because their date string failed to
	// parse; unlike the historical behavior they are not clustered at a
	// fallback date.
	Undated int `json:"undated"`
}

// Layout positions the visible events into category rows under the current
// transform. events must already be the filtered visible set; selectedID
// may be empty. favColor looks up an event's favorite tag and may be nil.
func Layout(events []model.Event, st filter.State, selectedID string, a Axis, tr Transform, height float64, favColor func(id string) (string, bool)) View {
	cats := st.ActiveCategories()
	view := View{
		Width:    a.Width,
		Height:   height,
		Ticks:    a.Ticks(tr),
		Interval: IntervalFor(a.PixelsPerYear(tr)),
	}
	if len(cats) == 0 {
		return view
	}

	rowHeight := height / float64(len(cats))
	byCategory := make(map[model.Category][]model.Event, len(cats))
	for _, e := range events {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	for i, cat := range cats {
		row := Row{
			Category: cat,
			Color:    model.CategoryColors[cat].Base,
			Y:        rowHeight*float64(i) + rowHeight/2,
		}

		catEvents := byCategory[cat]
		type dated struct {
			e  model.Event
			at int64
		}
		ordered := make([]dated, 0, len(catEvents))
		for _, e := range catEvents {
			at, err := e.When()
			if err != nil {
				view.Undated++
				continue
			}
			ordered = append(ordered, dated{e: e, at: at.Unix()})
		}
		sort.Slice(ordered, func(a, b int) bool { return ordered[a].at < ordered[b].at })

		for idx, d := range ordered {
			at, _ := d.e.When()
			x := tr.Apply(a.X(at))
			if x < -cullMargin || x > a.Width+cullMargin {
				continue
			}
			m := Mark{
				EventID:  d.e.ID,
				Title:    d.e.Title,
				X:        x,
				Y:        row.Y + float64(idx%3-1)*staggerStep,
				Color:    row.Color,
				Selected: d.e.ID == selectedID,
			}
			if favColor != nil {
				if c, ok := favColor(d.e.ID); ok {
					m.Favorite = c
				}
			}
			row.Marks = append(row.Marks, m)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
