// Package globe computes the orthographic globe view: projected event
// points with far-hemisphere culling, the rotation driver state machine,
// and great-circle connection arcs between favorited events.
package globe

import (
	"math"

	"github.com/formansean/ufo-timline/internal/model"
)

const degToRad = math.Pi / 180

// Projection is an orthographic projection of the sphere. Rotation is
// [lambda, phi] in degrees, the same convention the view applies when
// centering a point at (lat, lon): rotation = [-lon, -lat].
type Projection struct {
	Rotation  [2]float64 `json:"rotation"`
	Scale     float64    `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// NewProjection centers the sphere in a size×size viewport, radius just
// inside the frame.
func NewProjection(size float64) Projection {
	return Projection{
		Scale:     size/2 - 2,
		Translate: [2]float64{size / 2, size / 2},
	}
}

// Center returns the lat/lon currently facing the viewer.
func (p Projection) Center() (lat, lon float64) {
	return -p.Rotation[1], -p.Rotation[0]
}

// CosDistance returns the cosine of the great-circle angle between the
// point and the current view center. Positive means the point is on the
// near hemisphere.
func (p Projection) CosDistance(lat, lon float64) float64 {
	cLat, cLon := p.Center()
	phi1, phi2 := cLat*degToRad, lat*degToRad
	dLambda := (lon - cLon) * degToRad
	return math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
}

// Project maps lat/lon to screen coordinates. visible is false on the far
// hemisphere, where the point must not be drawn.
func (p Projection) Project(lat, lon float64) (x, y float64, visible bool) {
	if p.CosDistance(lat, lon) <= 0 {
		return 0, 0, false
	}
	cLat, cLon := p.Center()
	phi0, phi := cLat*degToRad, lat*degToRad
	dLambda := (lon - cLon) * degToRad

	x = p.Scale * math.Cos(phi) * math.Sin(dLambda)
	y = p.Scale * (math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(dLambda))
	return p.Translate[0] + x, p.Translate[1] - y, true
}

// Point is one projected event.
type Point struct {
	EventID string  `json:"eventId"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color"`
	Visible bool    `json:"visible"`
}

// Points projects the visible-event set. Events with missing or
// unparsable coordinates are silently skipped; they stay visible on the
// timeline but never reach the globe. Screen positions and culling depend
// on the current rotation, so this runs on every rotation or zoom frame.
func Points(events []model.Event, p Projection) []Point {
	out := make([]Point, 0, len(events))
	for i := range events {
		e := &events[i]
		lat, lon, ok := e.Coordinates()
		if !ok {
			continue
		}
		x, y, visible := p.Project(lat, lon)
		out = append(out, Point{
			EventID: e.ID,
			Lat:     lat,
			Lon:     lon,
			X:       x,
			Y:       y,
			Color:   model.CategoryColors[e.Category].Base,
			Visible: visible,
		})
	}
	return out
}
