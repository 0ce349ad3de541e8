package globe

import (
	"math"
	"sort"

	"github.com/formansean/ufo-timline/internal/favorites"
	"github.com/formansean/ufo-timline/internal/model"
)

// ArcSegments is the interpolation resolution of one connection arc.
const ArcSegments = 100

// Arc is a great-circle path between two favorited events of one color.
// Coordinates are [lat, lon] pairs along the arc; projection to screen
// space happens per frame with the points.
type Arc struct {
	Color  favorites.Color `json:"color"`
	FromID string          `json:"fromId"`
	ToID   string          `json:"toId"`
	Path   [][2]float64    `json:"path"`
}

// ConnectionArcs builds the arcs between chronologically consecutive
// favorited events for each active color. events is the visible set;
// events without parsable dates or coordinates do not participate.
func ConnectionArcs(events []model.Event, favs *favorites.Registry, active map[favorites.Color]bool) []Arc {
	if favs == nil {
		return nil
	}
	var out []Arc
	for _, color := range favorites.Colors {
		if !active[color] {
			continue
		}

		type stop struct {
			id       string
			at       int64
			lat, lon float64
		}
		var stops []stop
		for i := range events {
			e := &events[i]
			if !favs.Has(color, e.ID) {
				continue
			}
			at, err := e.When()
			if err != nil {
				continue
			}
			lat, lon, ok := e.Coordinates()
			if !ok {
				continue
			}
			stops = append(stops, stop{id: e.ID, at: at.Unix(), lat: lat, lon: lon})
		}
		sort.Slice(stops, func(i, j int) bool { return stops[i].at < stops[j].at })

		for i := 1; i < len(stops); i++ {
			a, b := stops[i-1], stops[i]
			out = append(out, Arc{
				Color:  color,
				FromID: a.id,
				ToID:   b.id,
				Path:   greatCircle(a.lat, a.lon, b.lat, b.lon, ArcSegments),
			})
		}
	}
	return out
}

// greatCircle interpolates n segments along the great circle from a to b
// by spherical linear interpolation.
func greatCircle(lat1, lon1, lat2, lon2 float64, n int) [][2]float64 {
	x1, y1, z1 := toCartesian(lat1, lon1)
	x2, y2, z2 := toCartesian(lat2, lon2)

	dot := clamp(x1*x2+y1*y2+z1*z2, -1, 1)
	omega := math.Acos(dot)

	path := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		var x, y, z float64
		if omega < 1e-9 {
			x, y, z = x1, y1, z1
		} else {
			s1 := math.Sin((1-t)*omega) / math.Sin(omega)
			s2 := math.Sin(t*omega) / math.Sin(omega)
			x = s1*x1 + s2*x2
			y = s1*y1 + s2*y2
			z = s1*z1 + s2*z2
		}
		path = append(path, fromCartesian(x, y, z))
	}
	return path
}

func toCartesian(lat, lon float64) (x, y, z float64) {
	phi, lambda := lat*degToRad, lon*degToRad
	return math.Cos(phi) * math.Cos(lambda), math.Cos(phi) * math.Sin(lambda), math.Sin(phi)
}

func fromCartesian(x, y, z float64) [2]float64 {
	norm := math.Sqrt(x*x + y*y + z*z)
	if norm == 0 {
		return [2]float64{0, 0}
	}
	lat := math.Asin(z/norm) / degToRad
	lon := math.Atan2(y, x) / degToRad
	return [2]float64{lat, lon}
}
