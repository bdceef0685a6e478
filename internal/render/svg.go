package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Point struct{ X, Y float64 }

// PoseSVG draws the box whose inertial corners are given, viewed along the
// y axis (x to the right, z up), with the pivot at the centre of a size x
// size canvas. reach is the distance from the pivot to the canvas edge in
// metres.
func PoseSVG(corners [8][3]float64, size int, reach float64) string {
	if reach <= 0 {
		reach = 1
	}
	half := float64(size) / 2
	scale := half / reach

	pts := make([]Point, 0, len(corners))
	for _, c := range corners {
		pts = append(pts, Point{X: half + c[0]*scale, Y: half - c[2]*scale})
	}
	hull := convexHull(pts)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	sb.WriteString(`<polygon fill="#00ccff" fill-opacity="0.6" stroke="#00ffff" stroke-width="1.5" points="`)
	for i, p := range hull {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", p.X, p.Y)
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="#ff00ff"/>
</svg>`, half, half)
	return sb.String()
}

// convexHull returns the hull of pts in counter-clockwise order using the
// monotone chain.
func convexHull(pts []Point) []Point {
	p := append([]Point(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
	if len(p) < 3 {
		return p
	}

	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(p))
	for _, pt := range p {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 1e-9 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(p) - 2; i >= 0; i-- {
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p[i]) <= 1e-9 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p[i])
	}
	return hull[:len(hull)-1]
}

// TrajectorySVG draws points as a single polyline scaled to fill a width x
// height canvas with a 10% margin. It is empty for fewer than two points.
func TrajectorySVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	minX, maxX = widen(minX, maxX)
	minY, maxY = widen(minY, maxY)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (p.Y-minY)/(maxY-minY)*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func widen(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
