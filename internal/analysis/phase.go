package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/ctrlsys/internal/sim"
)

type Point struct{ X, Y float64 }

// Portrait is a trajectory in the (error, error rate) plane.
type Portrait struct {
	Points []Point
}

// ErrorPortrait differentiates the tracking error of a run by finite
// differences. A well-damped loop spirals into the origin; a limit cycle
// traces a closed orbit.
func ErrorPortrait(r *sim.Result) *Portrait {
	if r == nil || len(r.Samples) < 2 {
		return nil
	}
	p := &Portrait{Points: make([]Point, 0, len(r.Samples)-1)}
	for i := 1; i < len(r.Samples); i++ {
		prev, curr := r.Samples[i-1], r.Samples[i]
		dt := curr.Time - prev.Time
		if dt <= 0 {
			continue
		}
		p.Points = append(p.Points, Point{
			X: curr.Error,
			Y: (curr.Error - prev.Error) / dt,
		})
	}
	return p
}

// PortraitToASCII renders a portrait as a character plot with axes.
func PortraitToASCII(portrait *Portrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := portrait.Points[0], portrait.Points[0]
	for _, p := range portrait.Points[1:] {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	minX, maxX := pad(lo.X, hi.X)
	minY, maxY := pad(lo.Y, hi.Y)
	rangeX, rangeY := maxX-minX, maxY-minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(x, y float64) (row, col int) {
		col = int((x - minX) / rangeX * float64(width-1))
		row = height - 1 - int((y-minY)/rangeY*float64(height-1))
		return row, col
	}

	for _, p := range portrait.Points {
		row, col := cell(p.X, p.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		_, col := cell(0, 0)
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row, _ := cell(0, 0)
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// pad widens [lo, hi] by 10% on each side, or to a unit span if empty.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
