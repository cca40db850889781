package viz

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/ctrlsys/internal/sim"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func traceBounds(times []float64, series ...[]float64) bounds {
	b := bounds{
		minX: times[0], maxX: times[len(times)-1],
		minY: math.Inf(1), maxY: math.Inf(-1),
	}
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			b.minY = math.Min(b.minY, v)
			b.maxY = math.Max(b.maxY, v)
		}
	}
	if math.IsInf(b.minY, 1) {
		b.minY, b.maxY = -1, 1
	}
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	if b.maxY == b.minY {
		b.minY -= 0.5
		b.maxY += 0.5
	}
	pad := (b.maxY - b.minY) * 0.1
	b.minY -= pad
	b.maxY += pad
	return b
}

func (b bounds) project(t, v float64, width, height int) (float64, float64) {
	x := (t - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (v-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

func writePath(sb *strings.Builder, b bounds, times, values []float64, width, height int, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke))
	pen := "M"
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = "M"
			continue
		}
		x, y := b.project(times[i], v, width, height)
		if pen == "L" {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", pen, x, y))
		pen = "L"
	}
	sb.WriteString("\"/>\n")
}

// RunToSVG renders the primary axis target and measurement of a run as
// an SVG document. Ticks whose evaluation failed are marked along the
// bottom edge.
func RunToSVG(r *sim.Result, width, height int, theme Theme) string {
	if r == nil || len(r.Samples) < 2 || width <= 0 || height <= 0 {
		return ""
	}
	times := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
	}
	targets, measured := r.Targets(), r.Measured()
	b := traceBounds(times, targets, measured)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if b.minY < 0 && b.maxY > 0 {
		_, zy := b.project(b.minX, 0, width, height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>`+"\n",
			zy, width, zy, string(theme.Muted)))
	}
	writePath(&sb, b, times, targets, width, height, string(theme.Accent))
	writePath(&sb, b, times, measured, width, height, string(theme.Primary))

	for i, s := range r.Samples {
		if !s.Failed {
			continue
		}
		x, _ := b.project(times[i], b.minY, width, height)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s"/>`+"\n",
			x, height, x, height-6, string(theme.Error)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes RunToSVG output to w.
func WriteSVG(w io.Writer, r *sim.Result, width, height int, theme Theme) error {
	doc := RunToSVG(r, width, height, theme)
	if doc == "" {
		return fmt.Errorf("run has too few samples to draw")
	}
	_, err := io.WriteString(w, doc)
	return err
}

// WriteSVGFile writes the SVG rendering of r to path.
func WriteSVGFile(path string, r *sim.Result, width, height int, theme Theme) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, r, width, height, theme); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
