package visualizer

import "strings"

// Wave renders the band levels as a continuous spring-smoothed trace, with
// peak markers dotted above where they visibly lead the trace.
type Wave struct {
	field   springField
	profile colorProfile
}

// NewWave creates the wave style.
func NewWave() *Wave {
	return &Wave{
		field:   newSpringField(30, 12.0, 0.8),
		profile: currentColorProfile(),
	}
}

func (w *Wave) Name() string { return "wave" }

func (w *Wave) Render(smoothed, peak []float64, width, height int) string {
	bands := len(smoothed)
	if bands == 0 || width < 4 || height < 1 {
		return ""
	}

	cols := width - 2
	if cols < 8 {
		cols = 8
	}
	w.field.resize(cols)

	// Stretch the band vector across the columns and let the spring chase it.
	for c := 0; c < cols; c++ {
		w.field.step(c, clamp01(bandAt(smoothed, c, cols)))
	}

	mask := make([][]uint8, height)
	for r := range mask {
		mask[r] = make([]uint8, cols)
	}

	prev := levelToRow(w.field.pos[0], height)
	for c := 1; c < cols; c++ {
		cur := levelToRow(w.field.pos[c], height)
		drawLineMask(mask, c-1, prev, c, cur, 1)
		prev = cur
	}

	// Peak dots where the peak stands clear of the trace.
	for c := 0; c < cols; c++ {
		pk := clamp01(bandAt(peak, c, cols))
		if (pk-w.field.pos[c])*float64(height) < 1 {
			continue
		}
		r := levelToRow(pk, height)
		if mask[r][c] == 0 {
			mask[r][c] = 2
		}
	}

	var out strings.Builder
	color := newANSIState()
	for r := 0; r < height; r++ {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := 0; c < cols; c++ {
			switch mask[r][c] {
			case 1:
				if w.profile != colorNone {
					color.set(&out, barColor(1-float64(r)/float64(height)))
				}
				out.WriteRune('●')
			case 2:
				if w.profile != colorNone {
					color.set(&out, colorRGB{R: 235, G: 235, B: 235})
				}
				out.WriteRune('·')
			default:
				out.WriteByte(' ')
			}
		}
		color.reset(&out)
	}

	return out.String()
}

// bandAt samples a band vector at column c of cols with linear interpolation.
func bandAt(bands []float64, c, cols int) float64 {
	if len(bands) == 1 || cols <= 1 {
		return bands[0]
	}
	pos := float64(c) / float64(cols-1) * float64(len(bands)-1)
	idx := int(pos)
	if idx >= len(bands)-1 {
		return bands[len(bands)-1]
	}
	frac := pos - float64(idx)
	return bands[idx]*(1-frac) + bands[idx+1]*frac
}

// levelToRow maps a [0,1] level to a row index, 0 at the top.
func levelToRow(level float64, height int) int {
	if height <= 1 {
		return 0
	}
	row := int((1 - clamp01(level)) * float64(height-1))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func drawLineMask(mask [][]uint8, x0, y0, x1, y1 int, bit uint8) {
	maxY := len(mask)
	if maxY == 0 {
		return
	}
	maxX := len(mask[0])

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		if y0 >= 0 && y0 < maxY && x0 >= 0 && x0 < maxX {
			mask[y0][x0] = bit
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
