package visualizer

import "strings"

// MirroredBars renders bars reflected around a horizontal center line, the
// way hardware analyzers mirror their displays.
type MirroredBars struct {
	profile colorProfile
}

// NewMirroredBars creates the mirrored bar style.
func NewMirroredBars() *MirroredBars {
	return &MirroredBars{profile: currentColorProfile()}
}

func (m *MirroredBars) Name() string { return "mirror" }

func (m *MirroredBars) Render(smoothed, peak []float64, width, height int) string {
	bands := len(smoothed)
	if bands == 0 || width < 1 || height < 1 {
		return ""
	}

	colWidth := (width - 2) / bands
	if colWidth < 1 {
		colWidth = 1
	}
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}

	mid := height / 2
	halfSpan := float64(mid)
	if halfSpan < 1 {
		halfSpan = 1
	}

	var out strings.Builder
	color := newANSIState()

	for row := 0; row < height; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		// Distance from the center line, in cells; 0 is the line itself.
		dist := float64(mid - row)
		if dist < 0 {
			dist = float64(row - mid)
		}
		for i := 0; i < bands; i++ {
			if i > 0 && gap > 0 {
				out.WriteByte(' ')
			}

			level := clamp01(smoothed[i]) * halfSpan
			peakLevel := clamp01(peak[i]) * halfSpan
			peakCell := int(peakLevel)
			if peakCell > mid {
				peakCell = mid
			}

			ch := ' '
			switch {
			case row == mid:
				ch = '█'
			case dist <= level:
				ch = '█'
			case int(dist) == peakCell && peakLevel-level >= 1:
				ch = '·'
			}

			if m.profile != colorNone && ch != ' ' {
				if ch == '·' {
					color.set(&out, colorRGB{R: 235, G: 235, B: 235})
				} else {
					color.set(&out, barColor(dist/halfSpan))
				}
			}
			for rep := 0; rep < colWidth-gap; rep++ {
				out.WriteRune(ch)
			}
		}
		color.reset(&out)
	}

	return out.String()
}
