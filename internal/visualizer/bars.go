package visualizer

import "strings"

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Bars renders the classic spectrum-analyzer look: one vertical bar per
// band, growing from the bottom, with a floating peak marker above it.
type Bars struct {
	profile colorProfile
}

// NewBars creates the bar style.
func NewBars() *Bars {
	return &Bars{profile: currentColorProfile()}
}

func (b *Bars) Name() string { return "bars" }

func (b *Bars) Render(smoothed, peak []float64, width, height int) string {
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

	var out strings.Builder
	color := newANSIState()

	for row := 0; row < height; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		rowFromBottom := float64(height - 1 - row)
		for i := 0; i < bands; i++ {
			if i > 0 && gap > 0 {
				out.WriteByte(' ')
			}

			level := clamp01(smoothed[i]) * float64(height)
			peakLevel := clamp01(peak[i]) * float64(height)
			peakCell := int(peakLevel)
			if peakCell >= height {
				peakCell = height - 1
			}

			ch := ' '
			switch {
			case level > rowFromBottom+1:
				ch = barChars[len(barChars)-1]
			case level > rowFromBottom:
				frac := level - rowFromBottom
				ch = barChars[int(frac*float64(len(barChars)-1))]
			case int(rowFromBottom) == peakCell && peakLevel-level >= 1:
				// Peak marker only where it sits visibly above the bar.
				ch = '▔'
			}

			if b.profile != colorNone && ch != ' ' {
				if ch == '▔' {
					color.set(&out, colorRGB{R: 235, G: 235, B: 235})
				} else {
					color.set(&out, barColor(rowFromBottom/float64(height)))
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
