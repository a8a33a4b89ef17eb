package visualizer

// Style renders one animation frame from smoothed and peak band levels.
type Style interface {
	Name() string
	Render(smoothed, peak []float64, width, height int) string
}

// Styles returns all render styles in cycling order.
func Styles() []Style {
	return []Style{
		NewBars(),
		NewMirroredBars(),
		NewWave(),
	}
}
