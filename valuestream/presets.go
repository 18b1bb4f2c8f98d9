package valuestream

// Named presets for the heatmap/contour layer's colour scale (spec
// §4.6 step 3: "colour-map the density texture through a named scale").
// Stops are a coarse approximation of each reference map's key colours,
// not a reproduction of its exact sampled LUT.
var presets = map[string]ColorScale{
	"viridis": mustScale("viridis", [2]float32{0, 1}, []ColorStop{
		{Offset: 0, R: 0.267, G: 0.005, B: 0.329, A: 1},
		{Offset: 0.25, R: 0.283, G: 0.141, B: 0.458, A: 1},
		{Offset: 0.5, R: 0.128, G: 0.567, B: 0.551, A: 1},
		{Offset: 0.75, R: 0.477, G: 0.821, B: 0.318, A: 1},
		{Offset: 1, R: 0.993, G: 0.906, B: 0.144, A: 1},
	}),
	"plasma": mustScale("plasma", [2]float32{0, 1}, []ColorStop{
		{Offset: 0, R: 0.050, G: 0.030, B: 0.528, A: 1},
		{Offset: 0.33, R: 0.494, G: 0.012, B: 0.658, A: 1},
		{Offset: 0.66, R: 0.862, G: 0.290, B: 0.408, A: 1},
		{Offset: 1, R: 0.940, G: 0.975, B: 0.131, A: 1},
	}),
	"magma": mustScale("magma", [2]float32{0, 1}, []ColorStop{
		{Offset: 0, R: 0.001, G: 0.000, B: 0.016, A: 1},
		{Offset: 0.33, R: 0.361, G: 0.105, B: 0.432, A: 1},
		{Offset: 0.66, R: 0.796, G: 0.271, B: 0.467, A: 1},
		{Offset: 1, R: 0.987, G: 0.991, B: 0.749, A: 1},
	}),
}

func mustScale(name string, domain [2]float32, stops []ColorStop) ColorScale {
	s, err := NewColorScale(name, domain, stops)
	if err != nil {
		panic(err)
	}
	return s
}

// Preset looks up a named colour scale (viridis, plasma, magma). The
// bool is false for an unknown name.
func Preset(name string) (ColorScale, bool) {
	s, ok := presets[name]
	return s, ok
}
