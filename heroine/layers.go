package heroine

import (
	"fmt"

	"github.com/tomWhiting/heroine-graph-sub003/compositor"
	"github.com/tomWhiting/heroine-graph-sub003/herr"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
)

// HeatmapConfig mirrors the host-facing {colorScale, radius, intensity,
// opacity} shape from spec §6.1.
type HeatmapConfig struct {
	ColorScale string
	Radius     float32
	Intensity  float32
	Opacity    float32
}

// EnableHeatmap turns on the density/heatmap layers with cfg.
func (e *engine) EnableHeatmap(cfg HeatmapConfig) error {
	if err := e.requireReady(); err != nil {
		return err
	}
	scale, ok := valuestream.Preset(cfg.ColorScale)
	if !ok {
		return fmt.Errorf("heroine: enable heatmap: unknown color scale %q: %w", cfg.ColorScale, herr.ErrUnknownKey)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.comp.SetColorScale(e.renderer, scale); err != nil {
		return fmt.Errorf("heroine: enable heatmap: %w", err)
	}
	e.compositorCfg.ShowDensity = true
	e.compositorCfg.ShowHeatmap = true
	e.compositorCfg.Density.KernelRadius = cfg.Radius
	e.compositorCfg.Density.Intensity = cfg.Intensity
	e.compositorCfg.Heatmap.Opacity = cfg.Opacity
	return nil
}

// DisableHeatmap turns off both the density accumulator and heatmap
// colourization layers.
func (e *engine) DisableHeatmap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowDensity = false
	e.compositorCfg.ShowHeatmap = false
}

// SetHeatmapConfig updates live heatmap parameters without toggling
// visibility.
func (e *engine) SetHeatmapConfig(cfg HeatmapConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.Density.KernelRadius = cfg.Radius
	e.compositorCfg.Density.Intensity = cfg.Intensity
	e.compositorCfg.Heatmap.Opacity = cfg.Opacity
	return nil
}

// ContourConfig mirrors {thresholds[], strokeWidth, strokeColor}.
type ContourConfig struct {
	Thresholds  []float32
	StrokeWidth float32
	StrokeColor [4]float32
}

func (e *engine) EnableContour(cfg ContourConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowDensity = true
	e.compositorCfg.ShowContours = true
	e.compositorCfg.ContourThresholds = cfg.Thresholds
}

func (e *engine) DisableContour() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowContours = false
}

func (e *engine) SetContourConfig(cfg ContourConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ContourThresholds = cfg.Thresholds
}

// MetaballConfig mirrors {fillColor, threshold, opacity}.
type MetaballConfig struct {
	FillColor [4]float32
	Threshold float32
	Opacity   float32
}

func (e *engine) EnableMetaball(cfg MetaballConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowMetaballs = true
	e.applyMetaballConfigLocked(cfg)
}

func (e *engine) DisableMetaball() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowMetaballs = false
}

func (e *engine) SetMetaballConfig(cfg MetaballConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyMetaballConfigLocked(cfg)
}

func (e *engine) applyMetaballConfigLocked(cfg MetaballConfig) {
	e.compositorCfg.Metaballs.IsoLevel = cfg.Threshold
	e.compositorCfg.Metaballs.R = cfg.FillColor[0]
	e.compositorCfg.Metaballs.G = cfg.FillColor[1]
	e.compositorCfg.Metaballs.B = cfg.FillColor[2]
	e.compositorCfg.Metaballs.A = cfg.Opacity
}

func (e *engine) EnableLabels() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowLabels = true
}

func (e *engine) DisableLabels() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.ShowLabels = false
}

// SetHeatmapDataSource accepts "density" or the name of a registered
// value stream and returns herr.ErrUnknownKey for any other name. It
// records nothing: the heatmap always draws the structural density
// grid, splatted with uniform per-node weight, whichever name is given.
func (e *engine) SetHeatmapDataSource(source string) error {
	if source == "density" {
		return nil
	}
	e.mu.Lock()
	_, ok := e.streams[source]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("heroine: set heatmap data source %q: %w", source, herr.ErrUnknownKey)
	}
	return nil
}

func (e *engine) SetContourDataSource(source string) error {
	return e.SetHeatmapDataSource(source)
}

// DefineLayer registers a named, orderable filtered view over the
// graph (spec §4.6 "layers as filtered views").
func (e *engine) DefineLayer(layer *compositor.Layer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.layers {
		if l.Name == layer.Name {
			e.layers[i] = layer
			return
		}
	}
	e.layers = append(e.layers, layer)
}

func (e *engine) RemoveLayer(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.layers {
		if l.Name == name {
			e.layers = append(e.layers[:i], e.layers[i+1:]...)
			return
		}
	}
}

func (e *engine) SetLayerVisible(name string, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.layerVisibility == nil {
		e.layerVisibility = make(map[string]bool)
	}
	e.layerVisibility[name] = visible
}

func (e *engine) GetLayerVisibility(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	visible, ok := e.layerVisibility[name]
	if !ok {
		return true
	}
	return visible
}
