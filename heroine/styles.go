package heroine

import (
	"github.com/tomWhiting/heroine-graph-sub003/renderpass"
)

// NodeTypeStyle is a per-type visual override keyed by TypeTag. No code
// resolves it against per-item or global styles; see SetNodeTypeStyles.
type NodeTypeStyle struct {
	R, G, B, A uint8
	Radius     float32
}

// EdgeTypeStyle is the edge equivalent of NodeTypeStyle.
type EdgeTypeStyle struct {
	R, G, B, A uint8
	Width      float32
}

// SetNodeTypeStyles stores per-TypeTag visual overrides, replacing any
// earlier map. Nothing reads the stored map: SetNodeColors/SetNodeSizes
// do not consult it, and the compositor's single global NodeStyle
// uniform has no slot for per-instance colour, so type styles do not
// change what is drawn.
func (e *engine) SetNodeTypeStyles(styles map[int32]NodeTypeStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodeTypeStyles = styles
}

// SetEdgeTypeStyles is the edge equivalent of SetNodeTypeStyles.
func (e *engine) SetEdgeTypeStyles(styles map[int32]EdgeTypeStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.edgeTypeStyles = styles
}

// EnableCurvedEdges turns on the Bézier-ribbon edge rendering path with
// the given curvature scale; disabled, edges fall back to a curvature
// of zero (a straight ribbon), which EdgePass already renders correctly
// since its curve math degenerates to a line at curvatureScale == 0.
func (e *engine) EnableCurvedEdges(curvatureScale float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.EdgeStyle.CurvatureScale = curvatureScale
}

func (e *engine) DisableCurvedEdges() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.EdgeStyle.CurvatureScale = 0
}

func (e *engine) SetCurvedEdges(curvatureScale float32) {
	e.EnableCurvedEdges(curvatureScale)
}

// EdgeFlowConfig mirrors the dual-layer edge-flow config from §4.6 step 6.
type EdgeFlowConfig struct {
	Layer1Shape renderpass.PWMShape
	Layer1Phase float32
	Layer1Speed float32
	Layer1Width float32
	Layer2Shape renderpass.PWMShape
	Layer2Phase float32
	Layer2Speed float32
	Layer2Fade  float32
}

func (e *engine) SetEdgeFlowConfig(cfg EdgeFlowConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.EdgeStyle.FlowEnabled = 1
	e.compositorCfg.EdgeStyle.Layer1Shape = uint32(cfg.Layer1Shape)
	e.compositorCfg.EdgeStyle.Layer1Phase = cfg.Layer1Phase
	e.compositorCfg.EdgeStyle.Layer1Speed = cfg.Layer1Speed
	e.compositorCfg.EdgeStyle.Layer1Width = cfg.Layer1Width
	e.compositorCfg.EdgeStyle.Layer2Shape = uint32(cfg.Layer2Shape)
	e.compositorCfg.EdgeStyle.Layer2Phase = cfg.Layer2Phase
	e.compositorCfg.EdgeStyle.Layer2Speed = cfg.Layer2Speed
	e.compositorCfg.EdgeStyle.Layer2Fade = cfg.Layer2Fade
}

// edgeFlowPresets names a few ready-made dual-layer configurations a
// host can apply without hand-tuning every field.
var edgeFlowPresets = map[string]EdgeFlowConfig{
	"pulse": {
		Layer1Shape: renderpass.PWMSine, Layer1Width: 1, Layer1Speed: 1,
		Layer2Shape: renderpass.PWMSine, Layer2Fade: 0.5,
	},
	"marching-ants": {
		Layer1Shape: renderpass.PWMSquare, Layer1Width: 4, Layer1Speed: 2,
		Layer2Shape: renderpass.PWMSquare, Layer2Fade: 0.8,
	},
}

func (e *engine) SetEdgeFlowPreset(name string) bool {
	cfg, ok := edgeFlowPresets[name]
	if !ok {
		return false
	}
	e.SetEdgeFlowConfig(cfg)
	return true
}

func (e *engine) DisableEdgeFlow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compositorCfg.EdgeStyle.FlowEnabled = 0
}

func (e *engine) GetEdgeFlowConfig() EdgeFlowConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.compositorCfg.EdgeStyle
	return EdgeFlowConfig{
		Layer1Shape: renderpass.PWMShape(s.Layer1Shape), Layer1Phase: s.Layer1Phase,
		Layer1Speed: s.Layer1Speed, Layer1Width: s.Layer1Width,
		Layer2Shape: renderpass.PWMShape(s.Layer2Shape), Layer2Phase: s.Layer2Phase,
		Layer2Speed: s.Layer2Speed, Layer2Fade: s.Layer2Fade,
	}
}
