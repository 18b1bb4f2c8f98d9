package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/renderpass"
)

func TestSetEdgeFlowConfigEnablesFlow(t *testing.T) {
	e := &engine{}
	e.SetEdgeFlowConfig(EdgeFlowConfig{Layer1Shape: renderpass.PWMSine, Layer1Width: 2})
	require.Equal(t, uint32(1), e.compositorCfg.EdgeStyle.FlowEnabled)
	require.Equal(t, float32(2), e.compositorCfg.EdgeStyle.Layer1Width)
}

func TestDisableEdgeFlowClearsFlag(t *testing.T) {
	e := &engine{}
	e.SetEdgeFlowConfig(EdgeFlowConfig{})
	e.DisableEdgeFlow()
	require.Equal(t, uint32(0), e.compositorCfg.EdgeStyle.FlowEnabled)
}

func TestSetEdgeFlowPresetAppliesKnownPreset(t *testing.T) {
	e := &engine{}
	ok := e.SetEdgeFlowPreset("pulse")
	require.True(t, ok)
	require.Equal(t, uint32(1), e.compositorCfg.EdgeStyle.FlowEnabled)
}

func TestSetEdgeFlowPresetRejectsUnknown(t *testing.T) {
	e := &engine{}
	ok := e.SetEdgeFlowPreset("nonexistent")
	require.False(t, ok)
}

func TestGetEdgeFlowConfigRoundTrips(t *testing.T) {
	e := &engine{}
	cfg := EdgeFlowConfig{Layer1Shape: renderpass.PWMTriangle, Layer1Phase: 0.25, Layer2Fade: 0.7}
	e.SetEdgeFlowConfig(cfg)
	got := e.GetEdgeFlowConfig()
	require.Equal(t, cfg.Layer1Shape, got.Layer1Shape)
	require.Equal(t, cfg.Layer1Phase, got.Layer1Phase)
	require.Equal(t, cfg.Layer2Fade, got.Layer2Fade)
}

func TestEnableCurvedEdgesSetsCurvatureScale(t *testing.T) {
	e := &engine{}
	e.EnableCurvedEdges(0.3)
	require.Equal(t, float32(0.3), e.compositorCfg.EdgeStyle.CurvatureScale)
	e.DisableCurvedEdges()
	require.Equal(t, float32(0), e.compositorCfg.EdgeStyle.CurvatureScale)
}
