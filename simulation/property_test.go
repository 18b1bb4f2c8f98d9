package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"pgregory.net/rapid"
)

// integrateVelocity mirrors integrationSource's velocity update (passes.go):
// apply accumulated force and damping, then clamp speed to maxVelocity.
// Kept test-local since the real update only ever runs on the GPU.
func integrateVelocity(vx, vy, fx, fy float32, cfg algorithm.ForceConfig) (float32, float32) {
	nvx := (vx + fx*cfg.DT) * cfg.Damping
	nvy := (vy + fy*cfg.DT) * cfg.Damping
	speed := float32(math.Sqrt(float64(nvx*nvx + nvy*nvy)))
	if speed > cfg.MaxVelocity && speed > 0 {
		scale := cfg.MaxVelocity / speed
		nvx *= scale
		nvy *= scale
	}
	return nvx, nvy
}

// A single tick's integration pass must never leave a node's speed above
// its configured maxVelocity, for any damping in (0,1] and any pre-tick
// velocity or accumulated force, since every downstream pass (rendering,
// the next tick's repulsion/spring/gravity) assumes bounded node speed.
func TestIntegrationNeverExceedsMaxVelocity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := algorithm.ForceConfig{
			Damping:     float32(rapid.Float64Range(1e-6, 1.0).Draw(t, "damping")),
			DT:          float32(rapid.Float64Range(1e-3, 1.0).Draw(t, "dt")),
			MaxVelocity: float32(rapid.Float64Range(0.1, 1000).Draw(t, "maxVelocity")),
		}
		vx := float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "vx"))
		vy := float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "vy"))
		fx := float32(rapid.Float64Range(-1e6, 1e6).Draw(t, "fx"))
		fy := float32(rapid.Float64Range(-1e6, 1e6).Draw(t, "fy"))

		nvx, nvy := integrateVelocity(vx, vy, fx, fy, cfg)
		speed := math.Sqrt(float64(nvx*nvx + nvy*nvy))
		require.LessOrEqual(t, speed, float64(cfg.MaxVelocity)*(1+1e-5))
	})
}
