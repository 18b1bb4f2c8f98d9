package heroine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrameProfilerTickSkipsBeforeInterval(t *testing.T) {
	p := newFrameProfiler()
	p.updateInterval = time.Hour
	p.tick()
	require.Equal(t, 1, p.frameCount)
}

func TestFrameProfilerTickResetsAfterInterval(t *testing.T) {
	p := newFrameProfiler()
	p.updateInterval = time.Nanosecond
	time.Sleep(time.Microsecond)
	p.tick()
	require.Equal(t, 0, p.frameCount)
	require.False(t, p.lastTime.IsZero())
}

func TestWithProfilingTogglesProfiler(t *testing.T) {
	e := &engine{}
	WithProfiling(true)(e)
	require.NotNil(t, e.profiler)
	WithProfiling(false)(e)
	require.Nil(t, e.profiler)
}
