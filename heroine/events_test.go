package heroine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnRegistersHandlerInvokedByEmit(t *testing.T) {
	e := &engine{handlers: make(map[Event]EventHandler)}
	var got any
	e.On(EventSimulationTick, func(payload any) { got = payload })
	e.emit(EventSimulationTick, float32(0.5))
	require.Equal(t, float32(0.5), got)
}

func TestOffRemovesHandler(t *testing.T) {
	e := &engine{handlers: make(map[Event]EventHandler)}
	called := false
	e.On(EventError, func(any) { called = true })
	e.Off(EventError)
	e.emit(EventError, nil)
	require.False(t, called)
}

func TestEmitWithoutHandlerDoesNotPanic(t *testing.T) {
	e := &engine{handlers: make(map[Event]EventHandler)}
	require.NotPanics(t, func() { e.emit(EventGraphLoaded, nil) })
}
