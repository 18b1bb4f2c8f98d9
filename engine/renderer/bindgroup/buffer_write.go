package bindgroup

// BufferWrite describes a single GPU buffer write targeting a specific
// binding on a BindGroupProvider at a given byte offset. Simulation and
// compositor stages batch these into one queue.WriteBuffer call per binding
// instead of writing each field individually.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
