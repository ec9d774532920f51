package peekpoke

// Builder creates peek-poke bridges.
type Builder struct {
	design  Design
	tracing bool
}

// WithDesign sets the design the bridge drives.
func (b Builder) WithDesign(design Design) Builder {
	b.design = design
	return b
}

// WithTracing enables a trace record for every serviced command.
func (b Builder) WithTracing(tracing bool) Builder {
	b.tracing = tracing
	return b
}

// Build creates a bridge. The bridge must be initialized before use.
func (b Builder) Build(name string) *Bridge {
	if b.design == nil {
		panic("design is not set")
	}

	return &Bridge{
		name:    name,
		design:  b.design,
		tracing: b.tracing,
		queue:   newCommandQueue(),
		stopped: make(chan struct{}),
	}
}
