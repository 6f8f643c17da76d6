package hotreload

import "context"

const (
	// EntryPoint is the function every unit exports to list its components.
	// It takes no arguments and returns an i64 packing ptr<<32 | len of the
	// manifest inside MemoryExport.
	EntryPoint = "components"

	// MemoryExport is the memory the entry point's result points into.
	MemoryExport = "memory"
)

// Loader creates isolated load contexts.
type Loader interface {
	// Load instantiates image in a fresh context. Nothing is shared with
	// contexts created by earlier calls.
	Load(ctx context.Context, name string, image []byte) (Context, error)
}

// Context is one loaded code unit inside its isolated environment.
type Context interface {
	// Components calls the unit's entry point and returns the raw manifest.
	Components(ctx context.Context) ([]byte, error)

	// Unload requests teardown of the context.
	Unload(ctx context.Context) error

	// Released reports whether the context is fully torn down. It must not
	// keep the unit alive.
	Released() bool
}
