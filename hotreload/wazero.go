package hotreload

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// WazeroLoader loads units as WebAssembly modules. Each load gets its own
// wazero.Runtime, so closing it releases everything the unit allocated.
// Compiled code is shared through a compilation cache, which makes
// reloading an unchanged image cheap.
type WazeroLoader struct {
	cache  wazero.CompilationCache
	config wazero.RuntimeConfig
}

// NewWazeroLoader creates a loader. A nil config uses wazero defaults.
func NewWazeroLoader(config wazero.RuntimeConfig) *WazeroLoader {
	if config == nil {
		config = wazero.NewRuntimeConfig()
	}
	cache := wazero.NewCompilationCache()
	return &WazeroLoader{
		cache:  cache,
		config: config.WithCompilationCache(cache),
	}
}

// Load compiles and instantiates image in a new runtime.
func (l *WazeroLoader) Load(ctx context.Context, name string, image []byte) (Context, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, l.config)

	compiled, err := rt.CompileModule(ctx, image)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile unit: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(ctx)
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate unit: %w", err)
	}

	return &wazeroContext{runtime: rt, compiled: compiled, module: mod}, nil
}

// Close releases the compilation cache. Contexts already loaded stay valid
// until unloaded.
func (l *WazeroLoader) Close(ctx context.Context) error {
	return l.cache.Close(ctx)
}

type wazeroContext struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	module   api.Module
	unloaded bool
}

func (c *wazeroContext) Components(ctx context.Context) ([]byte, error) {
	fn := c.module.ExportedFunction(EntryPoint)
	if fn == nil {
		return nil, fmt.Errorf("unit does not export %q", EntryPoint)
	}
	def := fn.Definition()
	if len(def.ParamTypes()) != 0 || len(def.ResultTypes()) != 1 || def.ResultTypes()[0] != api.ValueTypeI64 {
		return nil, fmt.Errorf("%q must have type () -> i64", EntryPoint)
	}

	results, err := fn.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("call %q: %w", EntryPoint, err)
	}

	mem := c.module.ExportedMemory(MemoryExport)
	if mem == nil {
		return nil, fmt.Errorf("unit does not export %q", MemoryExport)
	}
	ptr, size := uint32(results[0]>>32), uint32(results[0])
	buf, ok := mem.Read(ptr, size)
	if !ok {
		return nil, fmt.Errorf("manifest [%d, %d) is outside memory of %d bytes", ptr, uint64(ptr)+uint64(size), mem.Size())
	}
	// buf aliases guest memory, which is gone after unload.
	return bytes.Clone(buf), nil
}

func (c *wazeroContext) Unload(ctx context.Context) error {
	if c.unloaded {
		return nil
	}
	c.unloaded = true
	return errors.Join(
		c.module.Close(ctx),
		c.compiled.Close(ctx),
		c.runtime.Close(ctx),
	)
}

func (c *wazeroContext) Released() bool {
	return c.unloaded && c.module.IsClosed()
}
