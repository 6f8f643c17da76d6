// Package hotreload swaps gameplay code units while the engine runs.
//
// A unit is a WebAssembly module that exports a fixed entry point,
// [EntryPoint], returning a manifest of component descriptors. The [Host]
// loads a unit into an isolated [Context], fills the [Registry] from the
// manifest, and on the next [Host.Reload] or [Host.Dispose] tears the unit
// down and proves it is gone before anything else is loaded.
//
// # Quick start
//
//	loader := hotreload.NewWazeroLoader(nil)
//	host := hotreload.NewHost(loader, hotreload.WithLogger(log))
//	defer host.Close(ctx)
//
//	if err := host.Reload(ctx, "game.wasm"); err != nil {
//	    if hotreload.IsFatal(err) {
//	        log.Fatal("unit leaked", zap.Error(err))
//	    }
//	    log.Error("reload failed", zap.Error(err))
//	}
//
//	for _, e := range host.Registry().All() {
//	    fmt.Println(e.Descriptor.Name, e.ID)
//	}
//
// # Unload verification
//
// Consumers that build objects from a unit's descriptors hold a [Handle].
// Dispose clears the registry, announces [EventUnloading] so sinks can
// release their handles, unloads the context, and then polls until no
// handle is outstanding and the context reports itself closed. The poll is
// bounded ([DefaultUnloadAttempts]); a unit that is still referenced after
// the bound is a fatal error and the host refuses to load again, since a
// stale unit would alias identifiers with its replacement.
//
// # Building units
//
// [EncodeImage] produces a minimal unit from descriptors; `hearth pack`
// uses it to turn an HCL manifest into a loadable image. Units built with
// other toolchains only need to export [MemoryExport] and an [EntryPoint]
// of type () -> i64 returning ptr<<32 | len of an [EncodeManifest] payload.
//
// # Failures
//
// Errors are [*Error] values with a [Phase] and [Kind]. An unreadable
// image ([ErrIO]) leaves the active unit untouched. A rejected image
// ([ErrMalformed], [ErrDuplicateID]) leaves no active unit. [IsFatal]
// reports leaks.
package hotreload
