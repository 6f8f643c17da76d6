// Package ecs connects the hot-reload host to a [Donburi] world.
//
// [NewDonburiSink] forwards host lifecycle events into the world as
// [ReloadEventType] events. [Spawn] creates an entity for one of the active
// unit's descriptors, with a [hearth.Transform] attached to a parent of your
// choosing; the entity holds a handle on the unit. When the host begins an
// unload, the sink calls [Purge], which removes those entities and gives the
// handles back, so the host can prove the unit released.
//
// Usage:
//
//	world := donburi.NewWorld()
//	host := hotreload.NewHost(loader, hotreload.WithEventSink(ecs.NewDonburiSink(world)))
//	ecs.ReloadEventType.Subscribe(world, func(w donburi.World, e hotreload.Event) {
//		if e.Kind == hotreload.EventLoaded {
//			// spawn entities for the new unit
//		}
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
