// Package ecs bridges the hot-reload host into a Donburi world.
package ecs

import (
	"fmt"

	"github.com/phanxgames/hearth"
	"github.com/phanxgames/hearth/hotreload"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// ReloadEventType is the Donburi event type for host lifecycle events.
// Subscribe to it in your ECS systems to rebuild state after a reload.
var ReloadEventType = events.NewEventType[hotreload.Event]()

// Instance is the per-entity record of which component kind an entity was
// spawned from.
type Instance struct {
	Descriptor hotreload.Descriptor
	Generation uint64
	handle     *hotreload.Handle
}

// Placement carries an entity's transform. The pointer keeps parent links
// valid while Donburi moves component storage around.
type Placement struct {
	*hearth.Transform
}

var (
	// DescriptorComponent marks entities spawned from a unit's descriptors.
	DescriptorComponent = donburi.NewComponentType[Instance]()
	// TransformComponent holds the entity's node in the transform tree.
	TransformComponent = donburi.NewComponentType[Placement]()
)

var spawned = donburi.NewQuery(filter.Contains(DescriptorComponent))

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink that publishes host events to
// ReloadEventType. On EventUnloading it purges every spawned entity first,
// so their handles are released before the host checks the unit.
//
// Published events are queued; call events.ProcessAllEvents (or
// ReloadEventType.ProcessEvents) from your update loop.
func NewDonburiSink(world donburi.World) hotreload.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event hotreload.Event) {
	if event.Kind == hotreload.EventUnloading {
		Purge(s.world)
	}
	ReloadEventType.Publish(s.world, event)
}

// Spawn creates an entity for desc, holding a handle on the host's active
// unit until the entity is purged. The new transform is attached to parent
// when parent is non-nil.
func Spawn(world donburi.World, host *hotreload.Host, desc hotreload.Descriptor, parent *hearth.Transform) (donburi.Entity, error) {
	if _, ok := host.Registry().Lookup(desc.ID); !ok {
		return 0, &hotreload.Error{
			Kind:   hotreload.KindNotLoaded,
			Detail: fmt.Sprintf("component %q (%s) is not registered", desc.Name, desc.ID),
		}
	}
	handle, err := host.Acquire()
	if err != nil {
		return 0, err
	}

	t := hearth.NewTransform()
	if parent != nil {
		t.SetParent(parent)
	}

	e := world.Create(DescriptorComponent, TransformComponent)
	entry := world.Entry(e)
	DescriptorComponent.SetValue(entry, Instance{
		Descriptor: desc,
		Generation: handle.Generation(),
		handle:     handle,
	})
	TransformComponent.SetValue(entry, Placement{Transform: t})
	return e, nil
}

// Transform returns the transform of a spawned entity, or nil.
func Transform(entry *donburi.Entry) *hearth.Transform {
	if !entry.HasComponent(TransformComponent) {
		return nil
	}
	return TransformComponent.Get(entry).Transform
}

// Each calls fn for every spawned entity.
func Each(world donburi.World, fn func(entry *donburi.Entry)) {
	spawned.Each(world, fn)
}

// Purge removes every spawned entity, releasing its handle and detaching its
// transform. It returns the number of entities removed.
func Purge(world donburi.World) int {
	var doomed []donburi.Entity
	spawned.Each(world, func(entry *donburi.Entry) {
		inst := DescriptorComponent.Get(entry)
		if inst.handle != nil {
			inst.handle.Release()
		}
		if t := Transform(entry); t != nil {
			t.SetParent(nil)
		}
		doomed = append(doomed, entry.Entity())
	})
	for _, e := range doomed {
		world.Remove(e)
	}
	return len(doomed)
}
