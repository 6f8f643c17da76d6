// Package hearth is the runtime core of a 2D game engine: a transform
// hierarchy with lazily cached world matrices, and (in package hotreload) a host
// that swaps gameplay code units while the engine keeps running.
//
// # Transforms
//
// Every placed object owns a [Transform]. Transforms form a tree through
// [Transform.SetParent]; a child's world matrix is its local matrix followed
// by its parent's world matrix.
//
//	root := hearth.NewTransform()
//	root.SetPosition(hearth.Vec2{X: 100})
//
//	hero := hearth.NewTransform()
//	hero.SetParent(root)
//	hero.SetGlobalPosition(hearth.Vec2{X: 150}) // local position becomes (50, 0)
//
// Local matrices compose in a fixed order: origin offset, scale, rotation,
// then translation to the position. Matrices are [ebiten.GeoM] values, so
// they can be handed to DrawImageOptions directly.
//
// Matrices are computed on read. Setting a property to its current value is
// a no-op; any real change marks the node dirty, and every descendant sees
// the change on its next read without the parent tracking its children.
//
// # Tweens
//
// [TweenPosition], [TweenScale], [TweenOrigin] and [TweenRotation] animate
// any [Spatial] through [gween]. Call [TweenGroup.Update] each frame.
//
// # Hot reload
//
// See package [github.com/phanxgames/hearth/hotreload] for the module host
// and [github.com/phanxgames/hearth/ecs] for the [Donburi] bridge.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package hearth
