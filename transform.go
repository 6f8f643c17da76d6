package hearth

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Transform is a node in the 2D transform hierarchy. It holds local
// position, scale, origin and rotation, an optional parent, and lazily
// computed world and inverse matrices.
//
// Composition order:
//
//	Translate(-Origin) -> Scale -> Rotate -> Translate(Position) -> parent world
//
// Invalidation does not keep child lists or subscriptions on the parent.
// Every recompute bumps the node's epoch; a child records the parent epoch
// it composed against and is stale whenever that epoch moves or any
// ancestor is dirty. Transform is not safe for concurrent use.
type Transform struct {
	parent *Transform

	position Vec2
	scale    Vec2
	origin   Vec2
	rotation float64

	matrix  ebiten.GeoM
	inverse ebiten.GeoM
	dirty   bool

	epoch       uint64
	parentEpoch uint64

	listeners      []listener
	nextListenerID int

	// recomputes counts matrix rebuilds; read by tests.
	recomputes int
}

type listener struct {
	id int
	fn func()
}

// NewTransform returns an identity transform (scale 1, rotation 0) with no
// parent. The first Matrix read computes the cache.
func NewTransform() *Transform {
	return &Transform{
		scale: Vec2One,
		dirty: true,
	}
}

// --- Local properties ---

// Position returns the local position.
func (t *Transform) Position() Vec2 { return t.position }

// SetPosition sets the local position. Setting the current value is a no-op.
func (t *Transform) SetPosition(p Vec2) {
	if t.position == p {
		return
	}
	t.position = p
	t.changed()
}

// Scale returns the local scale.
func (t *Transform) Scale() Vec2 { return t.scale }

// SetScale sets the local scale. Setting the current value is a no-op.
func (t *Transform) SetScale(s Vec2) {
	if t.scale == s {
		return
	}
	t.scale = s
	t.changed()
}

// Origin returns the local origin (pivot) applied before scale and rotation.
func (t *Transform) Origin() Vec2 { return t.origin }

// SetOrigin sets the local origin. Setting the current value is a no-op.
func (t *Transform) SetOrigin(o Vec2) {
	if t.origin == o {
		return
	}
	t.origin = o
	t.changed()
}

// Rotation returns the local rotation in radians.
func (t *Transform) Rotation() float64 { return t.rotation }

// SetRotation sets the local rotation in radians. Setting the current value
// is a no-op.
func (t *Transform) SetRotation(r float64) {
	if t.rotation == r {
		return
	}
	t.rotation = r
	t.changed()
}

// --- Scalar accessors ---

// X returns the local position's X component.
func (t *Transform) X() float64 { return t.position.X }

// SetX sets the local position's X component through SetPosition.
func (t *Transform) SetX(x float64) { t.SetPosition(Vec2{x, t.position.Y}) }

// Y returns the local position's Y component.
func (t *Transform) Y() float64 { return t.position.Y }

// SetY sets the local position's Y component through SetPosition.
func (t *Transform) SetY(y float64) { t.SetPosition(Vec2{t.position.X, y}) }

func (t *Transform) ScaleX() float64 { return t.scale.X }

func (t *Transform) SetScaleX(x float64) { t.SetScale(Vec2{x, t.scale.Y}) }

func (t *Transform) ScaleY() float64 { return t.scale.Y }

func (t *Transform) SetScaleY(y float64) { t.SetScale(Vec2{t.scale.X, y}) }

func (t *Transform) OriginX() float64 { return t.origin.X }

func (t *Transform) SetOriginX(x float64) { t.SetOrigin(Vec2{x, t.origin.Y}) }

func (t *Transform) OriginY() float64 { return t.origin.Y }

func (t *Transform) SetOriginY(y float64) { t.SetOrigin(Vec2{t.origin.X, y}) }

// --- Hierarchy ---

// Parent returns the parent transform, or nil.
func (t *Transform) Parent() *Transform { return t.parent }

// SetParent attaches t under p (nil detaches). Changing the parent always
// invalidates t, even when its local values are unchanged.
// Panics if p is t or a descendant of t.
func (t *Transform) SetParent(p *Transform) {
	if t.parent == p {
		return
	}
	if p != nil && isAncestor(t, p) {
		panic("hearth: parent would create a cycle")
	}
	t.parent = p
	if globalDebug {
		debugCheckTreeDepth(t)
	}
	t.changed()
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Transform) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// --- Cache ---

// Dirty reports whether the next Matrix or Inverse read will recompute.
// A node is dirty when it was mutated, when any ancestor was mutated, or
// when its parent recomputed since this node last composed against it.
func (t *Transform) Dirty() bool {
	for n := t; n != nil; n = n.parent {
		if n.dirty {
			return true
		}
		if n.parent != nil && n.parent.epoch != n.parentEpoch {
			return true
		}
	}
	return false
}

// MarkDirty forces recomputation on the next read and notifies OnChanged
// subscribers.
func (t *Transform) MarkDirty() {
	t.changed()
}

// Matrix returns the world matrix, recomputing it if the node is dirty.
func (t *Transform) Matrix() ebiten.GeoM {
	if t.Dirty() {
		t.update()
	}
	return t.matrix
}

// Inverse returns the inverse of the world matrix, recomputing it if the
// node is dirty. A singular world matrix yields the identity.
func (t *Transform) Inverse() ebiten.GeoM {
	if t.Dirty() {
		t.update()
	}
	return t.inverse
}

// update rebuilds matrix and inverse in one pass.
func (t *Transform) update() {
	var m ebiten.GeoM
	m.Translate(-t.origin.X, -t.origin.Y)
	m.Scale(t.scale.X, t.scale.Y)
	m.Rotate(t.rotation)
	m.Translate(t.position.X, t.position.Y)
	if t.parent != nil {
		// Matrix may recompute the parent and bump its epoch, so the
		// epoch is read afterwards.
		m.Concat(t.parent.Matrix())
		t.parentEpoch = t.parent.epoch
	}
	t.matrix = m
	t.inverse = invertGeoM(m)
	t.dirty = false
	t.epoch++
	t.recomputes++
}

// invertGeoM returns the inverse of m, or the identity if m is singular.
func invertGeoM(m ebiten.GeoM) ebiten.GeoM {
	if !m.IsInvertible() {
		return ebiten.GeoM{}
	}
	m.Invert()
	return m
}

// --- Coordinate conversion ---

// GlobalPosition returns the local position mapped through the parent's
// world matrix, or the local position when there is no parent.
func (t *Transform) GlobalPosition() Vec2 {
	if t.parent == nil {
		return t.position
	}
	m := t.parent.Matrix()
	x, y := m.Apply(t.position.X, t.position.Y)
	return Vec2{x, y}
}

// SetGlobalPosition sets the local position so that GlobalPosition returns
// p. With a parent, p is mapped through the parent's inverse matrix.
func (t *Transform) SetGlobalPosition(p Vec2) {
	if t.parent == nil {
		t.SetPosition(p)
		return
	}
	inv := t.parent.Inverse()
	x, y := inv.Apply(p.X, p.Y)
	t.SetPosition(Vec2{x, y})
}

// LocalToWorld converts a point in this node's local space to world space.
func (t *Transform) LocalToWorld(p Vec2) Vec2 {
	m := t.Matrix()
	x, y := m.Apply(p.X, p.Y)
	return Vec2{x, y}
}

// WorldToLocal converts a world-space point to this node's local space.
func (t *Transform) WorldToLocal(p Vec2) Vec2 {
	inv := t.Inverse()
	x, y := inv.Apply(p.X, p.Y)
	return Vec2{x, y}
}

// --- Change notification ---

// OnChanged registers fn to run whenever this node's local state or parent
// changes. It does not fire for ancestor changes; use Dirty to observe those.
// The returned function removes the subscription.
func (t *Transform) OnChanged(fn func()) (unsubscribe func()) {
	t.nextListenerID++
	id := t.nextListenerID
	t.listeners = append(t.listeners, listener{id: id, fn: fn})
	return func() {
		kept := make([]listener, 0, len(t.listeners))
		for _, l := range t.listeners {
			if l.id != id {
				kept = append(kept, l)
			}
		}
		t.listeners = kept
	}
}

func (t *Transform) changed() {
	t.dirty = true
	for _, l := range t.listeners {
		l.fn()
	}
}
