package hearth

import "github.com/hajimehoshi/ebiten/v2"

// Vec2 is a 2D vector used for positions, scales, origins, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Vec2One is the unit scale.
var Vec2One = Vec2{1, 1}

// Spatial is the capability implemented by anything that can be placed in
// the scene: a local position, scale, origin, and a single rotation in
// radians. *Transform implements it; component types may embed a
// *Transform or forward to one.
type Spatial interface {
	Position() Vec2
	SetPosition(p Vec2)
	Scale() Vec2
	SetScale(s Vec2)
	Origin() Vec2
	SetOrigin(o Vec2)
	Rotation() float64
	SetRotation(r float64)
}

// Node is the full surface of a transform: Spatial plus the scalar
// accessors, the hierarchy, the cached matrices and change notification.
type Node interface {
	Spatial

	X() float64
	SetX(x float64)
	Y() float64
	SetY(y float64)
	ScaleX() float64
	SetScaleX(x float64)
	ScaleY() float64
	SetScaleY(y float64)
	OriginX() float64
	SetOriginX(x float64)
	OriginY() float64
	SetOriginY(y float64)

	Parent() *Transform
	SetParent(p *Transform)
	Dirty() bool
	MarkDirty()
	Matrix() ebiten.GeoM
	Inverse() ebiten.GeoM
	GlobalPosition() Vec2
	SetGlobalPosition(p Vec2)
	LocalToWorld(p Vec2) Vec2
	WorldToLocal(p Vec2) Vec2
	OnChanged(fn func()) (unsubscribe func())
}

var (
	_ Spatial = (*Transform)(nil)
	_ Node    = (*Transform)(nil)
)
