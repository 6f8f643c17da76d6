package hearth

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to two float64 properties of a Spatial at once.
// Create one with TweenPosition, TweenScale, TweenOrigin or TweenRotation
// and call Update(dt) each frame. Values are written through the Spatial
// setters, so unchanged frames do not invalidate the transform cache.
//
// There is no global animation manager; callers drive Update themselves.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	apply  func(values [2]float64)
	Done   bool
}

// Update advances the tweens by dt seconds and writes the current values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	var values [2]float64
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.apply(values)
	g.Done = allDone
}

func newVecTween(from, to Vec2, duration float32, fn ease.TweenFunc, set func(Vec2)) *TweenGroup {
	g := &TweenGroup{count: 2}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.apply = func(v [2]float64) { set(Vec2{v[0], v[1]}) }
	return g
}

// TweenPosition animates s's position to the target over duration seconds.
func TweenPosition(s Spatial, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newVecTween(s.Position(), to, duration, fn, s.SetPosition)
}

// TweenScale animates s's scale to the target over duration seconds.
func TweenScale(s Spatial, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newVecTween(s.Scale(), to, duration, fn, s.SetScale)
}

// TweenOrigin animates s's origin to the target over duration seconds.
func TweenOrigin(s Spatial, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newVecTween(s.Origin(), to, duration, fn, s.SetOrigin)
}

// TweenRotation animates s's rotation (radians) to the target over duration
// seconds.
func TweenRotation(s Spatial, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1}
	g.tweens[0] = gween.New(float32(s.Rotation()), float32(to), duration, fn)
	g.apply = func(v [2]float64) { s.SetRotation(v[0]) }
	return g
}
