package hearth

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	tr := NewTransform()
	g := TweenPosition(tr, Vec2{100, 50}, 1, ease.Linear)

	g.Update(0.5)
	assertVec(t, "halfway", tr.Position(), Vec2{50, 25})
	if g.Done {
		t.Fatal("tween should not be done halfway")
	}

	g.Update(0.5)
	assertVec(t, "end", tr.Position(), Vec2{100, 50})
	if !g.Done {
		t.Error("tween should be done")
	}

	// Further updates are ignored.
	tr.SetPosition(Vec2{1, 1})
	g.Update(1)
	assertVec(t, "after done", tr.Position(), Vec2{1, 1})
}

func TestTweenInvalidatesChildren(t *testing.T) {
	parent := NewTransform()
	child := NewTransform()
	child.SetParent(parent)
	child.Matrix()

	g := TweenScale(parent, Vec2{2, 2}, 1, ease.Linear)
	g.Update(0.25)
	if !child.Dirty() {
		t.Error("child should be dirty after tweening its parent")
	}
	assertVec(t, "scale", parent.Scale(), Vec2{1.25, 1.25})
}

func TestTweenUnchangedValueKeepsCache(t *testing.T) {
	tr := NewTransform()
	tr.SetOrigin(Vec2{5, 5})
	tr.Matrix()

	g := TweenOrigin(tr, Vec2{5, 5}, 1, ease.Linear)
	g.Update(0.5)
	if tr.Dirty() {
		t.Error("tween to the current value should not dirty the transform")
	}
}

func TestTweenRotation(t *testing.T) {
	tr := NewTransform()
	g := TweenRotation(tr, math.Pi, 2, ease.Linear)
	g.Update(1)
	assertNear(t, "halfway", tr.Rotation(), math.Pi/2)
	g.Update(1)
	assertNear(t, "end", tr.Rotation(), math.Pi)
	if !g.Done {
		t.Error("tween should be done")
	}
}
