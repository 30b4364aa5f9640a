package game

import "math"

// DefaultHitRadius is the particle cloud's radius at scale 1.
const DefaultHitRadius = 0.8

// HitTester decides whether a pointer position, in world units on the
// target's plane, touches the target.
type HitTester interface {
	TestHit(target Target, x, y float64) bool
}

// RadiusHitTester treats the target as a disc of Radius*Scale.
type RadiusHitTester struct {
	Radius float64
}

// TestHit implements HitTester.
func (h RadiusHitTester) TestHit(target Target, x, y float64) bool {
	if !target.Visible {
		return false
	}
	radius := h.Radius
	if radius <= 0 {
		radius = DefaultHitRadius
	}
	return math.Hypot(x-target.X, y-target.Y) <= radius*target.Scale
}

// HitTesterFunc adapts a function to HitTester.
type HitTesterFunc func(target Target, x, y float64) bool

// TestHit implements HitTester.
func (f HitTesterFunc) TestHit(target Target, x, y float64) bool {
	return f(target, x, y)
}
