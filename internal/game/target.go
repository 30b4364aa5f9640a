package game

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Shape is the particle-cloud form of the target.
type Shape string

const (
	ShapeSphere      Shape = "sphere"
	ShapeCube        Shape = "cube"
	ShapeTorus       Shape = "torus"
	ShapeIcosahedron Shape = "icosahedron"
	ShapeOctahedron  Shape = "octahedron"
)

var shapeCycle = []Shape{ShapeSphere, ShapeCube, ShapeTorus, ShapeIcosahedron, ShapeOctahedron}

// Palette is the target color per level, cycled.
var Palette = []uint32{0xff69b4, 0x00ffff, 0x00ff00, 0xffa500, 0xff0000}

// Play field bounds in world units. The target always sits at depth zero.
const (
	FieldHalfWidth  = 3.0
	FieldHalfHeight = 2.0
)

const (
	baseParticleSize = 0.05
	minParticleSize  = 0.02
	particleSizeStep = 0.005
	baseOpacity      = 0.85
	minOpacity       = 0.45
	opacityStep      = 0.04
	minLevelShrink   = 0.5
	levelShrinkStep  = 0.05
	minSpawnDelay    = 500 * time.Millisecond
	spawnDelayStep   = 200 * time.Millisecond
)

// Next returns the shape after s in the cycle.
func (s Shape) Next() Shape {
	for i, shape := range shapeCycle {
		if shape == s {
			return shapeCycle[(i+1)%len(shapeCycle)]
		}
	}
	return shapeCycle[0]
}

// Title returns the display name of s, e.g. "Icosahedron".
func (s Shape) Title() string {
	// Casers keep state between calls and are not safe to share.
	return cases.Title(language.English).String(string(s))
}

// Target is the single clickable object of a running session.
type Target struct {
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Scale        float64   `json:"scale"`
	Opacity      float64   `json:"opacity"`
	ParticleSize float64   `json:"particleSize"`
	Shape        Shape     `json:"shape"`
	Color        uint32    `json:"color"`
	SpawnedAt    time.Time `json:"-"`
	Visible      bool      `json:"visible"`
}

// Look is the level- and mode-derived appearance of a target.
type Look struct {
	Scale        float64
	Opacity      float64
	ParticleSize float64
	Color        uint32
}

// LookFor computes the target appearance at level in the given mode. Mode
// scale composes multiplicatively with the level shrink; every factor has a
// floor.
func LookFor(level int, cfg ModeConfig) Look {
	steps := float64(level - 1)
	if steps < 0 {
		steps = 0
	}
	shrink := math.Max(minLevelShrink, 1-levelShrinkStep*steps)
	return Look{
		Scale:        cfg.TargetScale * shrink,
		Opacity:      math.Max(minOpacity, baseOpacity-opacityStep*steps),
		ParticleSize: math.Max(minParticleSize, baseParticleSize-particleSizeStep*steps),
		Color:        ColorFor(level),
	}
}

// ColorFor returns the palette entry of level.
func ColorFor(level int) uint32 {
	idx := (level - 1) % len(Palette)
	if idx < 0 {
		idx = 0
	}
	return Palette[idx]
}

// SpawnDelayFor returns the spawn delay at level for a mode starting at base.
func SpawnDelayFor(base time.Duration, level int) time.Duration {
	d := base - time.Duration(level-1)*spawnDelayStep
	if d < minSpawnDelay {
		return minSpawnDelay
	}
	return d
}

// place moves t to a fresh uniformly random position and applies look.
func (t *Target) place(rng *rand.Rand, look Look, now time.Time) {
	t.X = (rng.Float64()*2 - 1) * FieldHalfWidth
	t.Y = (rng.Float64()*2 - 1) * FieldHalfHeight
	t.restyle(look)
	t.SpawnedAt = now
	t.Visible = true
}

func (t *Target) restyle(look Look) {
	t.Scale = look.Scale
	t.Opacity = look.Opacity
	t.ParticleSize = look.ParticleSize
	t.Color = look.Color
}

// ReactionTime returns seconds since the target spawned, rounded to
// hundredths as shown on the HUD.
func (t Target) ReactionTime(now time.Time) float64 {
	secs := now.Sub(t.SpawnedAt).Seconds()
	if secs < 0 {
		secs = 0
	}
	return math.Round(secs*100) / 100
}
