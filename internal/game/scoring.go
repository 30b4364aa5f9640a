package game

import (
	"fmt"
	"time"
)

const (
	// MaxMultiplier caps how much a combo multiplies the points of a hit.
	MaxMultiplier = 10
	PointsPerHit  = 1
	// ComboWindow is how long a combo survives without a hit.
	ComboWindow = 3 * time.Second
	// LevelEvery is the score step that levels a session up.
	LevelEvery = 5
)

// Bonus is a time extension earned by a hit.
type Bonus struct {
	Seconds int
	Notice  Notice
}

// HitOutcome reports what a resolved hit changed.
type HitOutcome struct {
	Points    int
	Combo     int
	Score     int
	Level     int
	LeveledUp bool
	Reaction  float64
	Bonuses   []Bonus
}

// BonusSeconds sums the time bonuses of the hit.
func (o HitOutcome) BonusSeconds() int {
	total := 0
	for _, b := range o.Bonuses {
		total += b.Seconds
	}
	return total
}

// Progress holds the scoring counters of one session.
type Progress struct {
	Score  int
	Level  int
	Combo  int
	Hits   int
	Misses int
	// BestReaction is zero until the first hit.
	BestReaction float64
	Reaction     float64
}

// NewProgress returns the counters of a fresh session.
func NewProgress() Progress {
	return Progress{Level: 1}
}

// Multiplier returns the point multiplier for combo.
func Multiplier(combo int) int {
	if combo < 1 {
		return 1
	}
	if combo > MaxMultiplier {
		return MaxMultiplier
	}
	return combo
}

// ApplyHit scores a hit with the given reaction time in seconds. When
// timeBonuses is set the qualifying time bonuses are listed in the outcome;
// the caller applies them.
func (p *Progress) ApplyHit(reaction float64, timeBonuses bool) HitOutcome {
	p.Combo++
	p.Hits++
	points := PointsPerHit * Multiplier(p.Combo)
	p.Score += points
	p.Reaction = reaction
	if p.Hits == 1 || reaction < p.BestReaction {
		p.BestReaction = reaction
	}

	leveled := p.Score > 0 && p.Score%LevelEvery == 0
	if leveled {
		p.Level++
	}

	out := HitOutcome{
		Points:    points,
		Combo:     p.Combo,
		Score:     p.Score,
		Level:     p.Level,
		LeveledUp: leveled,
		Reaction:  reaction,
	}
	if timeBonuses {
		out.Bonuses = TimeBonuses(reaction, p.Combo, leveled)
	}
	return out
}

// ApplyMiss counts a miss and breaks the combo. Score and level never drop.
func (p *Progress) ApplyMiss() {
	p.Misses++
	p.Combo = 0
}

// BreakCombo resets the combo without counting a miss.
func (p *Progress) BreakCombo() {
	p.Combo = 0
}

// TimeBonuses lists the independent time bonuses a hit earns, in evaluation
// order.
func TimeBonuses(reaction float64, combo int, leveledUp bool) []Bonus {
	var out []Bonus
	if reaction < 0.5 {
		out = append(out, Bonus{Seconds: 1, Notice: Notice{Text: "Lightning fast! +1s", Category: NoticeReaction}})
	}
	if reaction < 0.8 {
		out = append(out, Bonus{Seconds: 1, Notice: Notice{Text: "Quick shot! +1s", Category: NoticeReaction}})
	}
	if combo == 5 {
		out = append(out, Bonus{Seconds: 2, Notice: Notice{Text: "5x combo! +2s", Category: NoticeCombo}})
	}
	if combo == 10 {
		out = append(out, Bonus{Seconds: 3, Notice: Notice{Text: "10x combo! +3s", Category: NoticeCombo}})
	}
	if combo > 0 && combo%15 == 0 {
		out = append(out, Bonus{Seconds: 5, Notice: Notice{Text: fmt.Sprintf("%d-hit streak! +5s", combo), Category: NoticeBonus}})
	}
	if leveledUp {
		out = append(out, Bonus{Seconds: 3, Notice: Notice{Text: "Level up! +3s", Category: NoticeLevel}})
	}
	return out
}

// Accuracy returns hits over attempts as a fraction, zero without attempts.
func (p Progress) Accuracy() float64 {
	attempts := p.Hits + p.Misses
	if attempts == 0 {
		return 0
	}
	return float64(p.Hits) / float64(attempts)
}
