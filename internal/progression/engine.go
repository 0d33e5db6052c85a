package progression

import (
	"errors"
	"fmt"
)

var ErrNegativeXP = errors.New("xp must not be negative")

type Progress struct {
	Level          int     `json:"level"`
	XP             int     `json:"xp"`
	CurrentLevelXP int     `json:"currentLevelXp"`
	XPToNext       int     `json:"xpToNext"`
	Percentage     float64 `json:"percentage"`
	NextLevel      int     `json:"nextLevel,omitempty"`
	MaxLevel       bool    `json:"maxLevel"`
}

// LevelForXP returns the greatest level whose requirement is <= xp.
// XP past the last entry stays at the last level.
func (t *Table) LevelForXP(xp int) (int, error) {
	i, err := t.indexFor(xp)
	if err != nil {
		return 0, err
	}
	return t.levels[i].Level, nil
}

// ProgressFor reports how far xp is into its level.
func (t *Table) ProgressFor(xp int) (Progress, error) {
	i, err := t.indexFor(xp)
	if err != nil {
		return Progress{}, err
	}

	cur := t.levels[i]
	p := Progress{
		Level:          cur.Level,
		XP:             xp,
		CurrentLevelXP: xp - cur.XPRequired,
	}

	if i == len(t.levels)-1 {
		p.MaxLevel = true
		p.Percentage = 100
		return p, nil
	}

	next := t.levels[i+1]
	p.NextLevel = next.Level
	p.XPToNext = next.XPRequired - xp

	span := p.CurrentLevelXP + p.XPToNext
	if span == 0 {
		p.Percentage = 100
		return p, nil
	}
	p.Percentage = clamp(float64(p.CurrentLevelXP)/float64(span)*100, 0, 100)
	return p, nil
}

func (t *Table) indexFor(xp int) (int, error) {
	if xp < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeXP, xp)
	}

	// tabela pequena, busca linear é suficiente
	idx := 0
	for i, l := range t.levels {
		if l.XPRequired > xp {
			break
		}
		idx = i
	}
	return idx, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
