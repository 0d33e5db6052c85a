package progression

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Level struct {
	Level      int `yaml:"level" json:"level"`
	XPRequired int `yaml:"xp_required" json:"xpRequired"`
}

// Table is an ascending, immutable list of levels. Build it with NewTable
// or LoadTable; the zero value is not usable.
type Table struct {
	levels []Level
}

var ErrInvalidTable = errors.New("invalid level table")

var defaultLevels = []Level{
	{Level: 1, XPRequired: 0},
	{Level: 2, XPRequired: 100},
	{Level: 3, XPRequired: 250},
	{Level: 4, XPRequired: 450},
	{Level: 5, XPRequired: 700},
	{Level: 6, XPRequired: 1000},
	{Level: 7, XPRequired: 1350},
	{Level: 8, XPRequired: 1750},
	{Level: 9, XPRequired: 2200},
	{Level: 10, XPRequired: 2700},
}

// DefaultTable returns the built-in table used when no file is configured.
func DefaultTable() *Table {
	t, err := NewTable(defaultLevels)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates levels and copies them into a Table.
// The first entry must require 0 XP and both columns must strictly increase.
func NewTable(levels []Level) (*Table, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidTable)
	}
	if levels[0].XPRequired != 0 {
		return nil, fmt.Errorf("%w: first level must require 0 xp, got %d", ErrInvalidTable, levels[0].XPRequired)
	}
	if levels[0].Level < 1 {
		return nil, fmt.Errorf("%w: levels start at 1, got %d", ErrInvalidTable, levels[0].Level)
	}
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if cur.Level <= prev.Level {
			return nil, fmt.Errorf("%w: level %d after level %d", ErrInvalidTable, cur.Level, prev.Level)
		}
		if cur.XPRequired <= prev.XPRequired {
			return nil, fmt.Errorf("%w: level %d requires %d xp, not more than level %d (%d)",
				ErrInvalidTable, cur.Level, cur.XPRequired, prev.Level, prev.XPRequired)
		}
	}

	cp := make([]Level, len(levels))
	copy(cp, levels)
	return &Table{levels: cp}, nil
}

type tableFile struct {
	Levels []Level `yaml:"levels"`
}

// LoadTable reads a YAML file of the form:
//
//	levels:
//	  - level: 1
//	    xp_required: 0
//	  - level: 2
//	    xp_required: 100
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level table: %w", err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse level table %s: %w", path, err)
	}
	return NewTable(f.Levels)
}

func (t *Table) Levels() []Level {
	cp := make([]Level, len(t.levels))
	copy(cp, t.levels)
	return cp
}

func (t *Table) MinLevel() int { return t.levels[0].Level }

func (t *Table) MaxLevel() int { return t.levels[len(t.levels)-1].Level }
