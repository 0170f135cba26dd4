// Package cdgtransition implements named tile-position orderings (spec C10):
// a permutation of the 900 (50×18) tile positions describing a progressive
// reveal pattern, or the no-transition flag that collapses every tile to a
// single shared packet time (used by text clips).
//
// The on-disk format (spec §6, "exact on-disk format is collaborator-
// defined") is TOML, loaded with github.com/BurntSushi/toml — one of the
// teacher's own indirect dependencies (pulled in transitively via fyne's
// settings/theme loader), promoted here to do real work: a declarative,
// named table of orderings is exactly what TOML is for.
package cdgtransition

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Position is a single (col,row) tile coordinate.
type Position struct {
	Col int
	Row int
}

// Transition is a named ordering of tile positions.
type Transition struct {
	Name         string
	Order        []Position
	NoTransition bool // all positions share one packet time
}

// Default returns the row-major ordering used when no transition is named:
// (0,0), (1,0), ..., (cols-1,0), (0,1), ....
func Default(cols, rows int) *Transition {
	t := &Transition{Name: "default"}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			t.Order = append(t.Order, Position{Col: col, Row: row})
		}
	}
	return t
}

// fileFormat mirrors the on-disk TOML shape:
//
//	[[transition]]
//	name = "wipe-left"
//	no_transition = false
//	order = [[0,0], [1,0], ...]
type fileFormat struct {
	Transition []struct {
		Name         string  `toml:"name"`
		NoTransition bool    `toml:"no_transition"`
		Order        [][]int `toml:"order"`
	} `toml:"transition"`
}

// Table is a name-addressed collection of transitions.
type Table struct {
	byName map[string]*Transition
}

// LoadFile parses a TOML transition table from path.
func LoadFile(path string) (*Table, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("cdgtransition: load %s: %w", path, err)
	}
	return tableFromFile(ff)
}

// LoadString parses a TOML transition table from a string, for callers that
// already have the document in memory (e.g. embedded or test fixtures).
func LoadString(doc string) (*Table, error) {
	var ff fileFormat
	if _, err := toml.Decode(doc, &ff); err != nil {
		return nil, fmt.Errorf("cdgtransition: decode: %w", err)
	}
	return tableFromFile(ff)
}

func tableFromFile(ff fileFormat) (*Table, error) {
	t := &Table{byName: make(map[string]*Transition)}
	for _, entry := range ff.Transition {
		if entry.Name == "" {
			return nil, fmt.Errorf("cdgtransition: entry with empty name")
		}
		tr := &Transition{Name: entry.Name, NoTransition: entry.NoTransition}
		for _, pair := range entry.Order {
			if len(pair) != 2 {
				return nil, fmt.Errorf("cdgtransition: %s: malformed position %v", entry.Name, pair)
			}
			tr.Order = append(tr.Order, Position{Col: pair[0], Row: pair[1]})
		}
		t.byName[entry.Name] = tr
	}
	return t, nil
}

// Lookup finds a named transition. The empty name always resolves to a
// freshly built row-major default over cols×rows (spec §4.10 "Default (no
// transition named) is row-major").
func (t *Table) Lookup(name string, cols, rows int) (*Transition, error) {
	if name == "" {
		return Default(cols, rows), nil
	}
	if t == nil {
		return nil, fmt.Errorf("cdgtransition: unknown transition %q", name)
	}
	tr, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("cdgtransition: unknown transition %q", name)
	}
	return tr, nil
}
