/*
 * tables.go, part of molsys.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

package molsys

import (
	"fmt"
	"sort"
	"strings"
)

// PropType is the type of a parameter-table column.
type PropType int

const (
	IntType PropType = iota
	FloatType
	StringType
)

// Value is one cell of a parameter table; which field is meaningful
// depends on the column type.
type Value struct {
	I int64
	F float64
	S string
}

// UnassignedParam is the sentinel parameter id for terms without
// parameters.
const UnassignedParam = -1

type prop struct {
	name string
	typ  PropType
}

// ParamTable is a named set of typed columns with dense row ids. It is
// shared by reference across term tables and lives for as long as any
// of them references it.
type ParamTable struct {
	props []prop
	rows  [][]Value
	refs  int
}

// NewParamTable returns an empty parameter table.
func NewParamTable() *ParamTable {
	return &ParamTable{}
}

// AddProp appends a column. Existing rows get zero values for it.
func (p *ParamTable) AddProp(name string, typ PropType) {
	p.props = append(p.props, prop{name: name, typ: typ})
	for i := range p.rows {
		p.rows[i] = append(p.rows[i], Value{})
	}
}

// PropIndex returns the index of the named column, or -1.
func (p *ParamTable) PropIndex(name string) int {
	for i, pr := range p.props {
		if pr.name == name {
			return i
		}
	}
	return -1
}

// PropCount returns the number of columns.
func (p *ParamTable) PropCount() int { return len(p.props) }

// PropName returns the name of column i.
func (p *ParamTable) PropName(i int) string { return p.props[i].name }

// PropType returns the type of column i.
func (p *ParamTable) PropType(i int) PropType { return p.props[i].typ }

// ParamCount returns the number of rows.
func (p *ParamTable) ParamCount() int { return len(p.rows) }

// AddParam appends a zero-valued row and returns its id.
func (p *ParamTable) AddParam() int {
	p.rows = append(p.rows, make([]Value, len(p.props)))
	return len(p.rows) - 1
}

func (p *ParamTable) cell(row int, name string) (*Value, PropType, error) {
	if row < 0 || row >= len(p.rows) {
		return nil, 0, errorf(ErrLookup, "no parameter row %d", row)
	}
	i := p.PropIndex(name)
	if i < 0 {
		return nil, 0, errorf(ErrLookup, "no parameter column %q", name)
	}
	return &p.rows[row][i], p.props[i].typ, nil
}

// SetFloat stores v in a float column.
func (p *ParamTable) SetFloat(row int, name string, v float64) error {
	c, t, err := p.cell(row, name)
	if err != nil {
		return err
	}
	if t != FloatType {
		return errorf(ErrStructure, "column %q is not float", name)
	}
	c.F = v
	return nil
}

// Float reads a float column; missing cells read as 0.
func (p *ParamTable) Float(row int, name string) float64 {
	c, t, err := p.cell(row, name)
	if err != nil || t != FloatType {
		return 0
	}
	return c.F
}

// SetInt stores v in an int column.
func (p *ParamTable) SetInt(row int, name string, v int64) error {
	c, t, err := p.cell(row, name)
	if err != nil {
		return err
	}
	if t != IntType {
		return errorf(ErrStructure, "column %q is not int", name)
	}
	c.I = v
	return nil
}

// Int reads an int column; missing cells read as 0.
func (p *ParamTable) Int(row int, name string) int64 {
	c, t, err := p.cell(row, name)
	if err != nil || t != IntType {
		return 0
	}
	return c.I
}

// SetString stores v in a string column.
func (p *ParamTable) SetString(row int, name string, v string) error {
	c, t, err := p.cell(row, name)
	if err != nil {
		return err
	}
	if t != StringType {
		return errorf(ErrStructure, "column %q is not string", name)
	}
	c.S = v
	return nil
}

// String reads a string column; missing cells read as "".
func (p *ParamTable) String(row int, name string) string {
	c, t, err := p.cell(row, name)
	if err != nil || t != StringType {
		return ""
	}
	return c.S
}

// RowKey returns a string that two rows share iff all their column
// values compare equal.
func (p *ParamTable) RowKey(row int) string {
	var b strings.Builder
	for i, pr := range p.props {
		v := p.rows[row][i]
		switch pr.typ {
		case IntType:
			fmt.Fprintf(&b, "i%d|", v.I)
		case FloatType:
			fmt.Fprintf(&b, "f%g|", v.F)
		case StringType:
			fmt.Fprintf(&b, "s%s|", v.S)
		}
	}
	return b.String()
}

// Refs returns the number of term tables referencing this table.
func (p *ParamTable) Refs() int { return p.refs }

// Term is one row of a term table: an ordered atom tuple plus a
// parameter id (UnassignedParam when none).
type Term struct {
	Atoms []int
	Param int

	dead bool
}

// TermTable is a named relation keyed by ordered atom tuples of fixed
// arity, with rows pointing into a shared parameter table.
type TermTable struct {
	name   string
	arity  int
	params *ParamTable
	terms  []Term
	system *System
}

// AddTable creates a term table with the given tuple arity and a fresh
// parameter table, registers it on the system and returns it. Asking
// for an existing name returns the existing table when the arity
// matches.
func (s *System) AddTable(name string, arity int) (*TermTable, error) {
	return s.AddTableWithParams(name, arity, nil)
}

// AddTableWithParams is AddTable with an explicit, possibly shared,
// parameter table.
func (s *System) AddTableWithParams(name string, arity int, params *ParamTable) (*TermTable, error) {
	if old, ok := s.tables[name]; ok {
		if old.arity != arity {
			return nil, errorf(ErrStructure, "table %q exists with arity %d", name, old.arity)
		}
		return old, nil
	}
	if arity < 1 {
		return nil, errorf(ErrStructure, "table %q: bad arity %d", name, arity)
	}
	if params == nil {
		params = NewParamTable()
	}
	params.refs++
	tb := &TermTable{name: name, arity: arity, params: params, system: s}
	s.tables[name] = tb
	return tb, nil
}

// Table returns the named term table, or nil.
func (s *System) Table(name string) *TermTable {
	return s.tables[name]
}

// TableNames returns the names of all term tables, sorted.
func (s *System) TableNames() []string {
	names := make([]string, 0, len(s.tables))
	for n := range s.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DelTable removes a term table, releasing its parameter table.
func (s *System) DelTable(name string) error {
	tb, ok := s.tables[name]
	if !ok {
		return errorf(ErrLookup, "no table named %q", name)
	}
	tb.params.refs--
	delete(s.tables, name)
	return nil
}

// AddAuxTable registers a standalone parameter table (CMAP grids and
// such) under a name.
func (s *System) AddAuxTable(name string, pt *ParamTable) {
	pt.refs++
	s.aux[name] = pt
}

// AuxTable returns the named auxiliary table, or nil.
func (s *System) AuxTable(name string) *ParamTable {
	return s.aux[name]
}

// AuxTableNames returns the names of the auxiliary tables, sorted.
func (s *System) AuxTableNames() []string {
	names := make([]string, 0, len(s.aux))
	for n := range s.aux {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DelAuxTable removes an auxiliary table. Removal is rejected while
// anything else still holds a reference to it.
func (s *System) DelAuxTable(name string) error {
	pt, ok := s.aux[name]
	if !ok {
		return errorf(ErrLookup, "no aux table named %q", name)
	}
	pt.refs--
	if pt.refs > 0 {
		pt.refs++
		return errorf(ErrStructure, "aux table %q is still referenced", name)
	}
	delete(s.aux, name)
	return nil
}

// Name returns the table name.
func (t *TermTable) Name() string { return t.name }

// Arity returns the tuple arity.
func (t *TermTable) Arity() int { return t.arity }

// Params returns the shared parameter table.
func (t *TermTable) Params() *ParamTable { return t.params }

// AddTerm appends a term. The tuple must have the table's arity and
// reference live atoms; param must be a valid row or UnassignedParam.
func (t *TermTable) AddTerm(atoms []int, param int) (int, error) {
	if len(atoms) != t.arity {
		return -1, errorf(ErrStructure, "table %q: tuple of arity %d, want %d", t.name, len(atoms), t.arity)
	}
	for _, a := range atoms {
		if !t.system.HasAtom(a) {
			return -1, errorf(ErrStructure, "table %q: term references missing atom %d", t.name, a)
		}
	}
	if param != UnassignedParam && (param < 0 || param >= t.params.ParamCount()) {
		return -1, errorf(ErrLookup, "table %q: no parameter row %d", t.name, param)
	}
	t.terms = append(t.terms, Term{Atoms: append([]int(nil), atoms...), Param: param})
	return len(t.terms) - 1, nil
}

// TermCount returns the number of live terms.
func (t *TermTable) TermCount() int {
	n := 0
	for i := range t.terms {
		if !t.terms[i].dead {
			n++
		}
	}
	return n
}

// Terms returns the identifiers of all live terms in insertion order.
func (t *TermTable) Terms() []int {
	ids := make([]int, 0, len(t.terms))
	for i := range t.terms {
		if !t.terms[i].dead {
			ids = append(ids, i)
		}
	}
	return ids
}

// Term returns the term with the given id. Panics when out of range.
func (t *TermTable) Term(id int) *Term {
	if id < 0 || id >= len(t.terms) {
		panic(fmt.Sprintf("term id %d out of range in table %q", id, t.name))
	}
	return &t.terms[id]
}

func (t *TermTable) delTermsWithAtom(atom int) {
	for i := range t.terms {
		if t.terms[i].dead {
			continue
		}
		for _, a := range t.terms[i].Atoms {
			if a == atom {
				t.terms[i].dead = true
				break
			}
		}
	}
}

// CoalesceTables merges duplicate parameter rows in every parameter
// table of the system. Two rows are duplicates when all their column
// values compare equal; term rows are remapped to the surviving
// representative. Row storage is not compacted, so parameter ids
// remain valid.
func (s *System) CoalesceTables() {
	seen := make(map[*ParamTable]map[string]int)
	for _, tb := range s.tables {
		keys, ok := seen[tb.params]
		if !ok {
			keys = make(map[string]int)
			seen[tb.params] = keys
		}
		for i := range tb.terms {
			t := &tb.terms[i]
			if t.dead || t.Param == UnassignedParam {
				continue
			}
			k := tb.params.RowKey(t.Param)
			if rep, ok := keys[k]; ok {
				t.Param = rep
			} else {
				keys[k] = t.Param
			}
		}
	}
}
