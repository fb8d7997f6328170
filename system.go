/*
 * system.go, part of molsys.
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

// Package molsys provides a molecular-system data model and the
// structural and electronic analyses needed to build force-field
// tables on top of it: ring perception, aromaticity detection,
// bond-order and formal-charge assignment, and topological
// canonicalization. Atoms, bonds, residues and parameter rows are
// addressed by dense integer identifiers that are never reused
// within the lifetime of a System.
package molsys

import (
	"fmt"
	"sort"
)

// Atom is one atom record. X, Y and Z are in Angstroms; Charge is the
// partial (point) charge while FormalCharge comes from valence
// bookkeeping. Type holds a force-field atom type when one is known.
type Atom struct {
	Name           string
	Type           string
	AtomicNumber   int
	FormalCharge   int
	Charge         float64
	ResonantCharge float64
	Mass           float64
	X, Y, Z        float64
	Aromatic       bool
	Residue        int

	dead bool
}

// Bond joins atoms I < J. Order 0 is an unassigned placeholder allowed
// only during construction; Resonant carries the averaged order when
// resonance averaging was requested.
type Bond struct {
	I, J     int
	Order    int
	Resonant float64
	Aromatic bool

	dead bool
}

// Other returns the endpoint of b that is not id. Panics when id is
// not an endpoint, which can only be a programming error.
func (b *Bond) Other(id int) int {
	if id == b.I {
		return b.J
	}
	if id == b.J {
		return b.I
	}
	panic(fmt.Sprintf("atom %d is not an endpoint of bond %d-%d", id, b.I, b.J))
}

// Residue groups atoms. Resid is the author-assigned residue number,
// distinct from the residue's own dense identifier.
type Residue struct {
	Name  string
	Resid int
	Chain int

	atoms []int
	dead  bool
}

// Chain groups residues.
type Chain struct {
	Name string

	residues []int
	dead     bool
}

// System owns its atoms, bonds, residues, chains and tables. It is not
// safe for concurrent use; distinct systems are independent.
type System struct {
	atoms    []Atom
	bonds    []Bond
	residues []Residue
	chains   []Chain

	bondsOf [][]int // atom id -> incident live bond ids

	fragids []int
	nfrags  int
	fragsOK bool

	tables map[string]*TermTable
	aux    map[string]*ParamTable
}

// NewSystem returns an empty system.
func NewSystem() *System {
	return &System{
		tables: make(map[string]*TermTable),
		aux:    make(map[string]*ParamTable),
	}
}

// AddChain appends a chain and returns its identifier.
func (s *System) AddChain(name string) int {
	s.chains = append(s.chains, Chain{Name: name})
	return len(s.chains) - 1
}

// AddResidue appends a residue to the given chain and returns its
// identifier.
func (s *System) AddResidue(chain int) (int, error) {
	if chain < 0 || chain >= len(s.chains) || s.chains[chain].dead {
		return -1, errorf(ErrStructure, "no chain with id %d", chain)
	}
	id := len(s.residues)
	s.residues = append(s.residues, Residue{Chain: chain})
	s.chains[chain].residues = append(s.chains[chain].residues, id)
	return id, nil
}

// AddAtom appends an atom to the given residue and returns its
// identifier. Every atom belongs to exactly one residue.
func (s *System) AddAtom(residue int) (int, error) {
	if residue < 0 || residue >= len(s.residues) || s.residues[residue].dead {
		return -1, errorf(ErrStructure, "no residue with id %d", residue)
	}
	id := len(s.atoms)
	s.atoms = append(s.atoms, Atom{Residue: residue})
	s.bondsOf = append(s.bondsOf, nil)
	s.residues[residue].atoms = append(s.residues[residue].atoms, id)
	s.fragsOK = false
	return id, nil
}

// Atom returns the atom with the given identifier. It panics on ids
// that never existed; access to a deleted atom is reported by HasAtom.
func (s *System) Atom(id int) *Atom {
	if id < 0 || id >= len(s.atoms) {
		panic(fmt.Sprintf("atom id %d out of range", id))
	}
	return &s.atoms[id]
}

// Residue returns the residue record for id. Panics when out of range.
func (s *System) Residue(id int) *Residue {
	if id < 0 || id >= len(s.residues) {
		panic(fmt.Sprintf("residue id %d out of range", id))
	}
	return &s.residues[id]
}

// Chain returns the chain record for id. Panics when out of range.
func (s *System) Chain(id int) *Chain {
	if id < 0 || id >= len(s.chains) {
		panic(fmt.Sprintf("chain id %d out of range", id))
	}
	return &s.chains[id]
}

// HasAtom reports whether id refers to a live atom.
func (s *System) HasAtom(id int) bool {
	return id >= 0 && id < len(s.atoms) && !s.atoms[id].dead
}

// HasBond reports whether id refers to a live bond.
func (s *System) HasBond(id int) bool {
	return id >= 0 && id < len(s.bonds) && !s.bonds[id].dead
}

// AtomCount returns the number of live atoms.
func (s *System) AtomCount() int {
	n := 0
	for i := range s.atoms {
		if !s.atoms[i].dead {
			n++
		}
	}
	return n
}

// BondCount returns the number of live bonds.
func (s *System) BondCount() int {
	n := 0
	for i := range s.bonds {
		if !s.bonds[i].dead {
			n++
		}
	}
	return n
}

// ResidueCount returns the number of live residues.
func (s *System) ResidueCount() int {
	n := 0
	for i := range s.residues {
		if !s.residues[i].dead {
			n++
		}
	}
	return n
}

// ChainCount returns the number of live chains.
func (s *System) ChainCount() int {
	n := 0
	for i := range s.chains {
		if !s.chains[i].dead {
			n++
		}
	}
	return n
}

// Atoms returns the identifiers of all live atoms in insertion order.
func (s *System) Atoms() []int {
	ids := make([]int, 0, len(s.atoms))
	for i := range s.atoms {
		if !s.atoms[i].dead {
			ids = append(ids, i)
		}
	}
	return ids
}

// Bonds returns the identifiers of all live bonds in insertion order.
func (s *System) Bonds() []int {
	ids := make([]int, 0, len(s.bonds))
	for i := range s.bonds {
		if !s.bonds[i].dead {
			ids = append(ids, i)
		}
	}
	return ids
}

// ResidueAtoms returns the live atoms of a residue in insertion order.
func (s *System) ResidueAtoms(residue int) []int {
	r := s.Residue(residue)
	ids := make([]int, 0, len(r.atoms))
	for _, a := range r.atoms {
		if !s.atoms[a].dead {
			ids = append(ids, a)
		}
	}
	return ids
}

// ChainResidues returns the live residues of a chain in insertion order.
func (s *System) ChainResidues(chain int) []int {
	c := s.Chain(chain)
	ids := make([]int, 0, len(c.residues))
	for _, r := range c.residues {
		if !s.residues[r].dead {
			ids = append(ids, r)
		}
	}
	return ids
}

// AddBond creates a bond between distinct live atoms i and j with
// order 1 and returns its identifier. At most one bond may exist per
// unordered pair.
func (s *System) AddBond(i, j int) (int, error) {
	if i == j {
		return -1, errorf(ErrStructure, "cannot bond atom %d to itself", i)
	}
	if !s.HasAtom(i) || !s.HasAtom(j) {
		return -1, errorf(ErrStructure, "cannot bond %d-%d: missing atom", i, j)
	}
	if i > j {
		i, j = j, i
	}
	if s.FindBond(i, j) >= 0 {
		return -1, errorf(ErrStructure, "duplicate bond %d-%d", i, j)
	}
	id := len(s.bonds)
	s.bonds = append(s.bonds, Bond{I: i, J: j, Order: 1})
	s.bondsOf[i] = append(s.bondsOf[i], id)
	s.bondsOf[j] = append(s.bondsOf[j], id)
	s.fragsOK = false
	return id, nil
}

// Bond returns the bond with the given identifier. Panics when out of
// range.
func (s *System) Bond(id int) *Bond {
	if id < 0 || id >= len(s.bonds) {
		panic(fmt.Sprintf("bond id %d out of range", id))
	}
	return &s.bonds[id]
}

// FindBond returns the identifier of the live bond joining i and j, or
// -1 when there is none.
func (s *System) FindBond(i, j int) int {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j >= len(s.atoms) {
		return -1
	}
	for _, b := range s.bondsOf[i] {
		if !s.bonds[b].dead && s.bonds[b].I == i && s.bonds[b].J == j {
			return b
		}
	}
	return -1
}

// DelBond removes a bond.
func (s *System) DelBond(id int) error {
	if !s.HasBond(id) {
		return errorf(ErrStructure, "no bond with id %d", id)
	}
	b := &s.bonds[id]
	b.dead = true
	s.bondsOf[b.I] = removeID(s.bondsOf[b.I], id)
	s.bondsOf[b.J] = removeID(s.bondsOf[b.J], id)
	s.fragsOK = false
	return nil
}

// DelAtom removes an atom, cascading to its bonds and to every term
// whose tuple includes it.
func (s *System) DelAtom(id int) error {
	if !s.HasAtom(id) {
		return errorf(ErrStructure, "no atom with id %d", id)
	}
	for _, b := range append([]int(nil), s.bondsOf[id]...) {
		if err := s.DelBond(b); err != nil {
			return errDecorate(err, "DelAtom")
		}
	}
	for _, tb := range s.tables {
		tb.delTermsWithAtom(id)
	}
	s.atoms[id].dead = true
	s.fragsOK = false
	return nil
}

// BondsForAtom returns the identifiers of all live bonds incident to
// the atom.
func (s *System) BondsForAtom(id int) []int {
	if !s.HasAtom(id) {
		return nil
	}
	return append([]int(nil), s.bondsOf[id]...)
}

// FilteredBondsForAtom returns the incident bonds that count for
// chemistry: order-0 placeholders and bonds to pseudo atoms (atomic
// number 0) are excluded.
func (s *System) FilteredBondsForAtom(id int) []int {
	if !s.HasAtom(id) || s.atoms[id].AtomicNumber == 0 {
		return nil
	}
	var out []int
	for _, b := range s.bondsOf[id] {
		bd := &s.bonds[b]
		if bd.Order == 0 {
			continue
		}
		if s.atoms[bd.Other(id)].AtomicNumber == 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BondedAtoms returns the atoms joined to id by filtered bonds.
func (s *System) BondedAtoms(id int) []int {
	bonds := s.FilteredBondsForAtom(id)
	out := make([]int, 0, len(bonds))
	for _, b := range bonds {
		out = append(out, s.bonds[b].Other(id))
	}
	return out
}

// BondOrderSum returns the summed order of the filtered bonds of id.
func (s *System) BondOrderSum(id int) int {
	sum := 0
	for _, b := range s.FilteredBondsForAtom(id) {
		sum += s.bonds[b].Order
	}
	return sum
}

// Select returns a new system containing the given atoms, renumbered
// densely in the order given, along with the bonds among them, their
// residues and chains, and every term whose tuple lies fully inside
// the selection. Parameter tables are shared with the source.
func (s *System) Select(ids []int) (*System, error) {
	amap := make(map[int]int, len(ids))
	out := NewSystem()
	rmap := make(map[int]int)
	cmap := make(map[int]int)
	for _, id := range ids {
		if !s.HasAtom(id) {
			return nil, errorf(ErrStructure, "selection references missing atom %d", id)
		}
		if _, ok := amap[id]; ok {
			return nil, errorf(ErrStructure, "selection repeats atom %d", id)
		}
		a := s.atoms[id]
		r := a.Residue
		if _, ok := rmap[r]; !ok {
			c := s.residues[r].Chain
			if _, ok := cmap[c]; !ok {
				cmap[c] = out.AddChain(s.chains[c].Name)
			}
			nr, err := out.AddResidue(cmap[c])
			if err != nil {
				return nil, err
			}
			out.residues[nr].Name = s.residues[r].Name
			out.residues[nr].Resid = s.residues[r].Resid
			rmap[r] = nr
		}
		na, err := out.AddAtom(rmap[r])
		if err != nil {
			return nil, err
		}
		na2 := out.Atom(na)
		*na2 = a
		na2.Residue = rmap[r]
		amap[id] = na
	}
	for bid := range s.bonds {
		b := &s.bonds[bid]
		if b.dead {
			continue
		}
		ni, iok := amap[b.I]
		nj, jok := amap[b.J]
		if !iok || !jok {
			continue
		}
		nb, err := out.AddBond(ni, nj)
		if err != nil {
			return nil, err
		}
		out.bonds[nb].Order = b.Order
		out.bonds[nb].Resonant = b.Resonant
		out.bonds[nb].Aromatic = b.Aromatic
	}
	for name, tb := range s.tables {
		nt, err := out.AddTableWithParams(name, tb.arity, tb.params)
		if err != nil {
			return nil, err
		}
		for _, t := range tb.terms {
			tuple := make([]int, 0, tb.arity)
			ok := true
			for _, a := range t.Atoms {
				na, found := amap[a]
				if !found {
					ok = false
					break
				}
				tuple = append(tuple, na)
			}
			if !ok {
				continue
			}
			if _, err := nt.AddTerm(tuple, t.Param); err != nil {
				return nil, err
			}
		}
	}
	for name, pt := range s.aux {
		out.AddAuxTable(name, pt)
	}
	return out, nil
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortedCopy(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}
