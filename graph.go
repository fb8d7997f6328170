/*
 * graph.go, part of molsys.
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
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"
)

// ComputeTopologicalIds assigns every live atom a Morgan-style
// topological invariant: a label stable under graph automorphism and
// atom renumbering. The result maps atom id to invariant.
func ComputeTopologicalIds(s *System) map[int]uint64 {
	atoms := s.Atoms()
	return morganInvariants(s, atoms)
}

func atomSeed(s *System, id int) uint64 {
	a := s.Atom(id)
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(a.AtomicNumber))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(a.FormalCharge)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(len(s.FilteredBondsForAtom(id))))
	if a.Aromatic {
		buf[24] = 1
	}
	return xxh3.Hash(buf[:])
}

// morganInvariants runs the iterative refinement over the subgraph
// induced by atoms, stopping when the partition by invariant stops
// refining or after len(atoms) rounds.
func morganInvariants(s *System, atoms []int) map[int]uint64 {
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	inv := make(map[int]uint64, len(atoms))
	for _, a := range atoms {
		inv[a] = atomSeed(s, a)
	}
	classes := countClasses(inv)
	for round := 0; round < len(atoms); round++ {
		next := make(map[int]uint64, len(atoms))
		for _, a := range atoms {
			nbs := make([]uint64, 0, 4)
			for _, bid := range s.FilteredBondsForAtom(a) {
				o := s.Bond(bid).Other(a)
				if in[o] {
					nbs = append(nbs, inv[o])
				}
			}
			sort.Slice(nbs, func(i, j int) bool { return nbs[i] < nbs[j] })
			buf := make([]byte, 8*(len(nbs)+1))
			binary.LittleEndian.PutUint64(buf, inv[a])
			for i, v := range nbs {
				binary.LittleEndian.PutUint64(buf[8*(i+1):], v)
			}
			next[a] = xxh3.Hash(buf)
		}
		nc := countClasses(next)
		inv = next
		if nc == classes {
			break
		}
		classes = nc
	}
	return inv
}

func countClasses(inv map[int]uint64) int {
	set := make(map[uint64]bool, len(inv))
	for _, v := range inv {
		set[v] = true
	}
	return len(set)
}

// GraphHash returns a canonical digest of the subgraph induced by the
// given atoms (nil means all), invariant under any renumbering that
// preserves the graph.
func GraphHash(s *System, atoms []int) string {
	if len(atoms) == 0 {
		atoms = s.Atoms()
	}
	inv := morganInvariants(s, atoms)
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	parts := make([]uint64, 0, len(atoms))
	for _, a := range atoms {
		parts = append(parts, inv[a])
	}
	for _, a := range atoms {
		for _, bid := range s.FilteredBondsForAtom(a) {
			b := s.Bond(bid)
			o := b.Other(a)
			if !in[o] || o < a {
				continue
			}
			lo, hi := inv[a], inv[o]
			if lo > hi {
				lo, hi = hi, lo
			}
			var buf [24]byte
			binary.LittleEndian.PutUint64(buf[0:], lo)
			binary.LittleEndian.PutUint64(buf[8:], hi)
			binary.LittleEndian.PutUint64(buf[16:], uint64(b.Order))
			parts = append(parts, xxh3.Hash(buf[:]))
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
	buf := make([]byte, 8*len(parts))
	for i, v := range parts {
		binary.LittleEndian.PutUint64(buf[8*i:], v)
	}
	return fmt.Sprintf("%016x", xxh3.Hash(buf))
}

// Graph is a frozen view of a subgraph prepared for isomorphism and
// substructure search.
type Graph struct {
	system *System
	atoms  []int
	inv    map[int]uint64
	adj    map[int][]int // atom -> neighbors inside the graph
}

// NewGraph creates a graph over the subgraph induced by atoms (nil
// means every live atom).
func NewGraph(s *System, atoms []int) *Graph {
	if len(atoms) == 0 {
		atoms = s.Atoms()
	} else {
		atoms = append([]int(nil), atoms...)
	}
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	adj := make(map[int][]int, len(atoms))
	for _, a := range atoms {
		for _, bid := range s.FilteredBondsForAtom(a) {
			o := s.Bond(bid).Other(a)
			if in[o] {
				adj[a] = append(adj[a], o)
			}
		}
	}
	return &Graph{
		system: s,
		atoms:  atoms,
		inv:    morganInvariants(s, atoms),
		adj:    adj,
	}
}

// Size returns the number of atoms in the graph.
func (g *Graph) Size() int { return len(g.atoms) }

// AtomIDs returns the atom identifiers of the graph, in creation order.
func (g *Graph) AtomIDs() []int { return append([]int(nil), g.atoms...) }

// System returns the underlying system.
func (g *Graph) System() *System { return g.system }

// Hash returns the canonical digest of the graph.
func (g *Graph) Hash() string { return GraphHash(g.system, g.atoms) }

// MatchPair is one atom correspondence of a match: an atom of the
// pattern graph mapped to an atom of the target graph.
type MatchPair struct {
	A, B int
}

// Match finds one isomorphism from g onto other and returns the atom
// pairing, or nil when the graphs do not match. Atoms match when their
// element, aromaticity, formal charge and topological invariant agree;
// bonds match when their orders agree.
func (g *Graph) Match(other *Graph) []MatchPair {
	res := g.matchInternal(other, false, true)
	if len(res) == 0 {
		return nil
	}
	return res[0]
}

// MatchAll returns every isomorphism from g onto other. With
// substructure, g may map onto a strict subgraph of other, and
// invariants are not required to agree (they cannot, on a subgraph).
func (g *Graph) MatchAll(other *Graph, substructure bool) [][]MatchPair {
	return g.matchInternal(other, substructure, false)
}

func (g *Graph) matchInternal(other *Graph, substructure, firstOnly bool) [][]MatchPair {
	if !substructure && len(g.atoms) != len(other.atoms) {
		return nil
	}
	if len(g.atoms) > len(other.atoms) {
		return nil
	}
	// most-constrained-first ordering: rare invariants early
	freq := make(map[uint64]int)
	for _, a := range g.atoms {
		freq[g.inv[a]]++
	}
	order := append([]int(nil), g.atoms...)
	sort.Slice(order, func(i, j int) bool {
		fi, fj := freq[g.inv[order[i]]], freq[g.inv[order[j]]]
		if fi != fj {
			return fi < fj
		}
		return order[i] < order[j]
	})

	atomsCompatible := func(a, b int) bool {
		aa, bb := g.system.Atom(a), other.system.Atom(b)
		if aa.AtomicNumber != bb.AtomicNumber ||
			aa.Aromatic != bb.Aromatic ||
			aa.FormalCharge != bb.FormalCharge {
			return false
		}
		if substructure {
			return len(g.adj[a]) <= len(other.adj[b])
		}
		return g.inv[a] == other.inv[b] && len(g.adj[a]) == len(other.adj[b])
	}
	bondsCompatible := func(a1, a2, b1, b2 int) bool {
		ba := g.system.FindBond(a1, a2)
		bb := other.system.FindBond(b1, b2)
		if ba < 0 || bb < 0 {
			return false
		}
		return g.system.Bond(ba).Order == other.system.Bond(bb).Order
	}

	assign := make(map[int]int, len(g.atoms))  // pattern -> target
	used := make(map[int]bool, len(other.atoms))
	var results [][]MatchPair
	var rec func(depth int) bool
	rec = func(depth int) bool {
		if depth == len(order) {
			m := make([]MatchPair, 0, len(order))
			for _, a := range g.atoms {
				m = append(m, MatchPair{A: a, B: assign[a]})
			}
			results = append(results, m)
			return firstOnly
		}
		a := order[depth]
		for _, b := range other.atoms {
			if used[b] || !atomsCompatible(a, b) {
				continue
			}
			ok := true
			for _, an := range g.adj[a] {
				bn, mapped := assign[an]
				if !mapped {
					continue
				}
				if !bondsCompatible(a, an, b, bn) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			assign[a] = b
			used[b] = true
			if rec(depth + 1) {
				return true
			}
			delete(assign, a)
			delete(used, b)
		}
		return false
	}
	rec(0)
	return results
}
