/*
 * fragments.go, part of molsys.
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
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// UpdateFragids recomputes the fragment id of every atom and returns
// the number of fragments. Two atoms share a fragid iff a path of
// order->=1 bonds connects them. Fragids are dense and numbered by the
// smallest atom id in each fragment.
func (s *System) UpdateFragids() int {
	if s.fragsOK {
		return s.nfrags
	}
	g := simple.NewUndirectedGraph()
	for i := range s.atoms {
		if !s.atoms[i].dead {
			g.AddNode(simple.Node(i))
		}
	}
	for i := range s.bonds {
		b := &s.bonds[i]
		if b.dead || b.Order < 1 {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(b.I), T: simple.Node(b.J)})
	}
	comps := topo.ConnectedComponents(g)
	// order components by their smallest atom id so fragids are stable
	// across recomputation
	mins := make([]int, len(comps))
	for i, c := range comps {
		m := int(c[0].ID())
		for _, n := range c[1:] {
			if int(n.ID()) < m {
				m = int(n.ID())
			}
		}
		mins[i] = m
	}
	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return mins[order[a]] < mins[order[b]] })

	s.fragids = make([]int, len(s.atoms))
	for i := range s.fragids {
		s.fragids[i] = -1
	}
	for rank, ci := range order {
		for _, n := range comps[ci] {
			s.fragids[int(n.ID())] = rank
		}
	}
	s.nfrags = len(comps)
	s.fragsOK = true
	return s.nfrags
}

// Fragid returns the fragment id of an atom, recomputing fragment
// information if bonds changed since the last call.
func (s *System) Fragid(atom int) int {
	s.UpdateFragids()
	if atom < 0 || atom >= len(s.fragids) {
		return -1
	}
	return s.fragids[atom]
}

// FragmentAtoms returns the live atoms of each fragment, indexed by
// fragid.
func (s *System) FragmentAtoms() [][]int {
	n := s.UpdateFragids()
	out := make([][]int, n)
	for i := range s.atoms {
		if s.atoms[i].dead {
			continue
		}
		f := s.fragids[i]
		out[f] = append(out[f], i)
	}
	return out
}

// FindDistinctFragments groups the fragments of the system by their
// canonical graph hash. The result maps each hash to the fragids
// sharing that topology, so one representative per key is enough to
// cover every distinct fragment.
func (s *System) FindDistinctFragments() map[string][]int {
	frags := s.FragmentAtoms()
	out := make(map[string][]int)
	for fragid, atoms := range frags {
		h := GraphHash(s, atoms)
		out[h] = append(out[h], fragid)
	}
	return out
}
