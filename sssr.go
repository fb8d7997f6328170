/*
 * sssr.go, part of molsys.
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

	"go.uber.org/zap"
)

// maxPathsPerBond bounds the shortest-path enumeration used to collect
// candidate rings through a single bond. Molecular graphs stay far
// below it; pathological inputs get truncated with a log entry.
const maxPathsPerBond = 64

// GetSSSR returns the Smallest Set of Smallest Rings of the subgraph
// induced by the given atoms (nil or empty means every atom). Each
// ring is a closed cyclic atom sequence in canonical form. With
// allRelevant, every minimum-sized ring that can take part in some
// SSSR basis is returned instead of exactly one basis.
func GetSSSR(s *System, atoms []int, allRelevant bool) [][]int {
	in := atomSubset(s, atoms)

	// adjacency over filtered bonds inside the subset
	type edge struct{ u, v int }
	adj := make(map[int][]int)
	edgeIndex := make(map[edge]int)
	var edges []edge
	for _, a := range sortedKeys(in) {
		for _, bid := range s.FilteredBondsForAtom(a) {
			b := s.Bond(bid)
			o := b.Other(a)
			if !in[o] || o < a {
				continue
			}
			e := edge{a, o}
			edgeIndex[e] = len(edges)
			edges = append(edges, e)
			adj[a] = append(adj[a], o)
			adj[o] = append(adj[o], a)
		}
	}

	ringVec := func(ring []int) []uint64 {
		vec := make([]uint64, (len(edges)+63)/64)
		for i := range ring {
			u, v := ring[i], ring[(i+1)%len(ring)]
			if u > v {
				u, v = v, u
			}
			k := edgeIndex[edge{u, v}]
			vec[k/64] |= 1 << (k % 64)
		}
		return vec
	}

	// candidate rings: for every edge, all smallest cycles through it
	var candidates [][]int
	seen := make(map[string]bool)
	for _, e := range edges {
		for _, path := range shortestPaths(adj, e.u, e.v, e) {
			ring := canonicalRing(path)
			k := ringKey(ring)
			if !seen[k] {
				seen[k] = true
				candidates = append(candidates, ring)
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) < len(candidates[j])
		}
		return lessIntSlice(sortedCopy(candidates[i]), sortedCopy(candidates[j]))
	})

	// rank of the cycle space: |E| - |V| + components
	want := len(edges) - len(in) + countComponents(in, adj)

	// greedy GF(2) basis selection, smallest rings first
	var basis [][]uint64
	var basisSizes []int
	var sssr [][]int
	reduce := func(vec []uint64, maxSize int) []uint64 {
		r := append([]uint64(nil), vec...)
		for changed := true; changed; {
			changed = false
			for bi, bv := range basis {
				if maxSize > 0 && basisSizes[bi] >= maxSize {
					continue
				}
				if sharesPivot(r, bv) {
					xorInto(r, bv)
					changed = true
				}
			}
		}
		return r
	}
	var relevant [][]int
	for _, ring := range candidates {
		vec := ringVec(ring)
		r := reduce(vec, 0)
		if !isZero(r) && len(sssr) < want {
			basis = append(basis, r)
			basisSizes = append(basisSizes, len(ring))
			sssr = append(sssr, ring)
			if allRelevant {
				relevant = append(relevant, ring)
			}
			continue
		}
		if allRelevant {
			// a dependent ring is still relevant when it cannot be
			// written as a combination of strictly smaller rings
			if !isZero(reduce(vec, len(ring))) {
				relevant = append(relevant, ring)
			}
		}
	}
	if allRelevant {
		return relevant
	}
	return sssr
}

// RingSystems groups rings into maximal sets pairwise connected by
// shared bonds. The result holds indices into the given ring list,
// ordered by the minimum atom id within each system.
func RingSystems(s *System, rings [][]int) [][]int {
	parent := make([]int, len(rings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	owner := make(map[[2]int]int)
	for ri, ring := range rings {
		for i := range ring {
			u, v := ring[i], ring[(i+1)%len(ring)]
			if u > v {
				u, v = v, u
			}
			key := [2]int{u, v}
			if prev, ok := owner[key]; ok {
				union(prev, ri)
			} else {
				owner[key] = ri
			}
		}
	}

	groups := make(map[int][]int)
	for i := range rings {
		r := find(i)
		groups[r] = append(groups[r], i)
	}
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	minAtom := func(g []int) int {
		m := rings[g[0]][0]
		for _, ri := range g {
			for _, a := range rings[ri] {
				if a < m {
					m = a
				}
			}
		}
		return m
	}
	sort.Slice(out, func(i, j int) bool { return minAtom(out[i]) < minAtom(out[j]) })
	return out
}

// atomSubset returns the live atoms named by ids, or all of them when
// ids is empty.
func atomSubset(s *System, ids []int) map[int]bool {
	in := make(map[int]bool)
	if len(ids) == 0 {
		for _, a := range s.Atoms() {
			in[a] = true
		}
		return in
	}
	for _, a := range ids {
		if s.HasAtom(a) {
			in[a] = true
		}
	}
	return in
}

// shortestPaths returns every shortest simple path from u to v that
// avoids the edge skip, capped at maxPathsPerBond.
func shortestPaths(adj map[int][]int, u, v int, skip struct{ u, v int }) [][]int {
	blocked := func(a, b int) bool {
		return (a == skip.u && b == skip.v) || (a == skip.v && b == skip.u)
	}
	dist := map[int]int{u: 0}
	parents := make(map[int][]int)
	queue := []int{u}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == v {
			continue
		}
		for _, nb := range adj[cur] {
			if blocked(cur, nb) {
				continue
			}
			d, ok := dist[nb]
			if !ok {
				dist[nb] = dist[cur] + 1
				parents[nb] = []int{cur}
				queue = append(queue, nb)
			} else if d == dist[cur]+1 {
				parents[nb] = append(parents[nb], cur)
			}
		}
	}
	if _, ok := dist[v]; !ok {
		return nil
	}
	var out [][]int
	var walk func(node int, tail []int)
	walk = func(node int, tail []int) {
		if len(out) >= maxPathsPerBond {
			return
		}
		tail = append([]int{node}, tail...)
		if node == u {
			out = append(out, append([]int(nil), tail...))
			return
		}
		for _, p := range parents[node] {
			walk(p, tail)
		}
	}
	walk(v, nil)
	if len(out) >= maxPathsPerBond {
		logger.Warn("shortest-path enumeration truncated",
			zap.Int("u", u), zap.Int("v", v))
	}
	return out
}

func countComponents(in map[int]bool, adj map[int][]int) int {
	visited := make(map[int]bool)
	n := 0
	for _, a := range sortedKeys(in) {
		if visited[a] {
			continue
		}
		n++
		stack := []int{a}
		visited[a] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[cur] {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
	}
	return n
}

// canonicalRing returns the cyclic sequence in canonical form: the
// minimum lexicographic rotation of the smaller of the sequence and
// its reverse.
func canonicalRing(ring []int) []int {
	n := len(ring)
	best := append([]int(nil), ring...)
	try := func(seq []int) {
		for r := 0; r < n; r++ {
			rot := make([]int, n)
			for i := 0; i < n; i++ {
				rot[i] = seq[(i+r)%n]
			}
			if lessIntSlice(rot, best) {
				best = rot
			}
		}
	}
	try(ring)
	rev := make([]int, n)
	for i := range ring {
		rev[i] = ring[n-1-i]
	}
	try(rev)
	return best
}

func ringKey(ring []int) string {
	b := make([]byte, 0, len(ring)*4)
	for _, a := range ring {
		b = append(b, byte(a), byte(a>>8), byte(a>>16), byte(a>>24))
	}
	return string(b)
}

func lessIntSlice(a, b []int) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sharesPivot(a, b []uint64) bool {
	// pivot of b is its lowest set bit; a shares it when that bit is set
	for i := range b {
		if b[i] != 0 {
			low := b[i] & (-b[i])
			return a[i]&low != 0
		}
	}
	return false
}

func xorInto(dst, src []uint64) {
	for i := range src {
		dst[i] ^= src[i]
	}
}

func isZero(v []uint64) bool {
	for _, w := range v {
		if w != 0 {
			return false
		}
	}
	return true
}
