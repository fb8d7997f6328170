/*
 * guess.go, part of molsys.
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
	"math"
	"sort"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// maxConnectivity caps the bonds an element may keep after distance
// guessing; entries of 0 mean no cap.
func maxConnectivity(z int) int {
	switch z {
	case 1, 9, 17, 35, 53: // H and the halogens
		return 1
	case 8:
		return 2
	case 7, 15:
		return 4
	case 6, 14:
		return 4
	case 16:
		return 6
	}
	return 0
}

// GuessBondConnectivity creates bonds between atoms whose distance is
// compatible with the sum of their covalent radii, using a cell list
// so the scan stays linear in the number of atoms. Existing bonds are
// kept; atoms that end up over-coordinated lose their longest guessed
// bonds first.
func GuessBondConnectivity(s *System) error {
	ids := s.Atoms()
	if len(ids) < 2 {
		return nil
	}
	var maxRad float64
	for _, id := range ids {
		r := ElementData(s.Atom(id).AtomicNumber).Radius
		if r > maxRad {
			maxRad = r
		}
	}
	cell := 2*maxRad + bondtol
	if cell <= 0 {
		return errorf(ErrStructure, "no covalent radii available for any atom")
	}

	type key [3]int
	voxel := func(a *Atom) key {
		return key{
			int(math.Floor(a.X / cell)),
			int(math.Floor(a.Y / cell)),
			int(math.Floor(a.Z / cell)),
		}
	}
	grid := make(map[key][]int)
	for _, id := range ids {
		k := voxel(s.Atom(id))
		grid[k] = append(grid[k], id)
	}

	type guess struct {
		id   int
		dist float64
	}
	var guessed []guess
	for _, i := range ids {
		ai := s.Atom(i)
		if ai.AtomicNumber == 0 {
			continue
		}
		ri := ElementData(ai.AtomicNumber).Radius
		k := voxel(ai)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range grid[key{k[0] + dx, k[1] + dy, k[2] + dz}] {
						if j <= i {
							continue
						}
						aj := s.Atom(j)
						if aj.AtomicNumber == 0 {
							continue
						}
						rj := ElementData(aj.AtomicNumber).Radius
						d := dist3(ai, aj)
						if d <= tooclose || d >= ri+rj+bondtol {
							continue
						}
						if s.FindBond(i, j) >= 0 {
							continue
						}
						bid, err := s.AddBond(i, j)
						if err != nil {
							return errDecorate(err, "GuessBondConnectivity")
						}
						guessed = append(guessed, guess{id: bid, dist: d})
					}
				}
			}
		}
	}

	// over-coordination cleanup: drop the longest guessed bonds
	guessedDist := make(map[int]float64, len(guessed))
	for _, g := range guessed {
		guessedDist[g.id] = g.dist
	}
	for _, id := range ids {
		max := maxConnectivity(s.Atom(id).AtomicNumber)
		if max == 0 {
			continue
		}
		for len(s.FilteredBondsForAtom(id)) > max {
			bonds := s.FilteredBondsForAtom(id)
			sort.Slice(bonds, func(a, b int) bool {
				da, aok := guessedDist[bonds[a]]
				db, bok := guessedDist[bonds[b]]
				if aok != bok {
					return !aok // bonds we did not guess are kept
				}
				return da < db
			})
			victim := bonds[len(bonds)-1]
			if _, ok := guessedDist[victim]; !ok {
				break // only guessed bonds may be dropped
			}
			if err := s.DelBond(victim); err != nil {
				return errDecorate(err, "GuessBondConnectivity")
			}
		}
	}
	return nil
}

// GuessHydrogenPositions moves each hydrogen among the given atoms
// (nil or empty means all) that has exactly one bond to the ideal
// covalent distance from its parent, pointing away from the parent's
// other neighbors. Hydrogens bonded to nothing or to several atoms are
// left alone.
func GuessHydrogenPositions(s *System, ids []int) {
	if len(ids) == 0 {
		ids = s.Atoms()
	}
	for _, id := range ids {
		if !s.HasAtom(id) {
			continue
		}
		h := s.Atom(id)
		if h.AtomicNumber != 1 {
			continue
		}
		bonds := s.FilteredBondsForAtom(id)
		if len(bonds) != 1 {
			continue
		}
		parent := s.Bond(bonds[0]).Other(id)
		p := s.Atom(parent)
		var dx, dy, dz float64
		for _, nb := range s.BondedAtoms(parent) {
			if nb == id {
				continue
			}
			a := s.Atom(nb)
			ux, uy, uz, ok := unit3(a.X-p.X, a.Y-p.Y, a.Z-p.Z)
			if !ok {
				continue
			}
			dx -= ux
			dy -= uy
			dz -= uz
		}
		ux, uy, uz, ok := unit3(dx, dy, dz)
		if !ok {
			// isolated X-H pair, or perfectly balanced neighbors:
			// keep the current direction if there is one
			ux, uy, uz, ok = unit3(h.X-p.X, h.Y-p.Y, h.Z-p.Z)
			if !ok {
				ux, uy, uz = 1, 0, 0
			}
		}
		d := ElementData(p.AtomicNumber).Radius + ElementData(1).Radius
		h.X = p.X + ux*d
		h.Y = p.Y + uy*d
		h.Z = p.Z + uz*d
	}
}

func dist3(a, b *Atom) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func unit3(x, y, z float64) (float64, float64, float64, bool) {
	n := math.Sqrt(x*x + y*y + z*z)
	if n < 1e-6 {
		return 0, 0, 0, false
	}
	return x / n, y / n, z / n, true
}
