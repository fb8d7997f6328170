/*
 * aromatic.go, part of molsys.
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

	"gonum.org/v1/gonum/mat"
)

// AtomClass is the per-atom contribution to a ring's pi system.
type AtomClass int

const (
	// XType contributes a lone pair to the ring pi system.
	XType AtomClass = iota
	// YType contributes one electron through an in-ring double bond.
	YType
	// YExtType contributes one electron through an exocyclic C=C bond.
	YExtType
	// ZType contributes an empty orbital.
	ZType
	// InvalidType cannot be part of an aromatic ring.
	InvalidType
)

// RingClass is the aromaticity verdict for one ring.
type RingClass int

const (
	Nonaromatic RingClass = iota
	Antiaromatic
	Aromatic
)

func (c RingClass) String() string {
	switch c {
	case Aromatic:
		return "aromatic"
	case Antiaromatic:
		return "antiaromatic"
	}
	return "nonaromatic"
}

// ClassifyRingAtom classifies one ring atom from its electron counts:
// nb filtered neighbors, a0 unshared electron pairs, b0 and b1 the
// orders of the two in-ring bonds, be the order of a qualifying
// exocyclic carbon-carbon bond (0 otherwise).
func ClassifyRingAtom(nb, a0, b0, b1, be int) AtomClass {
	if nb >= 4 {
		return InvalidType
	}
	vsum := a0 - (3 - nb)
	bsum := b0 + b1 - 2
	ebsum := 0
	if be > 0 {
		ebsum = be - 1
	}
	if vsum < 0 || vsum > 1 || bsum < 0 || bsum > 1 || ebsum > 1 || (vsum == 1 && bsum == 1) {
		return InvalidType
	}
	switch {
	case vsum == 1:
		return XType
	case bsum == 1:
		return YType
	case ebsum == 1:
		return YExtType
	}
	return ZType
}

// ClassifyRingAromaticity applies the Hueckel pair count to the per-atom
// class tallies of a ring.
func ClassifyRingAromaticity(nX, nY, nYe, nZ int) RingClass {
	// unpaired contributions cannot delocalize
	if nYe%2 == 1 || nY%2 == 1 {
		return Nonaromatic
	}
	count := nX + (nY+nYe)/2
	if (count-1)%2 == 1 {
		return Antiaromatic
	}
	return Aromatic
}

// RingAtomClasses walks a closed ring and classifies each atom. The
// ring may or may not repeat its first atom at the end.
func RingAtomClasses(s *System, ring []int) ([]AtomClass, error) {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return nil, errorf(ErrStructure, "ring of %d atoms", n)
	}
	out := make([]AtomClass, n)
	for i := 0; i < n; i++ {
		current := ring[i]
		previous := ring[(i+n-1)%n]
		next := ring[(i+1)%n]

		bonds := s.FilteredBondsForAtom(current)
		nb := len(bonds)
		atm := s.Atom(current)
		a0 := ElementData(atm.AtomicNumber).NVal - atm.FormalCharge
		var b0, b1, be int
		for _, bid := range bonds {
			b := s.Bond(bid)
			a0 -= b.Order
			other := b.Other(current)
			switch {
			case other == previous:
				b0 = b.Order
			case other == next:
				b1 = b.Order
			case nb == 3 && atm.AtomicNumber == 6 && s.Atom(other).AtomicNumber == 6:
				be = b.Order
			}
		}
		if b0 == 0 || b1 == 0 {
			return nil, errorf(ErrStructure, "ring is not closed at atom %d", current)
		}
		if a0 < 0 || a0%2 != 0 {
			out[i] = InvalidType
			continue
		}
		out[i] = ClassifyRingAtom(nb, a0/2, b0, b1, be)
	}
	return out, nil
}

// ClassifyRing returns the aromaticity verdict for a closed ring of
// atoms, along with the per-class tallies (X, Y, YEXT, Z).
func ClassifyRing(s *System, ring []int) (RingClass, [4]int, error) {
	var counts [4]int
	classes, err := RingAtomClasses(s, ring)
	if err != nil {
		return Nonaromatic, counts, err
	}
	for _, c := range classes {
		if c == InvalidType {
			return Nonaromatic, counts, nil
		}
		counts[c]++
	}
	return ClassifyRingAromaticity(counts[XType], counts[YType], counts[YExtType], counts[ZType]), counts, nil
}

// RingPlanarity returns the planarity descriptor of a ring: with the
// three eigenvalues v0 <= v1 <= v2 of the inertia tensor of the ring
// atoms about their centroid, the perpendicular axis theorem makes
// |v2 - (v0 + v1)| vanish exactly for a planar ring. Smaller is
// flatter.
func RingPlanarity(s *System, ring []int) float64 {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return 0
	}
	var xc, yc, zc float64
	for _, id := range ring[:n] {
		a := s.Atom(id)
		xc += a.X
		yc += a.Y
		zc += a.Z
	}
	fn := float64(n)
	xc /= fn
	yc /= fn
	zc /= fn

	tensor := mat.NewSymDense(3, nil)
	for _, id := range ring[:n] {
		a := s.Atom(id)
		x, y, z := a.X-xc, a.Y-yc, a.Z-zc
		tensor.SetSym(0, 0, tensor.At(0, 0)+y*y+z*z)
		tensor.SetSym(1, 1, tensor.At(1, 1)+x*x+z*z)
		tensor.SetSym(2, 2, tensor.At(2, 2)+x*x+y*y)
		tensor.SetSym(0, 1, tensor.At(0, 1)-x*y)
		tensor.SetSym(0, 2, tensor.At(0, 2)-x*z)
		tensor.SetSym(1, 2, tensor.At(1, 2)-y*z)
	}
	var eig mat.EigenSym
	if !eig.Factorize(tensor, false) {
		return math.Inf(1)
	}
	v := eig.Values(nil) // ascending
	return math.Abs(v[2] - (v[0] + v[1]))
}

// Analyze refreshes the derived chemistry of the system: fragment ids,
// ring perception and aromaticity flags on atoms and bonds. It is
// idempotent and reads nothing but the system itself.
func Analyze(s *System) error {
	s.UpdateFragids()
	for _, id := range s.Atoms() {
		s.Atom(id).Aromatic = false
	}
	for _, id := range s.Bonds() {
		s.Bond(id).Aromatic = false
	}
	rings := GetSSSR(s, nil, false)
	for _, ring := range rings {
		verdict, _, err := ClassifyRing(s, ring)
		if err != nil {
			return errDecorate(err, "Analyze")
		}
		if verdict != Aromatic {
			continue
		}
		for i := range ring {
			s.Atom(ring[i]).Aromatic = true
			b := s.FindBond(ring[i], ring[(i+1)%len(ring)])
			if b >= 0 {
				s.Bond(b).Aromatic = true
			}
		}
	}
	return nil
}
