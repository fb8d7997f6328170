/*
 * elements.go, part of molsys.
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
	"strings"
)

// Element holds the static per-element data used across the library.
// Radius is the covalent radius in Angstroms (Cordero et al., 2008,
// DOI:10.1039/B801115J). Eneg is the Allen-scale electronegativity.
type Element struct {
	Z       int
	Symbol  string
	Mass    float64
	Radius  float64
	NVal    int
	Eneg    float64
	Period  int
	Group   int
}

// elements is indexed by atomic number. Entry 0 is the "virtual" element
// (drude particles, lone-pair sites and such have atomic number 0).
var elements = [119]Element{
	{0, "", 0, 0, 0, 0, 0, 0},
	{1, "H", 1.008, 0.31, 1, 2.300, 1, 1},
	{2, "He", 4.0026, 0.28, 2, 4.160, 1, 18},
	{3, "Li", 6.94, 1.28, 1, 0.912, 2, 1},
	{4, "Be", 9.0122, 0.96, 2, 1.576, 2, 2},
	{5, "B", 10.81, 0.84, 3, 2.051, 2, 13},
	{6, "C", 12.011, 0.76, 4, 2.544, 2, 14},
	{7, "N", 14.007, 0.71, 5, 3.066, 2, 15},
	{8, "O", 15.999, 0.66, 6, 3.610, 2, 16},
	{9, "F", 18.998, 0.57, 7, 4.193, 2, 17},
	{10, "Ne", 20.180, 0.58, 8, 4.787, 2, 18},
	{11, "Na", 22.990, 1.66, 1, 0.869, 3, 1},
	{12, "Mg", 24.305, 1.41, 2, 1.293, 3, 2},
	{13, "Al", 26.982, 1.21, 3, 1.613, 3, 13},
	{14, "Si", 28.085, 1.11, 4, 1.916, 3, 14},
	{15, "P", 30.974, 1.07, 5, 2.253, 3, 15},
	{16, "S", 32.06, 1.05, 6, 2.589, 3, 16},
	{17, "Cl", 35.45, 1.02, 7, 2.869, 3, 17},
	{18, "Ar", 39.948, 1.06, 8, 3.242, 3, 18},
	{19, "K", 39.098, 2.03, 1, 0.734, 4, 1},
	{20, "Ca", 40.078, 1.76, 2, 1.034, 4, 2},
	{21, "Sc", 44.956, 1.70, 3, 1.19, 4, 3},
	{22, "Ti", 47.867, 1.60, 4, 1.38, 4, 4},
	{23, "V", 50.942, 1.53, 5, 1.53, 4, 5},
	{24, "Cr", 51.996, 1.39, 6, 1.65, 4, 6},
	{25, "Mn", 54.938, 1.61, 7, 1.75, 4, 7},
	{26, "Fe", 55.845, 1.52, 8, 1.80, 4, 8},
	{27, "Co", 58.933, 1.50, 9, 1.84, 4, 9},
	{28, "Ni", 58.693, 1.24, 10, 1.88, 4, 10},
	{29, "Cu", 63.546, 1.32, 11, 1.85, 4, 11},
	{30, "Zn", 65.38, 1.22, 12, 1.59, 4, 12},
	{31, "Ga", 69.723, 1.22, 3, 1.756, 4, 13},
	{32, "Ge", 72.630, 1.20, 4, 1.994, 4, 14},
	{33, "As", 74.922, 1.19, 5, 2.211, 4, 15},
	{34, "Se", 78.971, 1.20, 6, 2.424, 4, 16},
	{35, "Br", 79.904, 1.20, 7, 2.685, 4, 17},
	{36, "Kr", 83.798, 1.16, 8, 2.966, 4, 18},
	{37, "Rb", 85.468, 2.20, 1, 0.706, 5, 1},
	{38, "Sr", 87.62, 1.95, 2, 0.963, 5, 2},
	{39, "Y", 88.906, 1.90, 3, 1.12, 5, 3},
	{40, "Zr", 91.224, 1.75, 4, 1.32, 5, 4},
	{41, "Nb", 92.906, 1.64, 5, 1.41, 5, 5},
	{42, "Mo", 95.95, 1.54, 6, 1.47, 5, 6},
	{43, "Tc", 97.0, 1.47, 7, 1.51, 5, 7},
	{44, "Ru", 101.07, 1.46, 8, 1.54, 5, 8},
	{45, "Rh", 102.91, 1.42, 9, 1.56, 5, 9},
	{46, "Pd", 106.42, 1.39, 10, 1.58, 5, 10},
	{47, "Ag", 107.87, 1.45, 11, 1.87, 5, 11},
	{48, "Cd", 112.41, 1.44, 12, 1.52, 5, 12},
	{49, "In", 114.82, 1.42, 3, 1.656, 5, 13},
	{50, "Sn", 118.71, 1.39, 4, 1.824, 5, 14},
	{51, "Sb", 121.76, 1.39, 5, 1.984, 5, 15},
	{52, "Te", 127.60, 1.38, 6, 2.158, 5, 16},
	{53, "I", 126.90, 1.39, 7, 2.359, 5, 17},
	{54, "Xe", 131.29, 1.40, 8, 2.582, 5, 18},
	{55, "Cs", 132.91, 2.44, 1, 0.659, 6, 1},
	{56, "Ba", 137.33, 2.15, 2, 0.881, 6, 2},
	{57, "La", 138.91, 2.07, 3, 1.09, 6, 3},
	{58, "Ce", 140.12, 2.04, 3, 1.09, 6, 3},
	{59, "Pr", 140.91, 2.03, 3, 1.10, 6, 3},
	{60, "Nd", 144.24, 2.01, 3, 1.10, 6, 3},
	{61, "Pm", 145.0, 1.99, 3, 1.10, 6, 3},
	{62, "Sm", 150.36, 1.98, 3, 1.10, 6, 3},
	{63, "Eu", 151.96, 1.98, 3, 1.10, 6, 3},
	{64, "Gd", 157.25, 1.96, 3, 1.11, 6, 3},
	{65, "Tb", 158.93, 1.94, 3, 1.11, 6, 3},
	{66, "Dy", 162.50, 1.92, 3, 1.11, 6, 3},
	{67, "Ho", 164.93, 1.92, 3, 1.12, 6, 3},
	{68, "Er", 167.26, 1.89, 3, 1.12, 6, 3},
	{69, "Tm", 168.93, 1.90, 3, 1.12, 6, 3},
	{70, "Yb", 173.05, 1.87, 3, 1.13, 6, 3},
	{71, "Lu", 174.97, 1.87, 3, 1.13, 6, 3},
	{72, "Hf", 178.49, 1.75, 4, 1.16, 6, 4},
	{73, "Ta", 180.95, 1.70, 5, 1.34, 6, 5},
	{74, "W", 183.84, 1.62, 6, 1.47, 6, 6},
	{75, "Re", 186.21, 1.51, 7, 1.60, 6, 7},
	{76, "Os", 190.23, 1.44, 8, 1.65, 6, 8},
	{77, "Ir", 192.22, 1.41, 9, 1.68, 6, 9},
	{78, "Pt", 195.08, 1.36, 10, 1.72, 6, 10},
	{79, "Au", 196.97, 1.36, 11, 1.92, 6, 11},
	{80, "Hg", 200.59, 1.32, 12, 1.76, 6, 12},
	{81, "Tl", 204.38, 1.45, 3, 1.789, 6, 13},
	{82, "Pb", 207.2, 1.46, 4, 1.854, 6, 14},
	{83, "Bi", 208.98, 1.48, 5, 2.01, 6, 15},
	{84, "Po", 209.0, 1.40, 6, 2.19, 6, 16},
	{85, "At", 210.0, 1.50, 7, 2.39, 6, 17},
	{86, "Rn", 222.0, 1.50, 8, 2.60, 6, 18},
	{87, "Fr", 223.0, 2.60, 1, 0.67, 7, 1},
	{88, "Ra", 226.0, 2.21, 2, 0.89, 7, 2},
	{89, "Ac", 227.0, 2.15, 3, 1.10, 7, 3},
	{90, "Th", 232.04, 2.06, 3, 1.11, 7, 3},
	{91, "Pa", 231.04, 2.00, 3, 1.14, 7, 3},
	{92, "U", 238.03, 1.96, 3, 1.22, 7, 3},
	{93, "Np", 237.0, 1.90, 3, 1.22, 7, 3},
	{94, "Pu", 244.0, 1.87, 3, 1.22, 7, 3},
	{95, "Am", 243.0, 1.80, 3, 1.2, 7, 3},
	{96, "Cm", 247.0, 1.69, 3, 1.2, 7, 3},
	{97, "Bk", 247.0, 1.68, 3, 1.2, 7, 3},
	{98, "Cf", 251.0, 1.68, 3, 1.2, 7, 3},
	{99, "Es", 252.0, 1.65, 3, 1.2, 7, 3},
	{100, "Fm", 257.0, 1.67, 3, 1.2, 7, 3},
	{101, "Md", 258.0, 1.73, 3, 1.2, 7, 3},
	{102, "No", 259.0, 1.76, 3, 1.2, 7, 3},
	{103, "Lr", 262.0, 1.61, 3, 1.2, 7, 3},
	{104, "Rf", 267.0, 1.57, 4, 0, 7, 4},
	{105, "Db", 268.0, 1.49, 5, 0, 7, 5},
	{106, "Sg", 269.0, 1.43, 6, 0, 7, 6},
	{107, "Bh", 270.0, 1.41, 7, 0, 7, 7},
	{108, "Hs", 277.0, 1.34, 8, 0, 7, 8},
	{109, "Mt", 278.0, 1.29, 9, 0, 7, 9},
	{110, "Ds", 281.0, 1.28, 10, 0, 7, 10},
	{111, "Rg", 282.0, 1.21, 11, 0, 7, 11},
	{112, "Cn", 285.0, 1.22, 12, 0, 7, 12},
	{113, "Nh", 286.0, 1.36, 3, 0, 7, 13},
	{114, "Fl", 289.0, 1.43, 4, 0, 7, 14},
	{115, "Mc", 290.0, 1.62, 5, 0, 7, 15},
	{116, "Lv", 293.0, 1.75, 6, 0, 7, 16},
	{117, "Ts", 294.0, 1.65, 7, 0, 7, 17},
	{118, "Og", 294.0, 1.57, 8, 0, 7, 18},
}

var symbolToZ map[string]int

func init() {
	symbolToZ = make(map[string]int, len(elements))
	for _, e := range elements[1:] {
		symbolToZ[strings.ToUpper(e.Symbol)] = e.Z
	}
}

// ElementData returns the data for the element with atomic number z.
// Out-of-range z yields the zero-valued "virtual" element.
func ElementData(z int) Element {
	if z < 0 || z >= len(elements) {
		return elements[0]
	}
	return elements[z]
}

// ElementForSymbol returns the atomic number for a case-insensitive
// element symbol.
func ElementForSymbol(symbol string) (int, error) {
	z, ok := symbolToZ[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return 0, newError(ErrLookup, "no element with symbol "+symbol)
	}
	return z, nil
}

// MassForElement returns the tabulated mass for atomic number z, 0 if unknown.
func MassForElement(z int) float64 { return ElementData(z).Mass }

// RadiusForElement returns the covalent radius for z, 0 if unknown.
func RadiusForElement(z int) float64 { return ElementData(z).Radius }

// PeriodForElement returns the period for z, 0 if unknown.
func PeriodForElement(z int) int { return ElementData(z).Period }

// GroupForElement returns the group (1-18) for z, 0 if unknown.
func GroupForElement(z int) int { return ElementData(z).Group }

// ElectronegativityForElement returns the Allen-scale electronegativity.
func ElectronegativityForElement(z int) float64 { return ElementData(z).Eneg }

// AbbreviationForElement returns the symbol for atomic number z, "" if unknown.
func AbbreviationForElement(z int) string { return ElementData(z).Symbol }

// GuessAtomicNumber returns the atomic number of the element whose
// tabulated mass is closest to the given one, breaking ties in favor
// of the lower atomic number. Masses below half the mass of hydrogen
// (virtual sites, drude particles) map to 0.
func GuessAtomicNumber(mass float64) int {
	if mass < elements[1].Mass/2 {
		return 0
	}
	best := 1
	bestd := math.Abs(mass - elements[1].Mass)
	for z := 2; z < len(elements); z++ {
		d := math.Abs(mass - elements[z].Mass)
		if d < bestd {
			best = z
			bestd = d
		}
	}
	return best
}
