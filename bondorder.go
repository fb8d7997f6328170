/*
 * bondorder.go, part of molsys.
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

	"go.uber.org/zap"
)

// AssignFlags selects optional behavior of the bond-order assignment.
type AssignFlags uint

const (
	// ComputeResonantCharges averages bond orders and formal charges
	// over all equally optimal assignments of each fragment.
	ComputeResonantCharges AssignFlags = 1 << iota
)

// TotalChargeUnspecified asks AssignBondOrderAndFormalCharge to infer
// the total charge instead of constraining it.
const TotalChargeUnspecified = math.MaxInt

// resonanceCap bounds the enumeration of equally optimal assignments.
// Fused-ring pathologies can blow past any bound; we truncate and log.
const resonanceCap = 256

const costEps = 1e-9

// AssignBondOrderAndFormalCharge assigns every bond among the given
// atoms (nil means all) an integer order in {1,2,3} and every such
// atom a formal charge, minimizing an objective that penalizes
// non-zero charges, charges on the wrong side of electronegativity,
// and non-preferred valence patterns. When totalCharge is not
// TotalChargeUnspecified the formal charges are constrained to sum to
// it. Fragments are solved independently; a failed fragment is left
// untouched and reported.
func AssignBondOrderAndFormalCharge(s *System, atoms []int, totalCharge int, flags AssignFlags) error {
	in := atomSubset(s, atoms)
	s.UpdateFragids()

	// group the subset by fragment
	byFrag := make(map[int][]int)
	for _, a := range sortedKeys(in) {
		if s.Atom(a).AtomicNumber == 0 {
			continue
		}
		byFrag[s.Fragid(a)] = append(byFrag[s.Fragid(a)], a)
	}
	frags := make([]int, 0, len(byFrag))
	for f := range byFrag {
		frags = append(frags, f)
	}
	sort.Ints(frags)

	problems := make([]*boProblem, 0, len(frags))
	for _, f := range frags {
		problems = append(problems, newBOProblem(s, f, byFrag[f]))
	}

	wantAll := flags&ComputeResonantCharges != 0

	if totalCharge == TotalChargeUnspecified || len(problems) <= 1 {
		for _, p := range problems {
			target := TotalChargeUnspecified
			if totalCharge != TotalChargeUnspecified {
				target = totalCharge
			}
			sols, _, err := p.solve(target, wantAll)
			if err != nil {
				return err
			}
			p.commit(sols, wantAll)
		}
		return nil
	}

	// several fragments under one total charge: build a small
	// cost-versus-charge profile per fragment, then split the charge
	// budget across fragments by dynamic programming.
	return assignAcrossFragments(s, problems, totalCharge, wantAll)
}

const fragmentChargeWindow = 3

func assignAcrossFragments(s *System, problems []*boProblem, totalCharge int, wantAll bool) error {
	type entry struct {
		sols []boSolution
		cost float64
	}
	profiles := make([]map[int]entry, len(problems))
	for i, p := range problems {
		sols, cost, err := p.solve(TotalChargeUnspecified, wantAll)
		if err != nil {
			return err
		}
		free := sols[0].totalCharge()
		profiles[i] = map[int]entry{free: {sols: sols, cost: cost}}
		for dq := -fragmentChargeWindow; dq <= fragmentChargeWindow; dq++ {
			q := free + dq
			if dq == 0 {
				continue
			}
			if qsols, qcost, err := p.solve(q, wantAll); err == nil {
				profiles[i][q] = entry{sols: qsols, cost: qcost}
			}
		}
	}
	type state struct {
		cost float64
		pick int
	}
	dp := []map[int]state{{0: {}}}
	for i := range problems {
		next := make(map[int]state)
		for q, st := range dp[i] {
			for fq, e := range profiles[i] {
				nq := q + fq
				nc := st.cost + e.cost
				if old, ok := next[nq]; !ok || nc < old.cost {
					next[nq] = state{cost: nc, pick: fq}
				}
			}
		}
		dp = append(dp, next)
	}
	if _, ok := dp[len(problems)][totalCharge]; !ok {
		return errorf(ErrInfeasible, "no assignment reaches total charge %d across %d fragments", totalCharge, len(problems))
	}
	q := totalCharge
	picks := make([]int, len(problems))
	for i := len(problems) - 1; i >= 0; i-- {
		picks[i] = dp[i+1][q].pick
		q -= picks[i]
	}
	for i, p := range problems {
		e := profiles[i][picks[i]]
		p.commit(e.sols, wantAll)
	}
	return nil
}

type chargeOption struct {
	q    int
	cost float64
}

// chargeOptions returns the allowed formal charges, with penalties,
// for an atom of element z whose incident bond orders sum to bsum.
func chargeOptions(z, bsum int) []chargeOption {
	el := ElementData(z)
	ve := el.NVal
	var octets []int
	switch {
	case el.Period <= 1:
		octets = []int{2}
	case el.Period == 2:
		octets = []int{8, 6}
	default:
		octets = []int{8, 10, 12, 6}
	}
	best := make(map[int]float64)
	for _, o := range octets {
		lone := o - 2*bsum
		if lone < 0 {
			continue
		}
		q := ve + bsum - o
		if q < -3 || q > 3 {
			continue
		}
		c := chargeCost(el, q) + octetCost(o)
		if old, ok := best[q]; !ok || c < old {
			best[q] = c
		}
	}
	// bare ionic state for metals: all valence electrons given up
	if el.Period >= 2 && (el.Group <= 2 || (el.Group >= 3 && el.Group <= 12)) {
		q := ve - bsum
		if q >= -3 && q <= 3 {
			c := chargeCost(el, q) + 1
			if old, ok := best[q]; !ok || c < old {
				best[q] = c
			}
		}
	}
	out := make([]chargeOption, 0, len(best))
	for q, c := range best {
		out = append(out, chargeOption{q: q, cost: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].cost != out[j].cost {
			return out[i].cost < out[j].cost
		}
		return out[i].q < out[j].q
	})
	return out
}

func chargeCost(el Element, q int) float64 {
	if q == 0 {
		return 0
	}
	c := 10 * float64(q*q)
	if q > 0 {
		c += 2 * el.Eneg * float64(q)
	} else {
		c += 2 * (4.2 - el.Eneg) * float64(-q)
	}
	return c
}

func octetCost(o int) float64 {
	d := o - 8
	if d < 0 {
		d = -d
	}
	return 4 * float64(d)
}

func bondCost(order int) float64 {
	return 0.01 * float64(order-1)
}

// boSolution is one complete assignment for a fragment.
type boSolution struct {
	orders  []int // per problem bond
	charges []int // per problem atom
}

func (sol *boSolution) totalCharge() int {
	t := 0
	for _, q := range sol.charges {
		t += q
	}
	return t
}

// boProblem is the per-fragment integer program: orders in {1,2,3} per
// bond, charges per atom, linear valence constraints per atom.
type boProblem struct {
	s      *System
	frag   int
	atoms  []int
	bonds  []int
	bondAt [][2]int // local atom indices per bond
	atomBs [][]int  // local bond indices per atom
	extSum []int    // fixed order sum from bonds outside the problem
	maxSum []int
}

func newBOProblem(s *System, frag int, atoms []int) *boProblem {
	p := &boProblem{s: s, frag: frag, atoms: atoms}
	local := make(map[int]int, len(atoms))
	for i, a := range atoms {
		local[a] = i
	}
	p.atomBs = make([][]int, len(atoms))
	p.extSum = make([]int, len(atoms))
	p.maxSum = make([]int, len(atoms))
	seen := make(map[int]bool)
	for i, a := range atoms {
		for _, bid := range s.FilteredBondsForAtom(a) {
			o := s.Bond(bid).Other(a)
			if _, ok := local[o]; !ok {
				p.extSum[i] += s.Bond(bid).Order
				continue
			}
			if !seen[bid] {
				seen[bid] = true
				j := local[o]
				p.bondAt = append(p.bondAt, [2]int{i, j})
				p.bonds = append(p.bonds, bid)
			}
		}
		el := ElementData(s.Atom(a).AtomicNumber)
		switch {
		case el.Period <= 1:
			p.maxSum[i] = 1
		case el.Period == 2:
			p.maxSum[i] = 4
		default:
			p.maxSum[i] = 6
		}
	}
	for bi, ba := range p.bondAt {
		p.atomBs[ba[0]] = append(p.atomBs[ba[0]], bi)
		p.atomBs[ba[1]] = append(p.atomBs[ba[1]], bi)
	}
	return p
}

// solve runs branch and bound over the bond orders. target is the
// fragment's total charge, or TotalChargeUnspecified. With wantAll,
// every cost-optimal assignment is returned (capped); otherwise just
// one.
func (p *boProblem) solve(target int, wantAll bool) ([]boSolution, float64, error) {
	n := len(p.bonds)
	orders := make([]int, n)
	remaining := make([]int, len(p.atoms))
	sums := make([]int, len(p.atoms))
	for i := range p.atoms {
		remaining[i] = len(p.atomBs[i])
		sums[i] = p.extSum[i]
	}

	best := math.Inf(1)
	var solutions []boSolution
	truncated := false

	var descend func(bi int, bondAcc float64)
	descend = func(bi int, bondAcc float64) {
		if bondAcc-costEps > best {
			return
		}
		if bi == n {
			charges, cost, ok := p.selectCharges(sums, target)
			if !ok {
				return
			}
			total := bondAcc + cost
			switch {
			case total < best-costEps:
				best = total
				solutions = solutions[:0]
				solutions = append(solutions, boSolution{
					orders:  append([]int(nil), orders...),
					charges: charges,
				})
			case total <= best+costEps && wantAll:
				if len(solutions) >= resonanceCap {
					truncated = true
					return
				}
				solutions = append(solutions, boSolution{
					orders:  append([]int(nil), orders...),
					charges: charges,
				})
			}
			return
		}
		ai, aj := p.bondAt[bi][0], p.bondAt[bi][1]
		for o := 1; o <= 3; o++ {
			if sums[ai]+o > p.maxSum[ai] || sums[aj]+o > p.maxSum[aj] {
				continue
			}
			orders[bi] = o
			sums[ai] += o
			sums[aj] += o
			remaining[ai]--
			remaining[aj]--
			feasible := true
			for _, a := range [2]int{ai, aj} {
				if remaining[a] == 0 && len(chargeOptions(p.s.Atom(p.atoms[a]).AtomicNumber, sums[a])) == 0 {
					feasible = false
					break
				}
			}
			if feasible {
				descend(bi+1, bondAcc+bondCost(o))
			}
			remaining[ai]++
			remaining[aj]++
			sums[ai] -= o
			sums[aj] -= o
			orders[bi] = 0
		}
	}
	descend(0, 0)

	if truncated {
		logger.Warn("resonance enumeration truncated",
			zap.Int("fragment", p.frag), zap.Int("cap", resonanceCap))
	}
	if len(solutions) == 0 {
		if target != TotalChargeUnspecified {
			return nil, 0, errorf(ErrInfeasible,
				"fragment %d: no bond-order assignment reaches total charge %d", p.frag, target)
		}
		return nil, 0, errorf(ErrInfeasible,
			"fragment %d: no feasible bond-order assignment", p.frag)
	}
	return solutions, best, nil
}

// selectCharges picks a formal charge per atom for fixed bond orders,
// minimizing the summed penalty, optionally constrained to a total.
func (p *boProblem) selectCharges(sums []int, target int) ([]int, float64, bool) {
	opts := make([][]chargeOption, len(p.atoms))
	for i, a := range p.atoms {
		opts[i] = chargeOptions(p.s.Atom(a).AtomicNumber, sums[i])
		if len(opts[i]) == 0 {
			return nil, 0, false
		}
	}
	charges := make([]int, len(p.atoms))
	if target == TotalChargeUnspecified {
		cost := 0.0
		for i, o := range opts {
			charges[i] = o[0].q
			cost += o[0].cost
		}
		return charges, cost, true
	}
	// knapsack over the running charge total
	type st struct {
		cost float64
		pick int
	}
	dp := []map[int]st{{0: {}}}
	for i := range opts {
		next := make(map[int]st)
		for q, cur := range dp[i] {
			for _, o := range opts[i] {
				nq := q + o.q
				nc := cur.cost + o.cost
				if old, ok := next[nq]; !ok || nc < old.cost {
					next[nq] = st{cost: nc, pick: o.q}
				}
			}
		}
		dp = append(dp, next)
	}
	fin, ok := dp[len(opts)][target]
	if !ok {
		return nil, 0, false
	}
	q := target
	for i := len(opts) - 1; i >= 0; i-- {
		charges[i] = dp[i+1][q].pick
		q -= charges[i]
	}
	return charges, fin.cost, true
}

// commit writes a solved fragment back into the system. With resonance
// averaging the mean over all optimal solutions lands in the bonds'
// Resonant order and the atoms' ResonantCharge.
func (p *boProblem) commit(sols []boSolution, wantAll bool) {
	first := sols[0]
	for bi, bid := range p.bonds {
		b := p.s.Bond(bid)
		b.Order = first.orders[bi]
		b.Resonant = float64(first.orders[bi])
	}
	for i, a := range p.atoms {
		at := p.s.Atom(a)
		at.FormalCharge = first.charges[i]
		at.ResonantCharge = float64(first.charges[i])
	}
	if wantAll && len(sols) > 1 {
		inv := 1.0 / float64(len(sols))
		for bi, bid := range p.bonds {
			sum := 0.0
			for _, sol := range sols {
				sum += float64(sol.orders[bi])
			}
			p.s.Bond(bid).Resonant = sum * inv
		}
		for i, a := range p.atoms {
			sum := 0.0
			for _, sol := range sols {
				sum += float64(sol.charges[i])
			}
			p.s.Atom(a).ResonantCharge = sum * inv
		}
	}
}
