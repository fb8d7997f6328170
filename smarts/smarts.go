// Package smarts matches a practical subset of the SMARTS pattern
// language against molsys systems. Supported are the organic-subset
// element symbols, aromatic lowercase symbols, wildcards, bracket
// expressions with negation and and/or logic, charge, hydrogen count,
// degree, connectivity and ring membership primitives, ring-closure
// digits, branches and the -, =, #, :, ~, @ bond symbols. Unsupported
// constructs (isotopes, chirality, directional bonds) are skipped and
// reported through Warnings.
package smarts

import (
	"fmt"
	"strings"

	"github.com/molsuite/molsys"
)

// Pattern is a compiled SMARTS expression.
type Pattern struct {
	src      string
	atoms    []atomPred
	bonds    []patBond
	adj      [][]int // pattern atom -> incident pattern bond indices
	warnings []string
}

type patBond struct {
	i, j int
	pred bondPred
}

type atomPred func(a *annot, id int) bool
type bondPred func(a *annot, bid int) bool

// Parse compiles a SMARTS string.
func Parse(src string) (*Pattern, error) {
	p := &parser{src: src, pat: &Pattern{src: src}}
	if err := p.run(); err != nil {
		return nil, err
	}
	pat := p.pat
	pat.adj = make([][]int, len(pat.atoms))
	for bi, b := range pat.bonds {
		pat.adj[b.i] = append(pat.adj[b.i], bi)
		pat.adj[b.j] = append(pat.adj[b.j], bi)
	}
	return pat, nil
}

// Source returns the pattern text this was compiled from.
func (p *Pattern) Source() string { return p.src }

// AtomCount returns the number of atoms in the pattern.
func (p *Pattern) AtomCount() int { return len(p.atoms) }

// Warnings lists the constructs the compiler had to skip.
func (p *Pattern) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

// Match reports whether the pattern occurs anywhere in the system.
// The system should have been analyzed so aromaticity flags are set.
func (p *Pattern) Match(s *molsys.System) bool {
	return len(p.findMatches(s, nil, true)) > 0
}

// FindMatches returns every distinct embedding of the pattern whose
// first pattern atom lands on one of the start atoms (nil means every
// atom). Each match lists the matched atom ids in pattern-atom order.
func (p *Pattern) FindMatches(s *molsys.System, starts []int) [][]int {
	return p.findMatches(s, starts, false)
}

// annot carries the per-system facts the predicates consult.
type annot struct {
	sys      *molsys.System
	hcount   map[int]int
	inRing   map[int]bool
	ringBond map[int]bool
}

func annotate(s *molsys.System) *annot {
	a := &annot{
		sys:      s,
		hcount:   make(map[int]int),
		inRing:   make(map[int]bool),
		ringBond: make(map[int]bool),
	}
	for _, id := range s.Atoms() {
		for _, nb := range s.BondedAtoms(id) {
			if s.Atom(nb).AtomicNumber == 1 {
				a.hcount[id]++
			}
		}
	}
	for _, ring := range molsys.GetSSSR(s, nil, true) {
		for i := range ring {
			a.inRing[ring[i]] = true
			if b := s.FindBond(ring[i], ring[(i+1)%len(ring)]); b >= 0 {
				a.ringBond[b] = true
			}
		}
	}
	return a
}

func (p *Pattern) findMatches(s *molsys.System, starts []int, firstOnly bool) [][]int {
	if len(p.atoms) == 0 {
		return nil
	}
	ctx := annotate(s)
	if starts == nil {
		starts = s.Atoms()
	}

	// pattern atoms in DFS order from atom 0 so each new atom after the
	// first connects to an already mapped one
	order := make([]int, 0, len(p.atoms))
	anchor := make([]int, len(p.atoms)) // bond joining atom to the mapped part
	seen := make([]bool, len(p.atoms))
	var dfs func(int)
	dfs = func(pa int) {
		seen[pa] = true
		order = append(order, pa)
		for _, bi := range p.adj[pa] {
			b := p.bonds[bi]
			o := b.j
			if o == pa {
				o = b.i
			}
			if !seen[o] {
				anchor[o] = bi
				dfs(o)
			}
		}
	}
	anchor[0] = -1
	dfs(0)
	if len(order) != len(p.atoms) {
		// disconnected pattern components never match
		return nil
	}

	var out [][]int
	dedup := make(map[string]bool)
	assign := make([]int, len(p.atoms))
	used := make(map[int]bool)

	var rec func(depth int) bool
	rec = func(depth int) bool {
		if depth == len(order) {
			m := append([]int(nil), assign...)
			k := fmt.Sprint(m)
			if !dedup[k] {
				dedup[k] = true
				out = append(out, m)
			}
			return firstOnly
		}
		pa := order[depth]
		var candidates []int
		if depth == 0 {
			candidates = starts
		} else {
			b := p.bonds[anchor[pa]]
			from := b.i
			if from == pa {
				from = b.j
			}
			candidates = s.BondedAtoms(assign[from])
		}
		for _, cand := range candidates {
			if used[cand] || !s.HasAtom(cand) || !p.atoms[pa](ctx, cand) {
				continue
			}
			ok := true
			for _, bi := range p.adj[pa] {
				b := p.bonds[bi]
				o := b.j
				if o == pa {
					o = b.i
				}
				if !seen2(order, depth, o) {
					continue
				}
				sysBond := s.FindBond(cand, assign[o])
				if sysBond < 0 || !b.pred(ctx, sysBond) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			assign[pa] = cand
			used[cand] = true
			if rec(depth + 1) {
				return true
			}
			delete(used, cand)
		}
		return false
	}
	rec(0)
	return out
}

// seen2 reports whether pattern atom pa was mapped before depth.
func seen2(order []int, depth, pa int) bool {
	for i := 0; i < depth; i++ {
		if order[i] == pa {
			return true
		}
	}
	return false
}

// predicates

func predElement(z int, aromaticOnly, aliphaticOnly bool) atomPred {
	return func(a *annot, id int) bool {
		at := a.sys.Atom(id)
		if at.AtomicNumber != z {
			return false
		}
		if aromaticOnly && !at.Aromatic {
			return false
		}
		if aliphaticOnly && at.Aromatic {
			return false
		}
		return true
	}
}

func predAnyAtom(a *annot, id int) bool { return true }

func predAromaticAtom(a *annot, id int) bool { return a.sys.Atom(id).Aromatic }

func predAliphaticAtom(a *annot, id int) bool { return !a.sys.Atom(id).Aromatic }

func predCharge(q int) atomPred {
	return func(a *annot, id int) bool { return a.sys.Atom(id).FormalCharge == q }
}

func predHCount(n int) atomPred {
	return func(a *annot, id int) bool { return a.hcount[id] == n }
}

func predDegree(n int) atomPred {
	return func(a *annot, id int) bool { return len(a.sys.BondedAtoms(id)) == n }
}

func predConnectivity(n int) atomPred {
	// explicit hydrogens throughout, so X collapses to total degree
	return predDegree(n)
}

func predInRing(a *annot, id int) bool { return a.inRing[id] }

func predNot(p atomPred) atomPred {
	return func(a *annot, id int) bool { return !p(a, id) }
}

func predAnd(ps []atomPred) atomPred {
	if len(ps) == 1 {
		return ps[0]
	}
	return func(a *annot, id int) bool {
		for _, p := range ps {
			if !p(a, id) {
				return false
			}
		}
		return true
	}
}

func predOr(ps []atomPred) atomPred {
	if len(ps) == 1 {
		return ps[0]
	}
	return func(a *annot, id int) bool {
		for _, p := range ps {
			if p(a, id) {
				return true
			}
		}
		return false
	}
}

func bondAny(a *annot, bid int) bool { return true }

func bondDefault(a *annot, bid int) bool {
	b := a.sys.Bond(bid)
	return b.Aromatic || b.Order == 1
}

func bondOrder(o int) bondPred {
	return func(a *annot, bid int) bool {
		b := a.sys.Bond(bid)
		return !b.Aromatic && b.Order == o
	}
}

func bondAromatic(a *annot, bid int) bool { return a.sys.Bond(bid).Aromatic }

func bondInRing(a *annot, bid int) bool { return a.ringBond[bid] }

// parser

type parser struct {
	src string
	pos int
	pat *Pattern

	prev     int // pattern atom the next bond attaches to
	pending  bondPred
	hasBond  bool
	branches []int
	rings    map[int]ringOpen
}

type ringOpen struct {
	atom int
	pred bondPred
	has  bool
}

func (p *parser) errf(format string, args ...interface{}) error {
	return molsys.Errorf(molsys.ErrParse,
		"smarts %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) warn(format string, args ...interface{}) {
	p.pat.warnings = append(p.pat.warnings, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() byte {
	c := p.peek()
	p.pos++
	return c
}

func (p *parser) number() (int, bool) {
	start := p.pos
	for p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n := 0
	for _, c := range p.src[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (p *parser) run() error {
	p.prev = -1
	p.rings = make(map[int]ringOpen)
	for p.pos < len(p.src) {
		c := p.peek()
		switch {
		case c == '(':
			p.pos++
			if p.prev < 0 {
				return p.errf("branch before any atom")
			}
			p.branches = append(p.branches, p.prev)
		case c == ')':
			p.pos++
			if len(p.branches) == 0 {
				return p.errf("unbalanced ')'")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
		case c == '-' || c == '=' || c == '#' || c == ':' || c == '~' || c == '@':
			p.pos++
			if p.prev < 0 {
				return p.errf("bond symbol before any atom")
			}
			if p.hasBond {
				return p.errf("two bond symbols in a row")
			}
			p.pending = bondSymbol(c)
			p.hasBond = true
		case c == '/' || c == '\\':
			p.pos++
			if p.prev < 0 {
				return p.errf("bond symbol before any atom")
			}
			p.warn("directional bond %q treated as single", string(c))
			p.pending = bondOrder(1)
			p.hasBond = true
		case c == '.':
			return p.errf("disconnected patterns are not supported")
		case c >= '0' && c <= '9':
			p.pos++
			if err := p.ringDigit(int(c - '0')); err != nil {
				return err
			}
		case c == '%':
			p.pos++
			n, ok := p.number()
			if !ok {
				return p.errf("'%%' needs a ring number")
			}
			if err := p.ringDigit(n); err != nil {
				return err
			}
		case c == '[':
			p.pos++
			pred, err := p.bracket()
			if err != nil {
				return err
			}
			p.placeAtom(pred)
		default:
			pred, err := p.bareAtom()
			if err != nil {
				return err
			}
			p.placeAtom(pred)
		}
	}
	if len(p.branches) > 0 {
		return p.errf("unbalanced '('")
	}
	if p.hasBond {
		return p.errf("dangling bond symbol")
	}
	for n := range p.rings {
		return p.errf("unclosed ring bond %d", n)
	}
	return nil
}

func bondSymbol(c byte) bondPred {
	switch c {
	case '=':
		return bondOrder(2)
	case '#':
		return bondOrder(3)
	case ':':
		return bondAromatic
	case '~':
		return bondAny
	case '@':
		return bondInRing
	}
	return bondOrder(1)
}

func (p *parser) takeBond() bondPred {
	if p.hasBond {
		p.hasBond = false
		return p.pending
	}
	return bondDefault
}

func (p *parser) placeAtom(pred atomPred) {
	id := len(p.pat.atoms)
	p.pat.atoms = append(p.pat.atoms, pred)
	if p.prev >= 0 {
		p.pat.bonds = append(p.pat.bonds, patBond{i: p.prev, j: id, pred: p.takeBond()})
	} else {
		p.hasBond = false
	}
	p.prev = id
}

func (p *parser) ringDigit(n int) error {
	if p.prev < 0 {
		return p.errf("ring bond before any atom")
	}
	if open, ok := p.rings[n]; ok {
		pred := bondDefault
		switch {
		case open.has && p.hasBond:
			return p.errf("ring bond %d has a symbol at both ends", n)
		case open.has:
			pred = open.pred
		case p.hasBond:
			pred = p.takeBond()
		}
		p.hasBond = false
		p.pat.bonds = append(p.pat.bonds, patBond{i: open.atom, j: p.prev, pred: pred})
		delete(p.rings, n)
		return nil
	}
	open := ringOpen{atom: p.prev}
	if p.hasBond {
		open.pred = p.takeBond()
		open.has = true
	}
	p.rings[n] = open
	return nil
}

// organic-subset symbols usable outside brackets
var organic = []struct {
	sym      string
	z        int
	aromatic bool
}{
	{"Cl", 17, false}, {"Br", 35, false},
	{"B", 5, false}, {"C", 6, false}, {"N", 7, false}, {"O", 8, false},
	{"P", 15, false}, {"S", 16, false}, {"F", 9, false}, {"I", 53, false},
	{"b", 5, true}, {"c", 6, true}, {"n", 7, true}, {"o", 8, true},
	{"p", 15, true}, {"s", 16, true},
}

func (p *parser) bareAtom() (atomPred, error) {
	rest := p.src[p.pos:]
	switch {
	case rest[0] == '*':
		p.pos++
		return predAnyAtom, nil
	case rest[0] == 'a':
		p.pos++
		return predAromaticAtom, nil
	case rest[0] == 'A':
		p.pos++
		return predAliphaticAtom, nil
	}
	for _, o := range organic {
		if strings.HasPrefix(rest, o.sym) {
			p.pos += len(o.sym)
			return predElement(o.z, o.aromatic, !o.aromatic), nil
		}
	}
	return nil, p.errf("unexpected character %q", string(rest[0]))
}

// bracket parses a [...] expression: comma-separated alternatives of
// &-joined (or juxtaposed) primitives, each optionally negated.
func (p *parser) bracket() (atomPred, error) {
	var alternatives []atomPred
	var conj []atomPred
	closeAlt := func() error {
		if len(conj) == 0 {
			return p.errf("empty bracket alternative")
		}
		alternatives = append(alternatives, predAnd(conj))
		conj = nil
		return nil
	}
	for {
		c := p.peek()
		switch c {
		case 0:
			return nil, p.errf("unterminated bracket expression")
		case ']':
			p.pos++
			if err := closeAlt(); err != nil {
				return nil, err
			}
			return predOr(alternatives), nil
		case ',':
			p.pos++
			if err := closeAlt(); err != nil {
				return nil, err
			}
		case '&', ';':
			p.pos++
		default:
			neg := false
			if c == '!' {
				p.pos++
				neg = true
			}
			prim, err := p.primitive()
			if err != nil {
				return nil, err
			}
			if prim != nil {
				if neg {
					prim = predNot(prim)
				}
				conj = append(conj, prim)
			} else if neg {
				return nil, p.errf("'!' applied to an ignored primitive")
			}
		}
	}
}

// primitive parses one bracket primitive. A nil predicate with no error
// means the construct was recognized and deliberately ignored.
func (p *parser) primitive() (atomPred, error) {
	c := p.peek()
	switch {
	case c == '#':
		p.pos++
		z, ok := p.number()
		if !ok {
			return nil, p.errf("'#' needs an atomic number")
		}
		return predElement(z, false, false), nil
	case c == '*':
		p.pos++
		return predAnyAtom, nil
	case c == '+' || c == '-':
		p.pos++
		sign := 1
		if c == '-' {
			sign = -1
		}
		q := 1
		if n, ok := p.number(); ok {
			q = n
		} else {
			for p.peek() == c {
				p.pos++
				q++
			}
		}
		return predCharge(sign * q), nil
	case c == 'H':
		// two-letter symbols starting with H bind first
		for _, sym := range []string{"He", "Hf", "Hg", "Ho", "Hs"} {
			if strings.HasPrefix(p.src[p.pos:], sym) {
				return p.symbolPrimitive()
			}
		}
		p.pos++
		n := 1
		if v, ok := p.number(); ok {
			n = v
		}
		return predHCount(n), nil
	case c == 'D':
		if strings.HasPrefix(p.src[p.pos:], "Db") || strings.HasPrefix(p.src[p.pos:], "Ds") || strings.HasPrefix(p.src[p.pos:], "Dy") {
			return p.symbolPrimitive()
		}
		p.pos++
		n := 1
		if v, ok := p.number(); ok {
			n = v
		}
		return predDegree(n), nil
	case c == 'X':
		if strings.HasPrefix(p.src[p.pos:], "Xe") {
			return p.symbolPrimitive()
		}
		p.pos++
		n := 1
		if v, ok := p.number(); ok {
			n = v
		}
		return predConnectivity(n), nil
	case c == 'R':
		for _, sym := range []string{"Ra", "Rb", "Re", "Rf", "Rg", "Rh", "Rn", "Ru"} {
			if strings.HasPrefix(p.src[p.pos:], sym) {
				return p.symbolPrimitive()
			}
		}
		p.pos++
		if n, ok := p.number(); ok && n == 0 {
			return predNot(predInRing), nil
		}
		return predInRing, nil
	case c == 'r':
		p.pos++
		if _, ok := p.number(); ok {
			p.warn("ring-size primitive 'r<n>' matched as plain ring membership")
		}
		return predInRing, nil
	case c == 'a':
		p.pos++
		return predAromaticAtom, nil
	case c == 'A':
		for _, sym := range []string{"Ac", "Ag", "Al", "Am", "Ar", "As", "At", "Au"} {
			if strings.HasPrefix(p.src[p.pos:], sym) {
				return p.symbolPrimitive()
			}
		}
		p.pos++
		return predAliphaticAtom, nil
	case c == '@':
		p.pos++
		if p.peek() == '@' {
			p.pos++
		}
		p.warn("chirality specification ignored")
		return nil, nil
	case c >= '0' && c <= '9':
		p.number()
		p.warn("isotope specification ignored")
		return nil, nil
	case c >= 'a' && c <= 'z':
		p.pos++
		for _, o := range organic {
			if o.aromatic && o.sym == string(c) {
				return predElement(o.z, true, false), nil
			}
		}
		return nil, p.errf("unknown aromatic symbol %q", string(c))
	case c >= 'A' && c <= 'Z':
		return p.symbolPrimitive()
	}
	return nil, p.errf("unexpected character %q in brackets", string(c))
}

// symbolPrimitive consumes an element symbol written in brackets.
func (p *parser) symbolPrimitive() (atomPred, error) {
	rest := p.src[p.pos:]
	sym := rest[:1]
	if len(rest) > 1 && rest[1] >= 'a' && rest[1] <= 'z' {
		two := rest[:2]
		if _, err := molsys.ElementForSymbol(two); err == nil {
			sym = two
		}
	}
	z, err := molsys.ElementForSymbol(sym)
	if err != nil {
		return nil, p.errf("unknown element symbol %q", sym)
	}
	p.pos += len(sym)
	return predElement(z, false, true), nil
}
