// Package amber reads Amber prmtop topology files into a molsys
// System, translating the fixed-format sections into the parameter
// and term tables the rest of the library works with.
package amber

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/molsuite/molsys"
)

// Amber stores charges premultiplied by sqrt(332.0522), the Coulomb
// constant in kcal*A/mol/e^2.
const chargeScale = 18.2223

const (
	defaultScee = 1.2
	defaultScnb = 2.0
	// phases this close to 180 degrees are folded to 0 with the force
	// constant negated, since cos(n*phi - 180) = -cos(n*phi)
	phaseFoldTol = 0.1
	radToDeg     = 180 / math.Pi
)

// Options selects how much of a prmtop to import.
type Options struct {
	// StructureOnly keeps only atoms, bonds, residues and chains.
	StructureOnly bool
	// WithoutTables loads the full structure with charges and types
	// but skips the force-field term tables.
	WithoutTables bool
}

// Load reads the prmtop at path. Gzipped files are detected by their
// magic bytes and decompressed transparently.
func Load(path string, opts Options) (*molsys.System, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, molsys.Errorf(molsys.ErrParse, "open %s: %v", path, err)
	}
	defer fh.Close()
	br := bufio.NewReader(fh)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, molsys.Errorf(molsys.ErrParse, "gzip %s: %v", path, err)
		}
		defer gz.Close()
		return Read(gz, opts)
	}
	return Read(br, opts)
}

// Read parses prmtop content from r.
func Read(r io.Reader, opts Options) (*molsys.System, error) {
	f, err := parseSections(r)
	if err != nil {
		return nil, err
	}
	imp := &importer{file: f, opts: opts, sys: molsys.NewSystem()}
	if err := imp.run(); err != nil {
		return nil, molsys.DecorateError(err, "amber.Read")
	}
	return imp.sys, nil
}

// section is one %FLAG block with its %FORMAT and raw data lines.
type section struct {
	flag  string
	count int
	width int
	kind  byte // 'I', 'E', 'F' or 'a'
	lines []string
}

type prmtop struct {
	sections map[string]*section
}

var formatRe = regexp.MustCompile(`^\((\d*)([aAiIeEfF])(\d+)(?:\.\d+)?\)$`)

func parseSections(r io.Reader) (*prmtop, error) {
	f := &prmtop{sections: make(map[string]*section)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<20)
	var cur *section
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "%VERSION"), strings.HasPrefix(line, "%COMMENT"):
			continue
		case strings.HasPrefix(line, "%FLAG"):
			name := strings.TrimSpace(line[len("%FLAG"):])
			if name == "" {
				return nil, molsys.Errorf(molsys.ErrParse, "line %d: empty %%FLAG", lineno)
			}
			cur = &section{flag: name}
			f.sections[name] = cur
		case strings.HasPrefix(line, "%FORMAT"):
			if cur == nil {
				return nil, molsys.Errorf(molsys.ErrParse, "line %d: %%FORMAT before any %%FLAG", lineno)
			}
			spec := strings.TrimSpace(line[len("%FORMAT"):])
			m := formatRe.FindStringSubmatch(spec)
			if m == nil {
				return nil, molsys.Errorf(molsys.ErrParse, "line %d: bad format %q in section %s", lineno, spec, cur.flag)
			}
			cur.count = 1
			if m[1] != "" {
				cur.count, _ = strconv.Atoi(m[1])
			}
			cur.kind = byte(strings.ToUpper(m[2])[0])
			cur.width, _ = strconv.Atoi(m[3])
		case cur != nil:
			cur.lines = append(cur.lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, molsys.Errorf(molsys.ErrParse, "read: %v", err)
	}
	if len(f.sections) == 0 {
		return nil, molsys.Errorf(molsys.ErrParse, "no %%FLAG sections found")
	}
	return f, nil
}

func (f *prmtop) section(name string) *section {
	return f.sections[name]
}

// fields slices the fixed-width records of a section, up to n of them.
func (s *section) fields(n int) ([]string, error) {
	out := make([]string, 0, n)
	for _, line := range s.lines {
		for off := 0; off+s.width <= len(line) && len(out) < n; off += s.width {
			out = append(out, strings.TrimSpace(line[off:off+s.width]))
		}
		if len(out) >= n {
			break
		}
	}
	if len(out) < n {
		return nil, molsys.Errorf(molsys.ErrParse, "section %s: want %d fields, have %d", s.flag, n, len(out))
	}
	return out, nil
}

func (f *prmtop) ints(name string, n int) ([]int, error) {
	s := f.section(name)
	if s == nil {
		return nil, molsys.Errorf(molsys.ErrLookup, "missing section %s", name)
	}
	raw, err := s.fields(n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, v := range raw {
		out[i], err = strconv.Atoi(v)
		if err != nil {
			return nil, molsys.Errorf(molsys.ErrParse, "section %s field %d: %q is not an integer", name, i, v)
		}
	}
	return out, nil
}

func (f *prmtop) floats(name string, n int) ([]float64, error) {
	s := f.section(name)
	if s == nil {
		return nil, molsys.Errorf(molsys.ErrLookup, "missing section %s", name)
	}
	raw, err := s.fields(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, v := range raw {
		out[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, molsys.Errorf(molsys.ErrParse, "section %s field %d: %q is not a number", name, i, v)
		}
	}
	return out, nil
}

func (f *prmtop) strs(name string, n int) ([]string, error) {
	s := f.section(name)
	if s == nil {
		return nil, molsys.Errorf(molsys.ErrLookup, "missing section %s", name)
	}
	return s.fields(n)
}

// pointer indices into the POINTERS section
const (
	pNatom = iota
	pNtypes
	pNbonh
	pMbona
	pNtheth
	pMtheta
	pNphih
	pMphia
	pNhparm
	pNparm
	pNnb
	pNres
	pNbona
	pNtheta
	pNphia
	pNumbnd
	pNumang
	pNptra
	pNatyp
	pNphb
	pIfpert
	numPointers = 31
)

type importer struct {
	file *prmtop
	opts Options
	sys  *molsys.System

	ptr     []int
	charges []float64
	ztab    []int
	types   []int // 1-based LJ type per atom

	nbidx        []int
	acoef, bcoef []float64
}

// loadLJ caches the nonbonded index matrix and coefficient arrays.
func (im *importer) loadLJ() error {
	if im.nbidx != nil {
		return nil
	}
	ntypes := im.ptr[pNtypes]
	var err error
	if im.nbidx, err = im.file.ints("NONBONDED_PARM_INDEX", ntypes*ntypes); err != nil {
		return err
	}
	ncoef := ntypes * (ntypes + 1) / 2
	if im.acoef, err = im.file.floats("LENNARD_JONES_ACOEF", ncoef); err != nil {
		return err
	}
	im.bcoef, err = im.file.floats("LENNARD_JONES_BCOEF", ncoef)
	return err
}

func (im *importer) run() error {
	ptrs, err := im.file.ints("POINTERS", numPointers)
	if err != nil {
		// very old files stop at NUMEXTRA; retry with the short form
		ptrs, err = im.file.ints("POINTERS", pIfpert+1)
		if err != nil {
			return err
		}
		ptrs = append(ptrs, make([]int, numPointers-len(ptrs))...)
	}
	im.ptr = ptrs
	if im.ptr[pIfpert] > 0 {
		return molsys.Errorf(molsys.ErrUnsupported, "perturbation information (IFPERT=%d)", im.ptr[pIfpert])
	}
	if err := im.checkHbond(); err != nil {
		return err
	}
	if err := im.buildStructure(); err != nil {
		return err
	}
	if err := im.buildBonds(); err != nil {
		return err
	}
	if !im.opts.StructureOnly && !im.opts.WithoutTables {
		if err := im.buildAngles(); err != nil {
			return err
		}
		if err := im.buildDihedrals(); err != nil {
			return err
		}
		if err := im.buildNonbonded(); err != nil {
			return err
		}
		if err := im.buildExclusions(); err != nil {
			return err
		}
		if err := im.buildCmap(); err != nil {
			return err
		}
		im.sys.CoalesceTables()
	}
	return molsys.Analyze(im.sys)
}

// checkHbond tolerates the obsolete 10-12 hydrogen bond sections only
// when every coefficient and cutoff is zero.
func (im *importer) checkHbond() error {
	nphb := im.ptr[pNphb]
	if nphb <= 0 {
		return nil
	}
	for _, name := range []string{"HBOND_ACOEF", "HBOND_BCOEF", "HBCUT"} {
		coefs, err := im.file.floats(name, nphb)
		if err != nil {
			return err
		}
		for _, c := range coefs {
			if c != 0 {
				return molsys.Errorf(molsys.ErrUnsupported, "nonzero 10-12 hydrogen bond parameters in %s", name)
			}
		}
	}
	return nil
}

func (im *importer) buildStructure() error {
	natom := im.ptr[pNatom]
	nres := im.ptr[pNres]
	if natom <= 0 {
		return molsys.Errorf(molsys.ErrParse, "POINTERS: no atoms (NATOM=%d)", natom)
	}

	names, err := im.file.strs("ATOM_NAME", natom)
	if err != nil {
		return err
	}
	masses, err := im.file.floats("MASS", natom)
	if err != nil {
		return err
	}
	charges, err := im.file.floats("CHARGE", natom)
	if err != nil {
		return err
	}
	for i := range charges {
		charges[i] /= chargeScale
	}
	im.charges = charges

	im.ztab = make([]int, natom)
	if im.file.section("ATOMIC_NUMBER") != nil {
		zs, err := im.file.ints("ATOMIC_NUMBER", natom)
		if err != nil {
			return err
		}
		copy(im.ztab, zs)
	}
	for i := range im.ztab {
		if im.ztab[i] <= 0 {
			im.ztab[i] = molsys.GuessAtomicNumber(masses[i])
		}
	}

	var typeNames []string
	if !im.opts.StructureOnly {
		if im.file.section("AMBER_ATOM_TYPE") != nil {
			typeNames, err = im.file.strs("AMBER_ATOM_TYPE", natom)
			if err != nil {
				return err
			}
		}
		if im.file.section("ATOM_TYPE_INDEX") != nil {
			im.types, err = im.file.ints("ATOM_TYPE_INDEX", natom)
			if err != nil {
				return err
			}
		}
	}

	labels, err := im.file.strs("RESIDUE_LABEL", nres)
	if err != nil {
		return err
	}
	starts, err := im.file.ints("RESIDUE_POINTER", nres)
	if err != nil {
		return err
	}

	chain := im.sys.AddChain("")
	for ri := 0; ri < nres; ri++ {
		res, err := im.sys.AddResidue(chain)
		if err != nil {
			return err
		}
		im.sys.Residue(res).Name = labels[ri]
		im.sys.Residue(res).Resid = ri + 1

		first := starts[ri] - 1
		last := natom
		if ri+1 < nres {
			last = starts[ri+1] - 1
		}
		if first < 0 || first > last || last > natom {
			return molsys.Errorf(molsys.ErrParse, "RESIDUE_POINTER: bad range [%d,%d) for residue %d", first, last, ri)
		}
		for ai := first; ai < last; ai++ {
			id, err := im.sys.AddAtom(res)
			if err != nil {
				return err
			}
			a := im.sys.Atom(id)
			a.Name = names[ai]
			a.Mass = masses[ai]
			a.Charge = charges[ai]
			a.AtomicNumber = im.ztab[ai]
			if typeNames != nil {
				a.Type = typeNames[ai]
			}
		}
	}
	if im.sys.AtomCount() != natom {
		return molsys.Errorf(molsys.ErrParse, "RESIDUE_POINTER covers %d of %d atoms", im.sys.AtomCount(), natom)
	}
	return nil
}

// bondRecords decodes one of the bond sections: triples of coordinate
// offsets (atom index times three) plus a 1-based parameter id.
func (im *importer) bondRecords(name string, n int) ([][3]int, error) {
	if n == 0 {
		return nil, nil
	}
	raw, err := im.file.ints(name, 3*n)
	if err != nil {
		return nil, err
	}
	out := make([][3]int, n)
	for i := 0; i < n; i++ {
		out[i] = [3]int{raw[3*i] / 3, raw[3*i+1] / 3, raw[3*i+2]}
	}
	return out, nil
}

func (im *importer) buildBonds() error {
	numbnd := im.ptr[pNumbnd]
	withTables := !im.opts.StructureOnly && !im.opts.WithoutTables

	var table *molsys.TermTable
	if withTables && numbnd > 0 {
		var err error
		table, err = im.sys.AddTable("stretch_harm", 2)
		if err != nil {
			return err
		}
		params := table.Params()
		params.AddProp("fc", molsys.FloatType)
		params.AddProp("r0", molsys.FloatType)
		fcs, err := im.file.floats("BOND_FORCE_CONSTANT", numbnd)
		if err != nil {
			return err
		}
		r0s, err := im.file.floats("BOND_EQUIL_VALUE", numbnd)
		if err != nil {
			return err
		}
		for i := 0; i < numbnd; i++ {
			row := params.AddParam()
			params.SetFloat(row, "fc", fcs[i])
			params.SetFloat(row, "r0", r0s[i])
		}
	}

	add := func(recs [][3]int) error {
		for _, rec := range recs {
			i, j, p := rec[0], rec[1], rec[2]
			// rigid-water H-H constraint stubs are not chemical bonds
			if im.ztab[i] == 1 && im.ztab[j] == 1 {
				continue
			}
			if im.sys.FindBond(i, j) < 0 {
				if _, err := im.sys.AddBond(i, j); err != nil {
					return err
				}
			}
			if table != nil {
				if p < 1 || p > im.ptr[pNumbnd] {
					return molsys.Errorf(molsys.ErrParse, "bond %d-%d: parameter id %d out of range", i, j, p)
				}
				if _, err := table.AddTerm([]int{i, j}, p-1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	recs, err := im.bondRecords("BONDS_INC_HYDROGEN", im.ptr[pNbonh])
	if err != nil {
		return err
	}
	if err := add(recs); err != nil {
		return err
	}
	recs, err = im.bondRecords("BONDS_WITHOUT_HYDROGEN", im.ptr[pNbona])
	if err != nil {
		return err
	}
	return add(recs)
}

func (im *importer) angleRecords(name string, n int) ([][4]int, error) {
	if n == 0 {
		return nil, nil
	}
	raw, err := im.file.ints(name, 4*n)
	if err != nil {
		return nil, err
	}
	out := make([][4]int, n)
	for i := 0; i < n; i++ {
		out[i] = [4]int{raw[4*i] / 3, raw[4*i+1] / 3, raw[4*i+2] / 3, raw[4*i+3]}
	}
	return out, nil
}

func (im *importer) buildAngles() error {
	numang := im.ptr[pNumang]
	if numang == 0 {
		return nil
	}
	table, err := im.sys.AddTable("angle_harm", 3)
	if err != nil {
		return err
	}
	params := table.Params()
	params.AddProp("fc", molsys.FloatType)
	params.AddProp("theta0", molsys.FloatType)
	fcs, err := im.file.floats("ANGLE_FORCE_CONSTANT", numang)
	if err != nil {
		return err
	}
	t0s, err := im.file.floats("ANGLE_EQUIL_VALUE", numang)
	if err != nil {
		return err
	}
	for i := 0; i < numang; i++ {
		row := params.AddParam()
		params.SetFloat(row, "fc", fcs[i])
		params.SetFloat(row, "theta0", t0s[i]*radToDeg)
	}
	add := func(recs [][4]int) error {
		for _, rec := range recs {
			p := rec[3]
			if p < 1 || p > numang {
				return molsys.Errorf(molsys.ErrParse, "angle %v: parameter id %d out of range", rec[:3], p)
			}
			if _, err := table.AddTerm([]int{rec[0], rec[1], rec[2]}, p-1); err != nil {
				return err
			}
		}
		return nil
	}
	recs, err := im.angleRecords("ANGLES_INC_HYDROGEN", im.ptr[pNtheth])
	if err != nil {
		return err
	}
	if err := add(recs); err != nil {
		return err
	}
	recs, err = im.angleRecords("ANGLES_WITHOUT_HYDROGEN", im.ptr[pNtheta])
	if err != nil {
		return err
	}
	return add(recs)
}

const maxPeriodicity = 6

// trigAccum merges the per-period Amber dihedral records landing on one
// atom quadruple into a single trigonometric term.
type trigAccum struct {
	atoms [4]int
	phi0  float64
	fc    [maxPeriodicity + 1]float64
	set   [maxPeriodicity + 1]bool
}

func (im *importer) buildDihedrals() error {
	nptra := im.ptr[pNptra]
	if nptra == 0 {
		return nil
	}
	fcs, err := im.file.floats("DIHEDRAL_FORCE_CONSTANT", nptra)
	if err != nil {
		return err
	}
	pers, err := im.file.floats("DIHEDRAL_PERIODICITY", nptra)
	if err != nil {
		return err
	}
	phases, err := im.file.floats("DIHEDRAL_PHASE", nptra)
	if err != nil {
		return err
	}
	scee := make([]float64, nptra)
	scnb := make([]float64, nptra)
	for i := range scee {
		scee[i], scnb[i] = defaultScee, defaultScnb
	}
	if im.file.section("SCEE_SCALE_FACTOR") != nil {
		if scee, err = im.file.floats("SCEE_SCALE_FACTOR", nptra); err != nil {
			return err
		}
	}
	if im.file.section("SCNB_SCALE_FACTOR") != nil {
		if scnb, err = im.file.floats("SCNB_SCALE_FACTOR", nptra); err != nil {
			return err
		}
	}

	type diheRec struct {
		atoms   [4]int
		param   int
		skip14  bool
		imprope bool
	}
	decode := func(name string, n int) ([]diheRec, error) {
		if n == 0 {
			return nil, nil
		}
		raw, err := im.file.ints(name, 5*n)
		if err != nil {
			return nil, err
		}
		out := make([]diheRec, n)
		for i := 0; i < n; i++ {
			r := raw[5*i : 5*i+5]
			rec := diheRec{param: r[4]}
			if r[2] < 0 {
				rec.skip14 = true
				r[2] = -r[2]
			}
			if r[3] < 0 {
				rec.imprope = true
				rec.skip14 = true
				r[3] = -r[3]
			}
			rec.atoms = [4]int{r[0] / 3, r[1] / 3, r[2] / 3, r[3] / 3}
			out[i] = rec
		}
		return out, nil
	}

	recsH, err := decode("DIHEDRALS_INC_HYDROGEN", im.ptr[pNphih])
	if err != nil {
		return err
	}
	recsA, err := decode("DIHEDRALS_WITHOUT_HYDROGEN", im.ptr[pNphia])
	if err != nil {
		return err
	}

	proper := make(map[[4]int]*trigAccum)
	improper := make(map[[4]int]*trigAccum)
	var properOrder, improperOrder [][4]int
	pairDone := make(map[[2]int]bool)
	var pairTable *molsys.TermTable

	for _, rec := range append(recsH, recsA...) {
		p := rec.param
		if p < 1 || p > nptra {
			return molsys.Errorf(molsys.ErrParse, "dihedral %v: parameter id %d out of range", rec.atoms, p)
		}
		p--
		per := int(math.Round(pers[p]))
		if per < 0 || per > maxPeriodicity || math.Abs(pers[p]-float64(per)) > 1e-6 {
			return molsys.Errorf(molsys.ErrUnsupported, "dihedral periodicity %g", pers[p])
		}
		phase := phases[p] * radToDeg
		fc := fcs[p]
		if math.Abs(phase-180) <= phaseFoldTol {
			phase = 0
			fc = -fc
		} else if math.Abs(phase) <= phaseFoldTol {
			phase = 0
		}

		accum, order := proper, &properOrder
		if rec.imprope {
			accum, order = improper, &improperOrder
		}
		key := canonQuad(rec.atoms)
		acc, ok := accum[key]
		if !ok {
			acc = &trigAccum{atoms: rec.atoms, phi0: phase}
			accum[key] = acc
			*order = append(*order, key)
		}
		if math.Abs(acc.phi0-phase) > 1e-6 {
			return molsys.Errorf(molsys.ErrParse, "dihedral %v: conflicting phases %g and %g", rec.atoms, acc.phi0, phase)
		}
		if acc.set[per] && acc.fc[per] != fc {
			return molsys.Errorf(molsys.ErrParse, "dihedral %v: conflicting force constants for periodicity %d", rec.atoms, per)
		}
		acc.fc[per] = fc
		acc.set[per] = true

		if rec.skip14 {
			continue
		}
		pk := [2]int{rec.atoms[0], rec.atoms[3]}
		if pk[0] > pk[1] {
			pk[0], pk[1] = pk[1], pk[0]
		}
		if pairDone[pk] {
			continue
		}
		pairDone[pk] = true
		if pairTable == nil {
			pairTable, err = im.sys.AddTable("pair_12_6_es", 2)
			if err != nil {
				return err
			}
			pp := pairTable.Params()
			pp.AddProp("aij", molsys.FloatType)
			pp.AddProp("bij", molsys.FloatType)
			pp.AddProp("qij", molsys.FloatType)
		}
		a, b, err := im.ljCoefs(pk[0], pk[1])
		if err != nil {
			return err
		}
		se, sn := scee[p], scnb[p]
		if se == 0 {
			se = defaultScee
		}
		if sn == 0 {
			sn = defaultScnb
		}
		pp := pairTable.Params()
		row := pp.AddParam()
		pp.SetFloat(row, "aij", a/sn)
		pp.SetFloat(row, "bij", b/sn)
		pp.SetFloat(row, "qij", im.charges[pk[0]]*im.charges[pk[1]]/se)
		if _, err := pairTable.AddTerm([]int{pk[0], pk[1]}, row); err != nil {
			return err
		}
	}

	emit := func(name string, order [][4]int, accum map[[4]int]*trigAccum) error {
		if len(order) == 0 {
			return nil
		}
		table, err := im.sys.AddTable(name, 4)
		if err != nil {
			return err
		}
		params := table.Params()
		params.AddProp("phi0", molsys.FloatType)
		for n := 0; n <= maxPeriodicity; n++ {
			params.AddProp(fmt.Sprintf("fc%d", n), molsys.FloatType)
		}
		for _, key := range order {
			acc := accum[key]
			row := params.AddParam()
			params.SetFloat(row, "phi0", acc.phi0)
			for n := 0; n <= maxPeriodicity; n++ {
				params.SetFloat(row, fmt.Sprintf("fc%d", n), acc.fc[n])
			}
			if _, err := table.AddTerm(acc.atoms[:], row); err != nil {
				return err
			}
		}
		return nil
	}
	if err := emit("dihedral_trig", properOrder, proper); err != nil {
		return err
	}
	return emit("improper_trig", improperOrder, improper)
}

// canonQuad gives a direction-independent key for a dihedral tuple.
func canonQuad(a [4]int) [4]int {
	r := [4]int{a[3], a[2], a[1], a[0]}
	for i := range a {
		if a[i] != r[i] {
			if a[i] < r[i] {
				return a
			}
			return r
		}
	}
	return a
}

// ljCoefs returns the A and B Lennard-Jones coefficients for the type
// pair of atoms i and j. Off-diagonal 10-12 slots read as zero.
func (im *importer) ljCoefs(i, j int) (float64, float64, error) {
	ntypes := im.ptr[pNtypes]
	if im.types == nil || ntypes == 0 {
		return 0, 0, nil
	}
	ti, tj := im.types[i], im.types[j]
	if ti < 1 || ti > ntypes || tj < 1 || tj > ntypes {
		return 0, 0, molsys.Errorf(molsys.ErrParse, "ATOM_TYPE_INDEX out of range for atoms %d, %d", i, j)
	}
	if err := im.loadLJ(); err != nil {
		return 0, 0, err
	}
	idx := im.nbidx[ntypes*(ti-1)+tj-1]
	if idx <= 0 {
		return 0, 0, nil
	}
	if idx > len(im.acoef) {
		return 0, 0, molsys.Errorf(molsys.ErrParse, "NONBONDED_PARM_INDEX %d exceeds %d coefficients", idx, len(im.acoef))
	}
	return im.acoef[idx-1], im.bcoef[idx-1], nil
}

// buildNonbonded derives sigma/epsilon per atom type from the diagonal
// of the Lennard-Jones coefficient matrix.
func (im *importer) buildNonbonded() error {
	ntypes := im.ptr[pNtypes]
	if im.types == nil || ntypes == 0 {
		return nil
	}
	table, err := im.sys.AddTable("nonbonded", 1)
	if err != nil {
		return err
	}
	params := table.Params()
	params.AddProp("sigma", molsys.FloatType)
	params.AddProp("epsilon", molsys.FloatType)
	params.AddProp("type", molsys.IntType)
	if err := im.loadLJ(); err != nil {
		return err
	}
	for t := 1; t <= ntypes; t++ {
		row := params.AddParam()
		params.SetInt(row, "type", int64(t))
		c12, c6 := 0.0, 0.0
		// diagonal entry for this type
		idx := im.nbidx[ntypes*(t-1)+t-1]
		if idx > 0 && idx <= len(im.acoef) {
			c12, c6 = im.acoef[idx-1], im.bcoef[idx-1]
		}
		if c6 > 0 && c12 > 0 {
			params.SetFloat(row, "sigma", math.Pow(c12/c6, 1.0/6.0))
			params.SetFloat(row, "epsilon", c6*c6/(4*c12))
		}
	}
	for _, id := range im.sys.Atoms() {
		if _, err := table.AddTerm([]int{id}, im.types[id]-1); err != nil {
			return err
		}
	}
	return nil
}

// buildExclusions reads the packed exclusion list. Zero entries are the
// prmtop way of saying "no exclusions for this atom".
func (im *importer) buildExclusions() error {
	natom := im.ptr[pNatom]
	nnb := im.ptr[pNnb]
	if nnb == 0 {
		return nil
	}
	counts, err := im.file.ints("NUMBER_EXCLUDED_ATOMS", natom)
	if err != nil {
		return err
	}
	list, err := im.file.ints("EXCLUDED_ATOMS_LIST", nnb)
	if err != nil {
		return err
	}
	table, err := im.sys.AddTable("exclusion", 2)
	if err != nil {
		return err
	}
	off := 0
	for i := 0; i < natom; i++ {
		for k := 0; k < counts[i]; k++ {
			if off >= len(list) {
				return molsys.Errorf(molsys.ErrParse, "EXCLUDED_ATOMS_LIST shorter than NUMBER_EXCLUDED_ATOMS implies")
			}
			o := list[off]
			off++
			if o == 0 {
				continue
			}
			if _, err := table.AddTerm([]int{i, o - 1}, molsys.UnassignedParam); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCmap reads the CMAP correction grids, accepting both the plain
// and the CHARMM_ prefixed section names.
func (im *importer) buildCmap() error {
	prefix := ""
	if im.file.section("CMAP_COUNT") == nil {
		if im.file.section("CHARMM_CMAP_COUNT") == nil {
			return nil
		}
		prefix = "CHARMM_"
	}
	counts, err := im.file.ints(prefix+"CMAP_COUNT", 2)
	if err != nil {
		return err
	}
	nterms, ntypes := counts[0], counts[1]
	if ntypes == 0 {
		return nil
	}
	res, err := im.file.ints(prefix+"CMAP_RESOLUTION", ntypes)
	if err != nil {
		return err
	}
	for t := 1; t <= ntypes; t++ {
		n := res[t-1]
		grid, err := im.file.floats(fmt.Sprintf("%sCMAP_PARAMETER_%02d", prefix, t), n*n)
		if err != nil {
			return err
		}
		pt := molsys.NewParamTable()
		pt.AddProp("phi", molsys.FloatType)
		pt.AddProp("psi", molsys.FloatType)
		pt.AddProp("energy", molsys.FloatType)
		step := 360.0 / float64(n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				row := pt.AddParam()
				pt.SetFloat(row, "phi", -180+float64(i)*step)
				pt.SetFloat(row, "psi", -180+float64(j)*step)
				pt.SetFloat(row, "energy", grid[i*n+j])
			}
		}
		im.sys.AddAuxTable(fmt.Sprintf("cmap%d", t), pt)
	}
	if nterms == 0 {
		return nil
	}
	idx, err := im.file.ints(prefix+"CMAP_INDEX", 6*nterms)
	if err != nil {
		return err
	}
	table, err := im.sys.AddTable("torsiontorsion_cmap", 8)
	if err != nil {
		return err
	}
	params := table.Params()
	params.AddProp("cmapid", molsys.StringType)
	for k := 0; k < nterms; k++ {
		r := idx[6*k : 6*k+6]
		t := r[5]
		if t < 1 || t > ntypes {
			return molsys.Errorf(molsys.ErrParse, "CMAP_INDEX term %d: grid id %d out of range", k, t)
		}
		row := params.AddParam()
		params.SetString(row, "cmapid", fmt.Sprintf("cmap%d", t))
		atoms := []int{
			r[0] - 1, r[1] - 1, r[2] - 1, r[3] - 1,
			r[1] - 1, r[2] - 1, r[3] - 1, r[4] - 1,
		}
		if _, err := table.AddTerm(atoms, row); err != nil {
			return err
		}
	}
	return nil
}
