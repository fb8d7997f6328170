// Command molsys inspects Amber prmtop topologies: structure summary,
// ring perception and aromaticity, bond-order and formal-charge
// assignment, and SMARTS substructure search.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/molsuite/molsys"
	"github.com/molsuite/molsys/amber"
	"github.com/molsuite/molsys/smarts"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "molsys",
		Short:         "chemistry analysis for molecular topologies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			lg, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			molsys.SetLogger(lg)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log analysis internals")
	root.AddCommand(infoCmd(), ringsCmd(), chargeCmd(), matchCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "molsys:", err)
		os.Exit(1)
	}
}

func load(path string, structureOnly bool) (*molsys.System, error) {
	return amber.Load(path, amber.Options{StructureOnly: structureOnly})
}

func infoCmd() *cobra.Command {
	var structureOnly bool
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "summarize a topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(args[0], structureOnly)
			if err != nil {
				return err
			}
			fmt.Printf("atoms:     %d\n", s.AtomCount())
			fmt.Printf("bonds:     %d\n", s.BondCount())
			fmt.Printf("residues:  %d\n", s.ResidueCount())
			fmt.Printf("chains:    %d\n", s.ChainCount())
			fmt.Printf("fragments: %d\n", s.UpdateFragids())
			distinct := s.FindDistinctFragments()
			fmt.Printf("distinct fragment topologies: %d\n", len(distinct))
			for _, name := range s.TableNames() {
				tb := s.Table(name)
				fmt.Printf("table %-20s arity %d  terms %d  params %d\n",
					name, tb.Arity(), tb.TermCount(), tb.Params().ParamCount())
			}
			for _, name := range s.AuxTableNames() {
				fmt.Printf("aux table %-16s rows %d\n", name, s.AuxTable(name).ParamCount())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&structureOnly, "structure-only", false, "skip force-field tables")
	return cmd
}

func ringsCmd() *cobra.Command {
	var relevant bool
	cmd := &cobra.Command{
		Use:   "rings FILE",
		Short: "perceive rings and aromaticity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(args[0], false)
			if err != nil {
				return err
			}
			if err := molsys.Analyze(s); err != nil {
				return err
			}
			rings := molsys.GetSSSR(s, nil, relevant)
			fmt.Printf("rings: %d\n", len(rings))
			for i, ring := range rings {
				verdict, counts, err := molsys.ClassifyRing(s, ring)
				if err != nil {
					return err
				}
				fmt.Printf("ring %d: size %d  %v  %s  X=%d Y=%d YEXT=%d Z=%d  planarity %.4f\n",
					i, len(ring), ring, verdict,
					counts[0], counts[1], counts[2], counts[3],
					molsys.RingPlanarity(s, ring))
			}
			for gi, group := range molsys.RingSystems(s, rings) {
				fmt.Printf("ring system %d: rings %v\n", gi, group)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&relevant, "all-relevant", false, "include every relevant minimum ring")
	return cmd
}

func chargeCmd() *cobra.Command {
	var total int
	var haveTotal, resonance bool
	cmd := &cobra.Command{
		Use:   "charge FILE",
		Short: "assign bond orders and formal charges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(args[0], false)
			if err != nil {
				return err
			}
			want := molsys.TotalChargeUnspecified
			if haveTotal = cmd.Flags().Changed("total"); haveTotal {
				want = total
			}
			var flags molsys.AssignFlags
			if resonance {
				flags |= molsys.ComputeResonantCharges
			}
			if err := molsys.AssignBondOrderAndFormalCharge(s, nil, want, flags); err != nil {
				return err
			}
			sum := 0
			for _, id := range s.Atoms() {
				a := s.Atom(id)
				sum += a.FormalCharge
				if a.FormalCharge != 0 {
					fmt.Printf("atom %d (%s): formal charge %+d\n", id, a.Name, a.FormalCharge)
				}
			}
			fmt.Printf("total formal charge: %+d\n", sum)
			if resonance {
				for _, bid := range s.Bonds() {
					b := s.Bond(bid)
					if b.Resonant != float64(b.Order) {
						fmt.Printf("bond %d-%d: order %d resonant %.3f\n", b.I, b.J, b.Order, b.Resonant)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "constrain the total formal charge")
	cmd.Flags().BoolVar(&resonance, "resonance", false, "average over equally optimal assignments")
	return cmd
}

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match PATTERN FILE",
		Short: "find SMARTS matches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pat, err := smarts.Parse(args[0])
			if err != nil {
				return err
			}
			for _, w := range pat.Warnings() {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}
			s, err := load(args[1], false)
			if err != nil {
				return err
			}
			matches := pat.FindMatches(s, nil)
			fmt.Printf("matches: %d\n", len(matches))
			for _, m := range matches {
				fmt.Println(" ", m)
			}
			return nil
		},
	}
}
