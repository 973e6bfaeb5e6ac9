// Command offline runs a tissue simulation pattern file to completion
// with no visualization, mirroring the original offline.cpp driver:
// load the pattern, initialize the engine, run to the pattern's step
// budget or its stability point (printing per-step timing with
// --verbose), print a one-line summary, and exit.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hsab/patternexplorer/pattern"
	"github.com/hsab/patternexplorer/tissue"
)

const defaultCapacity = 1 << 16

func main() {
	var forceSS, forceKD bool
	var verbose bool

	root := &cobra.Command{
		Use:   "offline [OPTION] FILE.pat",
		Short: "Run a tissue simulation pattern file headlessly.",
		Args:  cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], forceSS, forceKD, verbose)
		},
	}
	root.Flags().BoolVar(&forceSS, "ss", false, "force use of spatial sorting")
	root.Flags().BoolVar(&forceKD, "kd", false, "force use of k-d tree")
	root.Flags().BoolVar(&verbose, "verbose", false, "log per-step diagnostics")

	if len(os.Args) == 1 {
		fmt.Fprintln(os.Stderr, "usage: offline [OPTION] FILE.pat")
		fmt.Fprintln(os.Stderr, "  --ss         force use of spatial sorting")
		fmt.Fprintln(os.Stderr, "  --kd         force use of k-d tree")
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, forceSS, forceKD, verbose bool) error {
	if forceSS && forceKD {
		return fmt.Errorf("offline: --ss and --kd are mutually exclusive")
	}

	f, err := pattern.LoadFile(path)
	if err != nil {
		return err
	}

	sim := tissue.NewSimulation(defaultCapacity)
	if err := pattern.Apply(f, sim); err != nil {
		return err
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	sim.Log = logrus.NewEntry(log)

	choice := tissue.Auto
	switch {
	case forceSS:
		choice = tissue.ForceSpatialSorting
	case forceKD:
		choice = tissue.ForceKDTree
	}
	sim.Init(choice, f.Domain.DetectStability)
	sim.Log.Infof("effective seed: %d", sim.Seed())

	hooks := []tissue.StepHook{}
	if verbose {
		hooks = append(hooks, tissue.Log(os.Stdout))
	}

	if err := sim.Run(sim.StepBudget(), hooks...); err != nil {
		return err
	}
	sim.Done()

	fmt.Printf("offline: ran %d iterations, stable=%v\n", sim.Iteration(), sim.IsStable())
	return nil
}
