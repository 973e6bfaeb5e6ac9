package tissue

import (
	"fmt"
	"io"
	"time"
)

// StepHook runs after one completed Step, in the style of run.go's
// DomainManipulator: a function value built by a constructor that
// captures its own state (a start time, an accumulator) and is passed
// to Run as a variadic pipeline stage.
type StepHook func(s *Simulation) error

// Log writes one status line to w after every step, mirroring run.go's
// Log(w io.Writer) DomainManipulator.
func Log(w io.Writer) StepHook {
	startTime := time.Now()
	stepTime := time.Now()

	return func(s *Simulation) error {
		r := s.LastResult()
		var mean0 float64
		if len(r.Chem) > 0 {
			mean0 = r.Chem[0].Mean
		}
		_, err := fmt.Fprintf(w, "iteration %-6d walltime=%6.3gs Δwalltime=%5.3gs cells=%-5d conc[0].mean=%.4g\n",
			s.Iteration(), time.Since(startTime).Seconds(), time.Since(stepTime).Seconds(),
			s.store.N(), mean0)
		stepTime = time.Now()
		return err
	}
}

// PrecisionLog writes one line per step reporting the NNS precision
// cross-check's miss rate, mirroring the NNS_PRECISION diagnostic block
// of simulation_single_step. It is a no-op unless EnablePrecisionCheck
// was called on s before Run.
func PrecisionLog(w io.Writer, every int) StepHook {
	return func(s *Simulation) error {
		if every <= 0 || s.Iteration()%every != 0 {
			return nil
		}
		r := s.LastPrecision()
		if r.MissCells == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, "#%-5d  cell %3d / %5.3g%%  neig %3d / %5.3g%%\n",
			r.Iteration, r.MissCells, r.ErrorPercent,
			r.MissNeighbors, 100.0*float64(r.MissNeighbors)/float64(r.TotalNeighbors))
		return err
	}
}

// StopAfter builds a hook that sets is_running false once numIterations
// steps have run through the hook, independent of stop_at — useful for
// a caller-imposed ceiling tighter than the pattern's own.
func StopAfter(numIterations int) StepHook {
	count := 0
	return func(s *Simulation) error {
		count++
		if count >= numIterations {
			s.isRunning = false
		}
		return nil
	}
}
