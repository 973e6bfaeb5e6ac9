package tissue

import "fmt"

// evalContext carries everything get_parameter-equivalent resolution and
// action application need for one cell's pass through the rule list.
type evalContext struct {
	curr      *Cell
	next      *Cell
	iteration int
	dt        float64
	mappings  []float64
	rng       *rng

	// polaritySource mirrors polarity_source in simulation.cpp: -1 until a
	// Polarize action fires, after which it names the chemical whose
	// gradient drives this step's polarity update.
	polaritySource int

	// division requests accumulated while walking the rule list; applied
	// by the caller once rule evaluation for this cell is done, since
	// division needs the store and the NNS backend.
	divisions []divisionRequest
}

type divisionRequest struct {
	child    CellId
	dir, dev float64
}

func newEvalContext(curr, next *Cell, iteration int, dt float64, mappings []float64, r *rng) *evalContext {
	return &evalContext{curr: curr, next: next, iteration: iteration, dt: dt, mappings: mappings, rng: r, polaritySource: -1}
}

// resolve is get_parameter: it reads a Param against the current cell
// (and process-wide mapping table) without ever touching next.
func (e *evalContext) resolve(p Param) float64 {
	switch p.Kind {
	case ParamConstant:
		return p.Const
	case ParamNeighbors:
		return float64(e.curr.Neighbors)
	case ParamAge:
		return float64(e.curr.Age(e.iteration))
	case ParamBirth:
		return float64(e.curr.Birth)
	case ParamConc:
		return e.curr.Conc[p.Index]
	case ParamDiff:
		return e.curr.Diff[p.Index]
	case ParamMapping:
		return e.mappings[p.Index]
	default:
		panic(fmt.Sprintf("tissue: unresolvable parameter kind %d", p.Kind))
	}
}

// EvaluateRules walks the ordered rule list for one cell, exactly the way
// simulation_single_step's per-rule loop does: iteration-window skipping,
// predicate evaluation, the logical-AND carry between an And rule and the
// rule that follows it, then action application when the (possibly
// AND-combined) predicate is active. It returns an error only for an
// unrecognized predicate, matching the original's fatal "unknown
// predicate" exit — every other case is total over the closed Predicate
// and Action enums.
func EvaluateRules(rules []Rule, ctx *evalContext, divisionLimit int, newCell func() CellId) error {
	logicalAnd := false
	lastPredicate := false

	for i := range rules {
		rule := &rules[i]

		// A negative Until (noStopAt) leaves the window open-ended.
		if ctx.iteration < rule.From || (rule.Until >= 0 && rule.Until < ctx.iteration) {
			if rule.Action == And {
				logicalAnd = true
				lastPredicate = false
			}
			continue
		}

		active, err := evaluatePredicate(rule, ctx)
		if err != nil {
			return err
		}

		if logicalAnd {
			logicalAnd = false
			active = lastPredicate && active
		}

		if rule.Action == And {
			logicalAnd = true
			lastPredicate = active
			continue
		}

		if active {
			applyAction(rule, ctx, divisionLimit, newCell)
		}
	}
	return nil
}

func evaluatePredicate(rule *Rule, ctx *evalContext) (bool, error) {
	p := rule.PredParams
	switch rule.Predicate {
	case Always:
		return true, nil
	case IfEqual:
		return ctx.resolve(p[0]) == ctx.resolve(p[1]), nil
	case IfNotEqual:
		return ctx.resolve(p[0]) != ctx.resolve(p[1]), nil
	case IfLessThan:
		return ctx.resolve(p[0]) < ctx.resolve(p[1]), nil
	case IfLessEqual:
		return ctx.resolve(p[0]) <= ctx.resolve(p[1]), nil
	case IfGreaterThan:
		return ctx.resolve(p[0]) > ctx.resolve(p[1]), nil
	case IfGreaterEqual:
		return ctx.resolve(p[0]) >= ctx.resolve(p[1]), nil
	case IfInInterval:
		v := ctx.resolve(p[0])
		return ctx.resolve(p[1]) <= v && v <= ctx.resolve(p[2]), nil
	case Probability:
		return ctx.rng.probability(ctx.resolve(p[0])), nil
	default:
		return false, fmt.Errorf("tissue: unknown predicate %d", rule.Predicate)
	}
}

func applyAction(rule *Rule, ctx *evalContext, divisionLimit int, newCell func() CellId) {
	a := rule.ActParams
	switch rule.Action {
	case ReactGS:
		u, v := ctx.curr.Conc[a[0].Index], ctx.curr.Conc[a[1].Index]
		s, f, k := ctx.resolve(a[2]), ctx.resolve(a[3]), ctx.resolve(a[4])
		ctx.next.Conc[a[0].Index] += s * (-u*v*v + f*(1-u)) * ctx.dt
		ctx.next.Conc[a[1].Index] += s * (u*v*v - (f+k)*v) * ctx.dt

	case ReactTU:
		u, v := ctx.curr.Conc[a[0].Index], ctx.curr.Conc[a[1].Index]
		s, alpha, beta := ctx.resolve(a[2]), ctx.resolve(a[3]), ctx.resolve(a[4])
		ctx.next.Conc[a[0].Index] += s * (alpha - u*v) * ctx.dt
		ctx.next.Conc[a[1].Index] += s * (u*v - v - beta) * ctx.dt

	case ReactLI:
		u := ctx.curr.Conc[a[0].Index]
		s, aCoef, b := ctx.resolve(a[2]), ctx.resolve(a[3]), ctx.resolve(a[4])
		ctx.next.Conc[a[0].Index] += s * (aCoef*u - b) * ctx.dt

	case ReactCU:
		u := ctx.curr.Conc[a[0].Index]
		s, aCoef, b, c := ctx.resolve(a[2]), ctx.resolve(a[3]), ctx.resolve(a[4]), ctx.resolve(a[5])
		ctx.next.Conc[a[0].Index] += s * (u - aCoef) * (u - b) * (u - c) * ctx.dt

	case Change:
		val, dev := ctx.resolve(a[1]), ctx.resolve(a[2])
		switch a[0].Kind {
		case ParamConc:
			ctx.next.Conc[a[0].Index] += ctx.rng.deviate(val, dev)
		case ParamDiff:
			ctx.next.Diff[a[0].Index] += ctx.rng.deviate(val, dev)
			if ctx.next.Diff[a[0].Index] < 0 {
				ctx.next.Diff[a[0].Index] = 0
			}
		}

	case Map:
		val := ctx.resolve(a[0])
		lo, hi := a[1].Const, a[2].Const
		outLo, outHi := a[4].Const, a[5].Const
		var m float64
		switch {
		case val < lo:
			m = outLo
		case val > hi:
			m = outHi
		default:
			m = rule.mapSlope*val + rule.mapIntercept
		}
		ctx.mappings[a[3].Index] = m

	case Polarize:
		ctx.polaritySource = a[0].Index
		ctx.next.PX, ctx.next.PY = 0, 0

	case Divide:
		if divisionLimit == 0 || ctx.curr.Neighbors <= divisionLimit {
			dir, dev := ctx.resolve(a[0]), ctx.resolve(a[1])
			if id := newCell(); id != NoCell {
				ctx.divisions = append(ctx.divisions, divisionRequest{child: id, dir: dir, dev: dev})
			}
		}

	case Move:
		val, dev := ctx.resolve(a[0]), ctx.resolve(a[1])
		offset := ctx.rng.deviate(val, dev)
		ctx.next.X += ctx.curr.PX * offset
		ctx.next.Y += ctx.curr.PY * offset
	}
}
