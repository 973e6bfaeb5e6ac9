package tissue

// ParamKind discriminates what a rule operand resolves to at evaluation
// time. get_parameter-style dispatch lives in evaluator.go.
type ParamKind int

const (
	ParamConstant ParamKind = iota
	ParamNeighbors
	ParamAge
	ParamBirth
	ParamConc
	ParamDiff
	ParamMapping
)

// Param is one operand of a predicate or action: a literal constant, or a
// reference to per-cell state, resolved against the current cell at
// evaluation time.
type Param struct {
	Kind  ParamKind
	Index int     // chemical/diffusion/mapping-slot index; unused for Constant/Neighbors/Age/Birth
	Const float64 // literal value; only meaningful when Kind == ParamConstant
}

// Const builds a literal-constant operand.
func Const(v float64) Param { return Param{Kind: ParamConstant, Const: v} }

// Conc builds an operand that resolves to conc[i] of the current cell.
func Conc(i int) Param { return Param{Kind: ParamConc, Index: i} }

// Diff builds an operand that resolves to diff[i] of the current cell.
func Diff(i int) Param { return Param{Kind: ParamDiff, Index: i} }

// Mapping builds an operand that reads process-wide mapping slot i.
func Mapping(i int) Param { return Param{Kind: ParamMapping, Index: i} }

// Neighbors, Age and Birth build operands that resolve to the current
// cell's neighbor count, age, and birth iteration, respectively.
var (
	Neighbors = Param{Kind: ParamNeighbors}
	Age       = Param{Kind: ParamAge}
	Birth     = Param{Kind: ParamBirth}
)

// Predicate selects the comparison a rule performs before acting.
type Predicate int

const (
	Always Predicate = iota
	IfEqual
	IfNotEqual
	IfLessThan
	IfLessEqual
	IfGreaterThan
	IfGreaterEqual
	IfInInterval
	Probability
)

// Action selects what a rule does to the current cell once its predicate
// is active.
type Action int

const (
	ReactGS Action = iota // Gray-Scott reaction
	ReactTU                // Turing reaction
	ReactLI                // linear reaction
	ReactCU                // cubic reaction
	Change
	Map
	Polarize
	Divide
	Move
	And // logical-AND gate; never itself "applies" a mutation
)

// Rule is one ordered (predicate, action) pair with an inclusive iteration
// window [From, Until]; a negative Until leaves the window open-ended.
// Predicate and action operands are interpreted positionally; see
// the doc comments on the constructor helpers below for each action's
// operand layout.
type Rule struct {
	From, Until int

	Predicate  Predicate
	PredParams [3]Param

	Action    Action
	ActParams [6]Param

	// mapSlope/mapIntercept are the precomputed linear coefficients for a
	// Map action's interior segment, filled in by Simulation.AddRule so
	// the per-evaluation cost is one multiply-add instead of a division.
	mapSlope     float64
	mapIntercept float64
}

// AlwaysTrue builds a rule predicate that is always active.
func AlwaysTrue() (Predicate, [3]Param) { return Always, [3]Param{} }

// Compare builds an equality/ordering predicate comparing a against b.
func Compare(pred Predicate, a, b Param) (Predicate, [3]Param) {
	return pred, [3]Param{a, b}
}

// InInterval builds a predicate active when low <= v <= high.
func InInterval(v, low, high Param) (Predicate, [3]Param) {
	return IfInInterval, [3]Param{v, low, high}
}

// WithProbability builds a predicate active with probability p (evaluated
// against a fresh uniform[0,1] draw each time).
func WithProbability(p Param) (Predicate, [3]Param) {
	return Probability, [3]Param{p}
}

// ReactGSAction builds a Gray-Scott reaction on chemicals u and v:
//
//	u += s*(-u*v^2 + f*(1-u))*dt
//	v += s*( u*v^2 - (f+k)*v)*dt
func ReactGSAction(u, v int, s, f, k Param) (Action, [6]Param) {
	return ReactGS, [6]Param{Conc(u), Conc(v), s, f, k}
}

// ReactTUAction builds a Turing reaction on chemicals u and v:
//
//	u += s*(alpha - u*v)*dt
//	v += s*(u*v - v - beta)*dt
func ReactTUAction(u, v int, s, alpha, beta Param) (Action, [6]Param) {
	return ReactTU, [6]Param{Conc(u), Conc(v), s, alpha, beta}
}

// ReactLIAction builds a linear reaction on chemical u: u += s*(a*u-b)*dt.
func ReactLIAction(u int, s, a, b Param) (Action, [6]Param) {
	return ReactLI, [6]Param{Conc(u), {}, s, a, b}
}

// ReactCUAction builds a cubic reaction on chemical u:
// u += s*(u-a)*(u-b)*(u-c)*dt.
func ReactCUAction(u int, s, a, b, c Param) (Action, [6]Param) {
	return ReactCU, [6]Param{Conc(u), {}, s, a, b, c}
}

// ChangeAction builds an action that perturbs either conc[i] (when target
// is Conc(i)) or diff[i] (when target is Diff(i)) by deviate(val, dev); a
// diffusion rate pushed below zero is clamped to zero.
func ChangeAction(target Param, val, dev Param) (Action, [6]Param) {
	return Change, [6]Param{target, val, dev}
}

// MapAction builds a piecewise-linear remap of val into [outLo, outHi]
// over the domain [lo, hi], writing the result to mapping slot slot.
func MapAction(val Param, lo, hi float64, slot int, outLo, outHi float64) (Action, [6]Param) {
	return Map, [6]Param{val, Const(lo), Const(hi), Mapping(slot), Const(outLo), Const(outHi)}
}

// PolarizeAction builds an action that flags chemical source as the
// gradient source for this step's polarity update.
func PolarizeAction(source int) (Action, [6]Param) {
	return Polarize, [6]Param{Conc(source)}
}

// DivideAction builds a division action; dir/dev give the child's
// placement angle in degrees, relative to the parent's current polarity.
func DivideAction(dir, dev Param) (Action, [6]Param) {
	return Divide, [6]Param{dir, dev}
}

// MoveAction builds a translation along the current cell's polarity by
// deviate(val, dev).
func MoveAction(val, dev Param) (Action, [6]Param) {
	return Move, [6]Param{val, dev}
}

// AndAction builds the logical-AND gate described in spec.md §4.3: it
// never mutates a cell, it only gates the next rule's predicate.
func AndAction() (Action, [6]Param) { return And, [6]Param{} }
