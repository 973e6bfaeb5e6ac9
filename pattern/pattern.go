package pattern

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"

	"github.com/hsab/patternexplorer/tissue"
)

// File is the decoded shape of a .pat TOML document. Every field maps
// directly onto one or more tissue setup calls; Apply walks it in the
// fixed order domain → chemicals → use-defaults → layout → set
// overrides → mirror pairs → rules, matching the order a hand-written
// parser_load_pattern would apply them in.
type File struct {
	Domain      DomainSpec
	Chemicals   []ChemicalSpec
	Use         UseSpec
	Layout      []LayoutSpec
	Set         []SetSpec
	MirrorPairs []MirrorSpec `toml:"mirror_pairs"`
	Rules       []RuleSpec
}

// DomainSpec configures the global geometry and run parameters that
// simulation_define_* set in the original engine.
type DomainSpec struct {
	Width           float64
	Height          float64
	PackedFactor    float64 `toml:"packed_factor"` // > 0 enables a packed domain
	TimeStep        float64 `toml:"time_step"`
	DivisionLimit   int     `toml:"division_limit"`
	StopAt          *int    `toml:"stop_at"` // nil means no explicit stop
	Seed            int64   `toml:"seed"`
	TrackedID       *int    `toml:"tracked_id"` // nil means no tracked cell
	DetectStability bool    `toml:"detect_stability"`
}

// ChemicalSpec mirrors one simulation_define_chemical call.
type ChemicalSpec struct {
	Name        string
	Limit       float64
	Anisotropic bool
}

// UseSpec mirrors the simulation_use_* family: the defaults CreateCell
// and the layout helpers apply to every newly created cell.
type UseSpec struct {
	PolarityAngle *float64          `toml:"polarity_angle"` // nil means "do not set"
	PolarityDev   float64           `toml:"polarity_dev"`
	Concentration []ChemicalUseSpec `toml:"concentration"`
	Diffusion     []ChemicalUseSpec `toml:"diffusion"`
}

// ChemicalUseSpec sets the default value/spread for one chemical index.
type ChemicalUseSpec struct {
	Chemical  int
	Value     float64
	Deviation float64
}

// LayoutSpec describes one batch of cells created by a layout helper.
// Kind selects which simulation_create_* call this becomes; the other
// fields are interpreted according to Kind and left at their zero value
// otherwise.
type LayoutSpec struct {
	Kind string // "cell", "square_grid", "square_circle", "hex_grid", "hex_circle"

	X, Y      float64
	CountX    int `toml:"count_x"`
	CountY    int `toml:"count_y"`
	Count     int
	CenterX   float64 `toml:"center_x"`
	CenterY   float64 `toml:"center_y"`
	Deviation float64
	Fixed     bool
	Wrap      bool
}

// SetSpec overrides one already-created cell's state, mirroring the
// simulation_set_cell_* family. CellID indexes into creation order.
type SetSpec struct {
	CellID        int `toml:"cell_id"`
	Concentration *ChemicalUseSpec
	DiffusionUse  *ChemicalUseSpec `toml:"diffusion"`
	PolarityAngle *float64         `toml:"polarity_angle"`
	PolarityDev   float64          `toml:"polarity_dev"`
	Fixed         *bool
}

// MirrorSpec mirrors one simulation_define_mirror_pair call.
type MirrorSpec struct {
	ID1 int `toml:"id1"`
	ID2 int `toml:"id2"`
}

// ParamSpec is a loosely-typed rule operand: Value decodes as whatever
// TOML primitive the author wrote (integer or float) and is normalized
// with cast.ToFloat64E, the way inmaputil/config.go normalizes untyped
// configuration values before using them.
type ParamSpec struct {
	Kind  string // "const", "conc", "diff", "mapping", "neighbors", "age", "birth"
	Index int
	Value interface{}
}

// PredicateSpec configures one rule's gating condition.
type PredicateSpec struct {
	Kind   string // "always", "eq", "neq", "lt", "le", "gt", "ge", "interval", "probability"
	Params []ParamSpec
}

// ActionSpec configures one rule's effect. Only the fields relevant to
// Kind are read; see tissue/rule.go's *Action builders for the exact
// operand layout each kind expects.
type ActionSpec struct {
	Kind string // "react_gs", "react_tu", "react_li", "react_cu", "change", "map", "polarize", "divide", "move", "and"

	U, V, Source, Slot int
	S, F, K            ParamSpec
	Alpha, Beta        ParamSpec
	A, B, C            ParamSpec
	Target             ParamSpec
	Val, Dev, Dir      ParamSpec
	Lo, Hi             float64
	OutLo              float64 `toml:"out_lo"`
	OutHi              float64 `toml:"out_hi"`
}

// RuleSpec is one ordered (predicate, action) pair with its iteration
// window, mirroring one simulation_add_rule call.
type RuleSpec struct {
	From      int
	Until     int
	Predicate PredicateSpec
	Action    ActionSpec
}

// LoadFile reads and decodes a .pat TOML file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: read %s: %w", path, err)
	}
	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("pattern: decode %s: %w", path, err)
	}
	return &f, nil
}

// Apply replays the decoded file against sim's setup API in the order
// the original parser would: domain geometry, chemicals, creation
// defaults, cell layout, per-cell overrides, mirror pairs, then rules.
func Apply(f *File, sim *tissue.Simulation) error {
	applyDomain(f.Domain, sim)

	for _, c := range f.Chemicals {
		sim.DefineChemical(c.Name, c.Limit, c.Anisotropic)
	}

	applyUse(f.Use, sim)

	var created []tissue.CellId
	for _, layout := range f.Layout {
		ids, err := applyLayout(layout, sim)
		if err != nil {
			return err
		}
		created = append(created, ids...)
	}

	for _, set := range f.Set {
		if set.CellID < 0 || set.CellID >= len(created) {
			return fmt.Errorf("pattern: set references cell_id %d, only %d cells created", set.CellID, len(created))
		}
		if err := applySet(set, created[set.CellID], sim); err != nil {
			return err
		}
	}

	for _, m := range f.MirrorPairs {
		if m.ID1 < 0 || m.ID1 >= len(created) || m.ID2 < 0 || m.ID2 >= len(created) {
			return fmt.Errorf("pattern: mirror pair references out-of-range cell id")
		}
		sim.DefineMirrorPair(created[m.ID1], created[m.ID2])
	}

	for i, r := range f.Rules {
		rule, err := toRule(r)
		if err != nil {
			return fmt.Errorf("pattern: rule %d: %w", i, err)
		}
		sim.AddRule(rule)
	}

	return nil
}

func applyDomain(d DomainSpec, sim *tissue.Simulation) {
	sim.DefineDomain(d.Width, d.Height)
	if d.PackedFactor > 0 {
		sim.DefinePackedDomain(d.PackedFactor)
	}
	sim.DefineTimeStep(d.TimeStep)
	sim.DefineDivisionLimit(d.DivisionLimit)
	sim.UseSeed(d.Seed)
	if d.StopAt != nil {
		sim.SetStopAt(*d.StopAt)
	}
	if d.TrackedID != nil {
		sim.SetTrackedCell(tissue.CellId(*d.TrackedID))
	}
}

func applyUse(u UseSpec, sim *tissue.Simulation) {
	if u.PolarityAngle != nil {
		sim.UsePolarity(*u.PolarityAngle, u.PolarityDev)
	}
	for _, c := range u.Concentration {
		sim.UseChemicalConcentration(c.Chemical, c.Value, c.Deviation)
	}
	for _, c := range u.Diffusion {
		sim.UseChemicalDiffusion(c.Chemical, c.Value, c.Deviation)
	}
}

func applyLayout(l LayoutSpec, sim *tissue.Simulation) ([]tissue.CellId, error) {
	switch l.Kind {
	case "cell":
		id := sim.CreateCell(l.X, l.Y, l.Fixed)
		if id == tissue.NoCell {
			return nil, tissue.ErrCapacityExceeded
		}
		return []tissue.CellId{id}, nil
	case "square_grid":
		before := sim.StoreSize()
		sim.CreateSquareGrid(l.CountX, l.CountY, l.CenterX, l.CenterY, l.Deviation, l.Fixed, l.Wrap)
		if sim.StoreSize()-before < l.CountX*l.CountY {
			return nil, tissue.ErrCapacityExceeded
		}
		return idsSince(sim, before), nil
	case "square_circle":
		before := sim.StoreSize()
		sim.CreateSquareCircle(l.Count, l.CenterX, l.CenterY, l.Deviation, l.Fixed)
		return idsSince(sim, before), nil
	case "hex_grid":
		before := sim.StoreSize()
		sim.CreateHexagonalGrid(l.CountX, l.CountY, l.CenterX, l.CenterY, l.Deviation, l.Fixed)
		return idsSince(sim, before), nil
	case "hex_circle":
		before := sim.StoreSize()
		sim.CreateHexagonalCircle(l.Count, l.CenterX, l.CenterY, l.Deviation, l.Fixed)
		return idsSince(sim, before), nil
	default:
		return nil, fmt.Errorf("pattern: unknown layout kind %q", l.Kind)
	}
}

func idsSince(sim *tissue.Simulation, before int) []tissue.CellId {
	after := sim.StoreSize()
	ids := make([]tissue.CellId, 0, after-before)
	for i := before; i < after; i++ {
		ids = append(ids, tissue.CellId(i))
	}
	return ids
}

func applySet(s SetSpec, id tissue.CellId, sim *tissue.Simulation) error {
	if s.Concentration != nil {
		sim.SetCellConcentration(id, s.Concentration.Chemical, s.Concentration.Value, s.Concentration.Deviation)
	}
	if s.DiffusionUse != nil {
		sim.SetCellDiffusion(id, s.DiffusionUse.Chemical, s.DiffusionUse.Value, s.DiffusionUse.Deviation)
	}
	if s.PolarityAngle != nil {
		sim.SetCellPolarity(id, *s.PolarityAngle, s.PolarityDev, true)
	}
	if s.Fixed != nil {
		sim.SetCellFixed(id, *s.Fixed)
	}
	return nil
}

func toParam(p ParamSpec) (tissue.Param, error) {
	switch p.Kind {
	case "const":
		v, err := cast.ToFloat64E(p.Value)
		if err != nil {
			return tissue.Param{}, fmt.Errorf("const value: %w", err)
		}
		return tissue.Const(v), nil
	case "conc":
		return tissue.Conc(p.Index), nil
	case "diff":
		return tissue.Diff(p.Index), nil
	case "mapping":
		return tissue.Mapping(p.Index), nil
	case "neighbors":
		return tissue.Neighbors, nil
	case "age":
		return tissue.Age, nil
	case "birth":
		return tissue.Birth, nil
	default:
		return tissue.Param{}, fmt.Errorf("unknown parameter kind %q", p.Kind)
	}
}

func toRule(r RuleSpec) (tissue.Rule, error) {
	pred, predParams, err := toPredicate(r.Predicate)
	if err != nil {
		return tissue.Rule{}, err
	}
	action, actParams, err := toAction(r.Action)
	if err != nil {
		return tissue.Rule{}, err
	}
	return tissue.Rule{
		From: r.From, Until: r.Until,
		Predicate: pred, PredParams: predParams,
		Action: action, ActParams: actParams,
	}, nil
}

func toPredicate(p PredicateSpec) (tissue.Predicate, [3]tissue.Param, error) {
	params, err := toParams(p.Params)
	if err != nil {
		return 0, [3]tissue.Param{}, err
	}
	var fixed [3]tissue.Param
	copy(fixed[:], params)

	switch p.Kind {
	case "", "always":
		pred, ps := tissue.AlwaysTrue()
		return pred, ps, nil
	case "eq":
		return tissue.Compare(tissue.IfEqual, fixed[0], fixed[1])
	case "neq":
		return tissue.Compare(tissue.IfNotEqual, fixed[0], fixed[1])
	case "lt":
		return tissue.Compare(tissue.IfLessThan, fixed[0], fixed[1])
	case "le":
		return tissue.Compare(tissue.IfLessEqual, fixed[0], fixed[1])
	case "gt":
		return tissue.Compare(tissue.IfGreaterThan, fixed[0], fixed[1])
	case "ge":
		return tissue.Compare(tissue.IfGreaterEqual, fixed[0], fixed[1])
	case "interval":
		pred, ps := tissue.InInterval(fixed[0], fixed[1], fixed[2])
		return pred, ps, nil
	case "probability":
		pred, ps := tissue.WithProbability(fixed[0])
		return pred, ps, nil
	default:
		return 0, [3]tissue.Param{}, fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
}

func toParams(specs []ParamSpec) ([]tissue.Param, error) {
	out := make([]tissue.Param, len(specs))
	for i, s := range specs {
		p, err := toParam(s)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func toAction(a ActionSpec) (tissue.Action, [6]tissue.Param, error) {
	resolve := func(p ParamSpec) (tissue.Param, error) { return toParam(p) }

	switch a.Kind {
	case "react_gs":
		s, err := resolve(a.S)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		f, err := resolve(a.F)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		k, err := resolve(a.K)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.ReactGSAction(a.U, a.V, s, f, k)
		return act, ps, nil

	case "react_tu":
		s, err := resolve(a.S)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		alpha, err := resolve(a.Alpha)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		beta, err := resolve(a.Beta)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.ReactTUAction(a.U, a.V, s, alpha, beta)
		return act, ps, nil

	case "react_li":
		s, err := resolve(a.S)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		aCoef, err := resolve(a.A)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		b, err := resolve(a.B)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.ReactLIAction(a.U, s, aCoef, b)
		return act, ps, nil

	case "react_cu":
		s, err := resolve(a.S)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		aCoef, err := resolve(a.A)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		b, err := resolve(a.B)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		c, err := resolve(a.C)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.ReactCUAction(a.U, s, aCoef, b, c)
		return act, ps, nil

	case "change":
		target, err := resolve(a.Target)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		val, err := resolve(a.Val)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		dev, err := resolve(a.Dev)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.ChangeAction(target, val, dev)
		return act, ps, nil

	case "map":
		val, err := resolve(a.Val)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.MapAction(val, a.Lo, a.Hi, a.Slot, a.OutLo, a.OutHi)
		return act, ps, nil

	case "polarize":
		act, ps := tissue.PolarizeAction(a.Source)
		return act, ps, nil

	case "divide":
		dir, err := resolve(a.Dir)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		dev, err := resolve(a.Dev)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.DivideAction(dir, dev)
		return act, ps, nil

	case "move":
		val, err := resolve(a.Val)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		dev, err := resolve(a.Dev)
		if err != nil {
			return 0, [6]tissue.Param{}, err
		}
		act, ps := tissue.MoveAction(val, dev)
		return act, ps, nil

	case "and":
		act, ps := tissue.AndAction()
		return act, ps, nil

	default:
		return 0, [6]tissue.Param{}, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}
