// Package tissue implements the per-iteration simulation engine for a
// two-dimensional cell tissue: a double-buffered cell store, an ordered
// rule interpreter, a diffusion/collision neighbor pass, and three
// interchangeable nearest-neighbor-search backends.
package tissue

import "math"

// MaxChemicals is the compile-time bound on the number of chemicals any
// single cell can carry concentration and diffusion values for.
const MaxChemicals = 8

// InfluenceRange is the fixed cell interaction radius: the sum of two
// unit cell radii.
const InfluenceRange = 2.0

// defaultStopAt is the step budget used when a pattern doesn't set one.
const defaultStopAt = 10000

// noStopAt is the sentinel meaning "run until stability or step budget".
const noStopAt = -1

// NoCell is the sentinel CellId returned when the store has no capacity
// left for a new cell.
const NoCell CellId = -1

// MaxMappings bounds the number of process-wide mapping slots a pattern's
// Map actions can write to and Divide/Move/Change actions can read back.
const MaxMappings = 16

// noPolarity is the cell-parameters sentinel meaning "do not set an
// initial polarity", matching the original's FLT_MAX marker.
const noPolarity = math.MaxFloat64
