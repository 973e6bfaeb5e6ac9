package tissue

import "math"

// interactWithNeighbors folds every neighbor's contribution into next,
// the way simulation_single_step's inner "locate and interact" loop
// does: diffusion per chemical, a polarity gradient accumulation when a
// rule fired Polarize this step, marker propagation for the tracked
// cell, and pairwise collision response. It returns the neighbor count
// for this cell this step.
func interactWithNeighbors(curr *Cell, next *Cell, curCells []Cell, neighborIDs []CellId, chemicals []Chemical, dt float64, polaritySource int, trackedID CellId) int {
	count := 0
	for _, nid := range neighborIDs {
		neig := &curCells[nid]

		dx := neig.X - curr.X
		dy := neig.Y - curr.Y
		norm := math.Sqrt(dx*dx + dy*dy)

		// relocate a wrapped neighbor into a nearby position
		if norm > InfluenceRange {
			switch {
			case dx > InfluenceRange:
				dx = -2
			case dx < -InfluenceRange:
				dx = 2
			}
			switch {
			case dy > InfluenceRange:
				dy = -2
			case dy < -InfluenceRange:
				dy = 2
			}
			norm = math.Sqrt(dx*dx + dy*dy)
		}

		count++

		for ch := range chemicals {
			d := math.Min(neig.Diff[ch], curr.Diff[ch])
			delta := neig.Conc[ch] - curr.Conc[ch]
			if chemicals[ch].Anisotropic {
				dot := 1.0
				if curr.PX != 0 || curr.PY != 0 {
					dot = math.Abs(dx*curr.PX+dy*curr.PY) / norm
				}
				next.Conc[ch] += d * delta * dt * dot
			} else {
				next.Conc[ch] += d * delta * dt
			}
		}

		if polaritySource != -1 {
			grad := neig.Conc[polaritySource] - curr.Conc[polaritySource]
			next.PX += grad * dx / norm
			next.PY += grad * dy / norm
		}

		if nid == trackedID {
			next.Marker = true
		}

		if !curr.Fixed {
			if norm > 0 && norm < 2 {
				next.X -= (0.5/norm - 0.25) * dx
				next.Y -= (0.5/norm - 0.25) * dy
			}
		}
	}
	next.Neighbors = count
	return count
}

// finalizeCell clamps position into the domain, clamps each
// concentration into [0, limit], and normalizes (or holds) the
// polarity vector, mirroring the "limit final position and
// concentrations" and "normalize polarity vector" blocks of
// simulation_single_step.
func finalizeCell(curr, next *Cell, chemicals []Chemical, domainXMin, domainXMax, domainYMin, domainYMax float64, polaritySource int) {
	next.X = clamp(next.X, domainXMin, domainXMax)
	next.Y = clamp(next.Y, domainYMin, domainYMax)

	for ch := range chemicals {
		if next.Conc[ch] < 0 {
			next.Conc[ch] = 0
		} else if next.Conc[ch] > chemicals[ch].Limit {
			next.Conc[ch] = chemicals[ch].Limit
		}
	}

	if polaritySource != -1 {
		n := math.Sqrt(next.PX*next.PX + next.PY*next.PY)
		if n > 0.0001 {
			next.PX /= n
			next.PY /= n
		} else {
			next.PX = curr.PX
			next.PY = curr.PY
		}
	}
}
