package predictive

import "math"

// AdaptiveSearchParams widens branch and depth limits for ambiguous queries
// and tightens them for specific ones. A near-empty seed pool counts as extra
// ambiguity. Branches are clamped to [1, 8], depth to [1, 5].
func AdaptiveSearchParams(context string, requestedBranches, requestedDepth, seedCount int) (branches, depth int) {
	ambiguity := QueryAmbiguity(context)
	if seedCount <= 1 {
		ambiguity = math.Min(1.0, ambiguity+0.2)
	}

	branchScale := 0.8 + ambiguity
	depthScale := 0.9 + 0.5*ambiguity

	branches = int(math.Round(float64(requestedBranches) * branchScale))
	depth = int(math.Round(float64(requestedDepth) * depthScale))

	branches = clampInt(branches, 1, 8)
	depth = clampInt(depth, 1, 5)
	return branches, depth
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
