package coalescefii

import "math"

// logScaleBuckets is the width of the 3-bit score encoding (0-7).
const logScaleBuckets = 7

// Decode3BitLogScale expands a 3-bit (0-7) log-scaled code back to a
// number in [0, factor]. It is continuous with the raw_scoredist > 7
// linear branch used by Cover.Scoredist: decode(7, factor) == factor,
// matching (factor/7)*7 at the boundary.
func Decode3BitLogScale(code int, factor float64) float64 {
	if code <= 0 || factor <= 0 {
		return 0
	}
	if code > logScaleBuckets {
		code = logScaleBuckets
	}
	top := math.Pow(2, logScaleBuckets) - 1
	return factor * (math.Pow(2, float64(code)) - 1) / top
}
