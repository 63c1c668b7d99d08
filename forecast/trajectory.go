package forecast

import "math"

// PositionAtMonth estimates a keyword's ranking in the given 1-based month.
//
// The gap to the target is spread evenly over the horizon and slowed by
// difficulty; at month 1 the keyword sits at its starting position. The
// result never goes past the target. When the target is a worse rank than
// the current one the clamp puts the keyword on the target from month 1.
func PositionAtMonth(k Keyword, month, horizon int) float64 {
	rawDelta := (k.Position - k.TargetPosition) / float64(horizon)
	difficultyFactor := 1 - float64(k.Difficulty)/100
	adjustedDelta := rawDelta * difficultyFactor
	return math.Max(k.TargetPosition, k.Position-adjustedDelta*float64(month-1))
}
