package model

// Trend classifies the direction of a price change for display.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendDeclining Trend = "DECLINING"
	TrendMixed     Trend = "MIXED"
)

// Classify maps a pair of signed deltas to a Trend. Zero deltas and
// sign disagreement both land on TrendMixed.
func Classify(deltaHigh, deltaLow float64) Trend {
	switch {
	case deltaHigh > 0 && deltaLow > 0:
		return TrendImproving
	case deltaHigh < 0 && deltaLow < 0:
		return TrendDeclining
	default:
		return TrendMixed
	}
}
