// Package goal detects projected-total threshold crossings between two
// observations.
package goal

// Crossing is the direction a projection moved across the goal threshold.
type Crossing int

const (
	// None means no crossing happened (or none could be determined).
	None Crossing = iota
	// BelowToAbove means the projection rose from under the goal to at or
	// above it.
	BelowToAbove
	// AboveToBelow means the projection fell from at or above the goal to
	// under it.
	AboveToBelow
)

// String returns a stable name for logs and notification payloads.
func (c Crossing) String() string {
	switch c {
	case BelowToAbove:
		return "below_to_above"
	case AboveToBelow:
		return "above_to_below"
	default:
		return "none"
	}
}

// DetectCrossing compares two projected totals against a goal. previous is
// nil when no earlier projection exists for the day; a nil previous or an
// unset goal (<= 0) never produces a crossing. Pure and deterministic: the
// same inputs always yield the same result.
func DetectCrossing(previous *float64, current, goal float64) Crossing {
	if previous == nil || goal <= 0 {
		return None
	}
	switch {
	case *previous < goal && goal <= current:
		return BelowToAbove
	case *previous >= goal && goal > current:
		return AboveToBelow
	default:
		return None
	}
}
