// Package billing implements the quarter-hour rounding policy applied at
// every boundary where seconds are translated to remote billable hours.
package billing

import "math"

// MinBillableHours is the smallest billable unit: any positive duration is
// billed as at least a quarter hour.
const MinBillableHours = 0.25

// RoundHours rounds hours up to the next quarter-hour increment, with a
// floor of 0.25h for any positive duration. Zero stays zero.
//
// The formula max(ceil(h*4)/4, 0.25) determines what gets billed and must
// not be changed.
func RoundHours(hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	rounded := math.Ceil(hours*4) / 4
	if rounded < MinBillableHours {
		return MinBillableHours
	}
	return rounded
}

// RoundQuarterHours converts a duration in seconds to billable hours using
// the quarter-hour rounding policy.
func RoundQuarterHours(seconds float64) float64 {
	return RoundHours(seconds / 3600.0)
}
