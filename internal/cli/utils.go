package cli

import (
	"fmt"

	"github.com/dkrasnovs/timetrack/internal/billing"
)

// formatHMS renders seconds as hh:mm:ss.
func formatHMS(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// formatBillable renders seconds as quarter-hour-rounded hours.
func formatBillable(seconds float64) string {
	return fmt.Sprintf("%.2f h", billing.RoundQuarterHours(seconds))
}
