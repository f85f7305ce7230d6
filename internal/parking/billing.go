package parking

import "time"

const (
	VIPHourlyRate      = 15.0
	StandardHourlyRate = 20.0

	// MinimumBillableHours is the 30 minute minimum charge.
	MinimumBillableHours = 0.5
)

func HourlyRate(tier Tier) float64 {
	if tier.IsVIP() {
		return VIPHourlyRate
	}
	return StandardHourlyRate
}

// ComputeFee bills the time between arrival and exit. An exit before the
// arrival counts as zero elapsed time, so the minimum charge applies.
func ComputeFee(arrival, exit time.Time, tier Tier) float64 {
	elapsed := exit.Sub(arrival)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed.Hours()
	if hours < MinimumBillableHours {
		hours = MinimumBillableHours
	}
	return hours * HourlyRate(tier)
}
