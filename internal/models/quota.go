package models

// QuotaRecord is the persisted usage state.
type QuotaRecord struct {
	LastFlipDate        string       `json:"lastFlipDate"`
	FlipLog             []FlipRecord `json:"flipLog"`
	DailyFlipCount      int          `json:"dailyFlipCount"`
	CumulativeFlipCount int          `json:"cumulativeFlipCount"`
	HeadsCount          int          `json:"headsCount"`
	TailsCount          int          `json:"tailsCount"`
}

// UsageStats is a consistent snapshot of the usage ledger for one tier.
// RemainingFlips is -1 when unlimited.
type UsageStats struct {
	Today          string
	DailyFlips     int
	DailyLimit     int
	RemainingFlips int
	TotalFlips     int
	HeadsCount     int
	TailsCount     int
	LoggedFlips    int
}

// Unlimited reports whether the daily cap does not apply.
func (u UsageStats) Unlimited() bool {
	return u.RemainingFlips < 0
}

// HeadsPercent returns the share of heads among all flips.
func (u UsageStats) HeadsPercent() float64 {
	if u.TotalFlips == 0 {
		return 0
	}
	return float64(u.HeadsCount) / float64(u.TotalFlips) * 100
}
