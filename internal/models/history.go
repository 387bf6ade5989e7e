package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days TimeRange = iota
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all recorded flip events.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}

// DailyFlipCount is the number of flips recorded on one calendar day.
type DailyFlipCount struct {
	Date  time.Time
	Heads int
	Tails int
}

// Total returns heads plus tails for the day.
func (d DailyFlipCount) Total() int {
	return d.Heads + d.Tails
}

// FlipHistoryStats summarizes the flip event log over a time range.
type FlipHistoryStats struct {
	FirstFlip     time.Time
	LastFlip      time.Time
	Daily         []DailyFlipCount
	TimeRange     TimeRange
	TotalFlips    int
	Heads         int
	Tails         int
	LongestStreak int
	StreakOutcome Outcome
}

// HasData returns true if any flips fall inside the range.
func (s *FlipHistoryStats) HasData() bool {
	return s.TotalFlips > 0
}

// BusiestDay returns the day with the most flips.
func (s *FlipHistoryStats) BusiestDay() (day time.Time, count int) {
	for _, d := range s.Daily {
		if d.Total() > count {
			count = d.Total()
			day = d.Date
		}
	}
	return day, count
}

// LongestStreak returns the longest run of identical outcomes in records,
// which are expected newest first.
func LongestStreak(records []FlipRecord) (int, Outcome) {
	best, run := 0, 0
	var bestOutcome, prev Outcome
	for _, r := range records {
		if r.Result == prev {
			run++
		} else {
			run = 1
			prev = r.Result
		}
		if run > best {
			best = run
			bestOutcome = r.Result
		}
	}
	return best, bestOutcome
}
