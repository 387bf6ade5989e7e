package models

import "time"

// EntitlementRecord is the persisted entitlement state.
type EntitlementRecord struct {
	TrialStartTimestamp *time.Time `json:"trialStartTimestamp,omitempty"`
	ProStatus           bool       `json:"proStatus"`
}

// EntitlementStatus is a consistent snapshot of everything derived from the
// entitlement record at a single instant.
type EntitlementStatus struct {
	TrialStart         *time.Time
	CheckedAt          time.Time
	TrialDaysRemaining int
	TrialDurationDays  int
	IsPro              bool
	TrialStarted       bool
	TrialActive        bool
	TrialExpired       bool
	CanUseApp          bool
}

// Tier returns the display tier for the status.
func (s EntitlementStatus) Tier() Tier {
	switch {
	case s.IsPro:
		return TierPro
	case s.TrialActive:
		return TierTrial
	default:
		return TierExpired
	}
}

// Tier is the user's access level.
type Tier string

const (
	// TierPro is a confirmed purchase or restore.
	TierPro Tier = "PRO"
	// TierTrial is an active free trial.
	TierTrial Tier = "TRIAL"
	// TierExpired is a trial that has run out without a purchase.
	TierExpired Tier = "EXPIRED"
)
