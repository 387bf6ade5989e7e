// Package purchase connects an external store (purchase, restore, current
// entitlement) to the entitlement engine.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/j-veylop/coinflip-tui/internal/logger"
)

var (
	// ErrNotConfirmed is returned when the store did not confirm the
	// transaction (declined or cancelled).
	ErrNotConfirmed = errors.New("purchase not confirmed")
	// ErrUnknownPlan is returned for plan ids outside Plans.
	ErrUnknownPlan = errors.New("unknown plan")
)

// EntitlementID is the store entitlement that unlocks Pro.
const EntitlementID = "pro"

// PlanID identifies a store product.
type PlanID string

// Store product ids.
const (
	PlanMonthly  PlanID = "coin_pro_monthly"
	PlanYearly   PlanID = "coin_pro_yearly"
	PlanLifetime PlanID = "coin_pro_lifetime"
)

// Plan is a purchasable product as shown on the paywall.
type Plan struct {
	ID     PlanID
	Name   string
	Price  string
	Period string
	Note   string
}

// Plans lists the paywall products, recommended first.
var Plans = []Plan{
	{ID: PlanYearly, Name: "Yearly", Price: "$19.99", Period: "/ year", Note: "SAVE 45%"},
	{ID: PlanMonthly, Name: "Monthly", Price: "$2.99", Period: "/ month"},
	{ID: PlanLifetime, Name: "Lifetime", Price: "$49.99", Period: "one-time"},
}

// LookupPlan resolves a plan by id or by short name ("yearly").
func LookupPlan(s string) (Plan, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Plans {
		if string(p.ID) == s || strings.ToLower(p.Name) == s {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, s)
}

// Provider is the external billing collaborator.
type Provider interface {
	Purchase(ctx context.Context, plan PlanID) (bool, error)
	Restore(ctx context.Context) (bool, error)
	CheckEntitlement(ctx context.Context) (bool, error)
}

// Entitlements receives confirmed Pro status.
type Entitlements interface {
	SetProStatus(pro bool)
}

// Recorder observes purchase attempts. kind is "purchase", "restore" or
// "check"; outcome is "confirmed", "declined" or "error".
type Recorder interface {
	RecordPurchase(kind, outcome string)
}

// Service applies provider results to the entitlement engine. It never
// retries and never clears Pro status.
type Service struct {
	provider Provider
	ent      Entitlements
	recorder Recorder
}

// NewService creates a purchase service. recorder may be nil.
func NewService(provider Provider, ent Entitlements, recorder Recorder) *Service {
	return &Service{provider: provider, ent: ent, recorder: recorder}
}

// Purchase buys plan and unlocks Pro when the store confirms it.
func (s *Service) Purchase(ctx context.Context, plan PlanID) error {
	if _, err := LookupPlan(string(plan)); err != nil {
		return err
	}
	ok, err := s.provider.Purchase(ctx, plan)
	return s.apply(ctx, "purchase", ok, err, "plan", string(plan))
}

// Restore re-applies a previous purchase.
func (s *Service) Restore(ctx context.Context) error {
	ok, err := s.provider.Restore(ctx)
	return s.apply(ctx, "restore", ok, err)
}

// Sync asks the store for the current entitlement and unlocks Pro if it is
// active. An inactive entitlement leaves local state alone.
func (s *Service) Sync(ctx context.Context) (bool, error) {
	ok, err := s.provider.CheckEntitlement(ctx)
	if err != nil {
		s.record("check", "error")
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	if ok {
		s.record("check", "confirmed")
		s.ent.SetProStatus(true)
	} else {
		s.record("check", "declined")
	}
	return ok, nil
}

func (s *Service) apply(_ context.Context, kind string, ok bool, err error, attrs ...any) error {
	switch {
	case err != nil:
		s.record(kind, "error")
		logger.Warn(kind+" failed", append(attrs, "error", err)...)
		return fmt.Errorf("%s failed: %w", kind, err)
	case !ok:
		s.record(kind, "declined")
		logger.Info(kind+" not confirmed", attrs...)
		return ErrNotConfirmed
	}
	s.record(kind, "confirmed")
	logger.Info(kind+" confirmed", attrs...)
	s.ent.SetProStatus(true)
	return nil
}

func (s *Service) record(kind, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordPurchase(kind, outcome)
	}
}
