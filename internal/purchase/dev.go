package purchase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/clock"
	"github.com/j-veylop/coinflip-tui/internal/store"
)

// Receipt is the record DevProvider keeps of a simulated purchase.
type Receipt struct {
	PurchasedAt time.Time `json:"purchasedAt"`
	Plan        PlanID    `json:"plan"`
	Entitlement string    `json:"entitlement"`
}

// DevProvider stands in for a real store when none is configured. Every
// purchase is confirmed and its receipt kept in kv, so Restore works across
// restarts on the same device.
type DevProvider struct {
	kv      store.KV
	clock   clock.Clock
	Decline bool
}

// NewDevProvider returns a provider backed by kv.
func NewDevProvider(kv store.KV, clk clock.Clock) *DevProvider {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &DevProvider{kv: kv, clock: clk}
}

// Purchase records a receipt unless Decline is set.
func (d *DevProvider) Purchase(ctx context.Context, plan PlanID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if d.Decline {
		return false, nil
	}
	data, err := json.Marshal(Receipt{Plan: plan, PurchasedAt: d.clock.Now(), Entitlement: EntitlementID})
	if err != nil {
		return false, err
	}
	if err := d.kv.Save(ctx, store.KeyPurchases, data); err != nil {
		return false, fmt.Errorf("failed to store receipt: %w", err)
	}
	return true, nil
}

// Restore reports whether a receipt exists.
func (d *DevProvider) Restore(ctx context.Context) (bool, error) {
	return d.CheckEntitlement(ctx)
}

// CheckEntitlement reports whether a receipt exists.
func (d *DevProvider) CheckEntitlement(ctx context.Context) (bool, error) {
	r, err := d.Receipt(ctx)
	if err != nil {
		return false, err
	}
	return r != nil && r.Entitlement == EntitlementID, nil
}

// Receipt returns the stored receipt, or nil if none.
func (d *DevProvider) Receipt(ctx context.Context) (*Receipt, error) {
	var r Receipt
	found, err := store.LoadJSON(ctx, d.kv, store.KeyPurchases, &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &r, nil
}
