package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLedger is an in-memory Ledger for eligibility tests.
type mockLedger struct {
	uses     map[string]int
	redeemed map[string]bool // keyed by discountID + "/" + customerID
}

func (m *mockLedger) Uses(_ context.Context, discountID string) (int, error) {
	return m.uses[discountID], nil
}

func (m *mockLedger) Redeemed(_ context.Context, discountID, customerID string) (bool, error) {
	return m.redeemed[discountID+"/"+customerID], nil
}

func (m *mockLedger) Reserve(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockLedger) Release(_ context.Context, _, _ string) error {
	return nil
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	base := Rule{
		ID:         "dsc-1",
		Code:       "SAVE20",
		Kind:       KindOrder,
		AmountKind: AmountPercentage,
		Value:      d("20"),
		Active:     true,
		Automatic:  true,
		StartsAt:   past,
		Minimum:    NoMinimum(),
	}

	tests := []struct {
		name       string
		mutate     func(r *Rule)
		customerID string
		couponCode string
		ledger     mockLedger
		want       bool
		wantReason Reason
	}{
		{
			name:   "active automatic rule passes",
			mutate: func(r *Rule) {},
			want:   true,
		},
		{
			name:       "inactive rule",
			mutate:     func(r *Rule) { r.Active = false },
			wantReason: ReasonInactive,
		},
		{
			name:       "not yet started",
			mutate:     func(r *Rule) { r.StartsAt = future },
			wantReason: ReasonOutOfWindow,
		},
		{
			name:       "already ended",
			mutate:     func(r *Rule) { r.EndsAt = &past },
			wantReason: ReasonOutOfWindow,
		},
		{
			name: "open-ended window passes",
			mutate: func(r *Rule) {
				r.EndsAt = nil
			},
			want: true,
		},
		{
			name:       "coupon rule with matching code",
			mutate:     func(r *Rule) { r.Automatic = false },
			couponCode: "SAVE20",
			want:       true,
		},
		{
			name:       "coupon rule with wrong code",
			mutate:     func(r *Rule) { r.Automatic = false },
			couponCode: "SAVE21",
			wantReason: ReasonCodeMismatch,
		},
		{
			name:       "coupon code match is case-sensitive",
			mutate:     func(r *Rule) { r.Automatic = false },
			couponCode: "save20",
			wantReason: ReasonCodeMismatch,
		},
		{
			name:       "coupon rule with no code supplied",
			mutate:     func(r *Rule) { r.Automatic = false },
			wantReason: ReasonCodeMismatch,
		},
		{
			name:       "automatic rule ignores supplied code",
			mutate:     func(r *Rule) {},
			couponCode: "TOTALLY-DIFFERENT",
			want:       true,
		},
		{
			name: "usage cap exhausted",
			mutate: func(r *Rule) {
				r.Caps = UsageCaps{LimitUses: true, MaxUses: 1}
			},
			ledger:     mockLedger{uses: map[string]int{"dsc-1": 1}},
			wantReason: ReasonUsesExceeded,
		},
		{
			name: "usage cap with room left",
			mutate: func(r *Rule) {
				r.Caps = UsageCaps{LimitUses: true, MaxUses: 5}
			},
			ledger: mockLedger{uses: map[string]int{"dsc-1": 4}},
			want:   true,
		},
		{
			name: "once per customer without customer id",
			mutate: func(r *Rule) {
				r.Caps = UsageCaps{OncePerCustomer: true}
			},
			wantReason: ReasonAlreadyRedeemed,
		},
		{
			name: "once per customer already redeemed",
			mutate: func(r *Rule) {
				r.Caps = UsageCaps{OncePerCustomer: true}
			},
			customerID: "cust-1",
			ledger:     mockLedger{redeemed: map[string]bool{"dsc-1/cust-1": true}},
			wantReason: ReasonAlreadyRedeemed,
		},
		{
			name: "once per customer first redemption",
			mutate: func(r *Rule) {
				r.Caps = UsageCaps{OncePerCustomer: true}
			},
			customerID: "cust-1",
			want:       true,
		},
		{
			name:       "customer allow-list excludes customer",
			mutate:     func(r *Rule) { r.CustomerIDs = []string{"cust-9"} },
			customerID: "cust-1",
			wantReason: ReasonCustomerNotAllowed,
		},
		{
			name:       "customer allow-list includes customer",
			mutate:     func(r *Rule) { r.CustomerIDs = []string{"cust-1", "cust-9"} },
			customerID: "cust-1",
			want:       true,
		},
		{
			name:       "empty allow-list is open to all",
			mutate:     func(r *Rule) { r.CustomerIDs = nil },
			customerID: "anyone",
			want:       true,
		},
		{
			name:       "percentage above 100 is malformed",
			mutate:     func(r *Rule) { r.Value = d("120") },
			wantReason: ReasonMalformed,
		},
		{
			name:       "negative value is malformed",
			mutate:     func(r *Rule) { r.Value = d("-5") },
			wantReason: ReasonMalformed,
		},
		{
			name: "starts after end is malformed",
			mutate: func(r *Rule) {
				r.StartsAt = future
				r.EndsAt = &past
			},
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := base
			tt.mutate(&rule)

			got, err := Evaluate(context.Background(), &rule, now, tt.customerID, tt.couponCode, &tt.ledger)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got.Eligible)
			if !tt.want {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestEvaluateShortCircuitOrder(t *testing.T) {
	// An inactive rule with a wrong code must report inactive, not the code
	// mismatch: checks run in a fixed order.
	rule := Rule{
		ID:       "dsc-2",
		Code:     "STACKED",
		Kind:     KindOrder,
		Active:   false,
		StartsAt: time.Now().Add(24 * time.Hour),
	}

	got, err := Evaluate(context.Background(), &rule, time.Now(), "", "WRONG", &mockLedger{})
	require.NoError(t, err)
	assert.False(t, got.Eligible)
	assert.Equal(t, ReasonInactive, got.Reason)
}
