package cancellation

import (
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardTiers() []Tier {
	return []Tier{
		{DaysBeforeMin: 8, FeePercentage: 0},
		{DaysBeforeMin: 4, DaysBeforeMax: intPtr(7), FeePercentage: 30},
		{DaysBeforeMin: 2, DaysBeforeMax: intPtr(3), FeePercentage: 50},
		{DaysBeforeMin: 1, DaysBeforeMax: intPtr(1), FeePercentage: 80},
		{DaysBeforeMin: 0, DaysBeforeMax: intPtr(0), FeePercentage: 100},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPolicy_Calculate_TierBoundaries(t *testing.T) {
	policy, err := NewPolicy(standardTiers(), time.UTC, false)
	require.NoError(t, err)

	now := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		departure time.Time
		days      int
		fee       int
	}{
		{name: "ten days out", departure: date(2024, 1, 25), days: 10, fee: 0},
		{name: "four days out", departure: date(2024, 1, 19), days: 4, fee: 30},
		{name: "two days out", departure: date(2024, 1, 17), days: 2, fee: 50},
		{name: "one day out", departure: date(2024, 1, 16), days: 1, fee: 80},
		{name: "same day", departure: date(2024, 1, 15), days: 0, fee: 100},
		{name: "already departed", departure: date(2024, 1, 10), days: -5, fee: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote := policy.Calculate(100_000, tc.departure, domain.ReservationStatusConfirmed, now)

			assert.True(t, quote.CanCancel)
			assert.Equal(t, tc.days, quote.DaysUntil)
			assert.Equal(t, tc.fee, quote.FeePercentage)
			assert.Equal(t, int64(100_000*tc.fee/100), quote.CancellationFee)
			assert.Equal(t, int64(100_000)-quote.CancellationFee, quote.RefundAmount)
		})
	}
}

func TestPolicy_Calculate_TerminalStatuses(t *testing.T) {
	policy, err := NewPolicy(standardTiers(), time.UTC, false)
	require.NoError(t, err)

	now := date(2024, 1, 15)
	reasons := map[string]bool{}

	for _, status := range []domain.ReservationStatus{
		domain.ReservationStatusCancelled,
		domain.ReservationStatusCompleted,
		domain.ReservationStatusNoShow,
	} {
		quote := policy.Calculate(100_000, date(2024, 1, 25), status, now)

		assert.False(t, quote.CanCancel, status)
		assert.NotEmpty(t, quote.Reason, status)
		assert.Zero(t, quote.FeePercentage)
		assert.Zero(t, quote.CancellationFee)
		assert.Zero(t, quote.RefundAmount)
		reasons[quote.Reason] = true
	}
	assert.Len(t, reasons, 3)
}

func TestPolicy_Calculate_ExactArithmetic(t *testing.T) {
	policy, err := NewPolicy(standardTiers(), time.UTC, false)
	require.NoError(t, err)

	now := date(2024, 1, 15)
	first := policy.Calculate(100_000, date(2024, 1, 20), domain.ReservationStatusPending, now)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, policy.Calculate(100_000, date(2024, 1, 20), domain.ReservationStatusPending, now))
	}
	assert.Equal(t, 30, first.FeePercentage)
	assert.Equal(t, int64(30_000), first.CancellationFee)
	assert.Equal(t, int64(70_000), first.RefundAmount)
}

func TestPolicy_Calculate_FloorsFee(t *testing.T) {
	policy, err := NewPolicy(standardTiers(), time.UTC, false)
	require.NoError(t, err)

	quote := policy.Calculate(999, date(2024, 1, 19), domain.ReservationStatusConfirmed, date(2024, 1, 15))

	assert.Equal(t, int64(299), quote.CancellationFee)
	assert.Equal(t, int64(700), quote.RefundAmount)
}

func TestDaysUntil(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on the 14th is already the 15th in Tokyo.
	now := time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC)
	departure := time.Date(2024, 1, 16, 10, 0, 0, 0, tokyo)

	assert.Equal(t, 1, DaysUntil(departure, now, tokyo))
	assert.Equal(t, 2, DaysUntil(departure, now, time.UTC))
	assert.Equal(t, 0, DaysUntil(now, now, time.UTC))
	assert.Equal(t, -3, DaysUntil(date(2024, 1, 12), date(2024, 1, 15), nil))
}

func TestDaysUntil_AcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, ny)
	departure := time.Date(2024, 3, 11, 0, 30, 0, 0, ny)

	assert.Equal(t, 2, DaysUntil(departure, now, ny))
}

func TestFindTier(t *testing.T) {
	tiers := standardTiers()

	assert.Equal(t, 80, FindTier(1, tiers).FeePercentage)
	assert.Equal(t, 0, FindTier(365, tiers).FeePercentage)
	assert.Equal(t, 100, FindTier(-1, []Tier{{DaysBeforeMin: 0, FeePercentage: 0}}).FeePercentage)

	gapped := []Tier{
		{DaysBeforeMin: 10, FeePercentage: 0},
		{DaysBeforeMin: 0, DaysBeforeMax: intPtr(2), FeePercentage: 60},
	}
	assert.Equal(t, 60, FindTier(5, gapped).FeePercentage, "gap falls back to the highest fee")
}

func TestNewPolicy_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		tiers    []Tier
		catchAll bool
		wantErr  bool
	}{
		{name: "contiguous table", tiers: standardTiers()},
		{name: "empty", tiers: nil, wantErr: true},
		{
			name: "overlap",
			tiers: []Tier{
				{DaysBeforeMin: 3, FeePercentage: 0},
				{DaysBeforeMin: 0, DaysBeforeMax: intPtr(5), FeePercentage: 50},
			},
			wantErr: true,
		},
		{
			name: "overlap is rejected even with catch-all",
			tiers: []Tier{
				{DaysBeforeMin: 3, FeePercentage: 0},
				{DaysBeforeMin: 0, DaysBeforeMax: intPtr(5), FeePercentage: 50},
			},
			catchAll: true,
			wantErr:  true,
		},
		{
			name: "two open-ended tiers",
			tiers: []Tier{
				{DaysBeforeMin: 0, FeePercentage: 100},
				{DaysBeforeMin: 5, FeePercentage: 0},
			},
			wantErr: true,
		},
		{
			name: "gap without catch-all",
			tiers: []Tier{
				{DaysBeforeMin: 5, FeePercentage: 0},
				{DaysBeforeMin: 0, DaysBeforeMax: intPtr(2), FeePercentage: 50},
			},
			wantErr: true,
		},
		{
			name: "gap with catch-all",
			tiers: []Tier{
				{DaysBeforeMin: 5, FeePercentage: 0},
				{DaysBeforeMin: 0, DaysBeforeMax: intPtr(2), FeePercentage: 50},
			},
			catchAll: true,
		},
		{
			name:    "does not start at day zero",
			tiers:   []Tier{{DaysBeforeMin: 1, FeePercentage: 0}},
			wantErr: true,
		},
		{
			name:    "bounded top",
			tiers:   []Tier{{DaysBeforeMin: 0, DaysBeforeMax: intPtr(30), FeePercentage: 0}},
			wantErr: true,
		},
		{
			name:    "fee above 100",
			tiers:   []Tier{{DaysBeforeMin: 0, FeePercentage: 120}},
			wantErr: true,
		},
		{
			name:    "inverted range",
			tiers:   []Tier{{DaysBeforeMin: 4, DaysBeforeMax: intPtr(2), FeePercentage: 10}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(tc.tiers, time.UTC, tc.catchAll)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTierConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPolicy_CatchAllChargesHighestFee(t *testing.T) {
	policy, err := NewPolicy([]Tier{
		{DaysBeforeMin: 10, FeePercentage: 0},
		{DaysBeforeMin: 0, DaysBeforeMax: intPtr(2), FeePercentage: 70},
	}, time.UTC, true)
	require.NoError(t, err)

	quote := policy.Calculate(10_000, date(2024, 1, 20), domain.ReservationStatusConfirmed, date(2024, 1, 15))

	assert.Equal(t, 70, quote.FeePercentage)
	assert.Equal(t, int64(7_000), quote.CancellationFee)
}

func TestNewPolicyFromConfig(t *testing.T) {
	seven, three, one, zero := 7, 3, 1, 0
	policy, err := NewPolicyFromConfig(config.CancellationConfig{
		Timezone: "Asia/Tokyo",
		Tiers: []config.TierConfig{
			{DaysBeforeMin: 8, FeePercentage: 0},
			{DaysBeforeMin: 4, DaysBeforeMax: &seven, FeePercentage: 30},
			{DaysBeforeMin: 2, DaysBeforeMax: &three, FeePercentage: 50},
			{DaysBeforeMin: 1, DaysBeforeMax: &one, FeePercentage: 80},
			{DaysBeforeMin: 0, DaysBeforeMax: &zero, FeePercentage: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", policy.Location().String())
	assert.Len(t, policy.Tiers(), 5)
	assert.Equal(t, 0, policy.Tiers()[0].DaysBeforeMin)

	_, err = NewPolicyFromConfig(config.CancellationConfig{Timezone: "Nowhere/Invalid", Tiers: []config.TierConfig{{}}})
	assert.ErrorIs(t, err, domain.ErrInvalidTierConfiguration)
}

func TestTier_String(t *testing.T) {
	seven := 7
	assert.Equal(t, "4-7d:30%", Tier{DaysBeforeMin: 4, DaysBeforeMax: &seven, FeePercentage: 30}.String())
	assert.Equal(t, "8+d:0%", Tier{DaysBeforeMin: 8}.String())
	assert.Equal(t, "0-0d:100%", FindTier(-3, nil).String())

	policy, err := NewPolicy(standardTiers(), time.UTC, false)
	require.NoError(t, err)
	assert.Equal(t, "[0-0d:100% 1-1d:80% 2-3d:50% 4-7d:30% 8+d:0%]", fmt.Sprintf("%v", policy.Tiers()))
}
