package cancellation

import (
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

// Tier charges FeePercentage when the departure is between DaysBeforeMin and
// DaysBeforeMax days away, both inclusive. A nil DaysBeforeMax is unbounded.
type Tier struct {
	DaysBeforeMin int
	DaysBeforeMax *int
	FeePercentage int
}

func (t Tier) matches(days int) bool {
	if days < t.DaysBeforeMin {
		return false
	}
	return t.DaysBeforeMax == nil || days <= *t.DaysBeforeMax
}

// String renders the tier as "4-7d:30%" or "8+d:0%".
func (t Tier) String() string {
	if t.DaysBeforeMax == nil {
		return fmt.Sprintf("%d+d:%d%%", t.DaysBeforeMin, t.FeePercentage)
	}
	return fmt.Sprintf("%d-%dd:%d%%", t.DaysBeforeMin, *t.DaysBeforeMax, t.FeePercentage)
}

// departedTier is applied once the departure date has passed.
func departedTier() Tier {
	return Tier{DaysBeforeMin: 0, DaysBeforeMax: intPtr(0), FeePercentage: 100}
}

// Quote is the fee decision for one cancellation.
type Quote struct {
	FeePercentage   int    `json:"fee_percentage"`
	CancellationFee int64  `json:"cancellation_fee"`
	RefundAmount    int64  `json:"refund_amount"`
	DaysUntil       int    `json:"days_until"`
	CanCancel       bool   `json:"can_cancel"`
	Reason          string `json:"reason,omitempty"`
}

// Policy is a validated, read-only tier table. It is safe for concurrent use.
type Policy struct {
	tiers    []Tier
	loc      *time.Location
	catchAll bool
	maxFee   int
}

// NewPolicy validates tiers and builds a Policy. Overlapping ranges are always
// rejected. Gaps (including no tier starting at day 0 or no unbounded top tier)
// are rejected unless catchAll is set, in which case unmatched days charge the
// highest fee in the table.
func NewPolicy(tiers []Tier, loc *time.Location, catchAll bool) (*Policy, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", domain.ErrInvalidTierConfiguration)
	}
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DaysBeforeMin < sorted[j].DaysBeforeMin })

	maxFee := 0
	for i, t := range sorted {
		if t.FeePercentage < 0 || t.FeePercentage > 100 {
			return nil, fmt.Errorf("%w: fee %d%% out of range", domain.ErrInvalidTierConfiguration, t.FeePercentage)
		}
		if t.DaysBeforeMin < 0 {
			return nil, fmt.Errorf("%w: negative days_before_min %d", domain.ErrInvalidTierConfiguration, t.DaysBeforeMin)
		}
		if t.DaysBeforeMax != nil && *t.DaysBeforeMax < t.DaysBeforeMin {
			return nil, fmt.Errorf("%w: range %d-%d is empty", domain.ErrInvalidTierConfiguration, t.DaysBeforeMin, *t.DaysBeforeMax)
		}
		if t.FeePercentage > maxFee {
			maxFee = t.FeePercentage
		}
		if i == 0 {
			continue
		}

		prev := sorted[i-1]
		if prev.DaysBeforeMax == nil || *prev.DaysBeforeMax >= t.DaysBeforeMin {
			return nil, fmt.Errorf("%w: tier starting at %d overlaps tier starting at %d",
				domain.ErrInvalidTierConfiguration, t.DaysBeforeMin, prev.DaysBeforeMin)
		}
		if *prev.DaysBeforeMax+1 != t.DaysBeforeMin && !catchAll {
			return nil, fmt.Errorf("%w: gap between day %d and day %d",
				domain.ErrInvalidTierConfiguration, *prev.DaysBeforeMax, t.DaysBeforeMin)
		}
	}

	if !catchAll {
		if sorted[0].DaysBeforeMin != 0 {
			return nil, fmt.Errorf("%w: no tier covers day 0", domain.ErrInvalidTierConfiguration)
		}
		if sorted[len(sorted)-1].DaysBeforeMax != nil {
			return nil, fmt.Errorf("%w: no open-ended tier", domain.ErrInvalidTierConfiguration)
		}
	}

	return &Policy{tiers: sorted, loc: loc, catchAll: catchAll, maxFee: maxFee}, nil
}

// Tiers returns a copy of the table ordered by DaysBeforeMin.
func (p *Policy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

func (p *Policy) Location() *time.Location { return p.loc }

// Calculate decides whether a reservation can be cancelled at now and what it costs.
// Monetary values are in the smallest currency unit; the fee is floored.
func (p *Policy) Calculate(totalPrice int64, departure time.Time, status domain.ReservationStatus, now time.Time) Quote {
	if reason, terminal := terminalReason(status); terminal {
		return Quote{CanCancel: false, Reason: reason}
	}

	days := DaysUntil(departure, now, p.loc)
	tier := p.FindTier(days)
	fee := totalPrice * int64(tier.FeePercentage) / 100

	return Quote{
		FeePercentage:   tier.FeePercentage,
		CancellationFee: fee,
		RefundAmount:    totalPrice - fee,
		DaysUntil:       days,
		CanCancel:       true,
	}
}

// FindTier picks the tier for days using this policy's table.
func (p *Policy) FindTier(days int) Tier {
	if t, ok := findTier(days, p.tiers); ok {
		return t
	}
	return Tier{DaysBeforeMin: days, DaysBeforeMax: intPtr(days), FeePercentage: p.maxFee}
}

// FindTier returns the tier matching days. Past departures always get the
// departed tier. When nothing matches the highest fee in tiers is charged.
func FindTier(days int, tiers []Tier) Tier {
	if t, ok := findTier(days, tiers); ok {
		return t
	}
	maxFee := 0
	for _, t := range tiers {
		if t.FeePercentage > maxFee {
			maxFee = t.FeePercentage
		}
	}
	return Tier{DaysBeforeMin: days, DaysBeforeMax: intPtr(days), FeePercentage: maxFee}
}

func findTier(days int, tiers []Tier) (Tier, bool) {
	if days < 0 {
		return departedTier(), true
	}
	for _, t := range tiers {
		if t.matches(days) {
			return t, true
		}
	}
	return Tier{}, false
}

// DaysUntil counts calendar days from now to departure in loc. Both instants
// are reduced to their local date first, so the time of day never matters.
func DaysUntil(departure, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	d := civilDate(departure.In(loc))
	n := civilDate(now.In(loc))
	return int(d.Sub(n) / (24 * time.Hour))
}

// civilDate maps a local date onto UTC midnight so day arithmetic is free of DST shifts.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func terminalReason(status domain.ReservationStatus) (string, bool) {
	switch status {
	case domain.ReservationStatusCancelled:
		return "reservation is already cancelled", true
	case domain.ReservationStatusCompleted:
		return "trip has already been completed", true
	case domain.ReservationStatusNoShow:
		return "reservation was marked as no-show", true
	}
	return "", false
}

func intPtr(v int) *int { return &v }
