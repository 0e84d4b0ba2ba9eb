package cancellation

import (
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
)

// NewPolicyFromConfig builds the policy from the cancellation section of the config file.
func NewPolicyFromConfig(cfg config.CancellationConfig) (*Policy, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", domain.ErrInvalidTierConfiguration, cfg.Timezone, err)
	}

	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tier := Tier{DaysBeforeMin: t.DaysBeforeMin, FeePercentage: t.FeePercentage}
		if t.DaysBeforeMax != nil {
			tier.DaysBeforeMax = intPtr(*t.DaysBeforeMax)
		}
		tiers = append(tiers, tier)
	}
	return NewPolicy(tiers, loc, cfg.CatchAll)
}
