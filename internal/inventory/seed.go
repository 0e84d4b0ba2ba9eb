package inventory

import (
	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
)

// SlotsFromConfig converts seed entries to slots. A missing status means open.
func SlotsFromConfig(seeds []config.SeedSlot) []domain.Slot {
	slots := make([]domain.Slot, 0, len(seeds))
	for _, s := range seeds {
		status := domain.SlotStatus(s.Status)
		if status == "" {
			status = domain.SlotStatusOpen
		}
		slots = append(slots, domain.Slot{
			ID:          s.ID,
			MaxPax:      s.MaxPax,
			Status:      status,
			DepartsAt:   s.DepartsAt.UTC(),
			PricePerPax: s.PricePerPax,
		})
	}
	return slots
}
