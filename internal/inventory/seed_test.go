package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsFromConfig(t *testing.T) {
	departs := time.Date(2024, 3, 1, 11, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	slots := SlotsFromConfig([]config.SeedSlot{
		{ID: "SVO-LED-0800", MaxPax: 150, DepartsAt: departs, PricePerPax: 500000},
		{ID: "SVO-AER-1200", MaxPax: 90, Status: "suspended"},
	})

	require.Len(t, slots, 2)
	assert.Equal(t, domain.SlotStatusOpen, slots[0].Status)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), slots[0].DepartsAt)
	assert.Equal(t, int64(500000), slots[0].PricePerPax)
	assert.Equal(t, domain.SlotStatusSuspended, slots[1].Status)

	m := NewMemory(slots...)
	seats, err := m.AvailableSeats(context.Background(), "SVO-AER-1200")
	require.NoError(t, err)
	assert.Equal(t, 90, seats)
}
