package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Reserve(ctx context.Context, slotID string, pax int) (int, error) {
	args := m.Called(ctx, slotID, pax)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) Release(ctx context.Context, slotID string, pax int) (int, error) {
	args := m.Called(ctx, slotID, pax)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) AvailableSeats(ctx context.Context, slotID string) (int, error) {
	args := m.Called(ctx, slotID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockStore) SetStatus(ctx context.Context, id string, status domain.SlotStatus) (*domain.Slot, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSlots(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockCache) SetSlots(ctx context.Context, slots []domain.Slot) error {
	args := m.Called(ctx, slots)
	return args.Error(0)
}

func (m *MockCache) InvalidateSlots(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testSlots() []domain.Slot {
	return []domain.Slot{
		{
			ID:          "SVO-LED-0800",
			MaxPax:      150,
			CurrentPax:  12,
			Status:      domain.SlotStatusOpen,
			DepartsAt:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			PricePerPax: 500000,
		},
	}
}

func TestSlotService_List_CacheMiss(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()
	slots := testSlots()

	mockCache.On("GetSlots", ctx).Return(([]domain.Slot)(nil), nil).Once()
	mockStore.On("List", ctx).Return(slots, nil).Once()
	mockCache.On("SetSlots", ctx, slots).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, slots, result)
	mockCache.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestSlotService_List_CacheHit(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()
	slots := testSlots()

	mockCache.On("GetSlots", ctx).Return(slots, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, slots, result)
	mockStore.AssertNotCalled(t, "List")
	mockCache.AssertNotCalled(t, "SetSlots")
}

func TestSlotService_List_CacheErrorFallsBackToStore(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()
	slots := testSlots()

	mockCache.On("GetSlots", ctx).Return(([]domain.Slot)(nil), errors.New("cache error")).Once()
	mockStore.On("List", ctx).Return(slots, nil).Once()
	mockCache.On("SetSlots", ctx, slots).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, slots, result)
	mockCache.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestSlotService_List_StoreError(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()
	expectedErr := errors.New("database error")

	mockCache.On("GetSlots", ctx).Return(([]domain.Slot)(nil), nil).Once()
	mockStore.On("List", ctx).Return([]domain.Slot{}, expectedErr).Once()

	result, err := service.List(ctx)

	assert.Equal(t, expectedErr, err)
	assert.Nil(t, result)
	mockCache.AssertNotCalled(t, "SetSlots")
}

func TestSlotService_NoCache(t *testing.T) {
	mockStore := &MockStore{}
	service := NewSlotService(mockStore, nil)
	ctx := context.Background()
	slots := testSlots()

	mockStore.On("List", ctx).Return(slots, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, slots, result)
	mockStore.AssertExpectations(t)
}

func TestSlotService_GetByID_NotFound(t *testing.T) {
	mockStore := &MockStore{}
	service := NewSlotService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByID", ctx, "missing").Return(nil, domain.ErrSlotNotFound).Once()

	result, err := service.GetByID(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	assert.Nil(t, result)
}

func TestSlotService_Availability(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()

	mockStore.On("AvailableSeats", ctx, "SVO-LED-0800").Return(138, nil).Once()

	seats, err := service.Availability(ctx, "SVO-LED-0800")

	assert.NoError(t, err)
	assert.Equal(t, 138, seats)
	mockCache.AssertNotCalled(t, "GetSlots")
}

func TestSlotService_SetStatus(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()

	closed := testSlots()[0]
	closed.Status = domain.SlotStatusClosed
	mockStore.On("SetStatus", ctx, closed.ID, domain.SlotStatusClosed).Return(&closed, nil).Once()
	mockCache.On("InvalidateSlots", ctx).Return(nil).Once()

	result, err := service.SetStatus(ctx, closed.ID, domain.SlotStatusClosed)

	assert.NoError(t, err)
	assert.Equal(t, domain.SlotStatusClosed, result.Status)
	mockStore.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestSlotService_SetStatus_Invalid(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)

	result, err := service.SetStatus(context.Background(), "SVO-LED-0800", domain.SlotStatus("boarding"))

	assert.ErrorIs(t, err, domain.ErrInvalidSlotStatus)
	assert.Nil(t, result)
	mockStore.AssertNotCalled(t, "SetStatus")
	mockCache.AssertNotCalled(t, "InvalidateSlots")
}

func TestSlotService_SetStatus_StoreErrorKeepsCache(t *testing.T) {
	mockStore := &MockStore{}
	mockCache := &MockCache{}
	service := NewSlotService(mockStore, mockCache)
	ctx := context.Background()

	mockStore.On("SetStatus", ctx, "missing", domain.SlotStatusSuspended).Return(nil, domain.ErrSlotNotFound).Once()

	_, err := service.SetStatus(ctx, "missing", domain.SlotStatusSuspended)

	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	mockCache.AssertNotCalled(t, "InvalidateSlots")
}
