package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(capacity int) (*VehicleRegistry, *SlotAllocator) {
	slots := NewSlotAllocator(capacity)
	return NewVehicleRegistry(slots), slots
}

func admitNext(t *testing.T, r *VehicleRegistry, slots *SlotAllocator, registration string, tier Tier, at time.Time) int {
	t.Helper()
	slot, err := slots.AcquireLowest()
	require.NoError(t, err)
	_, err = r.Admit(registration, slot, tier, at)
	require.NoError(t, err)
	return slot
}

func TestAdmitReturnsArrivalTime(t *testing.T) {
	r, _ := newTestRegistry(3)
	arrival := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	got, err := r.Admit("KA01HH1234", 1, Standard, arrival)
	require.NoError(t, err)
	assert.Equal(t, arrival, got)

	v, ok := r.Lookup("KA01HH1234")
	require.True(t, ok)
	assert.Equal(t, 1, v.Slot)
	assert.Equal(t, Standard, v.Tier)
	assert.True(t, v.ExitTime.IsZero())
	assert.Zero(t, v.Fee)
}

func TestAdmitRejectsDuplicate(t *testing.T) {
	r, _ := newTestRegistry(3)
	now := time.Now()

	_, err := r.Admit("ABC123", 1, Standard, now)
	require.NoError(t, err)

	_, err = r.Admit("ABC123", 2, VIP, now)
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, 1, r.Len())
}

func TestLookupIsExactMatch(t *testing.T) {
	r, _ := newTestRegistry(3)
	_, err := r.Admit("KA01HH1234", 1, Standard, time.Now())
	require.NoError(t, err)

	_, ok := r.Lookup("KA01HH")
	assert.False(t, ok)
	_, ok = r.Lookup("ka01hh1234")
	assert.False(t, ok)
}

func TestRemoveBillsAndReleasesSlot(t *testing.T) {
	r, slots := newTestRegistry(2)
	arrival := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	slot := admitNext(t, r, slots, "KA01HH1234", VIP, arrival)

	receipt, err := r.Remove("KA01HH1234", arrival.Add(90*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, slot, receipt.Slot)
	assert.Equal(t, VIP, receipt.Tier)
	assert.InDelta(t, 22.5, receipt.Fee, 1e-9)
	assert.Equal(t, "2025-03-14 09:00:00", receipt.Arrival)
	assert.Equal(t, "2025-03-14 10:30:00", receipt.Exit)
	assert.True(t, slots.IsFree(slot))
	_, ok := r.Lookup("KA01HH1234")
	assert.False(t, ok)
}

func TestRemoveUnknownLeavesStateUnchanged(t *testing.T) {
	r, slots := newTestRegistry(2)
	admitNext(t, r, slots, "KA01HH1234", Standard, time.Now())

	_, err := r.Remove("NOTFOUND", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, slots.Available())
	assert.False(t, slots.IsFree(1))
}

func TestRemoveSurfacesAllocatorDrift(t *testing.T) {
	r, slots := newTestRegistry(2)
	slot := admitNext(t, r, slots, "KA01HH1234", Standard, time.Now())
	require.NoError(t, slots.Release(slot))

	_, err := r.Remove("KA01HH1234", time.Now())
	assert.ErrorIs(t, err, ErrInvalidSlotRelease)
	_, ok := r.Lookup("KA01HH1234")
	assert.True(t, ok, "record stays when the slot could not be released")
}

func TestListAllMostRecentFirst(t *testing.T) {
	r, slots := newTestRegistry(4)
	now := time.Now()
	admitNext(t, r, slots, "A", Standard, now)
	admitNext(t, r, slots, "B", VIP, now)
	admitNext(t, r, slots, "C", Standard, now)
	_, err := r.Remove("B", now)
	require.NoError(t, err)
	admitNext(t, r, slots, "D", Standard, now)

	var got []string
	for _, v := range r.ListAll() {
		got = append(got, v.RegistrationNumber)
	}
	assert.Equal(t, []string{"D", "C", "A"}, got)
}
