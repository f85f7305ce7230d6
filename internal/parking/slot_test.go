package parking

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotAllocator(t *testing.T) {
	a := NewSlotAllocator(6)

	assert.Equal(t, 6, a.Capacity())
	assert.Equal(t, 6, a.Available())
	for slot := 1; slot <= 6; slot++ {
		assert.True(t, a.IsFree(slot), "slot %d should start free", slot)
	}
	assert.False(t, a.IsFree(0))
	assert.False(t, a.IsFree(7))
}

func TestAcquireLowestHandsOutSlotsInOrder(t *testing.T) {
	a := NewSlotAllocator(3)

	for want := 1; want <= 3; want++ {
		slot, err := a.AcquireLowest()
		require.NoError(t, err)
		assert.Equal(t, want, slot)
	}

	_, err := a.AcquireLowest()
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.Equal(t, 0, a.Available())
}

func TestAcquireLowestPrefersSmallestReleasedSlot(t *testing.T) {
	a := NewSlotAllocator(3)
	for i := 0; i < 3; i++ {
		_, err := a.AcquireLowest()
		require.NoError(t, err)
	}

	require.NoError(t, a.Release(3))
	require.NoError(t, a.Release(2))

	slot, err := a.AcquireLowest()
	require.NoError(t, err)
	assert.Equal(t, 2, slot)
}

func TestReleaseRejectsFreeAndOutOfRangeSlots(t *testing.T) {
	a := NewSlotAllocator(2)
	slot, err := a.AcquireLowest()
	require.NoError(t, err)

	require.NoError(t, a.Release(slot))
	assert.ErrorIs(t, a.Release(slot), ErrInvalidSlotRelease, "double release")
	assert.ErrorIs(t, a.Release(2), ErrInvalidSlotRelease, "never acquired")
	assert.ErrorIs(t, a.Release(0), ErrInvalidSlotRelease)
	assert.ErrorIs(t, a.Release(3), ErrInvalidSlotRelease)
	assert.Equal(t, 2, a.Available())
}

func TestResetDiscardsState(t *testing.T) {
	a := NewSlotAllocator(2)
	_, _ = a.AcquireLowest()
	_, _ = a.AcquireLowest()

	a.Reset(4)

	assert.Equal(t, 4, a.Capacity())
	assert.Equal(t, 4, a.Available())
	slot, err := a.AcquireLowest()
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestZeroCapacityIsAlwaysFull(t *testing.T) {
	a := NewSlotAllocator(0)
	_, err := a.AcquireLowest()
	assert.ErrorIs(t, err, ErrCapacityExhausted)

	a = NewSlotAllocator(-3)
	assert.Equal(t, 0, a.Capacity())
}

func TestSlotAllocatorPartitionsSlots(t *testing.T) {
	const capacity = 16
	rng := rand.New(rand.NewPCG(1, 2))
	a := NewSlotAllocator(capacity)
	held := map[int]bool{}

	for step := 0; step < 2000; step++ {
		if rng.IntN(2) == 0 {
			slot, err := a.AcquireLowest()
			if len(held) == capacity {
				require.ErrorIs(t, err, ErrCapacityExhausted)
			} else {
				require.NoError(t, err)
				for s := 1; s < slot; s++ {
					require.True(t, held[s], "step %d: got %d while %d was free", step, slot, s)
				}
				held[slot] = true
			}
		} else if len(held) > 0 {
			var candidates []int
			for s := range held {
				candidates = append(candidates, s)
			}
			slot := candidates[rng.IntN(len(candidates))]
			require.NoError(t, a.Release(slot))
			delete(held, slot)
		}

		for s := 1; s <= capacity; s++ {
			require.NotEqual(t, held[s], a.IsFree(s), "step %d: slot %d in both or neither set", step, s)
		}
		require.Equal(t, capacity-len(held), a.Available())
	}
}
