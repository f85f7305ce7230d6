package parking

import "container/heap"

// slotHeap is a min-heap of free slot numbers.
type slotHeap []int

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h slotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *slotHeap) Push(x any) {
	*h = append(*h, x.(int))
}

func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// SlotAllocator hands out the lowest numbered free slot in [1, capacity].
type SlotAllocator struct {
	capacity int
	free     slotHeap
	isFree   []bool
}

func NewSlotAllocator(capacity int) *SlotAllocator {
	a := &SlotAllocator{}
	a.Reset(capacity)
	return a
}

// Reset discards all state and marks slots 1..capacity free.
func (a *SlotAllocator) Reset(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	a.capacity = capacity
	a.free = make(slotHeap, 0, capacity)
	a.isFree = make([]bool, capacity+1)
	for slot := 1; slot <= capacity; slot++ {
		a.free = append(a.free, slot)
		a.isFree[slot] = true
	}
	heap.Init(&a.free)
}

func (a *SlotAllocator) AcquireLowest() (int, error) {
	if a.free.Len() == 0 {
		return 0, ErrCapacityExhausted
	}
	slot := heap.Pop(&a.free).(int)
	a.isFree[slot] = false
	return slot, nil
}

func (a *SlotAllocator) Release(slot int) error {
	if slot < 1 || slot > a.capacity || a.isFree[slot] {
		return ErrInvalidSlotRelease
	}
	a.isFree[slot] = true
	heap.Push(&a.free, slot)
	return nil
}

func (a *SlotAllocator) IsFree(slot int) bool {
	return slot >= 1 && slot <= a.capacity && a.isFree[slot]
}

func (a *SlotAllocator) Capacity() int {
	return a.capacity
}

func (a *SlotAllocator) Available() int {
	return a.free.Len()
}
