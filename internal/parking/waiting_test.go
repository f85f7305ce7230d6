package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(w *WaitingLine) []string {
	var out []string
	for {
		v, ok := w.Dequeue()
		if !ok {
			return out
		}
		out = append(out, v.RegistrationNumber)
	}
}

func TestVIPJumpsAheadOfStandard(t *testing.T) {
	w := NewWaitingLine()
	now := time.Now()

	assert.Equal(t, 1, w.Enqueue("A", Standard, now))
	assert.Equal(t, 2, w.Enqueue("B", Standard, now))
	assert.Equal(t, 1, w.Enqueue("C", VIP, now))

	assert.Equal(t, []string{"C", "A", "B"}, drain(w))
}

func TestLatestVIPServedFirstAmongVIPs(t *testing.T) {
	w := NewWaitingLine()
	now := time.Now()

	w.Enqueue("S1", Standard, now)
	w.Enqueue("V1", VIP, now)
	w.Enqueue("V2", VIP, now)
	w.Enqueue("S2", Standard, now)

	assert.Equal(t, []string{"V2", "V1", "S1", "S2"}, drain(w))
}

func TestDequeueEmpty(t *testing.T) {
	w := NewWaitingLine()

	_, ok := w.Dequeue()
	assert.False(t, ok)
	_, ok = w.Peek()
	assert.False(t, ok)

	w.Enqueue("A", Standard, time.Now())
	_, ok = w.Dequeue()
	require.True(t, ok)
	_, ok = w.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestWaitingLineKeepsArrivalAndTier(t *testing.T) {
	w := NewWaitingLine()
	arrival := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	w.Enqueue("A", VIP, arrival)

	front, ok := w.Peek()
	require.True(t, ok)
	assert.Equal(t, WaitingVehicle{RegistrationNumber: "A", Tier: VIP, ArrivalTime: arrival}, front)
	assert.True(t, w.Contains("A"))
	assert.False(t, w.Contains("B"))
}

func TestListIsACopy(t *testing.T) {
	w := NewWaitingLine()
	w.Enqueue("A", Standard, time.Now())

	list := w.List()
	list[0].RegistrationNumber = "changed"

	front, _ := w.Peek()
	assert.Equal(t, "A", front.RegistrationNumber)
}

func TestPushFrontRestoresStandardAtHead(t *testing.T) {
	w := NewWaitingLine()
	now := time.Now()
	w.Enqueue("S1", Standard, now)
	w.Enqueue("V1", VIP, now)

	front, ok := w.Dequeue()
	require.True(t, ok)
	w.Enqueue("S2", Standard, now)
	w.PushFront(front)

	assert.Equal(t, []string{"V1", "S1", "S2"}, drain(w))
}
