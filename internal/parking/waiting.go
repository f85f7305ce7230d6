package parking

import (
	"slices"
	"time"
)

// WaitingLine holds vehicles that arrived while the lot was full. A VIP goes
// to the very front, ahead of earlier VIPs too; a standard vehicle goes to the
// back.
type WaitingLine struct {
	entries []WaitingVehicle
}

func NewWaitingLine() *WaitingLine {
	return &WaitingLine{}
}

// Enqueue returns the 1-based position the vehicle landed at.
func (w *WaitingLine) Enqueue(registrationNumber string, tier Tier, arrival time.Time) int {
	entry := WaitingVehicle{
		RegistrationNumber: registrationNumber,
		Tier:               tier,
		ArrivalTime:        arrival,
	}
	if tier.IsVIP() {
		w.entries = slices.Insert(w.entries, 0, entry)
		return 1
	}
	w.entries = append(w.entries, entry)
	return len(w.entries)
}

// PushFront puts a dequeued vehicle back at the head of the line regardless of
// its tier.
func (w *WaitingLine) PushFront(v WaitingVehicle) {
	w.entries = slices.Insert(w.entries, 0, v)
}

func (w *WaitingLine) Dequeue() (WaitingVehicle, bool) {
	if len(w.entries) == 0 {
		return WaitingVehicle{}, false
	}
	front := w.entries[0]
	w.entries[0] = WaitingVehicle{}
	w.entries = w.entries[1:]
	if len(w.entries) == 0 {
		w.entries = nil
	}
	return front, true
}

func (w *WaitingLine) Peek() (WaitingVehicle, bool) {
	if len(w.entries) == 0 {
		return WaitingVehicle{}, false
	}
	return w.entries[0], true
}

func (w *WaitingLine) Contains(registrationNumber string) bool {
	return slices.ContainsFunc(w.entries, func(e WaitingVehicle) bool {
		return e.RegistrationNumber == registrationNumber
	})
}

// List returns the line front to back.
func (w *WaitingLine) List() []WaitingVehicle {
	return slices.Clone(w.entries)
}

func (w *WaitingLine) Len() int {
	return len(w.entries)
}
