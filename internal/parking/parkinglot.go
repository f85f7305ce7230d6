package parking

import (
	"fmt"
	"sort"
	"time"
)

type ParkingLot struct {
	slots    *SlotAllocator
	registry *VehicleRegistry
	waiting  *WaitingLine
	now      func() time.Time
}

type Option func(*ParkingLot)

// WithClock replaces time.Now as the source of arrival and exit times.
func WithClock(now func() time.Time) Option {
	return func(pl *ParkingLot) {
		pl.now = now
	}
}

func NewParkingLot(capacity int, opts ...Option) *ParkingLot {
	slots := NewSlotAllocator(capacity)

	pl := &ParkingLot{
		slots:    slots,
		registry: NewVehicleRegistry(slots),
		waiting:  NewWaitingLine(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// ParkOutcome reports where an arriving vehicle ended up: a slot, or a place
// in the waiting line when Queued is set.
type ParkOutcome struct {
	Slot        int
	Queued      bool
	Position    int
	ArrivalTime time.Time
}

// Admission is a waiting vehicle moved into a slot.
type Admission struct {
	Vehicle     WaitingVehicle
	Slot        int
	ArrivalTime time.Time
}

func (a Admission) WaitedFor() time.Duration {
	return a.ArrivalTime.Sub(a.Vehicle.ArrivalTime)
}

func (pl *ParkingLot) Park(registrationNumber string, tier Tier) (ParkOutcome, error) {
	if registrationNumber == "" {
		return ParkOutcome{}, ErrInvalidRegistration
	}
	if _, ok := pl.registry.Lookup(registrationNumber); ok || pl.waiting.Contains(registrationNumber) {
		return ParkOutcome{}, ErrDuplicateIdentifier
	}

	now := pl.now()

	slot, err := pl.slots.AcquireLowest()
	if err != nil {
		position := pl.waiting.Enqueue(registrationNumber, tier, now)
		return ParkOutcome{Queued: true, Position: position, ArrivalTime: now}, nil
	}

	arrival, err := pl.registry.Admit(registrationNumber, slot, tier, now)
	if err != nil {
		// Put the slot back so the allocator and registry stay in step.
		_ = pl.slots.Release(slot)
		return ParkOutcome{}, err
	}
	return ParkOutcome{Slot: slot, ArrivalTime: arrival}, nil
}

func (pl *ParkingLot) Leave(registrationNumber string) (Receipt, error) {
	return pl.registry.Remove(registrationNumber, pl.now())
}

// AdmitNext moves the front of the waiting line into the lowest free slot.
// The line is left untouched when no slot is free.
func (pl *ParkingLot) AdmitNext() (Admission, error) {
	if _, ok := pl.waiting.Peek(); !ok {
		return Admission{}, ErrQueueEmpty
	}

	slot, err := pl.slots.AcquireLowest()
	if err != nil {
		return Admission{}, err
	}

	next, _ := pl.waiting.Dequeue()
	arrival, err := pl.registry.Admit(next.RegistrationNumber, slot, next.Tier, pl.now())
	if err != nil {
		_ = pl.slots.Release(slot)
		pl.waiting.PushFront(next)
		return Admission{}, fmt.Errorf("admit %s: %w", next.RegistrationNumber, err)
	}

	return Admission{Vehicle: next, Slot: slot, ArrivalTime: arrival}, nil
}

// GetStatus returns the parked vehicles ordered by slot number.
func (pl *ParkingLot) GetStatus() []ParkedVehicle {
	vehicles := pl.registry.ListAll()
	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].Slot < vehicles[j].Slot
	})
	return vehicles
}

// Vehicles returns the parked vehicles, most recently admitted first.
func (pl *ParkingLot) Vehicles() []ParkedVehicle {
	return pl.registry.ListAll()
}

func (pl *ParkingLot) Waiting() []WaitingVehicle {
	return pl.waiting.List()
}

func (pl *ParkingLot) GetSlotByRegistrationNumber(registrationNumber string) (int, error) {
	v, ok := pl.registry.Lookup(registrationNumber)
	if !ok {
		return 0, ErrNotFound
	}
	return v.Slot, nil
}

func (pl *ParkingLot) Lookup(registrationNumber string) (ParkedVehicle, bool) {
	return pl.registry.Lookup(registrationNumber)
}

func (pl *ParkingLot) GetCapacity() int {
	return pl.slots.Capacity()
}

func (pl *ParkingLot) Available() int {
	return pl.slots.Available()
}

func (pl *ParkingLot) Occupied() int {
	return pl.registry.Len()
}

func (pl *ParkingLot) WaitingCount() int {
	return pl.waiting.Len()
}
