package parking

import (
	"fmt"
	"sort"
	"time"
)

// TimestampLayout is how receipts render arrival and exit times.
const TimestampLayout = "2006-01-02 15:04:05"

type Receipt struct {
	RegistrationNumber string
	Slot               int
	Tier               Tier
	Fee                float64
	ArrivalTime        time.Time
	ExitTime           time.Time
	Arrival            string
	Exit               string
}

// VehicleRegistry owns the parked vehicles. Removing a vehicle bills it and
// hands its slot back to the allocator.
type VehicleRegistry struct {
	slots    *SlotAllocator
	vehicles map[string]*ParkedVehicle
	nextSeq  uint64
}

func NewVehicleRegistry(slots *SlotAllocator) *VehicleRegistry {
	return &VehicleRegistry{
		slots:    slots,
		vehicles: make(map[string]*ParkedVehicle),
	}
}

func (r *VehicleRegistry) Admit(registrationNumber string, slot int, tier Tier, arrival time.Time) (time.Time, error) {
	if _, ok := r.vehicles[registrationNumber]; ok {
		return time.Time{}, ErrDuplicateIdentifier
	}

	r.nextSeq++
	r.vehicles[registrationNumber] = &ParkedVehicle{
		RegistrationNumber: registrationNumber,
		Slot:               slot,
		Tier:               tier,
		ArrivalTime:        arrival,
		seq:                r.nextSeq,
	}
	return arrival, nil
}

func (r *VehicleRegistry) Lookup(registrationNumber string) (ParkedVehicle, bool) {
	v, ok := r.vehicles[registrationNumber]
	if !ok {
		return ParkedVehicle{}, false
	}
	return *v, true
}

func (r *VehicleRegistry) Remove(registrationNumber string, exit time.Time) (Receipt, error) {
	v, ok := r.vehicles[registrationNumber]
	if !ok {
		return Receipt{}, ErrNotFound
	}

	if err := r.slots.Release(v.Slot); err != nil {
		return Receipt{}, fmt.Errorf("release slot %d for %s: %w", v.Slot, registrationNumber, err)
	}

	v.ExitTime = exit
	v.Fee = ComputeFee(v.ArrivalTime, exit, v.Tier)
	delete(r.vehicles, registrationNumber)

	return Receipt{
		RegistrationNumber: v.RegistrationNumber,
		Slot:               v.Slot,
		Tier:               v.Tier,
		Fee:                v.Fee,
		ArrivalTime:        v.ArrivalTime,
		ExitTime:           v.ExitTime,
		Arrival:            v.ArrivalTime.Format(TimestampLayout),
		Exit:               v.ExitTime.Format(TimestampLayout),
	}, nil
}

// ListAll returns the parked vehicles, most recently admitted first.
func (r *VehicleRegistry) ListAll() []ParkedVehicle {
	out := make([]ParkedVehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq > out[j].seq
	})
	return out
}

func (r *VehicleRegistry) Len() int {
	return len(r.vehicles)
}
