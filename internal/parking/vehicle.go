package parking

import "time"

type Tier int

const (
	Standard Tier = iota
	VIP
)

func TierFor(vip bool) Tier {
	if vip {
		return VIP
	}
	return Standard
}

func (t Tier) IsVIP() bool {
	return t == VIP
}

func (t Tier) String() string {
	if t == VIP {
		return "vip"
	}
	return "standard"
}

// ParkedVehicle is a vehicle holding a slot. ExitTime and Fee stay zero until
// the vehicle leaves.
type ParkedVehicle struct {
	RegistrationNumber string
	Slot               int
	Tier               Tier
	ArrivalTime        time.Time
	ExitTime           time.Time
	Fee                float64

	seq uint64
}

type WaitingVehicle struct {
	RegistrationNumber string
	Tier               Tier
	ArrivalTime        time.Time
}
