package parking

import "errors"

var (
	// ErrDuplicateIdentifier is returned when a registration number is already
	// parked or already waiting.
	ErrDuplicateIdentifier = errors.New("vehicle already parked or waiting")

	// ErrNotFound is returned when no parked vehicle has the registration number.
	ErrNotFound = errors.New("vehicle not found")

	// ErrInvalidSlotRelease means a slot was released that is not occupied.
	// The registry and the allocator have drifted apart when this happens.
	ErrInvalidSlotRelease = errors.New("slot is not occupied")

	// ErrCapacityExhausted is a normal outcome: every slot is taken.
	ErrCapacityExhausted = errors.New("parking lot is full")

	ErrQueueEmpty          = errors.New("no vehicle is waiting")
	ErrInvalidRegistration = errors.New("registration number is required")
)
