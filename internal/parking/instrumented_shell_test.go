package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parking-allocator/internal/logging"
)

func runShell(t *testing.T, clock *fakeClock, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	shell := NewInstrumentedShell(NewLocalTelemetryProvider("shell-test"),
		strings.NewReader(strings.Join(script, "\n")), &out, WithClock(clock.Now))
	shell.Run(context.Background())
	return out.String()
}

func TestShellRequiresParkingLot(t *testing.T) {
	out := runShell(t, newFakeClock(), "park KA01HH1234", "status", "queue", "admit_next")

	assert.Equal(t, strings.Repeat("Parking lot not created\n", 4), out)
}

func TestShellParkQueueAndLeave(t *testing.T) {
	out := runShell(t, newFakeClock(),
		"create_parking_lot 1",
		"park KA01HH1234",
		"park KA01HH9999",
		"park KA01BB0001 vip",
		"queue",
		"leave KA01HH1234",
		"status",
		"slot_number_for_registration_number KA01BB0001",
	)

	want := "Created a parking lot with 1 slots\n" +
		"Allocated slot number: 1 at 2025-03-14 09:00:00\n" +
		"Sorry, parking lot is full. KA01HH9999 added to waiting line at position 1\n" +
		"Sorry, parking lot is full. KA01BB0001 added to waiting line at position 1\n" +
		"Position\tRegistration No\tType\tSince\n" +
		"1\t\tKA01BB0001\tvip\t2025-03-14 09:00:00\n" +
		"2\t\tKA01HH9999\tstandard\t2025-03-14 09:00:00\n" +
		"Slot number 1 is free\n" +
		"Vehicle: KA01HH1234\n" +
		"Arrival: 2025-03-14 09:00:00\n" +
		"Exit: 2025-03-14 09:00:00\n" +
		"Total bill: 10.00\n" +
		"Allocated slot number: 1 to waiting vehicle KA01BB0001\n" +
		"Slot No.\tRegistration No\tType\tArrival\n" +
		"1\t\tKA01BB0001\tvip\t2025-03-14 09:00:00\n" +
		"1\n"
	assert.Equal(t, want, out)
}

func TestShellErrors(t *testing.T) {
	out := runShell(t, newFakeClock(),
		"create_parking_lot zero",
		"create_parking_lot 2",
		"park",
		"park KA01HH1234 gold",
		"park KA01HH1234",
		"park KA01HH1234",
		"leave NOTFOUND",
		"slot_number_for_registration_number NOTFOUND",
		"admit_next",
		"fly away",
	)

	want := "Invalid capacity\n" +
		"Created a parking lot with 2 slots\n" +
		"Usage: park <registration_number> [vip]\n" +
		"Usage: park <registration_number> [vip]\n" +
		"Allocated slot number: 1 at 2025-03-14 09:00:00\n" +
		"Error: vehicle already parked or waiting\n" +
		"Not found\n" +
		"Not found\n" +
		"No vehicle is waiting\n" +
		"Unknown command: fly\n"
	assert.Equal(t, want, out)
}

func TestShellCreateParkingLotUpFront(t *testing.T) {
	clock := newFakeClock()
	var out bytes.Buffer
	shell := NewInstrumentedShell(NewLocalTelemetryProvider("shell-test"),
		strings.NewReader("park A\nstatus\n"), &out, WithClock(clock.Now))

	assert.NoError(t, shell.CreateParkingLot(3))
	clock.Advance(time.Minute)
	shell.Run(context.Background())

	assert.Equal(t, "Allocated slot number: 1 at 2025-03-14 09:01:00\n"+
		"Slot No.\tRegistration No\tType\tArrival\n"+
		"1\t\tA\tstandard\t2025-03-14 09:01:00\n", out.String())
}

func TestShellRecreatingLotResetsGauges(t *testing.T) {
	telemetry := newTestTelemetry(t)
	var out bytes.Buffer
	shell := NewInstrumentedShell(telemetry.TelemetryProvider, strings.NewReader(strings.Join([]string{
		"create_parking_lot 2",
		"park A",
		"park B",
		"park C",
		"create_parking_lot 3",
		"park D",
	}, "\n")), &out)

	shell.Run(context.Background())

	assert.Equal(t, int64(3), telemetry.intSum(t, "parking_lot_total_slots"))
	assert.Equal(t, int64(1), telemetry.intSum(t, "parking_lot_occupancy"))
	assert.Equal(t, int64(0), telemetry.intSum(t, "waiting_line_length"))
}

func TestShellOutputHasNoLogLines(t *testing.T) {
	var logs bytes.Buffer
	logging.InitWithWriter(&logs, "shell-test", "development")

	out := runShell(t, newFakeClock(),
		"create_parking_lot 1",
		"park A",
		"park B",
		"leave A",
		"admit_next",
	)

	assert.NotContains(t, out, "{")
	assert.NotContains(t, out, "vehicle parked")
	assert.Contains(t, logs.String(), "vehicle parked")
	assert.Contains(t, logs.String(), "waiting vehicle admitted")
}
