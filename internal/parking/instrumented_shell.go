package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedShell struct {
	instrumentedParkingLot *InstrumentedParkingLot
	scanner                *bufio.Scanner
	out                    io.Writer
	telemetry              *TelemetryProvider
	lotOptions             []Option
}

// NewInstrumentedShell reads commands from in and writes replies to out. The
// options are applied to every lot the shell creates.
func NewInstrumentedShell(telemetry *TelemetryProvider, in io.Reader, out io.Writer, opts ...Option) *InstrumentedShell {
	return &InstrumentedShell{
		scanner:    bufio.NewScanner(in),
		out:        out,
		telemetry:  telemetry,
		lotOptions: opts,
	}
}

// CreateParkingLot replaces the current lot, discarding parked and waiting
// vehicles.
func (s *InstrumentedShell) CreateParkingLot(capacity int) error {
	instrumentedParkingLot, err := NewInstrumentedParkingLot(capacity, s.telemetry, s.lotOptions...)
	if err != nil {
		return err
	}
	if s.instrumentedParkingLot != nil {
		s.instrumentedParkingLot.Retire(context.Background())
	}
	s.instrumentedParkingLot = instrumentedParkingLot
	return nil
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "admit_next":
		s.handleAdmitNext(ctx)
	case "status":
		s.handleStatus(ctx)
	case "queue":
		s.handleQueue(ctx)
	case "slot_number_for_registration_number":
		s.handleSlotNumberForRegistrationNumber(ctx, parts)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleCreateParkingLot(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.create_parking_lot")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: create_parking_lot <capacity>")
		return
	}

	capacity, err := strconv.Atoi(parts[1])
	if err != nil || capacity <= 0 {
		span.RecordError(fmt.Errorf("invalid capacity: %s", parts[1]))
		span.AddEvent("invalid_capacity")
		s.println("Invalid capacity")
		return
	}

	span.SetAttributes(attribute.Int("parking_lot.capacity", capacity))

	if err := s.CreateParkingLot(capacity); err != nil {
		span.RecordError(err)
		s.printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	span.AddEvent("parking_lot_created")
	s.printf("Created a parking lot with %d slots\n", capacity)
}

func (s *InstrumentedShell) handlePark(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.park_command")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) < 2 || len(parts) > 3 || (len(parts) == 3 && !strings.EqualFold(parts[2], "vip")) {
		span.AddEvent("invalid_arguments")
		s.println("Usage: park <registration_number> [vip]")
		return
	}

	registrationNumber := parts[1]
	tier := TierFor(len(parts) == 3)

	span.SetAttributes(
		attribute.String("vehicle.registration_number", registrationNumber),
		attribute.String("vehicle.tier", tier.String()),
	)

	outcome, err := s.instrumentedParkingLot.Park(ctx, registrationNumber, tier)
	if err != nil {
		span.AddEvent("parking_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	if outcome.Queued {
		span.AddEvent("parking_queued", trace.WithAttributes(
			attribute.Int("queue_position", outcome.Position),
		))
		s.printf("Sorry, parking lot is full. %s added to waiting line at position %d\n", registrationNumber, outcome.Position)
		return
	}

	span.AddEvent("parking_successful", trace.WithAttributes(
		attribute.Int("allocated_slot", outcome.Slot),
	))
	s.printf("Allocated slot number: %d at %s\n", outcome.Slot, outcome.ArrivalTime.Format(TimestampLayout))
}

func (s *InstrumentedShell) handleLeave(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.leave_command")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: leave <registration_number>")
		return
	}

	registrationNumber := parts[1]
	span.SetAttributes(attribute.String("vehicle.registration_number", registrationNumber))

	receipt, err := s.instrumentedParkingLot.Leave(ctx, registrationNumber)
	if errors.Is(err, ErrNotFound) {
		span.AddEvent("vehicle_not_found")
		s.println("Not found")
		return
	}
	if err != nil {
		span.AddEvent("leave_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("leave_successful")
	s.printf("Slot number %d is free\n", receipt.Slot)
	s.printf("Vehicle: %s\nArrival: %s\nExit: %s\nTotal bill: %.2f\n",
		receipt.RegistrationNumber, receipt.Arrival, receipt.Exit, receipt.Fee)

	if s.instrumentedParkingLot.WaitingCount() > 0 {
		s.admitNext(ctx)
	}
}

func (s *InstrumentedShell) handleAdmitNext(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.admit_next_command")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	s.admitNext(ctx)
}

func (s *InstrumentedShell) admitNext(ctx context.Context) {
	admission, err := s.instrumentedParkingLot.AdmitNext(ctx)
	switch {
	case errors.Is(err, ErrQueueEmpty):
		s.println("No vehicle is waiting")
	case errors.Is(err, ErrCapacityExhausted):
		s.println("Sorry, parking lot is full")
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("Allocated slot number: %d to waiting vehicle %s\n", admission.Slot, admission.Vehicle.RegistrationNumber)
	}
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	vehicles := s.instrumentedParkingLot.GetStatus(ctx)
	if len(vehicles) == 0 {
		span.AddEvent("parking_lot_empty")
		s.println("Parking lot is empty")
		return
	}

	span.SetAttributes(attribute.Int("occupied_slots_count", len(vehicles)))
	span.AddEvent("status_retrieved")

	s.println("Slot No.\tRegistration No\tType\tArrival")
	for _, v := range vehicles {
		s.printf("%d\t\t%s\t%s\t%s\n", v.Slot, v.RegistrationNumber, v.Tier, v.ArrivalTime.Format(TimestampLayout))
	}
}

func (s *InstrumentedShell) handleQueue(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.queue_command")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	waiting := s.instrumentedParkingLot.Waiting(ctx)
	if len(waiting) == 0 {
		s.println("Waiting line is empty")
		return
	}

	s.println("Position\tRegistration No\tType\tSince")
	for i, w := range waiting {
		s.printf("%d\t\t%s\t%s\t%s\n", i+1, w.RegistrationNumber, w.Tier, w.ArrivalTime.Format(TimestampLayout))
	}
}

func (s *InstrumentedShell) handleSlotNumberForRegistrationNumber(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.find_slot_by_registration")
	defer span.End()

	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: slot_number_for_registration_number <registration_number>")
		return
	}

	registrationNumber := parts[1]
	span.SetAttributes(attribute.String("registration_number", registrationNumber))

	slotNumber, err := s.instrumentedParkingLot.GetSlotByRegistrationNumber(ctx, registrationNumber)
	if err != nil {
		span.AddEvent("vehicle_not_found")
		s.println("Not found")
		return
	}

	span.AddEvent("vehicle_found", trace.WithAttributes(
		attribute.Int("slot_number", slotNumber),
	))
	s.printf("%d\n", slotNumber)
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *InstrumentedShell) println(line string) {
	fmt.Fprintln(s.out, line)
}
