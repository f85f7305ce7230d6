package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-allocator/internal/logging"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations metric.Int64Counter
	leavingOperations metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	waitingGauge      metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	feesTotal         metric.Float64Counter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedParkingLot(capacity int, telemetry *TelemetryProvider, opts ...Option) (*InstrumentedParkingLot, error) {
	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	leavingOperations, err := meter.Int64Counter("leaving_operations_total",
		metric.WithDescription("Total number of leaving operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	waitingGauge, err := meter.Int64UpDownCounter("waiting_line_length",
		metric.WithDescription("Current number of vehicles waiting for a slot"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	feesTotal, err := meter.Float64Counter("parking_fees_total",
		metric.WithDescription("Fees billed to departing vehicles"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	ipl := &InstrumentedParkingLot{
		ParkingLot:        NewParkingLot(capacity, opts...),
		telemetry:         telemetry,
		parkingOperations: parkingOperations,
		leavingOperations: leavingOperations,
		occupancyGauge:    occupancyGauge,
		waitingGauge:      waitingGauge,
		totalSlotsGauge:   totalSlotsGauge,
		feesTotal:         feesTotal,
		operationDuration: operationDuration,
	}

	totalSlotsGauge.Add(context.Background(), int64(capacity))

	return ipl, nil
}

// Retire takes this lot's capacity, occupancy and waiting count back out of
// the shared gauges. Call it when the lot is replaced by a new one.
func (ipl *InstrumentedParkingLot) Retire(ctx context.Context) {
	ipl.totalSlotsGauge.Add(ctx, -int64(ipl.GetCapacity()))
	ipl.occupancyGauge.Add(ctx, -int64(ipl.Occupied()))
	ipl.waitingGauge.Add(ctx, -int64(ipl.WaitingCount()))
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, registrationNumber string, tier Tier) (ParkOutcome, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", registrationNumber),
			attribute.String("vehicle.tier", tier.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_slot")

	outcome, err := ipl.ParkingLot.Park(registrationNumber, tier)

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_tier", tier.String()),
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Warn(ctx, "park rejected", "registration", registrationNumber, "error", err)
	case outcome.Queued:
		span.AddEvent("vehicle_queued", trace.WithAttributes(
			attribute.Int("queue_position", outcome.Position),
		))
		labels = append(labels, attribute.String("status", "queued"))
		ipl.waitingGauge.Add(ctx, 1)
		logging.Info(ctx, "parking lot full, vehicle queued",
			"registration", registrationNumber, "tier", tier.String(), "position", outcome.Position)
	default:
		span.SetAttributes(attribute.Int("allocated_slot_number", outcome.Slot))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", outcome.Slot),
		))
		labels = append(labels, attribute.String("status", "parked"))
		ipl.occupancyGauge.Add(ctx, 1)
		logging.Info(ctx, "vehicle parked",
			"registration", registrationNumber, "tier", tier.String(), "slot", outcome.Slot)
	}

	ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return outcome, err
}

func (ipl *InstrumentedParkingLot) Leave(ctx context.Context, registrationNumber string) (Receipt, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.leave",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", registrationNumber),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slot")

	receipt, err := ipl.ParkingLot.Leave(registrationNumber)

	labels := []attribute.KeyValue{
		attribute.String("operation", "leave"),
	}

	switch {
	case errors.Is(err, ErrNotFound):
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Error(ctx, "leave failed", "registration", registrationNumber, "error", err)
	default:
		span.SetAttributes(
			attribute.Int("slot_number", receipt.Slot),
			attribute.String("vehicle.tier", receipt.Tier.String()),
			attribute.Float64("bill.amount", receipt.Fee),
		)
		span.AddEvent("slot_released")
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_tier", receipt.Tier.String()),
		)
		ipl.occupancyGauge.Add(ctx, -1)
		ipl.feesTotal.Add(ctx, receipt.Fee, metric.WithAttributes(
			attribute.String("vehicle_tier", receipt.Tier.String()),
		))
		logging.Info(ctx, "vehicle left",
			"registration", registrationNumber, "slot", receipt.Slot, "fee", receipt.Fee,
			"arrival", receipt.Arrival, "exit", receipt.Exit)
	}

	ipl.leavingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return receipt, err
}

func (ipl *InstrumentedParkingLot) AdmitNext(ctx context.Context) (Admission, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.admit_next")
	defer span.End()

	start := time.Now()

	admission, err := ipl.ParkingLot.AdmitNext()

	labels := []attribute.KeyValue{
		attribute.String("operation", "admit_next"),
	}

	switch {
	case errors.Is(err, ErrQueueEmpty):
		span.AddEvent("waiting_line_empty")
		labels = append(labels, attribute.String("status", "empty"))
	case errors.Is(err, ErrCapacityExhausted):
		span.AddEvent("no_free_slot")
		labels = append(labels, attribute.String("status", "full"))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Error(ctx, "admit from waiting line failed", "error", err)
	default:
		span.SetAttributes(
			attribute.String("vehicle.registration_number", admission.Vehicle.RegistrationNumber),
			attribute.String("vehicle.tier", admission.Vehicle.Tier.String()),
			attribute.Int("allocated_slot_number", admission.Slot),
		)
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", admission.Slot),
		))
		labels = append(labels,
			attribute.String("status", "parked"),
			attribute.String("vehicle_tier", admission.Vehicle.Tier.String()),
		)
		ipl.waitingGauge.Add(ctx, -1)
		ipl.occupancyGauge.Add(ctx, 1)
		logging.Info(ctx, "waiting vehicle admitted",
			"registration", admission.Vehicle.RegistrationNumber, "slot", admission.Slot,
			"waited", admission.WaitedFor().String())
	}

	ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return admission, err
}

func (ipl *InstrumentedParkingLot) GetStatus(ctx context.Context) []ParkedVehicle {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.get_status")
	defer span.End()

	start := time.Now()

	vehicles := ipl.ParkingLot.GetStatus()

	span.SetAttributes(
		attribute.Int("occupied_slots_count", len(vehicles)),
		attribute.Int("total_capacity", ipl.GetCapacity()),
		attribute.Int("waiting_count", ipl.WaitingCount()),
	)

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	))

	return vehicles
}

func (ipl *InstrumentedParkingLot) Waiting(ctx context.Context) []WaitingVehicle {
	_, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.get_waiting")
	defer span.End()

	waiting := ipl.ParkingLot.Waiting()
	span.SetAttributes(attribute.Int("waiting_count", len(waiting)))
	return waiting
}

func (ipl *InstrumentedParkingLot) GetSlotByRegistrationNumber(ctx context.Context, registrationNumber string) (int, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.get_slot_by_registration",
		trace.WithAttributes(
			attribute.String("registration_number", registrationNumber),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_registration")

	slotNumber, err := ipl.ParkingLot.GetSlotByRegistrationNumber(registrationNumber)

	labels := []attribute.KeyValue{
		attribute.String("operation", "get_slot_by_registration"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.Int("found_slot_number", slotNumber))
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return slotNumber, err
}
