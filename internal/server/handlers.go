package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"parking-allocator/internal/logging"
	"parking-allocator/internal/parking"
)

const lotNotCreated = "Parking lot not created. Create parking lot first"

// Handler serializes every request on mu, so park-or-queue and
// leave-then-admit each run as one unit against the lot.
type Handler struct {
	serviceName string
	telemetry   *parking.TelemetryProvider
	lotOptions  []parking.Option

	mu         sync.Mutex
	parkingLot *parking.InstrumentedParkingLot
}

func NewHandler(serviceName string, telemetry *parking.TelemetryProvider, opts ...parking.Option) *Handler {
	return &Handler{
		serviceName: serviceName,
		telemetry:   telemetry,
		lotOptions:  opts,
	}
}

// CreateParkingLot replaces the current lot, discarding parked and waiting
// vehicles.
func (h *Handler) CreateParkingLot(capacity int) error {
	parkingLot, err := parking.NewInstrumentedParkingLot(capacity, h.telemetry, h.lotOptions...)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot != nil {
		h.parkingLot.Retire(context.Background())
	}
	h.parkingLot = parkingLot
	return nil
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLotHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Capacity <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Capacity must be greater than 0")
		return
	}

	if err := h.CreateParkingLot(req.Capacity); err != nil {
		logging.Error(ctx, "failed to create parking lot", "error", err)
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create parking lot")
		return
	}

	WriteSuccess(ctx, w, "Parking lot created successfully", map[string]any{
		"capacity": req.Capacity,
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	outcome, err := h.parkingLot.Park(ctx, req.Registration, parking.TierFor(req.VIP))
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	resp := ParkVehicleResponse{
		Registration: req.Registration,
		VIP:          req.VIP,
		SlotNumber:   outcome.Slot,
		Queued:       outcome.Queued,
		Position:     outcome.Position,
		Arrival:      outcome.ArrivalTime.Format(parking.TimestampLayout),
	}

	if outcome.Queued {
		WriteSuccess(ctx, w, "Parking lot full, vehicle added to waiting line", resp)
		return
	}
	WriteSuccess(ctx, w, "Vehicle parked successfully", resp)
}

// LeaveVehicle bills the departing vehicle and moves the next waiting vehicle
// into the freed slot.
func (h *Handler) LeaveVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LeaveVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	receipt, err := h.parkingLot.Leave(ctx, req.Registration)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	resp := LeaveVehicleResponse{Receipt: newReceiptResponse(receipt)}

	admission, err := h.parkingLot.AdmitNext(ctx)
	switch {
	case err == nil:
		resp.Admitted = newAdmissionResponse(admission)
	case errors.Is(err, parking.ErrQueueEmpty):
	default:
		logging.Error(ctx, "failed to admit waiting vehicle", "error", err)
	}

	WriteSuccess(ctx, w, "Vehicle left successfully", resp)
}

func (h *Handler) AdmitNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	admission, err := h.parkingLot.AdmitNext(ctx)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Waiting vehicle admitted", newAdmissionResponse(admission))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	vehicles := h.parkingLot.GetStatus(ctx)
	capacity := h.parkingLot.GetCapacity()

	slots := make([]SlotStatus, capacity)
	for i := range slots {
		slots[i] = SlotStatus{SlotNumber: i + 1}
	}
	for _, v := range vehicles {
		slots[v.Slot-1] = SlotStatus{
			SlotNumber:   v.Slot,
			Registration: v.RegistrationNumber,
			VIP:          v.Tier.IsVIP(),
			Arrival:      v.ArrivalTime.Format(parking.TimestampLayout),
			Occupied:     true,
		}
	}

	response := StatusResponse{
		Capacity:  capacity,
		Occupied:  len(vehicles),
		Available: h.parkingLot.Available(),
		Waiting:   h.parkingLot.WaitingCount(),
		Slots:     slots,
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", response)
}

func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	waiting := h.parkingLot.Waiting(ctx)
	resp := make([]WaitingVehicleResponse, 0, len(waiting))
	for i, v := range waiting {
		resp = append(resp, WaitingVehicleResponse{
			Position:     i + 1,
			Registration: v.RegistrationNumber,
			VIP:          v.Tier.IsVIP(),
			Since:        v.ArrivalTime.Format(parking.TimestampLayout),
		})
	}

	WriteSuccess(ctx, w, "Waiting line retrieved successfully", resp)
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration number is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, lotNotCreated)
		return
	}

	slotNumber, err := h.parkingLot.GetSlotByRegistrationNumber(ctx, registration)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	vehicle, _ := h.parkingLot.Lookup(registration)

	WriteSuccess(ctx, w, "Vehicle found", FindVehicleResponse{
		SlotNumber:   slotNumber,
		Registration: vehicle.RegistrationNumber,
		VIP:          vehicle.Tier.IsVIP(),
		Arrival:      vehicle.ArrivalTime.Format(parking.TimestampLayout),
	})
}

// Collectors exposes lot occupancy to the Prometheus scrape endpoint.
func (h *Handler) Collectors() []prometheus.Collector {
	gauge := func(name, help string, value func(*parking.InstrumentedParkingLot) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "parking_lot",
			Name:      name,
			Help:      help,
		}, func() float64 {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.parkingLot == nil {
				return 0
			}
			return float64(value(h.parkingLot))
		})
	}

	return []prometheus.Collector{
		gauge("capacity_slots", "Number of slots in the lot.", func(pl *parking.InstrumentedParkingLot) int { return pl.GetCapacity() }),
		gauge("occupied_slots", "Number of occupied slots.", func(pl *parking.InstrumentedParkingLot) int { return pl.Occupied() }),
		gauge("available_slots", "Number of free slots.", func(pl *parking.InstrumentedParkingLot) int { return pl.Available() }),
		gauge("waiting_vehicles", "Number of vehicles in the waiting line.", func(pl *parking.InstrumentedParkingLot) int { return pl.WaitingCount() }),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrDuplicateIdentifier), errors.Is(err, parking.ErrCapacityExhausted):
		return http.StatusConflict
	case errors.Is(err, parking.ErrNotFound), errors.Is(err, parking.ErrQueueEmpty):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrInvalidRegistration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
