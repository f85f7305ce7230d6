package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"parking-allocator/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	Capacity int `json:"capacity"`
}

type ParkVehicleRequest struct {
	Registration string `json:"registration"`
	VIP          bool   `json:"vip"`
}

type LeaveVehicleRequest struct {
	Registration string `json:"registration"`
}

type ParkVehicleResponse struct {
	Registration string `json:"registration"`
	VIP          bool   `json:"vip"`
	SlotNumber   int    `json:"slot_number,omitempty"`
	Queued       bool   `json:"queued"`
	Position     int    `json:"position,omitempty"`
	Arrival      string `json:"arrival"`
}

type ReceiptResponse struct {
	Registration string  `json:"registration"`
	SlotNumber   int     `json:"slot_number"`
	VIP          bool    `json:"vip"`
	Fee          float64 `json:"fee"`
	Arrival      string  `json:"arrival"`
	Exit         string  `json:"exit"`
}

type AdmissionResponse struct {
	Registration  string  `json:"registration"`
	SlotNumber    int     `json:"slot_number"`
	VIP           bool    `json:"vip"`
	WaitedSeconds float64 `json:"waited_seconds"`
	Arrival       string  `json:"arrival"`
	QueuedSince   string  `json:"queued_since"`
}

type LeaveVehicleResponse struct {
	Receipt  ReceiptResponse    `json:"receipt"`
	Admitted *AdmissionResponse `json:"admitted,omitempty"`
}

type FindVehicleResponse struct {
	SlotNumber   int    `json:"slot_number"`
	Registration string `json:"registration"`
	VIP          bool   `json:"vip"`
	Arrival      string `json:"arrival"`
}

type SlotStatus struct {
	SlotNumber   int    `json:"slot_number"`
	Registration string `json:"registration,omitempty"`
	VIP          bool   `json:"vip,omitempty"`
	Arrival      string `json:"arrival,omitempty"`
	Occupied     bool   `json:"occupied"`
}

type StatusResponse struct {
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Waiting   int          `json:"waiting"`
	Slots     []SlotStatus `json:"slots"`
}

type WaitingVehicleResponse struct {
	Position     int    `json:"position"`
	Registration string `json:"registration"`
	VIP          bool   `json:"vip"`
	Since        string `json:"since"`
}

func newReceiptResponse(r parking.Receipt) ReceiptResponse {
	return ReceiptResponse{
		Registration: r.RegistrationNumber,
		SlotNumber:   r.Slot,
		VIP:          r.Tier.IsVIP(),
		Fee:          r.Fee,
		Arrival:      r.Arrival,
		Exit:         r.Exit,
	}
}

func newAdmissionResponse(a parking.Admission) *AdmissionResponse {
	return &AdmissionResponse{
		Registration:  a.Vehicle.RegistrationNumber,
		SlotNumber:    a.Slot,
		VIP:           a.Vehicle.Tier.IsVIP(),
		WaitedSeconds: a.WaitedFor().Seconds(),
		Arrival:       a.ArrivalTime.Format(parking.TimestampLayout),
		QueuedSince:   a.Vehicle.ArrivalTime.Format(parking.TimestampLayout),
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
