package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookingcore/internal/adapter/metrics"
	"bookingcore/internal/core/domain"
	"bookingcore/internal/core/service"
	"bookingcore/internal/port"
)

type HTTPHandler struct {
	bookings *service.BookingService
	cache    port.CacheRepository // nil disables the request-id dedup
	logger   *zap.Logger
}

type BookHTTPRequest struct {
	// RequestID is optional; when set and Redis is configured, a repeated
	// request with the same id is rejected instead of booking twice.
	RequestID       string `json:"requestId,omitempty"`
	MemberID        int64  `json:"memberId"`
	InventoryItemID int64  `json:"inventoryItemId"`
}

type CancelHTTPRequest struct {
	BookingID int64 `json:"bookingId"`
}

type BookingHTTPResponse struct {
	Message         string     `json:"message"`
	BookingID       int64      `json:"bookingId,omitempty"`
	BookingDateTime *time.Time `json:"bookingDateTime,omitempty"`
}

func NewHTTPHandler(bookings *service.BookingService, cache port.CacheRepository, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{bookings: bookings, cache: cache, logger: logger}
}

func (h *HTTPHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("book").Observe(time.Since(start).Seconds())
	}()

	var req BookHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, BookingHTTPResponse{Message: "invalid request body"})
		return
	}

	if req.RequestID != "" && h.cache != nil {
		ok, err := h.cache.SetIdempotency(r.Context(), "booking:req:"+req.RequestID)
		if err != nil {
			h.logger.Warn("idempotency check unavailable", zap.Error(err))
		} else if !ok {
			metrics.BookingOutcomes.WithLabelValues("book", "duplicate_request").Inc()
			writeJSON(w, http.StatusConflict, BookingHTTPResponse{Message: "duplicate request"})
			return
		}
	}

	out, err := h.bookings.Book(r.Context(), req.MemberID, req.InventoryItemID)
	if err != nil {
		h.logger.Error("book failed", zap.Error(err))
		metrics.BookingOutcomes.WithLabelValues("book", "error").Inc()
		writeJSON(w, http.StatusInternalServerError, BookingHTTPResponse{Message: "internal error"})
		return
	}
	metrics.BookingOutcomes.WithLabelValues("book", string(out.Kind)).Inc()

	resp := BookingHTTPResponse{Message: out.Message}
	if out.Succeeded() {
		resp.BookingID = out.BookingID
		resp.BookingDateTime = &out.BookingDateTime
	}
	writeJSON(w, statusForOutcome(out.Kind), resp)
}

func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("cancel").Observe(time.Since(start).Seconds())
	}()

	var req CancelHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, BookingHTTPResponse{Message: "invalid request body"})
		return
	}

	out, err := h.bookings.Cancel(r.Context(), req.BookingID)
	if err != nil {
		h.logger.Error("cancel failed", zap.Error(err))
		metrics.BookingOutcomes.WithLabelValues("cancel", "error").Inc()
		writeJSON(w, http.StatusInternalServerError, BookingHTTPResponse{Message: "internal error"})
		return
	}
	metrics.BookingOutcomes.WithLabelValues("cancel", string(out.Kind)).Inc()

	resp := BookingHTTPResponse{Message: out.Message}
	if out.Succeeded() {
		resp.BookingID = out.BookingID
	}
	writeJSON(w, statusForOutcome(out.Kind), resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusForOutcome(kind domain.OutcomeKind) int {
	switch kind {
	case domain.BookSucceeded, domain.CancelSucceeded:
		return http.StatusOK
	case domain.MemberNotFound, domain.ItemNotFound, domain.BookingNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
