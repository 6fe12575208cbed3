// Package server exposes the pricing engine over HTTP. Single calculations
// run synchronously; catalog batches go through the background scheduler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/precify/pricing-engine/internal/scheduler"
	"github.com/precify/pricing-engine/pkg/breakeven"
	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/pricing"
	"github.com/precify/pricing-engine/pkg/tax"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	sched       *scheduler.Scheduler
	maxBodySize int64
	version     string
	taskSeq     atomic.Uint64
}

// NewHandler constructs the HTTP handler serving the pricing API. The
// scheduler may be nil, in which case batch dispatch reports 503.
func NewHandler(logger *zap.Logger, sched *scheduler.Scheduler, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = 256 * 1024
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, sched: sched, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate", h.handleCalculate)
	mux.HandleFunc("/api/breakeven", h.handleBreakEven)
	mux.HandleFunc("/api/tax/icms", h.handleICMS)
	mux.HandleFunc("/api/tax/aggregate", h.handleAggregate)
	mux.HandleFunc("/api/batch", h.handleBatch)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type calculateRequest struct {
	Costs        pricing.CostInputs  `json:"costs"`
	Rates        pricing.ChargeRates `json:"rates"`
	SellingPrice *float64            `json:"sellingPrice,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !h.decodeBody(w, r, &req, "server.handleCalculate") {
		return
	}

	var result *pricing.CalculationResult
	var err error
	if req.SellingPrice != nil {
		result, err = pricing.CalculateFromPrice(req.Costs, *req.SellingPrice, req.Rates)
	} else {
		result, err = pricing.CalculatePrice(req.Costs, req.Rates)
	}
	if err != nil {
		h.respondCalcError(w, err, "server.handleCalculate")
		return
	}

	h.writeJSON(w, http.StatusOK, pricing.RoundResult(result))
}

func (h *handler) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	var input breakeven.Input
	if !h.decodeBody(w, r, &input, "server.handleBreakEven") {
		return
	}

	result, err := breakeven.ComputeBreakEven(input)
	if err != nil {
		h.respondCalcError(w, err, "server.handleBreakEven")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

type icmsRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (h *handler) handleICMS(w http.ResponseWriter, r *http.Request) {
	var req icmsRequest
	if !h.decodeBody(w, r, &req, "server.handleICMS") {
		return
	}

	result, err := tax.ResolveICMS(req.Origin, req.Destination)
	if err != nil {
		h.respondCalcError(w, err, "server.handleICMS")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var components tax.Components
	if !h.decodeBody(w, r, &components, "server.handleAggregate") {
		return
	}

	summary, err := tax.AggregateTaxes(components)
	if err != nil {
		h.respondCalcError(w, err, "server.handleAggregate")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var payload scheduler.BatchPayload
	if !h.decodeBody(w, r, &payload, "server.handleBatch") {
		return
	}

	if h.sched == nil {
		h.respondError(w, http.StatusServiceUnavailable, "background worker unavailable", "server.handleBatch")
		return
	}

	start := time.Now()
	id := fmt.Sprintf("http-%d", h.taskSeq.Add(1))
	pending := h.sched.Dispatch(scheduler.Task{ID: id, Kind: scheduler.KindBatch, Payload: payload}, nil)

	data, err := pending.Wait(r.Context())
	if err != nil {
		h.respondBatchError(w, err, "server.handleBatch")
		return
	}

	result, ok := data.(*scheduler.BatchResult)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "unexpected batch result shape", "server.handleBatch")
		return
	}

	h.logger.Info("batch computed",
		zap.String("op", "server.handleBatch"),
		zap.String("id", id),
		zap.Int("items", len(result.Items)),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeBody enforces POST and the body size limit, then decodes JSON into
// dst. Returns false when a response has already been written.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// respondCalcError maps the calculation error taxonomy onto HTTP statuses,
// keeping validation and domain failures distinguishable for the caller.
func (h *handler) respondCalcError(w http.ResponseWriter, err error, op string) {
	switch {
	case calcerr.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "type": "validation"})
	case calcerr.IsDomain(err):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "type": "domain"})
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.logger.Warn("calculation rejected",
		zap.String("op", op),
		zap.String("error", err.Error()),
	)
}

func (h *handler) respondBatchError(w http.ResponseWriter, err error, op string) {
	var timeoutErr *scheduler.TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		h.respondError(w, http.StatusGatewayTimeout, err.Error(), op)
	case errors.Is(err, scheduler.ErrWorkerUnavailable):
		h.respondError(w, http.StatusServiceUnavailable, err.Error(), op)
	case errors.Is(err, scheduler.ErrCancelled), errors.Is(err, context.Canceled):
		h.respondError(w, http.StatusServiceUnavailable, "batch cancelled", op)
	case calcerr.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "type": "validation"})
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
