package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shoptrack/apiserver/internal/services"
	"github.com/shoptrack/apiserver/internal/store"
	"github.com/shoptrack/apiserver/types"
)

// RepairOrderHandler provides HTTP handlers for the order board.
type RepairOrderHandler struct {
	orderService *services.RepairOrderService
}

// NewRepairOrderHandler constructs a handler with the provided service.
func NewRepairOrderHandler(orderService *services.RepairOrderService) *RepairOrderHandler {
	return &RepairOrderHandler{orderService: orderService}
}

// RepairOrderRouter registers order routes on the given router.
func RepairOrderRouter(r chi.Router, orderService *services.RepairOrderService) {
	handler := NewRepairOrderHandler(orderService)

	r.Post("/add", handler.AddOrder)
	r.Get("/all", handler.ListOrders)
	r.Post("/status/{orderID}", handler.UpdateStatus)
}

// AddOrderRequest is the payload for creating an order. Every field is a
// required, non-empty string.
type AddOrderRequest struct {
	RO       string `json:"ro"`
	Customer string `json:"customer"`
	Vehicle  string `json:"vehicle"`
	Advisor  string `json:"advisor"`
	Tech     string `json:"tech"`
	Status   string `json:"status"`
}

// UpdateStatusRequest is the payload for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListOrdersResponse is the full board, newest order first.
type ListOrdersResponse struct {
	Repairs []types.RepairOrder `json:"repairs"`
}

func (h *RepairOrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req AddOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := orderFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.orderService.Create(r.Context(), order); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create repair order")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *RepairOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list repair orders")
		return
	}

	writeJSON(w, http.StatusOK, ListOrdersResponse{Repairs: orders})
}

func (h *RepairOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "repair order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func orderFromRequest(req AddOrderRequest) (types.RepairOrder, error) {
	fields := map[string]string{
		"ro":       req.RO,
		"customer": req.Customer,
		"vehicle":  req.Vehicle,
		"advisor":  req.Advisor,
		"tech":     req.Tech,
		"status":   req.Status,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return types.RepairOrder{}, errors.New(name + " is required")
		}
	}

	return types.RepairOrder{
		RO:       req.RO,
		Customer: req.Customer,
		Vehicle:  req.Vehicle,
		Advisor:  req.Advisor,
		Tech:     req.Tech,
		Status:   req.Status,
	}, nil
}

func parseOrderID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "orderID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid order id")
	}
	return id, nil
}
