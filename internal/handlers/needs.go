package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/types"
)

// NeedHandler provides HTTP handlers for needs.
type NeedHandler struct {
	needService *services.NeedService
	logger      *slog.Logger
}

func NewNeedHandler(needService *services.NeedService, logger *slog.Logger) *NeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NeedHandler{needService: needService, logger: logger}
}

// NeedRouter registers need routes; mutations go through requireAdmin.
func NeedRouter(r chi.Router, handler *NeedHandler, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", handler.ListNeeds)
	r.With(requireAdmin).Post("/", handler.CreateNeed)
	r.Route("/{needID}", func(r chi.Router) {
		r.Get("/", handler.GetNeed)
		r.With(requireAdmin).Put("/", handler.UpdateNeed)
		r.With(requireAdmin).Delete("/", handler.DeleteNeed)
	})
}

func (h *NeedHandler) ListNeeds(w http.ResponseWriter, r *http.Request) {
	farmerID, err := parseFarmerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var needs []types.Need
	if farmerID > 0 {
		needs, err = h.needService.ListByFarmer(r.Context(), farmerID)
	} else {
		needs, err = h.needService.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to list needs")
		return
	}
	writeJSON(w, http.StatusOK, needs)
}

func (h *NeedHandler) GetNeed(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "needID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	need, err := h.needService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to fetch need")
		return
	}
	writeJSON(w, http.StatusOK, need)
}

func (h *NeedHandler) CreateNeed(w http.ResponseWriter, r *http.Request) {
	var req NeedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	need, err := req.need(0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.needService.Create(r.Context(), need)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to create need")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *NeedHandler) UpdateNeed(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "needID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req NeedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	need, err := req.need(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.needService.Update(r.Context(), need)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to update need")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "need not found")
		return
	}

	updated, err := h.needService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to fetch need")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *NeedHandler) DeleteNeed(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "needID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.needService.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "need", "failed to delete need")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "need not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NeedRequest is the create/update payload. PurchaseDate is YYYY-MM-DD.
type NeedRequest struct {
	FarmerID         int              `json:"farmer_id"`
	Name             string           `json:"name"`
	Type             types.NeedType   `json:"type"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	RequiredQuantity decimal.Decimal  `json:"required_quantity"`
	Status           types.NeedStatus `json:"status"`
	PurchaseDate     string           `json:"purchase_date"`
	Notes            string           `json:"notes"`
}

func (req NeedRequest) need(id int) (types.Need, error) {
	purchased, err := parseDate(req.PurchaseDate)
	if err != nil {
		return types.Need{}, errors.New("invalid purchase_date")
	}
	return types.Need{
		ID:               id,
		FarmerID:         req.FarmerID,
		Name:             req.Name,
		Type:             req.Type,
		UnitPrice:        req.UnitPrice,
		RequiredQuantity: req.RequiredQuantity,
		Status:           req.Status,
		PurchaseDate:     purchased,
		Notes:            req.Notes,
	}, nil
}
