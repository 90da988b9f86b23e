package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/types"
)

// FarmerHandler provides HTTP handlers for farmers.
type FarmerHandler struct {
	farmerService *services.FarmerService
	logger        *slog.Logger
}

func NewFarmerHandler(farmerService *services.FarmerService, logger *slog.Logger) *FarmerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FarmerHandler{farmerService: farmerService, logger: logger}
}

// FarmerRouter registers farmer routes. Reads are open to every caller that
// reaches the router; mutations go through requireAdmin.
func FarmerRouter(r chi.Router, handler *FarmerHandler, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", handler.ListFarmers)
	r.With(requireAdmin).Post("/", handler.CreateFarmer)
	r.Route("/{farmerID}", func(r chi.Router) {
		r.Get("/", handler.GetFarmer)
		r.With(requireAdmin).Put("/", handler.UpdateFarmer)
		r.With(requireAdmin).Delete("/", handler.DeleteFarmer)
	})
}

func (h *FarmerHandler) ListFarmers(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.farmerService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to list farmers")
		return
	}
	writeJSON(w, http.StatusOK, farmers)
}

func (h *FarmerHandler) GetFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "farmerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	farmer, err := h.farmerService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to fetch farmer")
		return
	}
	writeJSON(w, http.StatusOK, farmer)
}

func (h *FarmerHandler) CreateFarmer(w http.ResponseWriter, r *http.Request) {
	var req FarmerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.farmerService.Create(r.Context(), req.farmer(0), req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to create farmer")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *FarmerHandler) UpdateFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "farmerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req FarmerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ok, err := h.farmerService.Update(r.Context(), req.farmer(id), req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to update farmer")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "farmer not found")
		return
	}

	updated, err := h.farmerService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to fetch farmer")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *FarmerHandler) DeleteFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "farmerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.farmerService.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to delete farmer")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "farmer not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FarmerRequest is the create/update payload. An empty password on update
// keeps the current one.
type FarmerRequest struct {
	FullName string     `json:"full_name"`
	Address  string     `json:"address"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email"`
	Login    string     `json:"login"`
	Role     types.Role `json:"role"`
	Password string     `json:"password"`
}

func (req FarmerRequest) farmer(id int) types.Farmer {
	role := req.Role
	if role == "" {
		role = types.RoleFarmer
	}
	return types.Farmer{
		ID:       id,
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		Login:    req.Login,
		Role:     role,
	}
}
