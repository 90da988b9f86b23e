package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/internal/store"
)

type farmerIDKey struct{}

const maxBodyBytes = 1 << 20

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Healthz reports that the process is serving requests.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func withFarmerID(ctx context.Context, farmerID int) context.Context {
	return context.WithValue(ctx, farmerIDKey{}, farmerID)
}

func farmerIDFromContext(ctx context.Context) (int, bool) {
	farmerID, ok := ctx.Value(farmerIDKey{}).(int)
	return farmerID, ok && farmerID > 0
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func parseID(r *http.Request, param string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + param)
	}
	return id, nil
}

// parseFarmerFilter reads the optional farmer_id query parameter; zero means
// no filter.
func parseFarmerFilter(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("farmer_id"))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid farmer_id")
	}
	return id, nil
}

// writeServiceError maps record manager errors to HTTP statuses. failure is
// the message used for unexpected errors, which are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, entity, failure string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrDuplicateLogin):
		writeError(w, http.StatusConflict, "login already taken")
	case errors.Is(err, store.ErrUnknownFarmer):
		writeError(w, http.StatusNotFound, "farmer not found")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, entity+" not found")
	default:
		logger.ErrorContext(r.Context(), failure, "error", err)
		writeError(w, http.StatusInternalServerError, failure)
	}
}
