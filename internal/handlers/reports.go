package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrocoop/farmdesk/internal/export"
	"github.com/agrocoop/farmdesk/internal/reports"
	"github.com/agrocoop/farmdesk/internal/storage"
	"github.com/agrocoop/farmdesk/internal/store"
)

// ReportHandler serves reports as JSON, as spreadsheet downloads and as
// uploaded exports.
type ReportHandler struct {
	engine  *reports.Engine
	exports *storage.Exports
	logger  *slog.Logger
}

// NewReportHandler constructs a ReportHandler. exports may be nil, in which
// case export endpoints answer 503.
func NewReportHandler(engine *reports.Engine, exports *storage.Exports, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{engine: engine, exports: exports, logger: logger}
}

// ReportRouter registers report routes; uploading exports needs requireAdmin.
func ReportRouter(r chi.Router, handler *ReportHandler, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", handler.ListReports)
	r.Route("/{report}", func(r chi.Router) {
		r.Get("/", handler.GetReport)
		r.Get("/xlsx", handler.DownloadReport)
		r.With(requireAdmin).Post("/exports", handler.ExportReport)
	})
}

// ExportRouter registers routes for previously uploaded exports.
func ExportRouter(r chi.Router, handler *ReportHandler, requireAdmin func(http.Handler) http.Handler) {
	r.Use(requireAdmin)
	r.Get("/{key}", handler.DownloadExport)
	r.Delete("/{key}", handler.DeleteExport)
}

// ReportInfo names an available report.
type ReportInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ReportResponse wraps the typed result of a report.
type ReportResponse struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Data  any    `json:"data"`
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, _ *http.Request) {
	names := reports.Names()
	items := make([]ReportInfo, 0, len(names))
	for _, name := range names {
		items = append(items, ReportInfo{Name: name, Title: reports.Title(name)})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "report")
	params, err := parseReportParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.engine.Run(r.Context(), name, params)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Name: name, Title: reports.Title(name), Data: data})
}

func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}

	workbook, err := export.Bytes(table)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render workbook", "report", table.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.Name+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(len(workbook)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	table, ok := h.table(w, r)
	if !ok {
		return
	}

	workbook, err := export.Bytes(table)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render workbook", "report", table.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	uploaded, err := h.exports.Upload(r.Context(), table.Name, workbook)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to upload export", "report", table.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload export")
		return
	}
	h.logger.InfoContext(r.Context(), "report exported", "report", table.Name, "key", uploaded.Key, "size", uploaded.Size)
	writeJSON(w, http.StatusCreated, uploaded)
}

func (h *ReportHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	key := chi.URLParam(r, "key")
	body, err := h.exports.Open(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			writeError(w, http.StatusBadRequest, "invalid export key")
		case errors.Is(err, storage.ErrNotExist):
			writeError(w, http.StatusNotFound, "export not found")
		default:
			h.logger.ErrorContext(r.Context(), "failed to open export", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to open export")
		}
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *ReportHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.exports.Remove(r.Context(), key); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeError(w, http.StatusBadRequest, "invalid export key")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete export", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete export")
		return
	}
	h.logger.InfoContext(r.Context(), "export deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) table(w http.ResponseWriter, r *http.Request) (reports.Table, bool) {
	params, err := parseReportParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return reports.Table{}, false
	}
	table, err := h.engine.Table(r.Context(), chi.URLParam(r, "report"), params)
	if err != nil {
		h.writeReportError(w, r, err)
		return reports.Table{}, false
	}
	return table, true
}

func (h *ReportHandler) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reports.ErrUnknownReport):
		writeError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, reports.ErrMissingParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "farmer not found")
	default:
		// The engine has already logged the failure.
		writeError(w, http.StatusInternalServerError, "failed to build report")
	}
}

func parseReportParams(r *http.Request) (reports.Params, error) {
	query := r.URL.Query()
	params := reports.Params{Product: strings.TrimSpace(query.Get("product"))}
	if raw := strings.TrimSpace(query.Get("farmer_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return reports.Params{}, errors.New("invalid farmer_id")
		}
		params.FarmerID = id
	}
	return params, nil
}
