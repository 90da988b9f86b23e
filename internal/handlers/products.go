package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/types"
)

const dateLayout = "2006-01-02"

// ProductHandler provides HTTP handlers for products.
type ProductHandler struct {
	productService *services.ProductService
	logger         *slog.Logger
}

func NewProductHandler(productService *services.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{productService: productService, logger: logger}
}

// ProductRouter registers product routes; mutations go through requireAdmin.
func ProductRouter(r chi.Router, handler *ProductHandler, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", handler.ListProducts)
	r.With(requireAdmin).Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.With(requireAdmin).Put("/", handler.UpdateProduct)
		r.With(requireAdmin).Delete("/", handler.DeleteProduct)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	farmerID, err := parseFarmerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var products []types.Product
	if farmerID > 0 {
		products, err = h.productService.ListByFarmer(r.Context(), farmerID)
	} else {
		products, err = h.productService.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := req.product(0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.productService.Create(r.Context(), product)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := req.product(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.productService.Update(r.Context(), product)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to update product")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	updated, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product", "failed to delete product")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProductRequest is the create/update payload. ProductionDate is
// YYYY-MM-DD and defaults to today on create.
type ProductRequest struct {
	FarmerID       int             `json:"farmer_id"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	QualityGrade   string          `json:"quality_grade"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ProductionCost decimal.Decimal `json:"production_cost"`
	ProductionDate string          `json:"production_date"`
	SoldQuantity   decimal.Decimal `json:"sold_quantity"`
}

func (req ProductRequest) product(id int) (types.Product, error) {
	date, err := parseDate(req.ProductionDate)
	if err != nil {
		return types.Product{}, errors.New("invalid production_date")
	}
	var produced time.Time
	if date != nil {
		produced = *date
	}
	return types.Product{
		ID:             id,
		FarmerID:       req.FarmerID,
		Name:           req.Name,
		Quantity:       req.Quantity,
		QualityGrade:   req.QualityGrade,
		UnitPrice:      req.UnitPrice,
		ProductionCost: req.ProductionCost,
		ProductionDate: produced,
		SoldQuantity:   req.SoldQuantity,
	}, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty string yields nil.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
