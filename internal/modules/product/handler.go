package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/shelf-api/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNotFound     = "Product not found"
	msgUpdated      = "Product updated successfully"
	msgCannotUpdate = "Cannot update product"
	msgCannotDelete = "Cannot delete product"
	msgDeleted      = "Product deleted"
)

// UpdateResponse is returned by PUT /products/{id}.
type UpdateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler exposes product HTTP endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), r.URL.Query())
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []*Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("decode product", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.logger.Error("create product", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.logFailure("get product", id, err)
		httpx.Error(w, http.StatusNotFound, msgNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logFailure("decode product update", id, err)
		httpx.Error(w, http.StatusNotFound, msgCannotUpdate)
		return
	}
	if _, err := h.service.UpdateProduct(r.Context(), id, req); err != nil {
		h.logFailure("update product", id, err)
		if errors.Is(err, ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, UpdateResponse{Success: false, Message: msgNotFound})
			return
		}
		httpx.Error(w, http.StatusNotFound, msgCannotUpdate)
		return
	}
	httpx.JSON(w, http.StatusOK, UpdateResponse{Success: true, Message: msgUpdated})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.logFailure("delete product", id, err)
		httpx.Error(w, http.StatusNotFound, msgCannotDelete)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.MessageResponse{Message: msgDeleted})
}

func (h *Handler) logFailure(op, id string, err error) {
	if errors.Is(err, ErrNotFound) {
		h.logger.Debug(op, zap.String("id", id), zap.Error(err))
		return
	}
	h.logger.Error(op, zap.String("id", id), zap.Error(err))
}
