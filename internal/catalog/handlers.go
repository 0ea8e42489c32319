package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/util"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.Product
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}

	product, err := h.service.Create(r.Context(), payload)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusCreated, map[string]any{"product": product})
}

type bulkCreatePayload struct {
	Products []models.Product `json:"products"`
}

func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var payload bulkCreatePayload
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}

	count, err := h.service.BulkCreate(r.Context(), payload.Products)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusCreated, map[string]any{"count": count})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	patch := make(map[string]any)
	if err := util.ParseJSON(r, &patch); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}

	product, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, nil)
}

func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	count, err := h.service.BulkDelete(r.Context(), action)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"deleted": count})
}
