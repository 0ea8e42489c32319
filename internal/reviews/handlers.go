package reviews

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/middleware"
	"github.com/shopmesh/storefront/internal/util"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	reviews, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var input ReviewInput
	if err := util.ParseJSON(r, &input); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}

	input.ProductID = chi.URLParam(r, "id")
	// when a verified token is present, its subject wins over the body
	if userID, ok := middleware.UserID(r.Context()); ok {
		input.UserID = userID
	}

	review, err := h.service.Add(r.Context(), input)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusCreated, map[string]any{"review": review})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, nil)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	summary, err := h.service.Summary(r.Context(), productID)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{
		"average_rating": summary.AverageRating,
		"count":          summary.Count,
	})
}
