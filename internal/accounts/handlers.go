package accounts

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	record, err := h.service.Get(r.Context(), email)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"user": record})
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var payload models.UserRecord
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}

	record, err := h.service.Put(r.Context(), email, &payload)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"user": record})
}

type placeOrderPayload struct {
	Currency string `json:"currency,omitempty"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var payload placeOrderPayload
	if r.ContentLength > 0 {
		if err := util.ParseJSON(r, &payload); err != nil {
			util.ErrorResponse(w, apierr.Validation("invalid request body"))
			return
		}
	}

	order, err := h.service.PlaceOrder(r.Context(), email, payload.Currency)
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}

	util.Success(w, http.StatusCreated, map[string]any{"order": order})
}
