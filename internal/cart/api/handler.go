package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-storefront/internal/cart"
	"ms-storefront/internal/logger"
	"ms-storefront/internal/models"
	"ms-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Cart   *cart.Service
	Logger *logger.Logger
}

func NewHandler(svc *cart.Service, log *logger.Logger) *Handler {
	return &Handler{Cart: svc, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart/{sessionId}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{itemId}", h.UpdateItem)
		r.Delete("/items/{itemId}", h.RemoveItem)
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	c, err := h.Cart.GetCart(sessionID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCart: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load cart", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cart loaded", c))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	var req models.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	c, err := h.Cart.AddItem(sessionID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddItem: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to add item", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Item added", c))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	id := chi.URLParam(r, "itemId")

	var req models.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	c, err := h.Cart.UpdateQuantity(sessionID, id, req.Quantity)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateItem: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Failed to update item", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Item updated", c))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	id := chi.URLParam(r, "itemId")

	c, err := h.Cart.RemoveItem(sessionID, id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RemoveItem: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to remove item", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Item removed", c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	if err := h.Cart.ClearCart(sessionID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ClearCart: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to clear cart", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
