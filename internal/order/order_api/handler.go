package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-storefront/internal/logger"
	"ms-storefront/internal/models"
	"ms-storefront/internal/order"
	"ms-storefront/internal/receipt"
	"ms-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Receipts     *receipt.Generator
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, receipts *receipt.Generator, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Receipts:     receipts,
		Logger:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checkout", h.Checkout)
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/{orderId}", h.GetOrder)
		r.Get("/{orderId}/receipt", h.GetReceipt)
	})
	r.Get("/api/users/{userId}/orders", h.GetOrdersByUser)
	r.Post("/api/webhooks/stripe", h.StripeWebhook)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	if req.SessionID == "" || req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", "session_id and user_id are required"))
		return
	}

	resp, err := h.OrderService.Checkout(req.SessionID, req.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout: %v", err))
		status := http.StatusInternalServerError
		if errors.Is(err, order.ErrEmptyCart) {
			status = http.StatusBadRequest
		}
		utils.WriteJSON(w, status, utils.ErrorResponse("Checkout failed", err.Error()))
		return
	}

	h.Logger.LogOrder("CHECKOUT", resp.OrderID, "checkout completed, awaiting payment")
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Order created", resp))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("GetOrder: orderId=%s", orderID))

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: order not found: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order found", orderData))
}

func (h *Handler) GetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	orders, err := h.OrderService.GetOrdersByUser(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrdersByUser: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load orders", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Orders listed", orders))
}

// GetReceipt serves the encrypted QR receipt for a paid order.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
		return
	}

	if orderData.Status != models.OrderStatusPaid {
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Receipt unavailable",
			fmt.Sprintf("order %s has status %s, receipts exist only for paid orders", orderID, orderData.Status)))
		return
	}

	png, err := h.Receipts.GenerateOrderReceipt(orderData.Order, orderData.Items)
	if err != nil {
		h.Logger.Error("RECEIPT", fmt.Sprintf("Failed to generate receipt for order %s: %v", orderID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate receipt", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
