package order_api

import (
	"fmt"
	"net/http"

	"ms-storefront/internal/order"
	"ms-storefront/internal/utils"
)

// StripeWebhook handles payment events delivered by Stripe. Verification
// failures answer 400 so Stripe retries; everything after a verified
// event answers 200 {"received": true}, because a retry storm against an
// already-captured payment is worse than a logged reconciliation failure.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "StripeWebhook: received webhook event")

	err := h.OrderService.HandleStripeWebhook(r)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("StripeWebhook: failed to process webhook: %v", err))

		if webhookErr, ok := err.(*order.WebhookError); ok {
			h.Logger.Info("API", fmt.Sprintf("StripeWebhook: handling webhook error category=%s, status=%d",
				webhookErr.Category, webhookErr.StatusCode))
			utils.WriteJSON(w, webhookErr.StatusCode, map[string]string{"error": webhookErr.PublicError})
			return
		}

		utils.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	h.Logger.Info("API", "StripeWebhook: event acknowledged")
}
