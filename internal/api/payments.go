package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/guide-delivery-backend/internal/delivery"
	"github.com/nyashahama/guide-delivery-backend/internal/payment"
)

// ─── POST /api/confirm-payment ────────────────────────────────────────────────

type confirmPaymentRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type confirmPaymentResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	OrderID string `json:"orderId"`
}

// paymentDeclinedResponse tells the customer the gateway refused the
// payment. They were not charged and should retry.
type paymentDeclinedResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// deliveryFailedResponse covers the opposite outcome: the charge went
// through but the guide could not be sent. Charged is explicit so the
// storefront never shows this as a payment failure; Reference lets support
// find the run in the logs.
type deliveryFailedResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Charged   bool   `json:"charged"`
	Email     string `json:"email,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// handleConfirmPayment confirms a client-initiated payment with the gateway
// and, on success, emails the guide to the address the gateway reports.
func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.workflow.ConfirmAndDeliver(r.Context(), delivery.ConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})

	var validationErr *delivery.ValidationError
	var declinedErr *payment.DeclinedError
	var deliveryErr *delivery.DeliveryError

	switch {
	case err == nil:
		respond(w, http.StatusOK, confirmPaymentResponse{
			Success: true,
			Email:   res.Email,
			OrderID: res.OrderID,
		})

	case errors.As(err, &validationErr):
		respondErr(w, http.StatusBadRequest, validationErr.Message)

	case errors.As(err, &declinedErr):
		// Not charged. 402 with the gateway's own message, so "card
		// declined" vs "amount mismatch" reaches the customer as-is.
		respond(w, http.StatusPaymentRequired, paymentDeclinedResponse{
			Success: false,
			Code:    "payment_declined",
			Message: declinedErr.Message,
		})

	case errors.As(err, &deliveryErr):
		// Charged but not delivered — the one outcome that must never look
		// like a payment failure. Log loudly; support reconciles manually.
		s.logger.Error("confirm-payment: charged but delivery failed",
			"order_id", res.OrderID,
			"reference", res.Reference,
			"asset_missing", deliveryErr.AssetMissing,
			"error", deliveryErr.Err,
			logField(r),
		)
		respond(w, http.StatusInternalServerError, deliveryFailedResponse{
			Success:   false,
			Code:      "delivery_failed",
			Charged:   true,
			Email:     res.Email,
			OrderID:   res.OrderID,
			Reference: res.Reference,
			Message:   "결제는 완료되었지만 가이드 발송에 실패했습니다. 카카오톡 채널로 문의해주시면 바로 보내드리겠습니다.",
		})

	default:
		s.respondInternalErr(w, r, err)
	}
}
