// Package payment defines the interface for payment-gateway confirmation
// calls and provides Toss Payments and Stripe backed implementations.
package payment

import (
	"context"
	"fmt"
	"time"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// ConfirmParams holds the inputs for confirming a client-initiated payment.
// All three values come from the browser after the payment widget completes;
// the gateway verifies them against the charge it actually processed.
type ConfirmParams struct {
	PaymentKey string
	OrderID    string
	Amount     int64 // KRW (whole units) for Toss, minor units for Stripe
}

// Record is the confirmed payment as reported by the gateway. Read-only
// after creation. CustomerEmail is the address the guide is delivered to.
type Record struct {
	OrderID       string
	CustomerEmail string
	Amount        int64
	ApprovedAt    time.Time
}

// ─── DECLINED ERROR ───────────────────────────────────────────────────────────

// DeclinedError means the gateway rejected or failed the confirmation.
// Message carries the gateway's own wording when it provided one, so the
// customer sees the same reason the gateway gave (wrong amount, expired
// key, etc). The customer has NOT been charged on this path.
type DeclinedError struct {
	Code    string // gateway error code; may be empty
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
	}
	return "payment declined: " + e.Message
}

// declined builds a DeclinedError with a fallback message when the gateway
// gave none.
func declined(code, message string) *DeclinedError {
	if message == "" {
		message = "결제 승인에 실패했습니다."
	}
	return &DeclinedError{Code: code, Message: message}
}

// ─── CLIENT INTERFACE ─────────────────────────────────────────────────────────

// Client is the interface the delivery workflow uses to confirm payments.
// Concrete implementations wrap the Toss confirm endpoint or the Stripe SDK.
// Tests inject a stub.
//
// Confirm issues exactly one synchronous gateway call — no retry, no cache.
// A *DeclinedError return means the charge did not succeed from this
// workflow's perspective; any other error is a transport-level failure.
// A nil error means the customer has been charged: the caller is then
// obliged to attempt delivery and must never report a later delivery
// failure as a payment failure.
type Client interface {
	Confirm(ctx context.Context, p ConfirmParams) (Record, error)
}
