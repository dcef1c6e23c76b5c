package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// stripeClient is the concrete Client backed by the official stripe-go SDK.
// The paymentKey from the browser is a PaymentIntent id: the charge was
// already confirmed client-side via Stripe.js, so confirmation here means
// retrieving the intent and verifying it actually succeeded for the amount
// and order this request claims.
type stripeClient struct {
	secretKey string
}

// NewStripeClient returns a Client backed by the Stripe SDK.
// secretKey is your STRIPE_SECRET_KEY env var.
func NewStripeClient(secretKey string) Client {
	return &stripeClient{secretKey: secretKey}
}

// Confirm retrieves the PaymentIntent and cross-checks it against the
// request. A status other than succeeded, a mismatched amount, or a
// mismatched order id all surface as *DeclinedError — the customer must
// retry payment, nothing was delivered against a charge we can't verify.
func (c *stripeClient) Confirm(ctx context.Context, p ConfirmParams) (Record, error) {
	stripe.Key = c.secretKey

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(p.PaymentKey, params)
	if err != nil {
		// Stripe returns a typed error for unknown ids; either way the
		// charge cannot be verified, which the workflow treats as declined.
		if stripeErr, ok := err.(*stripe.Error); ok {
			return Record{}, declined(string(stripeErr.Code), stripeErr.Msg)
		}
		return Record{}, fmt.Errorf("stripe: get payment intent %s: %w", p.PaymentKey, err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Record{}, declined(string(pi.Status),
			fmt.Sprintf("payment is %s, not succeeded", pi.Status))
	}

	if pi.Amount != p.Amount {
		return Record{}, declined("amount_mismatch",
			fmt.Sprintf("paid amount %d does not match order amount %d", pi.Amount, p.Amount))
	}

	// When checkout stamped the order id into metadata, hold the caller to it.
	if orderID, ok := pi.Metadata["order_id"]; ok && orderID != p.OrderID {
		return Record{}, declined("order_mismatch", "payment belongs to a different order")
	}

	email := pi.ReceiptEmail
	if email == "" && pi.Customer != nil {
		email = pi.Customer.Email
	}
	if email == "" {
		// Charged, but nowhere to deliver. Refuse rather than guess.
		return Record{}, declined("email_missing", "no customer email on payment")
	}

	return Record{
		OrderID:       p.OrderID,
		CustomerEmail: email,
		Amount:        pi.Amount,
		ApprovedAt:    time.Unix(pi.Created, 0),
	}, nil
}
