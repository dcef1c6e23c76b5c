// Package delivery orchestrates the two guide-delivery workflows:
// confirm-then-deliver (gateway verification first) and direct delivery
// (payment settled out-of-band). Each run is a single pass —
// validate → [confirm] → compose → dispatch — with no persisted state; a
// request either finishes or fails at one of those gates.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/guide-delivery-backend/internal/config"
	"github.com/nyashahama/guide-delivery-backend/internal/mail"
	"github.com/nyashahama/guide-delivery-backend/internal/payment"
)

// ─── REQUEST / RESULT TYPES ───────────────────────────────────────────────────

// ConfirmRequest is the inbound body of the confirm-payment workflow.
type ConfirmRequest struct {
	PaymentKey string
	OrderID    string
	Amount     int64
}

// DeliveryRequest is the inbound body of the direct-delivery workflow.
type DeliveryRequest struct {
	Email string
	Name  string // optional
}

// Result is the terminal value of either workflow. Reference is a fresh
// uuid minted per invocation; it appears in every log line for the run and
// in failure responses so support can correlate a customer complaint with
// the server logs.
type Result struct {
	Email     string
	OrderID   string
	Reference string
	Charged   bool
}

// ─── WORKFLOW ─────────────────────────────────────────────────────────────────

// Options are the read-only, process-wide delivery settings.
type Options struct {
	Mode        string // config.ModeLink | config.ModeAttachment
	DownloadURL string // used in link mode
	GuidePrice  int64  // KRW shown in direct-delivery emails
}

// Workflow holds the collaborators both workflows share. Construct once at
// startup; safe for concurrent use — there is no mutable state.
type Workflow struct {
	gateway payment.Client
	sender  mail.Sender
	assets  mail.AssetLoader // nil in link mode
	opts    Options
	logger  *slog.Logger

	// now is a clock hook so tests can pin the composed timestamp.
	now func() time.Time
}

// New constructs a Workflow. assets may be nil when opts.Mode is link.
func New(
	gateway payment.Client,
	sender mail.Sender,
	assets mail.AssetLoader,
	opts Options,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		gateway: gateway,
		sender:  sender,
		assets:  assets,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// ─── CONFIRM-THEN-DELIVER ─────────────────────────────────────────────────────

// ConfirmAndDeliver runs the confirmation workflow:
// validate → gateway confirm → compose → dispatch.
//
// Error contract:
//   - *ValidationError: bad input, the gateway was never called.
//   - *payment.DeclinedError: the gateway rejected the payment; the
//     customer was not charged and nothing was dispatched.
//   - *DeliveryError with Charged=true: the gateway confirmed the charge
//     but the email failed. The returned Result still carries the
//     confirmed email and order id so the caller can report "paid,
//     delivery pending" rather than a payment failure.
func (w *Workflow) ConfirmAndDeliver(ctx context.Context, req ConfirmRequest) (Result, error) {
	res := Result{Reference: uuid.NewString()}

	if err := validateConfirm(req); err != nil {
		return res, err
	}

	rec, err := w.gateway.Confirm(ctx, payment.ConfirmParams{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		w.logger.Warn("delivery: payment confirmation failed",
			"order_id", req.OrderID,
			"reference", res.Reference,
			"error", err,
		)
		return res, err
	}

	// From here on the customer has been charged.
	res.Charged = true
	res.Email = rec.CustomerEmail
	res.OrderID = rec.OrderID
	w.logger.Info("delivery: payment confirmed",
		"order_id", rec.OrderID,
		"amount", rec.Amount,
		"reference", res.Reference,
	)

	if !strings.Contains(rec.CustomerEmail, "@") {
		// Charged, but the gateway gave us nowhere to deliver. Surface it
		// as a post-charge delivery failure, not a declined payment.
		return res, &DeliveryError{
			Charged: true,
			Err:     fmt.Errorf("gateway returned unusable customer email %q", rec.CustomerEmail),
		}
	}

	if err := w.composeAndSend(ctx, mail.ComposeParams{
		ToEmail:  rec.CustomerEmail,
		OrderID:  rec.OrderID,
		Amount:   rec.Amount,
		IssuedAt: rec.ApprovedAt,
	}, res.Reference); err != nil {
		return res, &DeliveryError{
			Charged:      true,
			AssetMissing: errors.Is(err, mail.ErrAssetMissing),
			Err:          err,
		}
	}

	return res, nil
}

func validateConfirm(req ConfirmRequest) error {
	if req.PaymentKey == "" || req.OrderID == "" {
		return &ValidationError{Message: "필수 결제 정보가 누락되었습니다."}
	}
	if req.Amount <= 0 {
		return &ValidationError{Message: "결제 금액이 올바르지 않습니다."}
	}
	return nil
}

// ─── DIRECT DELIVERY ──────────────────────────────────────────────────────────

// Deliver runs the direct-delivery workflow: validate → compose → dispatch.
// Payment is trusted to have been settled out-of-band, so the shown price
// is the configured guide price and there is no order id.
func (w *Workflow) Deliver(ctx context.Context, req DeliveryRequest) (Result, error) {
	res := Result{Reference: uuid.NewString()}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return res, &ValidationError{Message: "올바른 이메일 주소를 입력해주세요."}
	}
	res.Email = req.Email

	if err := w.composeAndSend(ctx, mail.ComposeParams{
		ToEmail:  req.Email,
		ToName:   req.Name,
		Amount:   w.opts.GuidePrice,
		IssuedAt: w.now(),
	}, res.Reference); err != nil {
		return res, &DeliveryError{
			AssetMissing: errors.Is(err, mail.ErrAssetMissing),
			Err:          err,
		}
	}

	return res, nil
}

// ─── SHARED TAIL ──────────────────────────────────────────────────────────────

// composeAndSend renders the email and makes the single dispatch attempt.
// In attachment mode it loads the PDF first so an unreadable asset fails
// before any transport call happens.
func (w *Workflow) composeAndSend(ctx context.Context, p mail.ComposeParams, reference string) error {
	if w.opts.Mode == config.ModeLink {
		p.DownloadURL = w.opts.DownloadURL
	}

	msg, err := mail.Compose(p)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	if w.opts.Mode == config.ModeAttachment {
		att, err := w.assets.Load()
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		msg.Attachment = &att
	}

	sent, err := w.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	w.logger.Info("delivery: guide dispatched",
		"to", p.ToEmail,
		"mode", w.opts.Mode,
		"message_id", sent.MessageID,
		"reference", reference,
	)
	return nil
}
