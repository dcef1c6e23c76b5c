package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTossBaseURL is the production Toss Payments API host.
const DefaultTossBaseURL = "https://api.tosspayments.com"

// tossClient is the concrete Client backed by the Toss Payments confirm
// endpoint. Toss has no official Go SDK, so this is a plain JSON-over-HTTP
// client.
type tossClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewTossClient returns a Client that confirms payments with Toss Payments.
// secretKey is your TOSS_SECRET_KEY env var; it is sent as the basic-auth
// user with an empty password, exactly as the Toss API docs require.
func NewTossClient(secretKey string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &tossClient{
		secretKey: secretKey,
		baseURL:   DefaultTossBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewTossClientWithBaseURL is NewTossClient pointed at a different host.
// Used in tests against httptest.Server.
func NewTossClientWithBaseURL(secretKey, baseURL string, timeout time.Duration) Client {
	c := NewTossClient(secretKey, timeout).(*tossClient)
	c.baseURL = baseURL
	return c
}

// ─── TOSS API SHAPES ──────────────────────────────────────────────────────────

type tossConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// tossPayment is the subset of the Toss payment object this service reads.
// Error responses reuse the same envelope with code/message set.
type tossPayment struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"` // "DONE" on success
	TotalAmount   int64  `json:"totalAmount"`
	CustomerEmail string `json:"customerEmail"`
	ApprovedAt    string `json:"approvedAt"` // RFC 3339 with offset

	Code    string `json:"code"`
	Message string `json:"message"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

// Confirm POSTs to /v1/payments/confirm. Any non-2xx response — declined
// card, amount mismatch, expired paymentKey — is surfaced as *DeclinedError
// carrying the gateway's own code and message.
func (c *tossClient) Confirm(ctx context.Context, p ConfirmParams) (Record, error) {
	bodyBytes, err := json.Marshal(tossConfirmRequest{
		PaymentKey: p.PaymentKey,
		OrderID:    p.OrderID,
		Amount:     p.Amount,
	})
	if err != nil {
		return Record{}, fmt.Errorf("toss: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payments/confirm",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return Record{}, fmt.Errorf("toss: build request: %w", err)
	}

	// Basic auth: secret key as the user, empty password.
	auth := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("toss: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Record{}, fmt.Errorf("toss: read response: %w", err)
	}

	var parsed tossPayment
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return Record{}, fmt.Errorf("toss: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Record{}, declined(parsed.Code, parsed.Message)
	}

	approvedAt, err := time.Parse(time.RFC3339, parsed.ApprovedAt)
	if err != nil {
		// The charge went through; a malformed timestamp must not fail it.
		approvedAt = time.Now()
	}

	// The gateway may answer with a sparse payment object. The confirm call
	// only succeeds when the gateway verified our orderId and amount, so
	// echoing the request values is safe — and the caller needs the order id
	// for the success response either way.
	orderID := parsed.OrderID
	if orderID == "" {
		orderID = p.OrderID
	}
	amount := parsed.TotalAmount
	if amount == 0 {
		amount = p.Amount
	}

	return Record{
		OrderID:       orderID,
		CustomerEmail: parsed.CustomerEmail,
		Amount:        amount,
		ApprovedAt:    approvedAt,
	}, nil
}
