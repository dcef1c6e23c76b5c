package payment_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyashahama/guide-delivery-backend/internal/payment"
)

func tossServer(t *testing.T, handler http.HandlerFunc) (payment.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := payment.NewTossClientWithBaseURL("test_sk_secret", srv.URL, 5*time.Second)
	return client, srv
}

func confirmParams() payment.ConfirmParams {
	return payment.ConfirmParams{PaymentKey: "pk_1", OrderID: "ORD100", Amount: 9900}
}

func TestTossConfirm_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":       "ORD100",
			"status":        "DONE",
			"totalAmount":   9900,
			"customerEmail": "a@b.com",
			"approvedAt":    "2025-06-01T12:00:00+09:00",
		})
	})

	rec, err := client.Confirm(context.Background(), confirmParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/payments/confirm" {
		t.Errorf("unexpected path %q", gotPath)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("test_sk_secret:"))
	if gotAuth != wantAuth {
		t.Errorf("auth header %q, want %q", gotAuth, wantAuth)
	}
	if gotBody["paymentKey"] != "pk_1" || gotBody["orderId"] != "ORD100" || gotBody["amount"] != float64(9900) {
		t.Errorf("unexpected request body %v", gotBody)
	}

	if rec.CustomerEmail != "a@b.com" {
		t.Errorf("expected a@b.com, got %q", rec.CustomerEmail)
	}
	if rec.OrderID != "ORD100" || rec.Amount != 9900 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.ApprovedAt.UTC().Hour() != 3 { // 12:00 KST
		t.Errorf("approvedAt not parsed: %v", rec.ApprovedAt)
	}
}

func TestTossConfirm_DeclinedCarriesGatewayMessage(t *testing.T) {
	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "NOT_FOUND_PAYMENT",
			"message": "존재하지 않는 결제 입니다.",
		})
	})

	_, err := client.Confirm(context.Background(), confirmParams())

	var declined *payment.DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected DeclinedError, got %v", err)
	}
	if declined.Code != "NOT_FOUND_PAYMENT" {
		t.Errorf("expected gateway code, got %q", declined.Code)
	}
	if declined.Message != "존재하지 않는 결제 입니다." {
		t.Errorf("expected gateway message, got %q", declined.Message)
	}
}

func TestTossConfirm_DeclinedWithoutMessageUsesFallback(t *testing.T) {
	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := client.Confirm(context.Background(), confirmParams())

	var declined *payment.DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected DeclinedError, got %v", err)
	}
	if declined.Message == "" {
		t.Error("declined error must always carry a message")
	}
}

func TestTossConfirm_MalformedResponseIsNotDeclined(t *testing.T) {
	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{bad json`))
	})

	_, err := client.Confirm(context.Background(), confirmParams())
	if err == nil {
		t.Fatal("expected an error")
	}
	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		t.Error("a garbled response is a transport problem, not a declined payment")
	}
}

func TestTossConfirm_SparseResponseEchoesRequestOrderAndAmount(t *testing.T) {
	// The gateway confirmed the charge but answered with only the customer
	// email. The record must still identify the order the caller confirmed.
	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"customerEmail": "a@b.com",
		})
	})

	rec, err := client.Confirm(context.Background(), confirmParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OrderID != "ORD100" {
		t.Errorf("expected the request orderId echoed, got %q", rec.OrderID)
	}
	if rec.Amount != 9900 {
		t.Errorf("expected the request amount echoed, got %d", rec.Amount)
	}
	if rec.CustomerEmail != "a@b.com" {
		t.Errorf("expected a@b.com, got %q", rec.CustomerEmail)
	}
}

func TestTossConfirm_BadApprovedAtDoesNotFailTheCharge(t *testing.T) {
	client, _ := tossServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":       "ORD100",
			"status":        "DONE",
			"totalAmount":   9900,
			"customerEmail": "a@b.com",
			"approvedAt":    "yesterday-ish",
		})
	})

	rec, err := client.Confirm(context.Background(), confirmParams())
	if err != nil {
		t.Fatalf("a confirmed charge must not fail on a bad timestamp: %v", err)
	}
	if rec.ApprovedAt.IsZero() {
		t.Error("ApprovedAt should fall back to now, not zero")
	}
}

// ─── DeclinedError ────────────────────────────────────────────────────────────

func TestDeclinedError_Format(t *testing.T) {
	withCode := &payment.DeclinedError{Code: "REJECT_CARD", Message: "declined"}
	if withCode.Error() != "payment declined (REJECT_CARD): declined" {
		t.Errorf("unexpected format: %q", withCode.Error())
	}

	noCode := &payment.DeclinedError{Message: "declined"}
	if noCode.Error() != "payment declined: declined" {
		t.Errorf("unexpected format: %q", noCode.Error())
	}
}
