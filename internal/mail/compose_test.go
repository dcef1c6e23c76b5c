package mail

import (
	"strings"
	"testing"
	"time"
)

var composeTime = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC) // 12:00 KST

func linkParams() ComposeParams {
	return ComposeParams{
		ToEmail:     "a@b.com",
		ToName:      "홍길동",
		OrderID:     "ORD100",
		Amount:      9900,
		IssuedAt:    composeTime,
		DownloadURL: "https://example.com/guide.pdf",
	}
}

// ─── Compose ─────────────────────────────────────────────────────────────────

func TestCompose_IsDeterministic(t *testing.T) {
	first, err := Compose(linkParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compose(linkParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.HTML != second.HTML || first.Subject != second.Subject {
		t.Error("same params must compose byte-identical messages")
	}
}

func TestCompose_LinkMode(t *testing.T) {
	msg, err := Compose(linkParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.To != "a@b.com" {
		t.Errorf("unexpected recipient %q", msg.To)
	}
	if msg.Attachment != nil {
		t.Error("Compose never sets an attachment; that's the dispatcher's job")
	}
	if !strings.Contains(msg.HTML, "https://example.com/guide.pdf") {
		t.Error("link mode must render the download URL")
	}
	if strings.Contains(msg.HTML, "PDF 파일 첨부") {
		t.Error("link mode must not render the attachment notice")
	}
	if !strings.Contains(msg.HTML, "₩9,900") {
		t.Error("amount must render with thousands separator")
	}
	if !strings.Contains(msg.HTML, "2025-06-01 12:00:00") {
		t.Error("timestamp must render in KST")
	}
	if !strings.Contains(msg.HTML, "ORD100") {
		t.Error("order id must appear in the purchase details")
	}
}

func TestCompose_AttachmentMode(t *testing.T) {
	p := linkParams()
	p.DownloadURL = ""

	msg, err := Compose(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.HTML, "PDF 파일 첨부") {
		t.Error("attachment mode must render the attachment notice")
	}
	if strings.Contains(msg.HTML, "다운로드하기") {
		t.Error("attachment mode must not render the download button")
	}
}

func TestCompose_EscapesUntrustedFields(t *testing.T) {
	p := linkParams()
	p.ToName = `<script>alert("x")</script>`
	p.ToEmail = `"><img src=x onerror=1>@b.com`

	msg, err := Compose(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("customer name must be HTML-escaped")
	}
	if strings.Contains(msg.HTML, "<img") {
		t.Error("customer email must be HTML-escaped")
	}
}

func TestCompose_OptionalFields(t *testing.T) {
	p := ComposeParams{
		ToEmail:     "a@b.com",
		IssuedAt:    composeTime,
		DownloadURL: "https://example.com/guide.pdf",
	}

	msg, err := Compose(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.HTML, "고객님") {
		t.Error("missing name must fall back to the generic greeting")
	}
	if strings.Contains(msg.HTML, "주문번호") {
		t.Error("purchase details must omit the order row when there is no order id")
	}
	if strings.Contains(msg.HTML, "결제금액") {
		t.Error("purchase details must omit the amount row when amount is zero")
	}
}

// ─── formatComma ─────────────────────────────────────────────────────────────

func TestFormatComma(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		5000:    "5,000",
		9900:    "9,900",
		123456:  "123,456",
		1234567: "1,234,567",
	}
	for n, want := range cases {
		if got := formatComma(n); got != want {
			t.Errorf("formatComma(%d) = %q, want %q", n, got, want)
		}
	}
}
