package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// resendSender is the concrete Sender backed by the Resend API.
type resendSender struct {
	client   *resend.Client
	fromAddr string // e.g. "guide@claudeguide.kr"
	fromName string // e.g. "Claude 완벽 가이드"
}

// NewResendSender returns a Sender that delivers email via Resend.
func NewResendSender(apiKey, fromAddr, fromName string) Sender {
	return &resendSender{
		client:   resend.NewClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// Send makes a single Resend API call. Attachments ride along in the same
// request, so attachment mode is still exactly one transport attempt.
func (s *resendSender) Send(ctx context.Context, m Message) (SendResult, error) {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromAddr),
		To:      []string{m.To},
		Subject: m.Subject,
		Html:    m.HTML,
	}

	if m.Attachment != nil {
		att := &resend.Attachment{
			Filename: m.Attachment.Filename,
			Content:  m.Attachment.Content,
		}
		if m.Attachment.ContentType != "" {
			att.ContentType = m.Attachment.ContentType
		}
		params.Attachments = []*resend.Attachment{att}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return SendResult{}, fmt.Errorf("mail: resend send: %w", err)
	}

	return SendResult{MessageID: sent.Id}, nil
}
