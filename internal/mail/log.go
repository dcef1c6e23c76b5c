package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// logSender is a no-op Sender for development. It logs the send and drops
// the message. Selected in main.go when RESEND_API_KEY is unset.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that logs instead of delivering.
func NewLogSender(logger *slog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, m Message) (SendResult, error) {
	attachment := ""
	if m.Attachment != nil {
		attachment = m.Attachment.Filename
	}
	s.logger.Info("mail: dropping message (log-only sender)",
		"to", m.To,
		"subject", m.Subject,
		"html_bytes", len(m.HTML),
		"attachment", attachment,
	)
	return SendResult{MessageID: fmt.Sprintf("log-%d", time.Now().UnixNano())}, nil
}
