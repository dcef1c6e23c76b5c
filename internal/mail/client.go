// Package mail composes the guide-delivery email and defines the interface
// for sending it through a transactional email provider.
package mail

import "context"

// Attachment is a binary file carried inline in a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a fully composed email, consumed exactly once by a Sender.
// To always contains an '@' by the time a Message exists — the workflow
// validates before composing.
type Message struct {
	To         string
	Subject    string
	HTML       string
	Attachment *Attachment // nil in link mode
}

// SendResult is the provider's acknowledgement of an accepted message.
type SendResult struct {
	MessageID string // provider message id, for support correlation
}

// Sender is the interface the delivery workflow uses to dispatch email.
// Implementations make exactly one transport attempt — no retry, no queue,
// no read-receipt tracking. Tests inject a stub.
type Sender interface {
	Send(ctx context.Context, m Message) (SendResult, error)
}
