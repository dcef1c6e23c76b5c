package delivery

// ValidationError means the client sent bad or missing input. The message
// is user-facing (Korean, like the rest of the customer copy) and safe to
// return verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DeliveryError means composing or dispatching the email failed.
//
// Charged is the critical bit: when true, the gateway confirmed the
// payment before the failure, so the customer has paid and received
// nothing. The API layer must surface that outcome distinctly from a
// payment failure — never tell a charged customer their payment failed.
type DeliveryError struct {
	Charged      bool
	AssetMissing bool // the local PDF could not be read (deployment defect)
	Err          error
}

func (e *DeliveryError) Error() string {
	if e.Charged {
		return "delivery failed after successful payment: " + e.Err.Error()
	}
	return "delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }
