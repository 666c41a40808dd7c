package payment

import "context"

// Result is the settlement outcome for one charge attempt.
type Result struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
}

// Gateway is the opaque payment dependency: one charge per booking attempt,
// a boolean outcome. A transport error is distinct from a decline.
type Gateway interface {
	Charge(ctx context.Context, amountCents int, payerEmail, description string) (Result, error)
}
