package auth

import "github.com/zalando-stups/stups-auth-adapter/internal/metrics"

// Outcome classifies a password verification.
type Outcome int

const (
	// InternalError means the verification could not be carried out.
	InternalError Outcome = iota
	// Authenticated means the issuer accepted the password.
	Authenticated
	// Rejected means the issuer refused the password.
	Rejected
)

// String returns the outcome label used in metrics.
func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return metrics.OutcomeAuthenticated
	case Rejected:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeInternalError
	}
}

// Result of a single verification. Username is set for Authenticated,
// Detail for InternalError.
type Result struct {
	Outcome  Outcome
	Username string
	Detail   string
}
