package entity

import "strings"

// CreditMode governs whether a charged credit is refunded based on the
// delivery/verification outcome of an OTP transaction.
type CreditMode int16

const (
	// CreditModeUnknown is mean mode is not known / not set.
	CreditModeUnknown CreditMode = 0

	// CreditModeDirect mean charge on send, never refund.
	CreditModeDirect CreditMode = 1

	// CreditModeModerate mean refund only on hard delivery failure,
	// not when a code was acknowledged but never verified.
	CreditModeModerate CreditMode = 2

	// CreditModeStrict mean refund on hard failure and when acknowledged
	// but not verified by the deadline.
	CreditModeStrict CreditMode = 3
)

func (cm CreditMode) String() string {
	switch cm {
	case CreditModeDirect:
		return "direct"
	case CreditModeModerate:
		return "moderate"
	case CreditModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

func (cm CreditMode) IsUnknown() bool {
	switch cm {
	case CreditModeDirect, CreditModeModerate, CreditModeStrict:
		return false
	default:
		return true
	}
}

// RefundsOnHardFailure reports whether the mode refunds a charge when
// delivery exhausted all attempts without an acknowledgment.
func (cm CreditMode) RefundsOnHardFailure() bool {
	return cm == CreditModeModerate || cm == CreditModeStrict
}

// RefundsOnUnverified reports whether the mode refunds a charge when the
// code was acknowledged but never verified by the deadline.
func (cm CreditMode) RefundsOnUnverified() bool {
	return cm == CreditModeStrict
}

func CreditModeFromString(s string) CreditMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return CreditModeDirect
	case "moderate":
		return CreditModeModerate
	case "strict":
		return CreditModeStrict
	default:
		return CreditModeUnknown
	}
}
