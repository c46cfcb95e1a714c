package entity

// TickOutcome is the result of one atomic scheduler tick against the
// transaction store.
type TickOutcome int16

const (
	// TickOutcomeUnknown is mean outcome is not known / not set.
	TickOutcomeUnknown TickOutcome = 0

	// TickOutcomeCreated mean the transaction state was created on this tick.
	TickOutcomeCreated TickOutcome = 1

	// TickOutcomeContinue mean delivery was reassigned and depth advanced.
	TickOutcomeContinue TickOutcome = 2

	// TickOutcomeAlreadyAcked mean a device acknowledged since the last tick.
	TickOutcomeAlreadyAcked TickOutcome = 3

	// TickOutcomeAlreadyVerified mean the user verified since the last tick.
	TickOutcomeAlreadyVerified TickOutcome = 4

	// TickOutcomeDepthExceeded mean the attempt budget is exhausted.
	TickOutcomeDepthExceeded TickOutcome = 5
)

func (to TickOutcome) String() string {
	switch to {
	case TickOutcomeCreated:
		return "created"
	case TickOutcomeContinue:
		return "continue"
	case TickOutcomeAlreadyAcked:
		return "already_acked"
	case TickOutcomeAlreadyVerified:
		return "already_verified"
	case TickOutcomeDepthExceeded:
		return "depth_exceeded"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the tick outcome ends the retry cycle for
// its transaction.
func (to TickOutcome) IsTerminal() bool {
	switch to {
	case TickOutcomeAlreadyAcked, TickOutcomeAlreadyVerified, TickOutcomeDepthExceeded:
		return true
	default:
		return false
	}
}

// AckStatus is the result of a device acknowledgment attempt.
type AckStatus int16

const (
	// AckStatusUnknown is mean status is not known / not set.
	AckStatusUnknown AckStatus = 0

	// AckStatusAcknowledged mean the assigned device confirmed delivery.
	AckStatusAcknowledged AckStatus = 1

	// AckStatusDuplicate mean the transaction was already acknowledged.
	AckStatusDuplicate AckStatus = 2

	// AckStatusExpired mean no live transaction state exists for the tid.
	AckStatusExpired AckStatus = 3

	// AckStatusWrongDevice mean the caller is not the currently assigned device.
	AckStatusWrongDevice AckStatus = 4
)

func (as AckStatus) String() string {
	switch as {
	case AckStatusAcknowledged:
		return "acknowledged"
	case AckStatusDuplicate:
		return "duplicate"
	case AckStatusExpired:
		return "expired"
	case AckStatusWrongDevice:
		return "wrong_device"
	default:
		return "unknown"
	}
}

// VerifyStatus is the result of a user code verification attempt.
type VerifyStatus int16

const (
	// VerifyStatusUnknown is mean status is not known / not set.
	VerifyStatusUnknown VerifyStatus = 0

	// VerifyStatusVerified mean the submitted code matched.
	VerifyStatusVerified VerifyStatus = 1

	// VerifyStatusExpired mean no live transaction state exists for the tid.
	VerifyStatusExpired VerifyStatus = 2

	// VerifyStatusMismatch mean the submitted code did not match.
	VerifyStatusMismatch VerifyStatus = 3
)

func (vs VerifyStatus) String() string {
	switch vs {
	case VerifyStatusVerified:
		return "verified"
	case VerifyStatusExpired:
		return "expired"
	case VerifyStatusMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// DeliveryStatus is the terminal resolution reported to webhooks and the
// message broker.
type DeliveryStatus int16

const (
	// DeliveryStatusUnknown is mean status is not known / not set.
	DeliveryStatusUnknown DeliveryStatus = 0

	// DeliveryStatusAcknowledged mean a device confirmed delivery, verification pending.
	DeliveryStatusAcknowledged DeliveryStatus = 1

	// DeliveryStatusVerified mean the end user entered the correct code.
	DeliveryStatusVerified DeliveryStatus = 2

	// DeliveryStatusFailed mean delivery exhausted all attempts or was never verified.
	DeliveryStatusFailed DeliveryStatus = 3
)

func (ds DeliveryStatus) String() string {
	switch ds {
	case DeliveryStatusAcknowledged:
		return "acknowledged"
	case DeliveryStatusVerified:
		return "verified"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DeviceCounter identifies one per-device delivery statistic. Counter
// updates go through this enum so an invalid column name cannot reach
// the database boundary.
type DeviceCounter int16

const (
	// DeviceCounterUnknown is mean counter is not known / not set.
	DeviceCounterUnknown DeviceCounter = 0

	// DeviceCounterAttemptsFailed mean push sends that failed after local retries.
	DeviceCounterAttemptsFailed DeviceCounter = 1

	// DeviceCounterSentAwaitingVerify mean codes acknowledged and waiting on the user.
	DeviceCounterSentAwaitingVerify DeviceCounter = 2

	// DeviceCounterSentVerified mean codes the end user verified.
	DeviceCounterSentVerified DeviceCounter = 3

	// DeviceCounterTotalSent mean every push handed to the transport.
	DeviceCounterTotalSent DeviceCounter = 4

	// DeviceCounterSuccessfulSends mean pushes the transport accepted.
	DeviceCounterSuccessfulSends DeviceCounter = 5

	// DeviceCounterRetriedSends mean pushes that needed at least one local retry.
	DeviceCounterRetriedSends DeviceCounter = 6
)

func (dc DeviceCounter) String() string {
	switch dc {
	case DeviceCounterAttemptsFailed:
		return "attempts_failed"
	case DeviceCounterSentAwaitingVerify:
		return "sent_awaiting_verify"
	case DeviceCounterSentVerified:
		return "sent_verified"
	case DeviceCounterTotalSent:
		return "total_sent"
	case DeviceCounterSuccessfulSends:
		return "successful_sends"
	case DeviceCounterRetriedSends:
		return "retried_sends"
	default:
		return "unknown"
	}
}
