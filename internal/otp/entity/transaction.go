package entity

import "time"

// Transaction is the scheduler-side view of one OTP delivery attempt-chain.
// The authoritative per-tid state (code, assigned device, acknowledged flag,
// attempt depth) lives only in the transaction store; this struct carries
// the request parameters a dispatch loop needs between ticks.
type Transaction struct {
	TID           string
	UserID        int64
	PhoneNumber   string
	Code          string
	OrgName       string
	WebhookURL    string
	WebhookSecret string
	OTPExpiry     time.Duration
	Charged       int64
	CreatedAt     time.Time
}

// Device is a registered relay worker able to receive push deliveries.
type Device struct {
	ID        string
	UserID    int64
	PushToken string
	Active    bool

	AttemptsFailed     int64
	SentAwaitingVerify int64
	SentVerified       int64
	TotalSent          int64
	SuccessfulSends    int64
	RetriedSends       int64
}

// VerifyResult pairs a verification status with the device that was
// assigned at the moment of success, for attribution.
type VerifyResult struct {
	Status   VerifyStatus
	DeviceID string
}
