package inbound

type SendOTPRequest struct {
	PhoneNumber      string `json:"phone_number"`
	WebhookURL       string `json:"webhook_url,omitempty"`
	WebhookSecret    string `json:"webhook_secret,omitempty"`
	OTPExpirySeconds int64  `json:"otp_expiry_seconds,omitempty"`
	OrgName          string `json:"org_name,omitempty"`
}

type SendOTPResponse struct {
	TID string `json:"tid"`
}

type AcknowledgeRequest struct {
	TID      string `json:"tid"`
	DeviceID string `json:"device_id,omitempty"`
}

type AcknowledgeResponse struct {
	Status string `json:"status"`
}

type VerifyOTPRequest struct {
	TID  string `json:"tid"`
	Code string `json:"code"`
}

type VerifyOTPResponse struct {
	Status string `json:"status"`
}

type DeviceStatsResponse struct {
	DeviceID           string `json:"device_id"`
	Active             bool   `json:"active"`
	AttemptsFailed     int64  `json:"attempts_failed"`
	SentAwaitingVerify int64  `json:"sent_awaiting_verify"`
	SentVerified       int64  `json:"sent_verified"`
	TotalSent          int64  `json:"total_sent"`
	SuccessfulSends    int64  `json:"successful_sends"`
	RetriedSends       int64  `json:"retried_sends"`
}

type StatsResponse struct {
	Devices          []DeviceStatsResponse `json:"devices"`
	TotalSent        int64                 `json:"total_sent"`
	TotalVerified    int64                 `json:"total_verified"`
	TotalFailed      int64                 `json:"total_failed"`
	OpenTransactions int64                 `json:"open_transactions"`
}

type RegisterDeviceRequest struct {
	DeviceID  string `json:"device_id,omitempty"`
	PushToken string `json:"push_token"`
}

type RegisterDeviceResponse struct {
	DeviceID    string `json:"device_id"`
	DeviceToken string `json:"device_token"`
}

type DeactivateDeviceResponse struct{}

func (DeactivateDeviceResponse) Message() string {
	return "Device deactivated."
}
