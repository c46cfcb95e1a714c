package event

// OTPDeliveryDestination is the destination for terminal delivery outcomes.
// A stats consumer aggregates these out of process.
const OTPDeliveryDestination string = "orvio.otp.delivery"

type OTPDeliveryMessage struct {
	EventID  int64  `json:"event_id,string"`
	TID      string `json:"tid"`
	Status   string `json:"status"`
	UserID   int64  `json:"user_id"`
	DeviceID string `json:"device_id,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}
