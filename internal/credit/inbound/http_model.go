package inbound

type GetCreditsResponse struct {
	Credits        int64  `json:"credits"`
	Mode           string `json:"mode"`
	CashbackPoints int64  `json:"cashback_points"`
}

type SetCreditModeRequest struct {
	Mode string `json:"mode"`
}

type SetCreditModeResponse struct{}

func (SetCreditModeResponse) Message() string {
	return "Credit mode updated."
}
