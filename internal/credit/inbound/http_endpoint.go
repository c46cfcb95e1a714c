package inbound

import (
	"github.com/shandysiswandi/orvio/internal/credit/entity"
	"github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the credit ledger.
type HTTPEndpoint struct {
	uc uc
}

// GetCredits returns the caller's balance, refund mode, and cashback points.
// @Summary Get credit balance
// @Description Returns the authenticated user's credit balance, refund mode, and accrued cashback points.
// @Tags Credit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=GetCreditsResponse} "Credit balance"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credits [get]
func (h *HTTPEndpoint) GetCredits(r *router.Request) (any, error) {
	resp, err := h.uc.GetBalance(r.Context(), usecase.GetBalanceInput{})
	if err != nil {
		return nil, err
	}

	return GetCreditsResponse{
		Credits:        resp.Credits,
		Mode:           resp.Mode.String(),
		CashbackPoints: resp.CashbackPoints,
	}, nil
}

// SetCreditMode updates the caller's refund policy.
// @Summary Set credit mode
// @Description Changes the refund policy applied when the user's OTP transactions settle.
// @Tags Credit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetCreditModeRequest true "Credit mode payload"
// @Success 200 {object} router.successResponse{data=SetCreditModeResponse} "Mode updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credits/mode [put]
func (h *HTTPEndpoint) SetCreditMode(r *router.Request) (any, error) {
	var req SetCreditModeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.SetCreditMode(r.Context(), usecase.SetCreditModeInput{
		Mode: entity.CreditModeFromString(req.Mode),
	})
	if err != nil {
		return nil, err
	}

	return SetCreditModeResponse{}, nil
}
