package inbound

import (
	"context"

	"github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
)

type uc interface {
	GetBalance(ctx context.Context, in usecase.GetBalanceInput) (*usecase.GetBalanceOutput, error)
	SetCreditMode(ctx context.Context, in usecase.SetCreditModeInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Credit Ledger (need authenticated)
	r.GET("/api/v1/credits", end.GetCredits)
	r.PUT("/api/v1/credits/mode", end.SetCreditMode)
}
