package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/orvio/internal/credit"
	"github.com/shandysiswandi/orvio/internal/otp"
)

func (a *App) initModules() {
	ledger, err := credit.New(credit.Dependency{
		DBConn:     a.dbConn,
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module credit", "error", err)
		os.Exit(1)
	}

	otpUC, err := otp.New(otp.Dependency{
		DBConn:      a.dbConn,
		CacheConn:   a.cacheConn,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Idempotency: a.idemp,
		Messaging:   a.messaging,
		Ledger:      ledger,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		Clock:       a.clock,
		JWT:         a.jwt,
		Validator:   a.validator,
	})
	if err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}

	a.otp = otpUC
}
