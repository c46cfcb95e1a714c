package credit

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/orvio/internal/credit/inbound"
	"github.com/shandysiswandi/orvio/internal/credit/outbound/db"
	"github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/config"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the credit ledger module and returns its usecase so sibling
// modules can charge and settle transactions through it.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbLedger := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbLedger,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return uc, nil
}
