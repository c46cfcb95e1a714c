package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/shandysiswandi/orvio/internal/credit/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/config"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	DeductCredits(ctx context.Context, userID, amount int64) (bool, error)
	RefundCredits(ctx context.Context, userID, amount int64) error
	AccrueCashback(ctx context.Context, userID, points int64) error
	GetBalance(ctx context.Context, userID int64) (*entity.Balance, error)
	SetCreditMode(ctx context.Context, userID int64, mode entity.CreditMode) error
}

type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	ins       instrument.Instrumentation

	systemUserID    int64
	cashbackPercent int64
	costs           map[entity.CreditMode]int64
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	costs := map[entity.CreditMode]int64{
		entity.CreditModeDirect:   dep.Config.GetInt64("credit.cost.direct"),
		entity.CreditModeModerate: dep.Config.GetInt64("credit.cost.moderate"),
		entity.CreditModeStrict:   dep.Config.GetInt64("credit.cost.strict"),
	}
	for mode, cost := range costs {
		if cost <= 0 {
			costs[mode] = 1
		}
	}

	return &Usecase{
		repoDB:          dep.RepoDB,
		validator:       dep.Validator,
		ins:             dep.Instrument,
		systemUserID:    dep.Config.GetInt64("credit.system_user_id"),
		cashbackPercent: dep.Config.GetInt64("credit.cashback_percent"),
		costs:           costs,
	}
}

// CostFor returns the configured charge for one send under the given mode.
func (s *Usecase) CostFor(mode entity.CreditMode) int64 {
	return lo.ValueOr(s.costs, mode, int64(1))
}

// IsSystemUser reports whether the id is the reserved platform identity
// that bypasses the ledger check (bootstrap/self-test OTPs).
func (s *Usecase) IsSystemUser(userID int64) bool {
	return s.systemUserID != 0 && userID == s.systemUserID
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("credit.usecase").Start(ctx, name)
}
