package otp

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	creditusecase "github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/otp/inbound"
	"github.com/shandysiswandi/orvio/internal/otp/outbound/db"
	"github.com/shandysiswandi/orvio/internal/otp/outbound/mq"
	"github.com/shandysiswandi/orvio/internal/otp/outbound/push"
	otpredis "github.com/shandysiswandi/orvio/internal/otp/outbound/redis"
	"github.com/shandysiswandi/orvio/internal/otp/outbound/webhook"
	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/clock"
	"github.com/shandysiswandi/orvio/internal/pkg/config"
	"github.com/shandysiswandi/orvio/internal/pkg/goroutine"
	"github.com/shandysiswandi/orvio/internal/pkg/idempotency"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
	"github.com/shandysiswandi/orvio/internal/pkg/messaging"
	"github.com/shandysiswandi/orvio/internal/pkg/otpcode"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
	"github.com/shandysiswandi/orvio/internal/pkg/uid"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *goredis.Client            `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Ledger      *creditusecase.Usecase     `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

// New wires the OTP delivery module. The returned usecase owns the
// per-instance timer registry; callers must Shutdown it on exit.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	storeTTL := dep.Config.GetSecond("otp.store_ttl_seconds")
	if storeTTL <= 0 {
		storeTTL = 15 * time.Minute
	}

	codeLength := int(dep.Config.GetInt64("otp.code_length"))
	if codeLength <= 0 {
		codeLength = 6
	}
	codeGen, err := otpcode.NewNumeric(codeLength)
	if err != nil {
		return nil, err
	}

	store := otpredis.NewStore(dep.CacheConn, dep.Instrument, storeTTL)
	dir := otpredis.NewDirectory(dep.CacheConn, dep.Instrument)
	dbDevice := db.NewDB(dep.DBConn, dep.Instrument)
	transport := push.NewClient(
		dep.Config.GetString("push.base_url"),
		dep.Config.GetString("push.api_key"),
		dep.Instrument,
	)
	notifier := webhook.NewClient(dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Store:         store,
		Directory:     dir,
		RepoDB:        dbDevice,
		Transport:     transport,
		Notifier:      notifier,
		RepoMessaging: repoMsg,
		Ledger:        dep.Ledger,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		CodeGen:       codeGen,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Config:        dep.Config,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return uc, nil
}
