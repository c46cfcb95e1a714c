package usecase

import (
	"context"
	"sync"
	"time"

	creditentity "github.com/shandysiswandi/orvio/internal/credit/entity"
	creditusecase "github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/clock"
	"github.com/shandysiswandi/orvio/internal/pkg/config"
	"github.com/shandysiswandi/orvio/internal/pkg/goroutine"
	"github.com/shandysiswandi/orvio/internal/pkg/idempotency"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
	"github.com/shandysiswandi/orvio/internal/pkg/otpcode"
	"github.com/shandysiswandi/orvio/internal/pkg/uid"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

// DeliveryPush is one code delivery handed to the push transport.
type DeliveryPush struct {
	Token       string
	Code        string
	PhoneNumber string
	TID         string
	Timestamp   time.Time
	OrgName     string
}

// DeliveryOutcomeEvent is the terminal resolution of one transaction.
type DeliveryOutcomeEvent struct {
	EventID  int64
	TID      string
	Status   entity.DeliveryStatus
	UserID   int64
	DeviceID string
	Attempts int
}

type store interface {
	Tick(ctx context.Context, tid, code, deviceID string, maxDepth int) (entity.TickOutcome, error)
	Acknowledge(ctx context.Context, tid, deviceID string) (entity.AckStatus, error)
	Verify(ctx context.Context, tid, userCode string) (entity.VerifyResult, error)
	Resolve(ctx context.Context, tid string) (bool, error)
}

type directory interface {
	Register(ctx context.Context, deviceID, pushToken string) error
	Deactivate(ctx context.Context, deviceID string) error
	RandomActive(ctx context.Context) (*entity.Device, error)
}

type repoDB interface {
	UpsertDevice(ctx context.Context, dev entity.Device) error
	SetDeviceActive(ctx context.Context, deviceID string, active bool) error
	GetDevicesByUser(ctx context.Context, userID int64) ([]entity.Device, error)
	BumpDeviceCounter(ctx context.Context, deviceID string, counter entity.DeviceCounter) error
}

type transport interface {
	SendCode(ctx context.Context, msg DeliveryPush) error
}

type notifier interface {
	Notify(ctx context.Context, url string, tid string, status entity.DeliveryStatus, secret string) error
}

type repoMessaging interface {
	PublishDeliveryOutcome(ctx context.Context, msg DeliveryOutcomeEvent) error
}

type ledger interface {
	CheckAndDeduct(ctx context.Context, in creditusecase.CheckAndDeductInput) (bool, error)
	Refund(ctx context.Context, in creditusecase.RefundInput) error
	AccrueCashback(ctx context.Context, in creditusecase.AccrueCashbackInput) error
	GetCreditMode(ctx context.Context, userID int64) (creditentity.CreditMode, error)
	CostFor(mode creditentity.CreditMode) int64
	IsSystemUser(userID int64) bool
}

type Usecase struct {
	store         store
	directory     directory
	repoDB        repoDB
	transport     transport
	notifier      notifier
	repoMessaging repoMessaging
	ledger        ledger
	idemp         idempotency.Idempotency
	validator     validator.Validator
	codeGen       otpcode.Generator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	tickInterval  time.Duration
	maxDepth      int
	defaultExpiry time.Duration
	pushRetries   uint64
	pushDelay     time.Duration

	// timers holds one cancellation handle per open tid on this instance.
	// Cross-instance exclusion comes from the store, never from here.
	timersMu sync.Mutex
	timers   map[string]func()
	open     atomic.Int64

	// attempts tallies deliveries per open tid for outcome events.
	attemptsMu sync.Mutex
	attempts   map[string]int
}

type Dependency struct {
	Store         store
	Directory     directory
	RepoDB        repoDB
	Transport     transport
	Notifier      notifier
	RepoMessaging repoMessaging
	Ledger        ledger
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	CodeGen       otpcode.Generator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Config        config.Config
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	tickInterval := dep.Config.GetSecond("otp.tick_interval_seconds")
	if tickInterval <= 0 {
		tickInterval = 5 * time.Second
	}

	maxDepth := int(dep.Config.GetInt64("otp.max_depth"))
	if maxDepth <= 0 {
		maxDepth = 2
	}

	defaultExpiry := dep.Config.GetSecond("otp.expiry_seconds")
	if defaultExpiry <= 0 {
		defaultExpiry = 120 * time.Second
	}

	pushRetries := dep.Config.GetInt64("otp.delivery.retries")
	if pushRetries <= 0 {
		pushRetries = 2
	}

	pushDelay := dep.Config.GetSecond("otp.delivery.retry_delay_seconds")
	if pushDelay <= 0 {
		pushDelay = 5 * time.Second
	}

	return &Usecase{
		store:         dep.Store,
		directory:     dep.Directory,
		repoDB:        dep.RepoDB,
		transport:     dep.Transport,
		notifier:      dep.Notifier,
		repoMessaging: dep.RepoMessaging,
		ledger:        dep.Ledger,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		codeGen:       dep.CodeGen,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		tickInterval:  tickInterval,
		maxDepth:      maxDepth,
		defaultExpiry: defaultExpiry,
		pushRetries:   uint64(pushRetries),
		pushDelay:     pushDelay,
		timers:        make(map[string]func()),
		attempts:      make(map[string]int),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
