package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	creditentity "github.com/shandysiswandi/orvio/internal/credit/entity"
	creditusecase "github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/clock"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/goroutine"
	"github.com/shandysiswandi/orvio/internal/pkg/idempotency"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
	"github.com/shandysiswandi/orvio/internal/pkg/otpcode"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

const testTID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

type fakeStore struct {
	mu        sync.Mutex
	ticks     []entity.TickOutcome
	tickCalls int

	ackStatus entity.AckStatus
	ackDevice string

	verifyRes entity.VerifyResult

	resolveVerified bool
}

func (f *fakeStore) Tick(_ context.Context, _, _, _ string, _ int) (entity.TickOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.ticks) == 0 {
		return entity.TickOutcomeUnknown, nil
	}
	i := f.tickCalls
	if i >= len(f.ticks) {
		i = len(f.ticks) - 1
	}
	f.tickCalls++

	return f.ticks[i], nil
}

func (f *fakeStore) Acknowledge(_ context.Context, _, deviceID string) (entity.AckStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ackDevice = deviceID

	return f.ackStatus, nil
}

func (f *fakeStore) Verify(_ context.Context, _, _ string) (entity.VerifyResult, error) {
	return f.verifyRes, nil
}

func (f *fakeStore) Resolve(_ context.Context, _ string) (bool, error) {
	return f.resolveVerified, nil
}

type fakeDirectory struct {
	mu         sync.Mutex
	device     *entity.Device
	unavailFor int
	registered map[string]string
	removed    []string
}

func (f *fakeDirectory) Register(_ context.Context, deviceID, pushToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.registered == nil {
		f.registered = map[string]string{}
	}
	f.registered[deviceID] = pushToken

	return nil
}

func (f *fakeDirectory) Deactivate(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removed = append(f.removed, deviceID)

	return nil
}

func (f *fakeDirectory) RandomActive(_ context.Context) (*entity.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unavailFor > 0 {
		f.unavailFor--
		return nil, goerror.ErrNotFound
	}

	return f.device, nil
}

type fakeRepoDB struct {
	mu       sync.Mutex
	devices  []entity.Device
	missing  bool
	upserted []entity.Device
	inactive []string
	counters map[string]int64
}

func (f *fakeRepoDB) UpsertDevice(_ context.Context, dev entity.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserted = append(f.upserted, dev)

	return nil
}

func (f *fakeRepoDB) SetDeviceActive(_ context.Context, deviceID string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.missing {
		return goerror.ErrNotFound
	}
	if !active {
		f.inactive = append(f.inactive, deviceID)
	}

	return nil
}

func (f *fakeRepoDB) GetDevicesByUser(_ context.Context, _ int64) ([]entity.Device, error) {
	return f.devices, nil
}

func (f *fakeRepoDB) BumpDeviceCounter(_ context.Context, deviceID string, c entity.DeviceCounter) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.counters == nil {
		f.counters = map[string]int64{}
	}
	f.counters[deviceID+"/"+c.String()]++

	return nil
}

func (f *fakeRepoDB) counter(deviceID string, c entity.DeviceCounter) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.counters[deviceID+"/"+c.String()]
}

type fakeTransport struct {
	mu       sync.Mutex
	failures int
	attempts int
	sends    []DeliveryPush
}

func (f *fakeTransport) SendCode(_ context.Context, msg DeliveryPush) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("gateway unavailable")
	}
	f.sends = append(f.sends, msg)

	return nil
}

func (f *fakeTransport) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sends)
}

type notification struct {
	URL    string
	TID    string
	Status entity.DeliveryStatus
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []notification
}

func (f *fakeNotifier) Notify(_ context.Context, url, tid string, status entity.DeliveryStatus, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notes = append(f.notes, notification{URL: url, TID: tid, Status: status})

	return nil
}

func (f *fakeNotifier) statuses() []entity.DeliveryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.DeliveryStatus, len(f.notes))
	for i, n := range f.notes {
		out[i] = n.Status
	}

	return out
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []DeliveryOutcomeEvent
}

func (f *fakeMessaging) PublishDeliveryOutcome(_ context.Context, msg DeliveryOutcomeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, msg)

	return nil
}

func (f *fakeMessaging) published() []DeliveryOutcomeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]DeliveryOutcomeEvent(nil), f.events...)
}

type fakeOTPLedger struct {
	mu        sync.Mutex
	mode      creditentity.CreditMode
	cost      int64
	deductOK  bool
	system    bool
	deducted  []int64
	refunded  []int64
	cashbacks []int64
}

func (f *fakeOTPLedger) CheckAndDeduct(_ context.Context, in creditusecase.CheckAndDeductInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.deductOK {
		return false, nil
	}
	f.deducted = append(f.deducted, in.Amount)

	return true, nil
}

func (f *fakeOTPLedger) Refund(_ context.Context, in creditusecase.RefundInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refunded = append(f.refunded, in.Amount)

	return nil
}

func (f *fakeOTPLedger) AccrueCashback(_ context.Context, in creditusecase.AccrueCashbackInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cashbacks = append(f.cashbacks, in.Charged)

	return nil
}

func (f *fakeOTPLedger) GetCreditMode(_ context.Context, _ int64) (creditentity.CreditMode, error) {
	return f.mode, nil
}

func (f *fakeOTPLedger) CostFor(creditentity.CreditMode) int64 { return f.cost }

func (f *fakeOTPLedger) IsSystemUser(int64) bool { return f.system }

func (f *fakeOTPLedger) refunds() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.refunded...)
}

// fakeIdemp lets the first Exec per key through and reports the rest as
// already completed, like the real tracker does across instances.
type fakeIdemp struct {
	mu   sync.Mutex
	done map[string]bool
}

func (f *fakeIdemp) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdemp) MarkCompleted(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdemp) MarkFailed(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdemp) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.done == nil {
		f.done = map[string]bool{}
	}
	if f.done[key] {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.done[key] = true
	f.mu.Unlock()

	return fn(ctx)
}

type seqNumID struct{ n atomic.Int64 }

func (s *seqNumID) Generate() int64 { return s.n.Inc() }

type seqStringID struct{ n atomic.Int64 }

func (s *seqStringID) Generate() string {
	_ = s.n.Inc()
	return testTID
}

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string) (string, error) { return "device-token", nil }

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type fixtures struct {
	store     *fakeStore
	directory *fakeDirectory
	repo      *fakeRepoDB
	transport *fakeTransport
	notifier  *fakeNotifier
	mq        *fakeMessaging
	ledger    *fakeOTPLedger
}

func newTestUsecase(t *testing.T) (*Usecase, *fixtures) {
	t.Helper()

	fx := &fixtures{
		store:     &fakeStore{},
		directory: &fakeDirectory{device: &entity.Device{ID: "device-a", PushToken: "token-a"}},
		repo:      &fakeRepoDB{},
		transport: &fakeTransport{},
		notifier:  &fakeNotifier{},
		mq:        &fakeMessaging{},
		ledger:    &fakeOTPLedger{mode: creditentity.CreditModeDirect, cost: 1, deductOK: true},
	}

	codeGen, err := otpcode.NewNumeric(6)
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	uc := &Usecase{
		store:         fx.store,
		directory:     fx.directory,
		repoDB:        fx.repo,
		transport:     fx.transport,
		notifier:      fx.notifier,
		repoMessaging: fx.mq,
		ledger:        fx.ledger,
		idemp:         &fakeIdemp{},
		validator:     v,
		codeGen:       codeGen,
		uid:           &seqNumID{},
		uuid:          &seqStringID{},
		clock:         clock.New(),
		jwt:           fakeJWT{},
		ins:           instrument.NewNoop(),
		goroutine:     goroutine.NewManager(128),
		tickInterval:  20 * time.Millisecond,
		maxDepth:      2,
		defaultExpiry: 120 * time.Second,
		pushRetries:   2,
		pushDelay:     time.Millisecond,
		timers:        make(map[string]func()),
		attempts:      make(map[string]int),
	}
	t.Cleanup(uc.Shutdown)

	return uc, fx
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func deviceCtx(userID int64, deviceID string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, DeviceID: deviceID})
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 3*time.Second, 5*time.Millisecond, msg)
}

func TestSendOTP(t *testing.T) {
	t.Run("RejectsInvalidPhone", func(t *testing.T) {
		uc, _ := newTestUsecase(t)

		out, err := uc.SendOTP(authCtx(7), SendOTPInput{PhoneNumber: "not-a-phone"})
		assert.Nil(t, out)
		require.Error(t, err)
	})

	t.Run("RequiresAuthentication", func(t *testing.T) {
		uc, _ := newTestUsecase(t)

		out, err := uc.SendOTP(context.Background(), SendOTPInput{PhoneNumber: "+14155550123"})
		assert.Nil(t, out)
		require.Error(t, err)
	})

	t.Run("InsufficientCredits", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.ledger.deductOK = false

		out, err := uc.SendOTP(authCtx(7), SendOTPInput{PhoneNumber: "+14155550123"})
		assert.Nil(t, out)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodePaymentRequired, gerr.Code())
		assert.Zero(t, uc.OpenTransactions())
	})

	t.Run("ChargesAndSchedules", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.ledger.cost = 2
		fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyVerified}

		out, err := uc.SendOTP(authCtx(7), SendOTPInput{PhoneNumber: "+14155550123"})
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.NotEmpty(t, out.TID)
		assert.Equal(t, []int64{2}, fx.ledger.deducted)

		waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
		evt := fx.mq.published()[0]
		assert.Equal(t, entity.DeliveryStatusVerified, evt.Status)
		assert.Equal(t, out.TID, evt.TID)
		assert.NotZero(t, evt.EventID)

		waitFor(t, func() bool { return uc.OpenTransactions() == 0 }, "open gauge")
	})

	t.Run("SystemUserBypassesLedger", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.ledger.system = true
		fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyVerified}

		out, err := uc.SendOTP(authCtx(999), SendOTPInput{PhoneNumber: "+14155550123"})
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Empty(t, fx.ledger.deducted)

		// Nothing was charged, so nothing accrues cashback either.
		waitFor(t, func() bool { return uc.OpenTransactions() == 0 }, "open gauge")
		assert.Empty(t, fx.ledger.cashbacks)
	})
}

func TestDispatchRetriesUntilDepthExceeded(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.store.ticks = []entity.TickOutcome{
		entity.TickOutcomeCreated,
		entity.TickOutcomeContinue,
		entity.TickOutcomeDepthExceeded,
	}
	fx.ledger.mode = creditentity.CreditModeStrict

	uc.schedule(entity.Transaction{TID: testTID, UserID: 7, Code: "123456", Charged: 2, OTPExpiry: time.Second})

	waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
	assert.Equal(t, entity.DeliveryStatusFailed, fx.mq.published()[0].Status)
	assert.Equal(t, 2, fx.mq.published()[0].Attempts)
	assert.Equal(t, 2, fx.transport.sent())
	assert.Equal(t, []int64{2}, fx.ledger.refunds())

	waitFor(t, func() bool {
		return fx.repo.counter("device-a", entity.DeviceCounterTotalSent) == 2 &&
			fx.repo.counter("device-a", entity.DeviceCounterRetriedSends) == 1
	}, "device counters")
	waitFor(t, func() bool { return uc.OpenTransactions() == 0 }, "open gauge")
}

func TestDispatchHardFailureDirectModeKeepsCharge(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeDepthExceeded}
	fx.ledger.mode = creditentity.CreditModeDirect

	uc.schedule(entity.Transaction{TID: testTID, UserID: 7, Code: "123456", Charged: 1, OTPExpiry: time.Second})

	waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
	assert.Empty(t, fx.ledger.refunds())
}

func TestDispatchAcknowledgedThenVerified(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyAcked}
	fx.store.resolveVerified = true

	uc.schedule(entity.Transaction{
		TID:        testTID,
		UserID:     7,
		Code:       "123456",
		Charged:    1,
		OTPExpiry:  30 * time.Millisecond,
		WebhookURL: "https://example.com/hook",
	})

	waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
	assert.Equal(t, entity.DeliveryStatusVerified, fx.mq.published()[0].Status)

	waitFor(t, func() bool { return len(fx.notifier.statuses()) == 2 }, "webhook notifications")
	assert.ElementsMatch(t, []entity.DeliveryStatus{
		entity.DeliveryStatusAcknowledged,
		entity.DeliveryStatusVerified,
	}, fx.notifier.statuses())

	assert.Equal(t, []int64{1}, fx.ledger.cashbacks)
	assert.Empty(t, fx.ledger.refunds())
	waitFor(t, func() bool { return uc.OpenTransactions() == 0 }, "open gauge")
}

func TestDispatchAcknowledgedNeverVerified(t *testing.T) {
	tests := []struct {
		name       string
		mode       creditentity.CreditMode
		wantRefund []int64
	}{
		{name: "StrictRefunds", mode: creditentity.CreditModeStrict, wantRefund: []int64{3}},
		{name: "ModerateKeepsCharge", mode: creditentity.CreditModeModerate, wantRefund: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc, fx := newTestUsecase(t)
			fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyAcked}
			fx.store.resolveVerified = false
			fx.ledger.mode = tc.mode

			uc.schedule(entity.Transaction{TID: testTID, UserID: 7, Code: "123456", Charged: 3, OTPExpiry: 30 * time.Millisecond})

			waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
			assert.Equal(t, entity.DeliveryStatusFailed, fx.mq.published()[0].Status)
			assert.Equal(t, tc.wantRefund, fx.ledger.refunds())
			assert.Empty(t, fx.ledger.cashbacks)
		})
	}
}

func TestDispatchVerifiedBetweenTicks(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyVerified}

	uc.schedule(entity.Transaction{TID: testTID, UserID: 7, Code: "123456", Charged: 1, OTPExpiry: time.Second})

	waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
	assert.Equal(t, entity.DeliveryStatusVerified, fx.mq.published()[0].Status)
	assert.Equal(t, []int64{1}, fx.ledger.cashbacks)
	assert.Empty(t, fx.notifier.statuses())
}

func TestDispatchSkipsTickWithoutActiveDevice(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.directory.unavailFor = 2
	fx.store.ticks = []entity.TickOutcome{entity.TickOutcomeCreated, entity.TickOutcomeAlreadyVerified}

	uc.schedule(entity.Transaction{TID: testTID, UserID: 7, Code: "123456", OTPExpiry: time.Second})

	waitFor(t, func() bool { return len(fx.mq.published()) == 1 }, "outcome event")
	assert.Equal(t, entity.DeliveryStatusVerified, fx.mq.published()[0].Status)
}

func TestDeliver(t *testing.T) {
	device := &entity.Device{ID: "device-a", PushToken: "token-a"}
	tx := entity.Transaction{TID: testTID, Code: "123456", PhoneNumber: "+14155550123"}

	t.Run("RetriesTransientFailure", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.transport.failures = 1

		uc.deliver(context.Background(), tx, device, false)

		assert.Equal(t, 2, fx.transport.attempts)
		assert.Equal(t, 1, fx.transport.sent())
		waitFor(t, func() bool {
			return fx.repo.counter("device-a", entity.DeviceCounterSuccessfulSends) == 1
		}, "successful_sends counter")
	})

	t.Run("GivesUpAfterRetryBudget", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.transport.failures = 10

		uc.deliver(context.Background(), tx, device, false)

		assert.Equal(t, 3, fx.transport.attempts)
		assert.Zero(t, fx.transport.sent())
		waitFor(t, func() bool {
			return fx.repo.counter("device-a", entity.DeviceCounterAttemptsFailed) == 1
		}, "attempts_failed counter")
	})
}

func TestAcknowledge(t *testing.T) {
	t.Run("DeviceTokenPinsIdentity", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.store.ackStatus = entity.AckStatusAcknowledged

		out, err := uc.Acknowledge(deviceCtx(7, "device-a"), AcknowledgeInput{TID: testTID, DeviceID: "device-b"})
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusAcknowledged, out.Status)
		assert.Equal(t, "device-a", fx.store.ackDevice)

		waitFor(t, func() bool {
			return fx.repo.counter("device-a", entity.DeviceCounterSentAwaitingVerify) == 1
		}, "sent_awaiting_verify counter")
	})

	t.Run("FallsBackToBodyDevice", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.store.ackStatus = entity.AckStatusAcknowledged

		out, err := uc.Acknowledge(authCtx(7), AcknowledgeInput{TID: testTID, DeviceID: "device-b"})
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusAcknowledged, out.Status)
		assert.Equal(t, "device-b", fx.store.ackDevice)
	})

	t.Run("RequiresDeviceIdentity", func(t *testing.T) {
		uc, _ := newTestUsecase(t)

		out, err := uc.Acknowledge(authCtx(7), AcknowledgeInput{TID: testTID})
		assert.Nil(t, out)
		require.Error(t, err)
	})

	t.Run("ExpiredIsAStatusNotAnError", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.store.ackStatus = entity.AckStatusExpired

		out, err := uc.Acknowledge(deviceCtx(7, "device-a"), AcknowledgeInput{TID: testTID})
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusExpired, out.Status)
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("Verified", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.store.verifyRes = entity.VerifyResult{Status: entity.VerifyStatusVerified, DeviceID: "device-a"}

		out, err := uc.VerifyOTP(context.Background(), VerifyOTPInput{TID: testTID, Code: "123456"})
		require.NoError(t, err)
		assert.True(t, out.Verified)

		waitFor(t, func() bool {
			return fx.repo.counter("device-a", entity.DeviceCounterSentVerified) == 1
		}, "sent_verified counter")
	})

	t.Run("Mismatch", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.store.verifyRes = entity.VerifyResult{Status: entity.VerifyStatusMismatch}

		out, err := uc.VerifyOTP(context.Background(), VerifyOTPInput{TID: testTID, Code: "999999"})
		require.NoError(t, err)
		assert.False(t, out.Verified)
		assert.Equal(t, entity.VerifyStatusMismatch, out.Status)
	})

	t.Run("RejectsNonNumericCode", func(t *testing.T) {
		uc, _ := newTestUsecase(t)

		out, err := uc.VerifyOTP(context.Background(), VerifyOTPInput{TID: testTID, Code: "abcdef"})
		assert.Nil(t, out)
		require.Error(t, err)
	})
}

func TestRegisterDevice(t *testing.T) {
	t.Run("GeneratesIDAndToken", func(t *testing.T) {
		uc, fx := newTestUsecase(t)

		out, err := uc.RegisterDevice(authCtx(7), RegisterDeviceInput{PushToken: "fcm-token-0123456789"})
		require.NoError(t, err)
		assert.Equal(t, testTID, out.DeviceID)
		assert.Equal(t, "device-token", out.DeviceToken)

		require.Len(t, fx.repo.upserted, 1)
		assert.True(t, fx.repo.upserted[0].Active)
		assert.Equal(t, "fcm-token-0123456789", fx.directory.registered[out.DeviceID])
	})

	t.Run("KeepsCallerDeviceID", func(t *testing.T) {
		uc, fx := newTestUsecase(t)

		out, err := uc.RegisterDevice(authCtx(7), RegisterDeviceInput{DeviceID: "device-a", PushToken: "fcm-token-0123456789"})
		require.NoError(t, err)
		assert.Equal(t, "device-a", out.DeviceID)
		assert.Contains(t, fx.directory.registered, "device-a")
	})

	t.Run("RejectsShortPushToken", func(t *testing.T) {
		uc, _ := newTestUsecase(t)

		out, err := uc.RegisterDevice(authCtx(7), RegisterDeviceInput{PushToken: "short"})
		assert.Nil(t, out)
		require.Error(t, err)
	})
}

func TestDeactivateDevice(t *testing.T) {
	t.Run("RemovesFromPool", func(t *testing.T) {
		uc, fx := newTestUsecase(t)

		err := uc.DeactivateDevice(context.Background(), DeactivateDeviceInput{DeviceID: "device-a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"device-a"}, fx.repo.inactive)
		assert.Equal(t, []string{"device-a"}, fx.directory.removed)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc, fx := newTestUsecase(t)
		fx.repo.missing = true

		err := uc.DeactivateDevice(context.Background(), DeactivateDeviceInput{DeviceID: "device-a"})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeNotFound, gerr.Code())
	})
}

func TestStats(t *testing.T) {
	uc, fx := newTestUsecase(t)
	fx.repo.devices = []entity.Device{
		{ID: "device-a", Active: true, TotalSent: 5, SentVerified: 3, AttemptsFailed: 1},
		{ID: "device-b", Active: false, TotalSent: 2, SentVerified: 1, AttemptsFailed: 2},
	}

	out, err := uc.Stats(authCtx(7), StatsInput{})
	require.NoError(t, err)
	assert.Len(t, out.Devices, 2)
	assert.Equal(t, int64(7), out.TotalSent)
	assert.Equal(t, int64(4), out.TotalVerified)
	assert.Equal(t, int64(3), out.TotalFailed)
	assert.Zero(t, out.OpenTransactions)
}
