package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shandysiswandi/orvio/internal/credit/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/config"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
	"github.com/shandysiswandi/orvio/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory ledger with the same locking discipline the
// real repository gets from row locks.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[int64]*entity.Balance
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[int64]*entity.Balance{}}
}

func (f *fakeLedger) seed(userID, credits int64, mode entity.CreditMode) {
	f.balances[userID] = &entity.Balance{UserID: userID, Credits: credits, Mode: mode}
}

func (f *fakeLedger) DeductCredits(_ context.Context, userID, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}

	bal, ok := f.balances[userID]
	if !ok || bal.Credits < amount {
		return false, nil
	}
	bal.Credits -= amount

	return true, nil
}

func (f *fakeLedger) RefundCredits(_ context.Context, userID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if bal, ok := f.balances[userID]; ok {
		bal.Credits += amount
	}

	return nil
}

func (f *fakeLedger) AccrueCashback(_ context.Context, userID, points int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if bal, ok := f.balances[userID]; ok {
		bal.CashbackPoints += points
	}

	return nil
}

func (f *fakeLedger) GetBalance(_ context.Context, userID int64) (*entity.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	bal, ok := f.balances[userID]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *bal

	return &cp, nil
}

func (f *fakeLedger) SetCreditMode(_ context.Context, userID int64, mode entity.CreditMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if bal, ok := f.balances[userID]; ok {
		bal.Mode = mode
	}

	return nil
}

func newTestUsecase(t *testing.T, repo *fakeLedger) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
credit:
  system_user_id: 999
  cashback_percent: 10
  cost:
    direct: 1
    moderate: 1
    strict: 2
`))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{
		RepoDB:     repo,
		Validator:  v,
		Config:     cfg,
		Instrument: instrument.NewNoop(),
	})
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func TestCheckAndDeduct(t *testing.T) {
	t.Run("SufficientBalance", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(1, 5, entity.CreditModeDirect)
		uc := newTestUsecase(t, repo)

		ok, err := uc.CheckAndDeduct(context.Background(), CheckAndDeductInput{UserID: 1, Amount: 2})

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), repo.balances[1].Credits)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(1, 1, entity.CreditModeStrict)
		uc := newTestUsecase(t, repo)

		ok, err := uc.CheckAndDeduct(context.Background(), CheckAndDeductInput{UserID: 1, Amount: 2})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(1), repo.balances[1].Credits, "failed deduct must not mutate the balance")
	})

	t.Run("SystemUserBypassesLedger", func(t *testing.T) {
		repo := newFakeLedger()
		uc := newTestUsecase(t, repo)

		ok, err := uc.CheckAndDeduct(context.Background(), CheckAndDeductInput{UserID: 999, Amount: 2})

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		uc := newTestUsecase(t, newFakeLedger())

		_, err := uc.CheckAndDeduct(context.Background(), CheckAndDeductInput{UserID: 1, Amount: -1})

		assert.Error(t, err)
	})
}

// Concurrent sends against one balance must admit exactly balance/cost of
// them, never overdrawing.
func TestCheckAndDeductConcurrent(t *testing.T) {
	const (
		balance    = 10
		concurrent = 50
	)

	repo := newFakeLedger()
	repo.seed(1, balance, entity.CreditModeDirect)
	uc := newTestUsecase(t, repo)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range concurrent {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ok, err := uc.CheckAndDeduct(context.Background(), CheckAndDeductInput{UserID: 1, Amount: 1})
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, balance, granted)
	assert.Equal(t, int64(0), repo.balances[1].Credits)
}

func TestRefund(t *testing.T) {
	t.Run("ReturnsChargedAmount", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(1, 3, entity.CreditModeModerate)
		uc := newTestUsecase(t, repo)

		err := uc.Refund(context.Background(), RefundInput{UserID: 1, Amount: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(5), repo.balances[1].Credits)
	})

	t.Run("SystemUserDropped", func(t *testing.T) {
		repo := newFakeLedger()
		uc := newTestUsecase(t, repo)

		err := uc.Refund(context.Background(), RefundInput{UserID: 999, Amount: 2})

		require.NoError(t, err)
		assert.Empty(t, repo.balances)
	})
}

func TestAccrueCashback(t *testing.T) {
	t.Run("PointsScaleWithCharge", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(1, 3, entity.CreditModeDirect)
		uc := newTestUsecase(t, repo)

		err := uc.AccrueCashback(context.Background(), AccrueCashbackInput{UserID: 1, Charged: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(20), repo.balances[1].CashbackPoints)
	})

	t.Run("NeverTouchesCredits", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(1, 3, entity.CreditModeDirect)
		uc := newTestUsecase(t, repo)

		err := uc.AccrueCashback(context.Background(), AccrueCashbackInput{UserID: 1, Charged: 1})

		require.NoError(t, err)
		assert.Equal(t, int64(3), repo.balances[1].Credits)
	})
}

func TestCostFor(t *testing.T) {
	uc := newTestUsecase(t, newFakeLedger())

	assert.Equal(t, int64(1), uc.CostFor(entity.CreditModeDirect))
	assert.Equal(t, int64(1), uc.CostFor(entity.CreditModeModerate))
	assert.Equal(t, int64(2), uc.CostFor(entity.CreditModeStrict))
	assert.Equal(t, int64(1), uc.CostFor(entity.CreditModeUnknown))
}

func TestGetBalance(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(7, 4, entity.CreditModeStrict)
		repo.balances[7].CashbackPoints = 30
		uc := newTestUsecase(t, repo)

		out, err := uc.GetBalance(authCtx(7), GetBalanceInput{})

		require.NoError(t, err)
		assert.Equal(t, int64(4), out.Credits)
		assert.Equal(t, entity.CreditModeStrict, out.Mode)
		assert.Equal(t, int64(30), out.CashbackPoints)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		uc := newTestUsecase(t, newFakeLedger())

		_, err := uc.GetBalance(context.Background(), GetBalanceInput{})

		assert.Error(t, err)
	})
}

func TestSetCreditMode(t *testing.T) {
	t.Run("Updates", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(7, 4, entity.CreditModeDirect)
		uc := newTestUsecase(t, repo)

		err := uc.SetCreditMode(authCtx(7), SetCreditModeInput{Mode: entity.CreditModeStrict})

		require.NoError(t, err)
		assert.Equal(t, entity.CreditModeStrict, repo.balances[7].Mode)
	})

	t.Run("RejectsUnknownMode", func(t *testing.T) {
		repo := newFakeLedger()
		repo.seed(7, 4, entity.CreditModeDirect)
		uc := newTestUsecase(t, repo)

		err := uc.SetCreditMode(authCtx(7), SetCreditModeInput{Mode: entity.CreditModeFromString("bogus")})

		assert.Error(t, err)
		assert.Equal(t, entity.CreditModeDirect, repo.balances[7].Mode)
	})
}
