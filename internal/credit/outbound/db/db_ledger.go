package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/orvio/internal/credit/entity"
)

// DeductCredits subtracts amount from the user's balance inside one
// transaction, holding a row lock so the balance can never go negative
// under concurrent deductions. It returns false without mutation when the
// balance is insufficient.
func (s *DB) DeductCredits(ctx context.Context, userID, amount int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "DeductCredits")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	var balance int64
	row := tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err = row.Scan(&balance); err != nil {
		return false, s.mapError(err)
	}

	if balance < amount {
		return false, nil
	}

	if _, err = tx.Exec(ctx,
		`UPDATE users SET credits = credits - $2, updated_at = now() WHERE id = $1`,
		userID, amount,
	); err != nil {
		return false, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, s.mapError(err)
	}

	return true, nil
}

// RefundCredits adds amount back to the user's balance under the same row
// lock discipline as DeductCredits.
func (s *DB) RefundCredits(ctx context.Context, userID, amount int64) (err error) {
	ctx, span := s.startSpan(ctx, "RefundCredits")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	var balance int64
	row := tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err = row.Scan(&balance); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE users SET credits = credits + $2, updated_at = now() WHERE id = $1`,
		userID, amount,
	); err != nil {
		return s.mapError(err)
	}

	return s.mapError(tx.Commit(ctx))
}

// AccrueCashback adds points to the user's cashback balance. Cashback is an
// auxiliary ledger entry and never gates an OTP transition.
func (s *DB) AccrueCashback(ctx context.Context, userID, points int64) (err error) {
	ctx, span := s.startSpan(ctx, "AccrueCashback")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE users SET cashback_points = cashback_points + $2, updated_at = now() WHERE id = $1`,
		userID, points,
	)

	return s.mapError(err)
}

// GetBalance returns the ledger view of one user.
func (s *DB) GetBalance(ctx context.Context, userID int64) (_ *entity.Balance, err error) {
	ctx, span := s.startSpan(ctx, "GetBalance")
	defer func() { s.endSpan(span, err) }()

	var (
		credits  int64
		mode     int16
		cashback int64
	)

	row := s.conn.QueryRow(ctx,
		`SELECT credits, credit_mode, cashback_points FROM users WHERE id = $1`, userID)
	if err = row.Scan(&credits, &mode, &cashback); err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Balance{
		UserID:         userID,
		Credits:        credits,
		Mode:           entity.CreditMode(mode),
		CashbackPoints: cashback,
	}, nil
}

// SetCreditMode updates the user's refund policy.
func (s *DB) SetCreditMode(ctx context.Context, userID int64, mode entity.CreditMode) (err error) {
	ctx, span := s.startSpan(ctx, "SetCreditMode")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET credit_mode = $2, updated_at = now() WHERE id = $1`,
		userID, int16(mode),
	)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}
