package usecase

import (
	"context"
	"log/slog"

	creditusecase "github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/idempotency"
)

// Settlement is guarded by the idempotency tracker so that when several
// service instances race on the same terminal outcome, exactly one of
// them moves money and notifies. Billing decisions come strictly from
// store-observed outcomes, never from webhook results.

const settleKeyPrefix = "otp:settle:"

func (s *Usecase) settleVerified(ctx context.Context, tx entity.Transaction) {
	ctx, span := s.startSpan(context.WithoutCancel(ctx), "settleVerified")
	defer span.End()
	defer s.open.Dec()

	err := s.idemp.Exec(ctx, settleKeyPrefix+tx.TID, func(ctx context.Context) error {
		if tx.Charged > 0 {
			if err := s.ledger.AccrueCashback(ctx, creditusecase.AccrueCashbackInput{
				UserID:  tx.UserID,
				Charged: tx.Charged,
			}); err != nil {
				slog.ErrorContext(ctx, "failed to accrue cashback", "tid", tx.TID, "error", err)
			}
		}

		s.finalize(ctx, tx, entity.DeliveryStatusVerified, "")
		return nil
	})
	if err != nil {
		s.logSettleSkip(ctx, tx.TID, err)
	}
}

func (s *Usecase) settleUnverified(ctx context.Context, tx entity.Transaction) {
	ctx, span := s.startSpan(context.WithoutCancel(ctx), "settleUnverified")
	defer span.End()
	defer s.open.Dec()

	err := s.idemp.Exec(ctx, settleKeyPrefix+tx.TID, func(ctx context.Context) error {
		s.refundIf(ctx, tx, s.modeRefundsUnverified(ctx, tx))
		s.finalize(ctx, tx, entity.DeliveryStatusFailed, "")
		return nil
	})
	if err != nil {
		s.logSettleSkip(ctx, tx.TID, err)
	}
}

func (s *Usecase) settleFailed(ctx context.Context, tx entity.Transaction) {
	ctx, span := s.startSpan(context.WithoutCancel(ctx), "settleFailed")
	defer span.End()
	defer s.open.Dec()

	err := s.idemp.Exec(ctx, settleKeyPrefix+tx.TID, func(ctx context.Context) error {
		s.refundIf(ctx, tx, s.modeRefundsHardFailure(ctx, tx))
		s.finalize(ctx, tx, entity.DeliveryStatusFailed, "")
		return nil
	})
	if err != nil {
		s.logSettleSkip(ctx, tx.TID, err)
	}
}

func (s *Usecase) modeRefundsUnverified(ctx context.Context, tx entity.Transaction) bool {
	mode, err := s.ledger.GetCreditMode(ctx, tx.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read credit mode, skipping refund", "tid", tx.TID, "error", err)
		return false
	}
	return mode.RefundsOnUnverified()
}

func (s *Usecase) modeRefundsHardFailure(ctx context.Context, tx entity.Transaction) bool {
	mode, err := s.ledger.GetCreditMode(ctx, tx.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read credit mode, skipping refund", "tid", tx.TID, "error", err)
		return false
	}
	return mode.RefundsOnHardFailure()
}

func (s *Usecase) refundIf(ctx context.Context, tx entity.Transaction, refundable bool) {
	if !refundable || tx.Charged <= 0 {
		return
	}

	if err := s.ledger.Refund(ctx, creditusecase.RefundInput{
		UserID: tx.UserID,
		Amount: tx.Charged,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to refund charge", "tid", tx.TID, "user_id", tx.UserID, "error", err)
	}
}

// finalize fires the customer webhook and the outcome event. Both are
// best-effort and must never roll back a settlement.
func (s *Usecase) finalize(ctx context.Context, tx entity.Transaction, status entity.DeliveryStatus, deviceID string) {
	if tx.WebhookURL != "" {
		s.goroutine.Go(ctx, func(ctx context.Context) error {
			if err := s.notifier.Notify(ctx, tx.WebhookURL, tx.TID, status, tx.WebhookSecret); err != nil {
				slog.WarnContext(ctx, "failed to notify webhook", "tid", tx.TID, "error", err)
			}
			return nil
		})
	}

	s.attemptsMu.Lock()
	attempts := s.attempts[tx.TID]
	delete(s.attempts, tx.TID)
	s.attemptsMu.Unlock()

	if err := s.repoMessaging.PublishDeliveryOutcome(ctx, DeliveryOutcomeEvent{
		EventID:  s.uid.Generate(),
		TID:      tx.TID,
		Status:   status,
		UserID:   tx.UserID,
		DeviceID: deviceID,
		Attempts: attempts,
	}); err != nil {
		slog.WarnContext(ctx, "failed to publish delivery outcome", "tid", tx.TID, "error", err)
	}
}

func (s *Usecase) logSettleSkip(ctx context.Context, tid string, err error) {
	switch err {
	case idempotency.ErrAlreadyInProgress, idempotency.ErrAlreadyCompleted:
		slog.InfoContext(ctx, "settlement already handled elsewhere", "tid", tid)
	default:
		slog.ErrorContext(ctx, "failed to settle transaction", "tid", tid, "error", err)
	}
}
