package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
)

// schedule starts the dispatch loop for one transaction. The loop runs on
// a context detached from the originating request so it outlives the
// send call.
func (s *Usecase) schedule(tx entity.Transaction) {
	ctx, cancel := context.WithCancel(context.Background())
	s.setTimer(tx.TID, cancel)
	s.open.Inc()

	s.goroutine.Go(ctx, func(ctx context.Context) error {
		s.dispatchLoop(ctx, tx)
		return nil
	})
}

// dispatchLoop drives the per-tid retry cycle. The first tick fires
// immediately so the user is not left waiting one full interval for the
// initial delivery.
func (s *Usecase) dispatchLoop(ctx context.Context, tx entity.Transaction) {
	if s.runTick(ctx, tx) {
		return
	}

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if s.runTick(ctx, tx) {
			return
		}
	}
}

// runTick performs one scheduler tick and reports whether the transaction
// reached a terminal branch. A store or directory failure aborts only the
// current tick; the loop continues at the next interval.
func (s *Usecase) runTick(ctx context.Context, tx entity.Transaction) bool {
	ctx, span := s.startSpan(ctx, "runTick")
	defer span.End()

	device, err := s.directory.RandomActive(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no active device available", "tid", tx.TID)
		return false
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to pick delivery device", "tid", tx.TID, "error", err)
		return false
	}

	outcome, err := s.store.Tick(ctx, tx.TID, tx.Code, device.ID, s.maxDepth)
	if err != nil {
		slog.ErrorContext(ctx, "failed to advance transaction", "tid", tx.TID, "error", err)
		return false
	}

	switch outcome {
	case entity.TickOutcomeCreated:
		s.deliver(ctx, tx, device, false)
		return false

	case entity.TickOutcomeContinue:
		slog.WarnContext(ctx, "no ack received, retrying with a different device", "tid", tx.TID, "device_id", device.ID)
		s.deliver(ctx, tx, device, true)
		return false

	case entity.TickOutcomeAlreadyAcked:
		s.onAcknowledged(ctx, tx)
		return true

	case entity.TickOutcomeAlreadyVerified:
		s.cancelTimer(tx.TID)
		s.settleVerified(ctx, tx)
		return true

	case entity.TickOutcomeDepthExceeded:
		s.cancelTimer(tx.TID)
		s.settleFailed(ctx, tx)
		return true

	default:
		slog.ErrorContext(ctx, "transaction store returned unknown tick outcome", "tid", tx.TID, "outcome", outcome)
		return false
	}
}

// onAcknowledged swaps the repeating ticker for a one-shot deadline
// check: otpExpiry later the store is re-inspected to decide between
// "verified meanwhile" and "acknowledged but never verified".
func (s *Usecase) onAcknowledged(ctx context.Context, tx entity.Transaction) {
	s.cancelTimer(tx.TID)

	if tx.WebhookURL != "" {
		s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
			if err := s.notifier.Notify(ctx, tx.WebhookURL, tx.TID, entity.DeliveryStatusAcknowledged, tx.WebhookSecret); err != nil {
				slog.WarnContext(ctx, "failed to notify webhook", "tid", tx.TID, "error", err)
			}
			return nil
		})
	}

	deadline := time.AfterFunc(tx.OTPExpiry, func() {
		s.cancelTimer(tx.TID)
		s.resolveDeadline(context.Background(), tx)
	})
	s.setTimer(tx.TID, func() { deadline.Stop() })
}

// resolveDeadline settles a transaction whose code was acknowledged but
// whose verification window has now closed.
func (s *Usecase) resolveDeadline(ctx context.Context, tx entity.Transaction) {
	ctx, span := s.startSpan(ctx, "resolveDeadline")
	defer span.End()

	verified, err := s.store.Resolve(ctx, tx.TID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve transaction at deadline", "tid", tx.TID, "error", err)
		return
	}

	if verified {
		s.settleVerified(ctx, tx)
		return
	}

	s.settleUnverified(ctx, tx)
}

// setTimer registers the cancellation handle for tid, replacing (and
// cancelling) any previous one.
func (s *Usecase) setTimer(tid string, cancel func()) {
	s.timersMu.Lock()
	prev := s.timers[tid]
	s.timers[tid] = cancel
	s.timersMu.Unlock()

	if prev != nil {
		prev()
	}
}

// cancelTimer removes and fires the cancellation handle for tid. Calling
// it for an already-removed tid is a no-op.
func (s *Usecase) cancelTimer(tid string) {
	s.timersMu.Lock()
	cancel, ok := s.timers[tid]
	delete(s.timers, tid)
	s.timersMu.Unlock()

	if ok && cancel != nil {
		cancel()
	}
}

// OpenTransactions reports how many transactions this instance is
// currently dispatching or awaiting a verification deadline for.
func (s *Usecase) OpenTransactions() int64 {
	return s.open.Load()
}

// Shutdown cancels every timer held by this instance. In-flight
// transactions are abandoned, not settled (short-lived OTP state is
// acceptable to lose on restart).
func (s *Usecase) Shutdown() {
	s.timersMu.Lock()
	timers := s.timers
	s.timers = make(map[string]func())
	s.timersMu.Unlock()

	for _, cancel := range timers {
		if cancel != nil {
			cancel()
		}
	}
}
