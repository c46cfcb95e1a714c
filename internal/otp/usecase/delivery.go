package usecase

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
)

// deliver pushes the code to the assigned device, retrying transient
// transport failures a fixed number of times with a constant delay. This
// inner retry is independent of the outer depth-bounded retry: a device
// that never acks still gets reassigned by the next tick.
func (s *Usecase) deliver(ctx context.Context, tx entity.Transaction, device *entity.Device, reassigned bool) {
	ctx, span := s.startSpan(ctx, "deliver")
	defer span.End()

	s.attemptsMu.Lock()
	s.attempts[tx.TID]++
	s.attemptsMu.Unlock()

	s.bumpCounter(ctx, device.ID, entity.DeviceCounterTotalSent)
	if reassigned {
		s.bumpCounter(ctx, device.ID, entity.DeviceCounterRetriedSends)
	}

	backoff := retry.WithMaxRetries(s.pushRetries, retry.NewConstant(s.pushDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		errSend := s.transport.SendCode(ctx, DeliveryPush{
			Token:       device.PushToken,
			Code:        tx.Code,
			PhoneNumber: tx.PhoneNumber,
			TID:         tx.TID,
			Timestamp:   s.clock.Now(),
			OrgName:     tx.OrgName,
		})
		if errSend != nil {
			return retry.RetryableError(errSend)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "push delivery failed after retries", "tid", tx.TID, "device_id", device.ID, "error", err)
		s.bumpCounter(ctx, device.ID, entity.DeviceCounterAttemptsFailed)
		return
	}

	s.bumpCounter(ctx, device.ID, entity.DeviceCounterSuccessfulSends)
}

func (s *Usecase) bumpCounter(ctx context.Context, deviceID string, counter entity.DeviceCounter) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoDB.BumpDeviceCounter(ctx, deviceID, counter); err != nil {
			slog.WarnContext(ctx, "failed to bump device counter", "device_id", deviceID, "counter", counter.String(), "error", err)
		}
		return nil
	})
}
