package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type StatsInput struct{}

type DeviceStats struct {
	DeviceID           string
	Active             bool
	AttemptsFailed     int64
	SentAwaitingVerify int64
	SentVerified       int64
	TotalSent          int64
	SuccessfulSends    int64
	RetriedSends       int64
}

type StatsOutput struct {
	Devices          []DeviceStats
	TotalSent        int64
	TotalVerified    int64
	TotalFailed      int64
	OpenTransactions int64
}

// Stats aggregates delivery counters across the caller's devices.
func (s *Usecase) Stats(ctx context.Context, in StatsInput) (*StatsOutput, error) {
	ctx, span := s.startSpan(ctx, "Stats")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	devices, err := s.repoDB.GetDevicesByUser(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get devices", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	stats := lo.Map(devices, func(dev entity.Device, _ int) DeviceStats {
		return DeviceStats{
			DeviceID:           dev.ID,
			Active:             dev.Active,
			AttemptsFailed:     dev.AttemptsFailed,
			SentAwaitingVerify: dev.SentAwaitingVerify,
			SentVerified:       dev.SentVerified,
			TotalSent:          dev.TotalSent,
			SuccessfulSends:    dev.SuccessfulSends,
			RetriedSends:       dev.RetriedSends,
		}
	})

	return &StatsOutput{
		Devices:          stats,
		TotalSent:        lo.SumBy(devices, func(dev entity.Device) int64 { return dev.TotalSent }),
		TotalVerified:    lo.SumBy(devices, func(dev entity.Device) int64 { return dev.SentVerified }),
		TotalFailed:      lo.SumBy(devices, func(dev entity.Device) int64 { return dev.AttemptsFailed }),
		OpenTransactions: s.OpenTransactions(),
	}, nil
}
