package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
)

// UpsertDevice inserts a device row or refreshes its push token.
func (s *DB) UpsertDevice(ctx context.Context, dev entity.Device) error {
	ctx, span := s.startSpan(ctx, "UpsertDevice")
	var err error
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO devices (id, user_id, push_token, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET push_token = EXCLUDED.push_token, active = EXCLUDED.active, updated_at = NOW()`
	_, err = s.conn.Exec(ctx, query, dev.ID, dev.UserID, dev.PushToken, dev.Active)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	return nil
}

// SetDeviceActive flips the device's active flag.
func (s *DB) SetDeviceActive(ctx context.Context, deviceID string, active bool) error {
	ctx, span := s.startSpan(ctx, "SetDeviceActive")
	var err error
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE devices SET active = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.conn.Exec(ctx, query, deviceID, active)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = s.mapError(pgx.ErrNoRows)
		return err
	}

	return nil
}

// GetDevicesByUser lists the user's registered devices with their counters.
func (s *DB) GetDevicesByUser(ctx context.Context, userID int64) ([]entity.Device, error) {
	ctx, span := s.startSpan(ctx, "GetDevicesByUser")
	var err error
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, user_id, push_token, active,
			attempts_failed, sent_awaiting_verify, sent_verified,
			total_sent, successful_sends, retried_sends
		FROM devices
		WHERE user_id = $1
		ORDER BY id`
	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	defer rows.Close()

	var devices []entity.Device
	for rows.Next() {
		var dev entity.Device
		if err = rows.Scan(
			&dev.ID, &dev.UserID, &dev.PushToken, &dev.Active,
			&dev.AttemptsFailed, &dev.SentAwaitingVerify, &dev.SentVerified,
			&dev.TotalSent, &dev.SuccessfulSends, &dev.RetriedSends,
		); err != nil {
			err = s.mapError(err)
			return nil, err
		}
		devices = append(devices, dev)
	}
	if err = rows.Err(); err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return devices, nil
}

// BumpDeviceCounter increments one per-device statistic. The exhaustive
// switch keeps arbitrary column names away from the SQL boundary.
func (s *DB) BumpDeviceCounter(ctx context.Context, deviceID string, counter entity.DeviceCounter) error {
	ctx, span := s.startSpan(ctx, "BumpDeviceCounter")
	var err error
	defer func() { s.endSpan(span, err) }()

	var column string
	switch counter {
	case entity.DeviceCounterAttemptsFailed:
		column = "attempts_failed"
	case entity.DeviceCounterSentAwaitingVerify:
		column = "sent_awaiting_verify"
	case entity.DeviceCounterSentVerified:
		column = "sent_verified"
	case entity.DeviceCounterTotalSent:
		column = "total_sent"
	case entity.DeviceCounterSuccessfulSends:
		column = "successful_sends"
	case entity.DeviceCounterRetriedSends:
		column = "retried_sends"
	case entity.DeviceCounterUnknown:
		err = fmt.Errorf("device counter is unknown")
		return err
	default:
		err = fmt.Errorf("device counter %d is not supported", counter)
		return err
	}

	query := fmt.Sprintf(`UPDATE devices SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)
	_, err = s.conn.Exec(ctx, query, deviceID)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	return nil
}
