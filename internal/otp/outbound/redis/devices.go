package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyDeviceSet    = "device:active"
	keyDeviceTokens = "device:tokens"
)

// Directory is the pool of active relay devices eligible for delivery.
// Membership lives in a set and push tokens in a hash so a random pick
// is O(1) regardless of pool size.
type Directory struct {
	client *goredis.Client
	ins    instrument.Instrumentation
}

func NewDirectory(client *goredis.Client, ins instrument.Instrumentation) *Directory {
	return &Directory{client: client, ins: ins}
}

// Register adds or refreshes a device in the active pool.
func (d *Directory) Register(ctx context.Context, deviceID, pushToken string) error {
	ctx, span := d.startSpan(ctx, "Register")
	var err error
	defer func() { d.endSpan(span, err) }()

	_, err = d.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.SAdd(ctx, keyDeviceSet, deviceID)
		p.HSet(ctx, keyDeviceTokens, deviceID, pushToken)
		return nil
	})

	return err
}

// Deactivate removes a device from the active pool. Its persistent row
// and counters are untouched.
func (d *Directory) Deactivate(ctx context.Context, deviceID string) error {
	ctx, span := d.startSpan(ctx, "Deactivate")
	var err error
	defer func() { d.endSpan(span, err) }()

	_, err = d.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.SRem(ctx, keyDeviceSet, deviceID)
		p.HDel(ctx, keyDeviceTokens, deviceID)
		return nil
	})

	return err
}

// RandomActive returns a uniformly random device from the active pool.
func (d *Directory) RandomActive(ctx context.Context) (*entity.Device, error) {
	ctx, span := d.startSpan(ctx, "RandomActive")
	var err error
	defer func() { d.endSpan(span, err) }()

	id, err := d.client.SRandMember(ctx, keyDeviceSet).Result()
	if errors.Is(err, goredis.Nil) {
		err = goerror.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	token, err := d.client.HGet(ctx, keyDeviceTokens, id).Result()
	if errors.Is(err, goredis.Nil) {
		// membership without a token means a half-removed device
		err = goerror.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &entity.Device{ID: id, PushToken: token, Active: true}, nil
}

func (d *Directory) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return d.ins.Tracer("otp.outbound.redis").Start(ctx, name)
}

func (d *Directory) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
	}
	span.End()
}
