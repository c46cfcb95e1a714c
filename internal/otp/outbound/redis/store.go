package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// The four per-tid fields (code, assigned device, acknowledged flag,
// attempt depth) are held in separate keys but mutated only as a unit by
// server-side scripts, so no caller ever observes a half-updated
// transaction and no in-process lock is needed across service instances.
const (
	keyCode   = "otp:code:"
	keyDevice = "otp:device:"
	keyAck    = "otp:ack:"
	keyDepth  = "otp:depth:"
)

// tickScript advances one transaction by one scheduler tick.
// KEYS: code, device, ack, depth. ARGV: code, deviceID, maxDepth, ttlSeconds.
// Returns entity.TickOutcome values.
var tickScript = goredis.NewScript(`
local code = redis.call('GET', KEYS[1])
local depth = redis.call('GET', KEYS[4])

if not code and not depth then
	redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[4])
	redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[4])
	redis.call('SET', KEYS[3], '0', 'EX', ARGV[4])
	redis.call('SET', KEYS[4], '1', 'EX', ARGV[4])
	return 1
end

if code and redis.call('GET', KEYS[3]) == '1' then
	return 3
end

if depth and not code then
	redis.call('DEL', KEYS[4])
	return 4
end

if not depth or tonumber(depth) >= tonumber(ARGV[3]) then
	redis.call('DEL', KEYS[1], KEYS[2], KEYS[3], KEYS[4])
	return 5
end

redis.call('INCR', KEYS[4])
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[4])
redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[4])
redis.call('SET', KEYS[3], '0', 'EX', ARGV[4])
return 2
`)

// ackScript records a device-side delivery confirmation.
// KEYS: code, device, ack. ARGV: deviceID.
// Returns entity.AckStatus values.
var ackScript = goredis.NewScript(`
local code = redis.call('GET', KEYS[1])
if not code then
	return 3
end

if redis.call('GET', KEYS[3]) == '1' then
	return 2
end

if redis.call('GET', KEYS[2]) ~= ARGV[1] then
	return 4
end

redis.call('SET', KEYS[3], '1', 'KEEPTTL')
return 1
`)

// verifyScript checks the user-submitted code. On success it clears code,
// device, and ack but leaves depth behind so a pending tick can tell
// "verified meanwhile" apart from "expired".
// KEYS: code, device, ack. ARGV: userCode.
// Returns {entity.VerifyStatus, deviceID}.
var verifyScript = goredis.NewScript(`
local code = redis.call('GET', KEYS[1])
if not code then
	return {2, ''}
end

if code ~= ARGV[1] then
	return {3, ''}
end

local device = redis.call('GET', KEYS[2])
redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
return {1, device or ''}
`)

// resolveScript settles a transaction at its verification deadline.
// Depth-without-code means Verify ran since the ack; anything else is
// acknowledged-but-never-verified. Either way all state is destroyed.
// KEYS: code, device, ack, depth.
var resolveScript = goredis.NewScript(`
local code = redis.call('GET', KEYS[1])
local depth = redis.call('GET', KEYS[4])

if depth and not code then
	redis.call('DEL', KEYS[4])
	return 1
end

redis.call('DEL', KEYS[1], KEYS[2], KEYS[3], KEYS[4])
return 0
`)

// Store is the transaction store holding ephemeral per-tid OTP state.
type Store struct {
	client *goredis.Client
	ins    instrument.Instrumentation
	ttl    time.Duration
}

func NewStore(client *goredis.Client, ins instrument.Instrumentation, ttl time.Duration) *Store {
	return &Store{client: client, ins: ins, ttl: ttl}
}

func (s *Store) keys(tid string) []string {
	return []string{keyCode + tid, keyDevice + tid, keyAck + tid, keyDepth + tid}
}

// Tick atomically advances the transaction's state machine by one attempt.
func (s *Store) Tick(ctx context.Context, tid, code, deviceID string, maxDepth int) (entity.TickOutcome, error) {
	ctx, span := s.startSpan(ctx, "Tick")
	var err error
	defer func() { s.endSpan(span, err) }()

	ttlSeconds := int(s.ttl / time.Second)
	res, err := tickScript.Run(ctx, s.client, s.keys(tid), code, deviceID, maxDepth, ttlSeconds).Int64()
	if err != nil {
		return entity.TickOutcomeUnknown, err
	}

	return entity.TickOutcome(res), nil
}

// Acknowledge records a device-side delivery confirmation for tid.
func (s *Store) Acknowledge(ctx context.Context, tid, deviceID string) (entity.AckStatus, error) {
	ctx, span := s.startSpan(ctx, "Acknowledge")
	var err error
	defer func() { s.endSpan(span, err) }()

	res, err := ackScript.Run(ctx, s.client, s.keys(tid)[:3], deviceID).Int64()
	if err != nil {
		return entity.AckStatusUnknown, err
	}

	return entity.AckStatus(res), nil
}

// Verify checks the user-submitted code against tid and, on success,
// returns the device assigned at the moment of verification.
func (s *Store) Verify(ctx context.Context, tid, userCode string) (entity.VerifyResult, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	var err error
	defer func() { s.endSpan(span, err) }()

	res, err := verifyScript.Run(ctx, s.client, s.keys(tid)[:3], userCode).Slice()
	if err != nil {
		return entity.VerifyResult{}, err
	}
	if len(res) != 2 {
		err = fmt.Errorf("verify script returned %d values", len(res))
		return entity.VerifyResult{}, err
	}

	status, ok := res[0].(int64)
	if !ok {
		err = fmt.Errorf("verify script returned non-integer status %T", res[0])
		return entity.VerifyResult{}, err
	}

	deviceID, _ := res[1].(string)

	return entity.VerifyResult{Status: entity.VerifyStatus(status), DeviceID: deviceID}, nil
}

// Resolve settles tid at its verification deadline. It reports true when
// the user verified after the ack, false when the code was acknowledged
// but never verified. All per-tid state is gone afterwards.
func (s *Store) Resolve(ctx context.Context, tid string) (bool, error) {
	ctx, span := s.startSpan(ctx, "Resolve")
	var err error
	defer func() { s.endSpan(span, err) }()

	res, err := resolveScript.Run(ctx, s.client, s.keys(tid)).Int64()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.redis").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
