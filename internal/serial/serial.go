// Package serial manages named daily counters in Redis and derives
// transaction identifiers from them. Counters are scoped to a calendar day
// ("serial:tx:20240115") so a sequence can never leak across midnight, and
// the "tx" counter is additionally reset to zero by the daily job.
package serial

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TransactionTag names the counter backing transaction id generation.
const TransactionTag = "tx"

const keyPrefix = "serial:"

// counterTTL keeps finished days from piling up in Redis.
const counterTTL = 48 * time.Hour

type Service struct {
	client *goredis.Client
}

func NewService(client *goredis.Client) *Service {
	return &Service{client: client}
}

// Next increments and returns the counter for tag on the given day. The
// first call of a day returns 1.
func (s *Service) Next(ctx context.Context, tag string, day time.Time) (int64, error) {
	k := key(tag, day)
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance serial %q: %w", tag, err)
	}
	if n == 1 {
		s.client.Expire(ctx, k, counterTTL)
	}
	return n, nil
}

// Reset sets the counter for tag on the given day back to zero. Idempotent.
func (s *Service) Reset(ctx context.Context, tag string, day time.Time) error {
	if err := s.client.Set(ctx, key(tag, day), 0, counterTTL).Err(); err != nil {
		return fmt.Errorf("failed to reset serial %q: %w", tag, err)
	}
	return nil
}

// ResetJob wraps Reset for the daily scheduler, logging start and completion.
// Fired at midnight it zeroes the counter for the day just begun.
func ResetJob(svc *Service, tag string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log.Printf("Resetting %s serial.", tag)
		if err := svc.Reset(ctx, tag, time.Now()); err != nil {
			return err
		}
		log.Printf("Serial %q has been reset to 0.", tag)
		return nil
	}
}

func key(tag string, day time.Time) string {
	return keyPrefix + tag + ":" + day.Format("20060102")
}

// FormatID renders a serial value as an identifier: tag, date, then the
// zero-padded serial, e.g. "tx202401150001".
func FormatID(tag string, t time.Time, n int64) string {
	return fmt.Sprintf("%s%s%04d", tag, t.Format("20060102"), n)
}

// counter is what IDGenerator needs from the serial service.
type counter interface {
	Next(ctx context.Context, tag string, day time.Time) (int64, error)
}

// IDGenerator produces unique transaction ids from the daily serial.
type IDGenerator struct {
	svc counter
	tag string
	now func() time.Time
}

func NewIDGenerator(svc *Service, tag string) *IDGenerator {
	return &IDGenerator{svc: svc, tag: tag, now: time.Now}
}

// NextID derives the day once and uses it for both the counter key and the
// formatted id, so the date and the serial always agree even when the call
// straddles midnight.
func (g *IDGenerator) NextID(ctx context.Context) (string, error) {
	day := g.now()
	n, err := g.svc.Next(ctx, g.tag, day)
	if err != nil {
		return "", err
	}
	return FormatID(g.tag, day, n), nil
}
