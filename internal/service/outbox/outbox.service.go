package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	"github.com/k-code-yt/cashpay-ipn/internal/repos"
	reposhared "github.com/k-code-yt/cashpay-ipn/internal/repos/repo-shared"
)

type Producer interface {
	Produce(ctx context.Context, key string, msg []byte) error
}

type Encoder interface {
	Encode(ev *notification.SettlementEvent) ([]byte, error)
}

type Gauge interface {
	Set(float64)
}

type OutboxService struct {
	eventRepo *repos.EventRepo
	producer  Producer
	encoder   Encoder
	interval  time.Duration
	batchSize int
	pending   Gauge
}

func NewOutbox(er *repos.EventRepo, p Producer, enc Encoder, interval time.Duration, batchSize int, pending Gauge) *OutboxService {
	return &OutboxService{
		eventRepo: er,
		producer:  p,
		encoder:   enc,
		interval:  interval,
		batchSize: batchSize,
		pending:   pending,
	}
}

// Run relays pending settlement events until ctx is cancelled.
func (s *OutboxService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.HandlePending(ctx)
			if err != nil {
				logrus.WithError(err).Error("OUTBOX:RELAY_FAILED")
			} else if n > 0 {
				logrus.WithFields(logrus.Fields{"PRODUCED": n}).Info("OUTBOX:RELAYED")
			}
			s.reportPending(ctx)
		}
	}
}

// HandlePending produces one batch. Events that fail to encode or produce
// stay pending for the next round.
func (s *OutboxService) HandlePending(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return reposhared.TxClosure(ctx, s.eventRepo.GetRepo(), func(ctx context.Context, tx *sqlx.Tx) (int, error) {
		events, err := s.eventRepo.ClaimPending(ctx, tx, s.batchSize)
		if err != nil {
			return 0, err
		}

		toUpdateIds := []string{}
		for _, e := range events {
			ev, err := e.Settlement()
			if err != nil {
				logrus.WithFields(logrus.Fields{"EVENT_ID": e.EventId}).WithError(err).Error("OUTBOX:BAD_PAYLOAD")
				continue
			}
			b, err := s.encoder.Encode(ev)
			if err != nil {
				logrus.WithFields(logrus.Fields{"EVENT_ID": e.EventId}).WithError(err).Error("OUTBOX:ENCODE_FAILED")
				continue
			}
			if err := s.producer.Produce(ctx, ev.OrderID, b); err != nil {
				logrus.WithFields(logrus.Fields{"EVENT_ID": e.EventId}).WithError(err).Warn("OUTBOX:PRODUCE_FAILED")
				continue
			}
			toUpdateIds = append(toUpdateIds, e.EventId)
		}

		rows, err := s.eventRepo.UpdateStatusByIds(ctx, tx, toUpdateIds, repos.EventStatus_Produced)
		if err != nil {
			return 0, err
		}
		if rows != len(toUpdateIds) {
			return 0, fmt.Errorf("updated row count didn't match: %d != %d", rows, len(toUpdateIds))
		}
		return rows, nil
	})
}

func (s *OutboxService) reportPending(ctx context.Context) {
	if s.pending == nil {
		return
	}
	n, err := s.eventRepo.CountPending(ctx)
	if err != nil {
		return
	}
	s.pending.Set(float64(n))
}
