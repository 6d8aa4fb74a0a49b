// Package worker runs background jobs that keep order state consistent.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/model"
	"github.com/iliyamo/football-ticketing/internal/queue"
)

// sweepBatch bounds how many orders one tick expires.
const sweepBatch = 200

// OrderExpirer is the part of the order store the sweeper needs.
type OrderExpirer interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
	Expire(ctx context.Context, id int64) (*model.Order, error)
}

// ExpirySweeper cancels pending orders whose payment window elapsed and
// hands their seats back to the tribune.  Expired orders are stored as
// cancelled and announced with an order.expired event.
type ExpirySweeper struct {
	orders    OrderExpirer
	publisher queue.Publisher
	window    time.Duration
	interval  time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewExpirySweeper(orders OrderExpirer, pub queue.Publisher, window, interval time.Duration, log logrus.FieldLogger) *ExpirySweeper {
	if pub == nil {
		pub = queue.Nop{}
	}
	return &ExpirySweeper{
		orders:    orders,
		publisher: pub,
		window:    window,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (w *ExpirySweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithFields(logrus.Fields{"window": w.window.String(), "interval": w.interval.String()}).
		Info("order expiry sweeper started")
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("order expiry sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context) {
	n, err := w.SweepOnce(ctx)
	if err != nil {
		w.log.WithError(err).Error("order expiry sweep failed")
		return
	}
	if n > 0 {
		w.log.WithField("expired", n).Info("expired stale pending orders")
	}
}

// SweepOnce expires every pending order older than the hold window and
// reports how many it cancelled.  Orders paid or cancelled while the sweep
// runs are skipped.  A failure on one order is logged and does not stop the
// rest of the batch.
func (w *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := w.now().UTC().Add(-w.window)
	ids, err := w.orders.ListStalePending(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		o, err := w.orders.Expire(ctx, id)
		if err != nil {
			w.log.WithError(err).WithField("order_id", id).Warn("failed to expire order")
			continue
		}
		if o == nil {
			continue
		}
		expired++
		if err := w.publisher.Publish(ctx, queue.NewOrderEvent(queue.OrderExpired, o, w.now())); err != nil {
			w.log.WithError(err).WithField("order_id", id).Warn("order event dropped")
		}
	}
	return expired, nil
}
