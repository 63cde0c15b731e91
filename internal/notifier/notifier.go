// Package notifier delivers best-effort notifications about completed
// ledger operations. Delivery runs on a background worker; enqueueing
// never blocks and failures never reach the financial caller.
package notifier

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/hvu/bankcore/internal/domain"
)

var (
	notificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankcore_notifications_delivered_total",
			Help: "Total notifications delivered, by event kind",
		},
		[]string{"kind"},
	)

	notificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankcore_notifications_failed_total",
			Help: "Total notification delivery failures, by event kind",
		},
		[]string{"kind"},
	)

	notificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bankcore_notifications_dropped_total",
			Help: "Total notifications dropped because the queue was full",
		},
	)
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// AsyncDispatcher queues notifications for a background worker.
type AsyncDispatcher struct {
	sender Sender
	logger zerolog.Logger
	queue  chan domain.Notification
}

// Config for AsyncDispatcher.
type Config struct {
	Sender     Sender
	Logger     zerolog.Logger
	BufferSize int
}

// NewAsyncDispatcher creates a new AsyncDispatcher.
func NewAsyncDispatcher(cfg Config) *AsyncDispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}

	return &AsyncDispatcher{
		sender: cfg.Sender,
		logger: cfg.Logger,
		queue:  make(chan domain.Notification, cfg.BufferSize),
	}
}

// Notify enqueues a notification. If the queue is full the
// notification is dropped with a warning; the ledger operation that
// produced it has already committed and must not be slowed down.
func (d *AsyncDispatcher) Notify(notification domain.Notification) {
	select {
	case d.queue <- notification:
	default:
		notificationsDropped.Inc()
		d.logger.Warn().
			Str("customer_id", notification.CustomerID).
			Str("kind", notification.Kind).
			Msg("notification queue full, dropping")
	}
}

// Start consumes the queue until ctx is cancelled. Run it in its own
// goroutine.
func (d *AsyncDispatcher) Start(ctx context.Context) {
	d.logger.Info().Int("buffer", cap(d.queue)).Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher shutting down")
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *AsyncDispatcher) deliver(ctx context.Context, n domain.Notification) {
	if n.Email == "" {
		// No contact address on file; nothing to deliver.
		return
	}

	if err := d.sender.Send(ctx, n); err != nil {
		notificationsFailed.WithLabelValues(n.Kind).Inc()
		d.logger.Error().
			Err(err).
			Str("customer_id", n.CustomerID).
			Str("kind", n.Kind).
			Msg("notification delivery failed")

		return
	}

	notificationsDelivered.WithLabelValues(n.Kind).Inc()
	d.logger.Debug().
		Str("customer_id", n.CustomerID).
		Str("kind", n.Kind).
		Msg("notification delivered")
}
