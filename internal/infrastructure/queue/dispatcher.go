package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher delivers outbound email and SMS messages on a fixed set of
// workers. Deliveries for one recipient always land on the same worker, so a
// user receives their messages in the order they were produced.
type Dispatcher struct {
	workers []chan ports.Delivery
	mailer  ports.Mailer
	sms     ports.SMSSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, sms ports.SMSSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Delivery, numWorkers),
		mailer:  mailer,
		sms:     sms,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a delivery to the worker responsible for its recipient.
// When that worker's buffer is full the delivery is dropped and logged.
func (d *Dispatcher) Enqueue(del ports.Delivery) {
	idx := d.shardIndex(del.RecipientID)
	select {
	case d.workers[idx] <- del:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues(del.Channel, "dropped").Inc()
		d.log.Warn().
			Str("channel", del.Channel).
			Str("recipient_id", del.RecipientID).
			Int("worker_id", idx).
			Msg("delivery queue full, message dropped")
	}
}

func (d *Dispatcher) shardIndex(recipientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Delivery) {
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case del, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(ctx, id, del)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, del ports.Delivery) {
	var err error
	switch del.Channel {
	case domain.ChannelEmail:
		err = d.mailer.Send(ctx, del.To, del.Subject, del.Body)
	case domain.ChannelSMS, domain.ChannelWhatsApp:
		err = d.sms.Send(ctx, del.To, del.Body)
	default:
		d.log.Warn().Str("channel", del.Channel).Msg("unsupported delivery channel")
		return
	}

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(del.Channel, "failed").Inc()
		d.log.Error().Err(err).
			Str("channel", del.Channel).
			Str("recipient_id", del.RecipientID).
			Int("worker_id", workerID).
			Msg("delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(del.Channel, "sent").Inc()
}
