package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes delivery-provider webhook events to a fixed set of
// workers using consistent hashing on the transaction reference, so events
// for one transaction are always reconciled in arrival order.
type Dispatcher struct {
	workers []chan ports.WebhookEvent
	service ports.WebhookService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.WebhookService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.WebhookEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.WebhookEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its transaction.
// Events without a transaction reference shard by task ID instead.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.WebhookEvent) {
	d.workers[d.shardIndex(event)] <- event
}

func (d *Dispatcher) shardIndex(event ports.WebhookEvent) int {
	key := event.TransactionID()
	if key == "" {
		key = event.TaskID
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.WebhookEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("task_id", event.TaskID).
					Int("worker_id", id).
					Msg("webhook event processing failed")
			}
		}
	}
}
