package dispatch

import (
	"context"
	"fmt"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultBuffer = 1024
	sendTimeout   = 10 * time.Second
)

// AsyncDispatcher queues intents on a buffered channel drained by a single
// worker. Delivery failures are logged and never reach the caller.
type AsyncDispatcher struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan Intent
	sink    Sink
	dropped atomic.Int64
	done    chan struct{}
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewAsyncDispatcher(sink Sink, buffer int, logger providers.Logger, metrics providers.MetricsProviderInterface) *AsyncDispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &AsyncDispatcher{
		queue:   make(chan Intent, buffer),
		sink:    sink,
		done:    make(chan struct{}),
		logger:  logger,
		metrics: metrics,
	}
	go d.run()
	return d
}

func (d *AsyncDispatcher) Dispatch(intent Intent) bool {
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.closed {
		select {
		case d.queue <- intent:
			return true
		default:
		}
	}

	d.dropped.Inc()
	d.metrics.IncDroppedIntents()
	d.logger.Warnf(providers.TypeApp, "Dropped %s intent for campaign %s", intent.Kind, intent.CampaignID)
	return false
}

func (d *AsyncDispatcher) Pending() int {
	return len(d.queue)
}

func (d *AsyncDispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for intent := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sink.Send(ctx, intent); err != nil {
			d.logger.Errorf(providers.TypeApp, "Failed to deliver %s intent for campaign %s: %v", intent.Kind, intent.CampaignID, err)
		}
		cancel()
	}
}

// Close stops accepting intents, drains what is queued and closes the sink.
func (d *AsyncDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	if err := d.sink.Close(); err != nil {
		d.logger.Errorf(providers.TypeApp, "Failed to close intent sink: %v", err)
	}
}

func NewDispatcher(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (DispatcherInterface, func(), error) {
	var (
		sink Sink
		err  error
	)
	switch conf.Dispatch.Driver {
	case "kafka":
		sink, err = NewKafkaSink(conf.Dispatch.Brokers, conf.Dispatch.Topic)
	case "sqs":
		sink, err = NewSQSSink(context.Background(), conf.Dispatch.QueueURL)
	case "log", "":
		sink = NewLogSink(logger)
	default:
		err = fmt.Errorf("unknown dispatch driver %q", conf.Dispatch.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	d := NewAsyncDispatcher(sink, conf.Dispatch.Buffer, logger, metrics)
	logger.Infof(providers.TypeApp, "Intent dispatcher initialized: driver=%s buffer=%d", conf.Dispatch.Driver, cap(d.queue))
	return d, d.Close, nil
}
