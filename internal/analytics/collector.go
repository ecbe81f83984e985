package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/resilience"
)

// Publisher writes a batch of events to the event bus.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers run events and publishes them in batches from a single
// background goroutine. Track never blocks; events are dropped when the
// buffer is full.
type Collector struct {
	publisher     Publisher
	runID         string
	eventCh       chan any
	batchSize     int
	flushInterval time.Duration
	retry         resilience.RetryConfig
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once

	mu        sync.Mutex
	published int
	dropped   int
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

func WithBatchSize(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

func WithRetry(cfg resilience.RetryConfig) CollectorOption {
	return func(c *Collector) {
		c.retry = cfg
	}
}

// NewCollector creates a Collector keyed by runID. Call Start before Track.
func NewCollector(publisher Publisher, runID string, bufferSize int, opts ...CollectorOption) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	c := &Collector{
		publisher:     publisher,
		runID:         runID,
		eventCh:       make(chan any, bufferSize),
		batchSize:     100,
		flushInterval: time.Second,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the publishing loop. Cancelling ctx stops it after a final
// flush of whatever is buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, kafka.Event{Key: c.runID, Value: event})
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ticker.C:
				if len(batch) > 0 {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ctx.Done():
				batch = c.drainRemaining(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track queues an event for publishing. It must not be called after Close.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// TrackQuery queues a query event stamped with the run ID.
func (c *Collector) TrackQuery(event QueryEvent) {
	event.RunID = c.runID
	c.Track(event)
}

// TrackIndex queues an index event stamped with the run ID.
func (c *Collector) TrackIndex(event IndexEvent) {
	event.RunID = c.runID
	c.Track(event)
}

// Close stops accepting events, flushes the buffer and waits for the loop.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.eventCh)
	})
	<-c.done
}

// Stats returns how many events were published and dropped.
func (c *Collector) Stats() (published, dropped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published, c.dropped
}

func (c *Collector) drainRemaining(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, kafka.Event{Key: c.runID, Value: event})
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	err := resilience.Retry(ctx, "publish-analytics", c.retry, func() error {
		return c.publisher.PublishBatch(ctx, batch)
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.dropped += len(batch)
		c.logger.Error("failed to publish analytics batch", "events", len(batch), "error", err)
		return
	}
	c.published += len(batch)
	c.logger.Debug("analytics batch published", "events", len(batch))
}
