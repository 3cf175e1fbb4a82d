package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
// A non-nil error makes the consumer retry the same message.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultRetryBase = 200 * time.Millisecond
	defaultRetryMax  = 5 * time.Second
)

// Consumer fans messages out to a worker pool. Every partition is pinned to one
// worker, and a worker never moves past a message until its handler succeeds,
// so a commit can never skip an unprocessed offset.
type Consumer struct {
	r       messageReader
	workers int

	retryBase time.Duration
	retryMax  time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers)
}

func newConsumer(r messageReader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, retryBase: defaultRetryBase, retryMax: defaultRetryMax}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(id int, in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if !c.process(ctx, id, h, m) {
					// shutting down; the uncommitted offset is redelivered later
					for range in {
					}
					return
				}
			}
		}(i, jobs[i])
	}
	closeAll := func() {
		for _, ch := range jobs {
			close(ch)
		}
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			closeAll()
			// kecilkan noise saat shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			closeAll()
			return nil
		}
	}
}

// process runs h until it succeeds, then commits. It reports false when ctx
// ended before the message was handled.
func (c *Consumer) process(ctx context.Context, worker int, h Handler, m kafka.Message) bool {
	backoff := c.retryBase
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			break
		}
		logx.Logger.WithError(err).WithField("worker", worker).WithField("partition", m.Partition).
			WithField("offset", m.Offset).WithField("attempt", attempt).Error("handler failed, retrying")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > c.retryMax {
			backoff = c.retryMax
		}
	}
	if err := c.r.CommitMessages(ctx, m); err != nil {
		logx.Logger.WithError(err).WithField("worker", worker).Error("commit failed")
	}
	return true
}
