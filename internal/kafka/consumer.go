package kafka

import (
	"context"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/logx"
	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
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
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// runWorker proses jobs sampai channel ditutup. Kirim error non-blocking:
// kalau errs penuh (atau dispatcher sudah berhenti nge-drain), worker cukup
// log dan lanjut, tidak boleh macet.
func runWorker(ctx context.Context, jobs <-chan kafka.Message, errs chan<- error,
	h Handler, commit func(ctx context.Context, m kafka.Message) error) {
	report := func(err error) {
		select {
		case errs <- err:
		default:
			logx.Error().Err(err).Msg("consumer worker")
		}
	}
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			report(err)
			continue
		}
		// commit on success
		if err := commit(ctx, m); err != nil {
			report(err)
		}
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	commit := func(ctx context.Context, m kafka.Message) error {
		return c.r.CommitMessages(ctx, m)
	}
	for i := 0; i < c.workers; i++ {
		go runWorker(ctx, jobs, errs, h, commit)
	}

	// dispatcher loop
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			// kecilkan noise saat shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// non-blocking drain error agar tidak deadlock
		select {
		case e := <-errs:
			logx.Error().Err(e).Str("topic", c.r.Config().Topic).Msg("consumer worker")
			time.Sleep(200 * time.Millisecond) // backoff ringan
		default:
		}
	}
}
