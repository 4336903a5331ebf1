package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/logx"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// CounterRepo = bagian ProductRepo yang dipakai consumer ini.
type CounterRepo interface {
	BumpViewCount(ctx context.Context, id string, delta int64) (int64, error)
}

// Service meng-apply event analytics ke database. View count eventually
// consistent: request path cuma publish event, increment terjadi di sini.
type Service struct {
	Repo        CounterRepo
	Redis       *redis.Client
	ServiceName string
}

// HandleProductViewed dipasang sebagai handler consumer.
func (s *Service) HandleProductViewed(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventProductViewed {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id)
	if dup, err := s.seen(ctx, env.EventID); err != nil || dup {
		return err
	}

	p, err := kafkax.UnwrapPayload[market.ProductViewedPayload](env.Payload)
	if err != nil {
		return err
	}

	n, err := s.Repo.BumpViewCount(ctx, p.ProductID, 1)
	if err != nil {
		// product sudah dihapus -> commit offset saja, jangan retry
		if errors.Is(err, market.ErrProductNotFound) {
			return nil
		}
		return err
	}

	// mirror counter ke Redis untuk read murah
	key := fmt.Sprintf(redisx.KeyProductViews, p.ProductID)
	_ = s.Redis.Set(ctx, key, n, redisx.TTLViews).Err()
	return nil
}

// HandlePurchaseCompleted menambah counter penjualan harian.
func (s *Service) HandlePurchaseCompleted(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventPurchaseCompleted {
		return nil
	}

	if dup, err := s.seen(ctx, env.EventID); err != nil || dup {
		return err
	}

	p, err := kafkax.UnwrapPayload[market.PurchaseCompletedPayload](env.Payload)
	if err != nil {
		return err
	}

	day := time.Now().UTC().Format("2006-01-02")
	key := fmt.Sprintf(redisx.KeyDailySales, day)
	if err := s.Redis.Incr(ctx, key).Err(); err != nil {
		logx.Warn().Err(err).Str("purchase_id", p.PurchaseID).Msg("sales counter incr")
	}
	return nil
}

func (s *Service) seen(ctx context.Context, eventID string) (bool, error) {
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return false, nil
}
