package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/analytics"
	"github.com/ariefcatur/go-marketplace/internal/config"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/logx"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logx.Init(cfg.IsProduction())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logx.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &analytics.Service{
		Repo:        &market.ProductRepo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-analytics",
	}

	group := getenv("ANALYTICS_GROUP", "analytics-svc")
	workers := mustAtoi(os.Getenv("ANALYTICS_WORKERS"), "4")

	// Dua consumer: product.viewed & purchase.completed
	cViewed := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicProductViewed, workers)
	cPurchased := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicPurchaseCompleted, workers)

	go func() {
		logx.Info().Str("group", group).Str("topic", market.TopicProductViewed).Int("workers", workers).Msg("consumer started")
		if err := cViewed.Start(ctx, svc.HandleProductViewed); err != nil {
			logx.Error().Err(err).Msg("viewed consumer exit")
			cancel()
		}
	}()
	go func() {
		logx.Info().Str("group", group).Str("topic", market.TopicPurchaseCompleted).Int("workers", workers).Msg("consumer started")
		if err := cPurchased.Start(ctx, svc.HandlePurchaseCompleted); err != nil {
			logx.Error().Err(err).Msg("purchased consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logx.Info().Msg("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
