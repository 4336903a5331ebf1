package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/checkout"
	"github.com/ariefcatur/go-marketplace/internal/config"
	"github.com/ariefcatur/go-marketplace/internal/httpx"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/logx"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

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

	// Kafka producers
	pViewed := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicProductViewed, 1024)
	pViewed.Start(ctx)
	pPurchased := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicPurchaseCompleted, 1024)
	pPurchased.Start(ctx)

	// Repos & services
	authSvc := &auth.Service{Users: &market.UserRepo{DB: db}, Redis: rdb}
	co := &checkout.Coordinator{
		Store:    &market.CheckoutRepo{DB: db},
		Producer: pPurchased,
		Service:  cfg.ServiceName,
	}

	prod := cfg.IsProduction()
	router := httpx.NewRouter()

	ah := &httpx.AuthHandler{Auth: authSvc, Prod: prod}
	ah.Register(router)

	ph := &httpx.ProductsHandler{
		Repo:     &market.ProductRepo{DB: db},
		Producer: pViewed,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		Prod:     prod,
	}
	ch := &httpx.CartHandler{
		Cart:      &market.CartRepo{DB: db},
		Favorites: &market.FavoriteRepo{DB: db},
		Purchases: &market.PurchaseRepo{DB: db},
		Prod:      prod,
	}
	xh := &httpx.CheckoutHandler{Checkout: co, Cart: ch.Cart, Prod: prod}

	router.Group(func(r chi.Router) {
		r.Use(httpx.OptionalAuth(authSvc))
		ph.Register(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireAuth(authSvc, prod))
		ph.RegisterProtected(r)
		ch.RegisterProtected(r)
		xh.RegisterProtected(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}
		logx.Info().Msg("shutting down...")

		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		logx.Error().Err(err).Msg("server exit")
	}

	pViewed.Close()
	pPurchased.Close()
	cancel() // stop producer loops
	pViewed.WaitClosed()
	pPurchased.WaitClosed()
}
