package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Simplici0/markup/internal/catalog"
	"github.com/Simplici0/markup/internal/config"
	"github.com/Simplici0/markup/internal/db"
	"github.com/Simplici0/markup/internal/logger"
	"github.com/Simplici0/markup/internal/migrations"
	"github.com/Simplici0/markup/internal/pricing"
	"github.com/Simplici0/markup/internal/quote"
	"github.com/Simplici0/markup/internal/seed"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	quotes   *quote.Service
	products *catalog.Products
	channels *catalog.Channels
	log      zerolog.Logger
}

func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatal().Err(err).Msg("failed to run database migrations")
		}
		stats, err := seed.Run(database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed database")
		}
		log.Info().Int("inserts", stats.Inserts).Msg("demo data seeded")
	}

	engine, err := pricing.NewEngine(cfg.MinViableDivisor)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pricing threshold")
	}

	products := catalog.NewProducts(database)
	channels := catalog.NewChannels(database)
	srv := &server{
		quotes:   quote.NewService(products, catalog.NewCompanies(database), channels, engine),
		products: products,
		channels: channels,
		log:      log,
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func (s *server) routes(limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(rateLimit(limiter))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/price-calc", s.handlePriceCalc)
		r.Get("/products/{id}/prices", s.handleProductPrices)
		r.Get("/products-list", s.handleProductsList)
		r.Get("/sales-channels", s.handleSalesChannels)
	})

	return r
}
