package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/jerseyx-backend/internal/config"
	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/migrations"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/chat"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/checkout"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/preferences"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/wishlist"
	"github.com/georgemunganga/jerseyx-backend/internal/session"
)

func main() {
	app := &cli.App{
		Name:   "jerseyx-api",
		Usage:  "JerseyX storefront session service",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: migrate,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to migrate")
	}
	changed, err := migrations.Up(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	logger.WithField("changed", changed).Info("migrations applied")
	return nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close(logger)

	// ── Catalog & Payments ──────────────────────────────────
	var feed catalog.Feed
	if cfg.CatalogFeed {
		feed = catalog.NewPostgresFeed(b.db)
	}
	catalogService := catalog.NewService(feed, logger.WithField("component", "catalog"))

	upi := payment.UPIConfig{PayeeVPA: cfg.UPIPayeeVPA, PayeeName: cfg.UPIPayeeName, Note: "JerseyX order"}
	paymentService := payment.NewService(payment.NewRegistry(upi), upi)

	// ── Sessions ────────────────────────────────────────────
	factory := &session.Factory{
		Durable:     b.durable,
		Session:     b.session,
		Catalog:     catalogService,
		Payments:    paymentService,
		Events:      b.events,
		Adjustments: order.Adjustments{Shipping: cfg.ShippingFee, Discount: cfg.Discount},
		ETA:         checkout.FixedETA(cfg.DeliveryDays),
		BcryptCost:  cfg.BcryptCost,
		Logger:      logger,
	}
	registry := session.NewRegistry(factory, cfg.SessionIdle, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	sessions := session.NewMiddleware(tokens, registry)

	// ── Chat ────────────────────────────────────────────────
	var generator chat.Backend
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		generator = gemini
	}
	var chatBackend chat.Backend = chat.NewRelayClient(cfg.ChatRelayURL, nil)
	if cfg.ChatMode == config.ChatModeDirect {
		if generator == nil {
			return errors.New("direct chat mode needs GEMINI_API_KEY")
		}
		logger.Warn("direct chat mode holds the model credential in this process")
		chatBackend = generator
	}
	bridge := chat.NewBridge(chatBackend, logger, chat.Options{Cooldown: cfg.ChatCooldown, Block: cfg.ChatBlock})
	limiter := chat.NewClientLimiter(cfg.RelayRate, cfg.RelayBurst)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.Requests(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	session.NewHandler(tokens, logger).RegisterRoutes(router)
	payment.NewHandler(paymentService).RegisterRoutes(router)
	chat.NewHandler(bridge, generator, limiter, logger).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(sessions.Optional)
		catalog.NewHandler(catalogService, session.Prices).RegisterRoutes(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(sessions.Required)
		auth.NewHandler(session.Accounts).RegisterRoutes(r)
		cart.NewHandler(session.Carts, catalogService, session.Prices).RegisterRoutes(r)
		wishlist.NewHandler(session.Wishlists, catalogService).RegisterRoutes(r)
		order.NewHandler(session.Ledgers).RegisterRoutes(r)
		checkout.NewHandler(session.Checkouts, paymentService, catalogService, session.Prices).RegisterRoutes(r)
		preferences.NewHandler(session.Preferences).RegisterRoutes(r)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Start Server ────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("JerseyX API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		return registry.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
