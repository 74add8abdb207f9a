package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"playday/internal/events"
	fieldshandler "playday/internal/fields/handler"
	fieldsrepo "playday/internal/fields/repository"
	fieldsservice "playday/internal/fields/service"
	fieldsvalidator "playday/internal/fields/validator"
	gameshandler "playday/internal/games/handler"
	gamesrepo "playday/internal/games/repository"
	gamesservice "playday/internal/games/service"
	gamesvalidator "playday/internal/games/validator"
	"playday/internal/health"
	"playday/internal/live"
	"playday/internal/navigation"
	rentalshandler "playday/internal/rentals/handler"
	rentalsrepo "playday/internal/rentals/repository"
	rentalsservice "playday/internal/rentals/service"
	rentalsvalidator "playday/internal/rentals/validator"
	subscribershandler "playday/internal/subscribers/handler"
	subscribersrepo "playday/internal/subscribers/repository"
	subscribersservice "playday/internal/subscribers/service"
	usershandler "playday/internal/users/handler"
	"playday/internal/users/provider"
	usersrepo "playday/internal/users/repository"
	usersservice "playday/internal/users/service"
	usersvalidator "playday/internal/users/validator"
	"playday/internal/web"
	"playday/pkg/auth"
	"playday/pkg/client"
	"playday/pkg/config"
	"playday/pkg/contracts"
	"playday/pkg/feed"
	"playday/pkg/kafka"
	kafkaconfig "playday/pkg/kafka/config"
	kafkamiddleware "playday/pkg/kafka/middleware"
	"playday/pkg/middleware"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const IdempotencyHeader = "Idempotency-Key"

type Application struct {
	cfg      *config.Config
	server   *http.Server
	stoppers []contracts.Stopper
	producer *kafka.Producer
	metrics  *kafkamiddleware.Metrics
	cancel   context.CancelFunc

	healthHandler http.Handler
	liveHandler   http.Handler
	appHandler    http.Handler
	webHandler    http.Handler
}

// NewApplication wires every resource against the connections held by cfg.
// cfg.SetMongo (and cfg.SetRedis when used) must have been called.
func NewApplication(cfg *config.Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Application{cfg: cfg, cancel: cancel}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	revocations := a.revocationStore()
	broker := a.feedBroker(ctx)
	publisher := events.NewDispatcher(broker, a.eventProducer(), "api", cfg.Log)

	fieldRepo := fieldsrepo.NewMongoFieldRepository(cfg)
	rentalRepo := rentalsrepo.NewMongoRentalRepository(cfg)

	fieldService := fieldsservice.NewFieldService(fieldRepo, fieldsvalidator.NewFieldValidator(), publisher, cfg)
	rentalService := rentalsservice.NewRentalService(
		rentalRepo,
		rentalsrepo.NewRentalLockRepository(cfg),
		fieldRepo,
		rentalsvalidator.NewRentalValidator(),
		publisher,
		cfg,
	)
	gameService := gamesservice.NewGameService(
		gamesrepo.NewMongoGameRepository(cfg),
		rentalRepo,
		gamesvalidator.NewGameValidator(),
		publisher,
		cfg,
	)
	userService := usersservice.NewUserService(
		usersrepo.NewMongoUserRepository(cfg),
		usersvalidator.NewUserValidator(),
		auth.NewPasswordHasher(auth.DefaultHashParams),
		tokens,
		revocations,
		a.identityProviders(ctx),
		publisher,
		cfg,
	)
	subscriberService := subscribersservice.NewSubscriberService(
		subscribersrepo.NewMongoSubscriberRepository(cfg),
		publisher,
		cfg,
	)

	handlers := []contracts.Handler{
		fieldshandler.NewFieldHandler(fieldService, cfg.Log),
		rentalshandler.NewRentalHandler(rentalService, cfg.Log),
		gameshandler.NewGameHandler(gameService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
		subscribershandler.NewSubscriberHandler(subscriberService, cfg.Log),
		navigation.NewNavigationHandler(navigation.Policy{OwnerSeesGames: cfg.NavOwnerSeesGames}, cfg.Log),
	}

	snapshots := map[string]live.SnapshotFunc{
		model.CollectionFields: func(ctx context.Context, _ auth.Identity, filter feed.Filter) (any, error) {
			if owner := filter["owner_id"]; owner != "" {
				fields, _, err := fieldService.GetByOwner(ctx, owner, config.DefaultPaginationLimit, 0)
				return fields, err
			}
			fields, _, err := fieldService.GetAll(ctx, config.DefaultPaginationLimit, 0)
			return fields, err
		},
		model.CollectionRentals: func(ctx context.Context, caller auth.Identity, filter feed.Filter) (any, error) {
			if filter["owner_id"] != "" {
				rentals, _, err := rentalService.GetBookings(ctx, caller, config.DefaultPaginationLimit, 0)
				return rentals, err
			}
			rentals, _, err := rentalService.GetMine(ctx, caller, config.DefaultPaginationLimit, 0)
			return rentals, err
		},
		model.CollectionGames: func(ctx context.Context, _ auth.Identity, _ feed.Filter) (any, error) {
			games, _, err := gameService.GetAll(ctx, config.DefaultPaginationLimit, 0)
			return games, err
		},
		model.CollectionAuth: func(ctx context.Context, caller auth.Identity, _ feed.Filter) (any, error) {
			return userService.Me(ctx, caller)
		},
	}
	liveHandler := live.NewLiveHandler(broker, snapshots, cfg.LiveOrigins, cfg.Log)

	authenticate := middleware.Authenticate(tokens, revocations, cfg.Log)
	rateLimiter := middleware.NewClientRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, middleware.DefaultClientKey, cfg.Log)
	a.stoppers = append(a.stoppers, rateLimiter)

	a.setHealthHandler()
	a.setLiveHandler(liveHandler, authenticate, rateLimiter)
	a.setAppHandler(handlers, authenticate, rateLimiter)
	a.setWebHandler()
	a.setAppServer()
	return a
}

func (a *Application) revocationStore() auth.RevocationStore {
	if a.cfg.Client.Redis != nil {
		a.cfg.Log.Info("Token revocations stored in Redis")
		return auth.NewRedisRevocationStore(a.cfg.Client.Redis)
	}
	store := auth.NewMemoryRevocationStore(a.cfg.TokenTTL / 4)
	a.stoppers = append(a.stoppers, store)
	a.cfg.Log.Warn("Token revocations kept in process; sign-outs are not shared between instances")
	return store
}

func (a *Application) feedBroker(ctx context.Context) feed.Broker {
	if a.cfg.Client.Redis != nil {
		broker := feed.NewRedisBroker(a.cfg.Client.Redis, feed.DefaultRedisChannel, a.cfg.LiveBufferSize, a.cfg.Log)
		if err := broker.Start(ctx); err != nil {
			a.cfg.Log.Fatal("Failed to start live feed listener", "error", err)
		}
		a.stoppers = append(a.stoppers, broker)
		return broker
	}
	broker := feed.NewMemoryBroker(a.cfg.LiveBufferSize)
	a.stoppers = append(a.stoppers, broker)
	return broker
}

// eventProducer returns nil when Kafka is disabled; the dispatcher then only
// feeds live subscribers.
func (a *Application) eventProducer() events.MessageProducer {
	if !a.cfg.KafkaEnabled {
		a.cfg.Log.Info("Kafka disabled, domain events stay in process")
		return nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		a.cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(a.cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, a.cfg.EventsTopic, a.cfg.Log)
	if err != nil {
		a.cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	a.metrics = kafkamiddleware.NewMetrics()
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(a.cfg.Log))
	producer.Use(a.metrics.ProducerMiddleware())
	a.producer = producer
	return producer
}

func (a *Application) identityProviders(ctx context.Context) provider.Registry {
	registry := provider.Registry{
		model.ProviderFacebook: provider.NewFacebook(client.NewHttpClient(a.cfg.FacebookGraphURL)),
	}
	if a.cfg.GoogleClientID == "" {
		a.cfg.Log.Info("Google sign-in disabled, GOOGLE_CLIENT_ID not set")
		return registry
	}
	google, err := provider.NewGoogle(ctx, a.cfg.GoogleClientID)
	if err != nil {
		a.cfg.Log.Fatal("Failed to create Google token validator", "error", err)
	}
	registry[model.ProviderGoogle] = google
	return registry
}

func (a *Application) setHealthHandler() {
	checks := map[string]health.Check{
		"mongo": func(ctx context.Context) error {
			return a.cfg.Client.Mongo.Client.Ping(ctx, nil)
		},
	}
	if a.cfg.Client.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.cfg.Client.Redis.Ping(ctx).Err()
		}
	}

	healthRouter := httprouter.New()
	health.NewHealthHandler(checks, a.cfg.Log).RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

// setLiveHandler skips the timeout, content type and idempotency layers,
// none of which fit a long-lived websocket.
func (a *Application) setLiveHandler(handler *live.LiveHandler, authenticate func(http.Handler) http.Handler, limiter *middleware.ClientRateLimiter) {
	liveRouter := httprouter.New()
	handler.RegisterRoutes(liveRouter)

	var h http.Handler = liveRouter
	h = middleware.RateLimit(limiter)(h)
	h = authenticate(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.liveHandler = h
}

func (a *Application) setAppHandler(handlers []contracts.Handler, authenticate func(http.Handler) http.Handler, limiter *middleware.ClientRateLimiter) {
	appRouter := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(appRouter)
	}

	var idempotencyStore middleware.IdempotencyStore
	if a.cfg.Client.Redis != nil {
		idempotencyStore = middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
	} else {
		memoryStore := middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
		a.stoppers = append(a.stoppers, memoryStore)
		idempotencyStore = memoryStore
	}

	// Recovery → Logging → MaxSize → ContentType → Auth → RateLimit → Timeout → Idempotency → Router
	var h http.Handler = appRouter
	h = middleware.Idempotency(idempotencyStore, IdempotencyHeader)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(limiter)(h)
	h = authenticate(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHandler = h
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

func (a *Application) setWebHandler() {
	webHandler, err := web.NewWebHandler(a.cfg.WebRoot, a.cfg.Log)
	if err != nil {
		a.cfg.Log.Fatal("Failed to load web shell", "web_root", a.cfg.WebRoot, "error", err)
	}
	webRouter := httprouter.New()
	webHandler.RegisterRoutes(webRouter)

	var h http.Handler = webRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.webHandler = h
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle(live.Path, a.liveHandler)
	mux.Handle("/api/", a.appHandler)
	mux.Handle("/", a.webHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler exposes the routed mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.cancel()
	for _, s := range a.stoppers {
		s.Stop()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		a.metrics.LogSnapshot(a.cfg.Log)
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
