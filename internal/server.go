package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/healthrec/engine/internal/assistant"
	"github.com/healthrec/engine/internal/auth"
	"github.com/healthrec/engine/internal/config"
	"github.com/healthrec/engine/internal/db"
	"github.com/healthrec/engine/internal/fitness"
	"github.com/healthrec/engine/internal/healthdata"
	"github.com/healthrec/engine/internal/middleware"
	"github.com/healthrec/engine/internal/misc"
	"github.com/healthrec/engine/internal/notify"
	"github.com/healthrec/engine/internal/telemetry/metrics"
	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/internal/users"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	usersRepo    *users.Repo
	healthRepo   *healthdata.Repo
	reconciler   *healthdata.Reconciler
	analyzer     *healthdata.Analyzer
	demoSeeder   *healthdata.DemoSeeder
	syncService  *fitness.Service
	assistantApi *assistant.Api
	emailSender  *notify.SMTPSender

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AssistantAPIKey         string
	VersionInfo             string
	RedisPassword           string
	SMTPUsername            string
	SMTPPassword            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("healthrec", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "healthrec-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	fitnessClient, err := fitness.NewGoogleFitClient(ctx, tracedHttpClient)
	if err != nil {
		return nil, fmt.Errorf("new google fit client: %w", err)
	}

	healthRepo := healthdata.NewRepo(dbPool)
	reconciler := healthdata.NewReconciler(healthRepo)

	s := &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		usersRepo:   users.NewRepo(dbPool),
		healthRepo:  healthRepo,
		reconciler:  reconciler,
		analyzer:    healthdata.NewAnalyzer(healthRepo, params.Config.WeeklyWindowDays),
		demoSeeder:  healthdata.NewDemoSeeder(reconciler),
		syncService: fitness.NewService(fitnessClient, reconciler, params.Config.FitnessSyncDays),
		assistantApi: assistant.NewApi(
			params.Config.AssistantAPIURL,
			params.AssistantAPIKey,
			params.Config.AssistantModel,
			tracedHttpClient,
			metricsManager,
		),
		emailSender: notify.NewSMTPSender(
			params.Config.SMTPHost,
			params.Config.SMTPPort,
			params.Config.DefaultFromEmail,
			params.SMTPUsername,
			params.SMTPPassword,
		),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	go func() {
		for range time.Tick(time.Hour * 12) {
			s.purgeDueAccountDeletions(ctx)
		}
	}()

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	usersHandler := users.NewHandler(s.usersRepo, s.authService, s.demoSeeder)
	usersHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)

	healthHandler := healthdata.NewHandler(
		s.analyzer,
		s.reconciler,
		s.healthRepo,
		s.syncService,
		s.authService,
		s.assistantApi,
		s.metricsManager,
	)
	healthHandler.SetupRoutes(r)

	assistantHandler := assistant.NewHandler(
		s.assistantApi,
		s.healthRepo,
		s.authService,
		s.emailSender,
		s.metricsManager,
	)
	assistantHandler.SetupRoutes(r)

	notifyHandler := notify.NewHandler(s.emailSender, s.config.SupportEmail)
	notifyHandler.SetupRoutes(r)

	miscHandler := misc.NewHandler(s.versionInfo)
	miscHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// purgeDueAccountDeletions removes users whose deletion grace period has
// expired, health records first, then the account row itself.
func (s *Server) purgeDueAccountDeletions(ctx context.Context) {
	deletions, err := s.usersRepo.DueDeletions(ctx, time.Now())
	if err != nil {
		log.Errorf("failed to get due account deletions: %s", err)
		return
	}

	for _, deletion := range deletions {
		if err := s.healthRepo.DeleteForUser(ctx, deletion.UserID); err != nil {
			log.Errorf("purge health data for user %d: %s", deletion.UserID, err)
			continue
		}
		if err := s.usersRepo.Delete(ctx, deletion.UserID); err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				continue
			}
			log.Errorf("purge user %d: %s", deletion.UserID, err)
			continue
		}
		log.Infof("account %d purged, deletion was scheduled for %s", deletion.UserID, deletion.ScheduledFor)
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
