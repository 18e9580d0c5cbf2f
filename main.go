package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kashpages/config"
	"kashpages/database"
	adminapi "kashpages/internal/api/admin"
	analyticsapi "kashpages/internal/api/analytics"
	authapi "kashpages/internal/api/auth"
	builderapi "kashpages/internal/api/builder"
	"kashpages/internal/api/public"
	reviewsapi "kashpages/internal/api/reviews"
	siteapi "kashpages/internal/api/site"
	usersapi "kashpages/internal/api/users"
	routes "kashpages/internal/app/http"
	"kashpages/internal/app/http/middleware"
	"kashpages/internal/domain/builder"
	"kashpages/internal/infra/rediscache"
	"kashpages/internal/infra/scheduler"
	"kashpages/internal/infra/token"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
	"kashpages/internal/platform/tracing"
	"kashpages/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "kashpages"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, appLog *logger.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, appLog, tracing.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    !cfg.Production(),
		SampleRatio: 1,
	})
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	if err := database.SeedTemplates(ctx, db.Collections, appLog); err != nil {
		appLog.Warn("template seeding failed", "error", err)
	}

	cache := rediscache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL, appLog)
	pool := worker.NewPool(cfg.WorkerCount, 1000, appLog)

	pages := persist.NewBinder(db.Collections,
		persist.WithModeration(cfg.RequireModeration),
		persist.OnSaved(public.Invalidate(cache)),
	)
	accounts := persist.NewAccounts(db.Collections)
	resolver := persist.NewResolver(db.Collections)
	sessions := builder.NewManager(appLog)

	sched := scheduler.New(appLog)
	if err := sched.Add("autosave", cfg.AutosaveSpec, func(ctx context.Context) error {
		_, err := sessions.AutoSaveDirty(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Add("idle-sessions", "@every 1m", func(ctx context.Context) error {
		sessions.SweepIdle(ctx, cfg.SessionIdleTTL)
		return nil
	}); err != nil {
		return err
	}
	sched.Start()

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	var google *authapi.Google
	if cfg.GoogleEnabled() {
		google = authapi.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.GoogleFrontendRedirect, cfg.Production())
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestID(), middleware.RequestLogger(appLog), middleware.ErrorHandler(appLog))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:      authapi.NewHandler(accounts, issuer, google, appLog),
		Users:     usersapi.NewHandler(accounts, pages),
		Site:      siteapi.NewHandler(pages, resolver, cfg.PublicBaseURL),
		Builder:   builderapi.NewHandler(sessions, pages),
		Public:    public.NewHandler(resolver, cache, pool, appLog, cfg.PublicBaseURL),
		Analytics: analyticsapi.NewHandler(pages),
		Reviews:   reviewsapi.NewHandler(pages),
		Admin:     adminapi.NewHandler(accounts, pages),
		Issuer:    issuer,
		Lookup:    accounts.ByID,
		Ready:     func(c *gin.Context) error { return db.Ping(c.Request.Context()) },
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("listening", "addr", srv.Addr, "store", db.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		appLog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("http shutdown", "error", err)
	}
	sched.Stop(shutdownCtx)
	if n, err := sessions.AutoSaveDirty(shutdownCtx); err != nil {
		appLog.Warn("unsaved builder sessions at shutdown", "saved", n, "error", err)
	}
	pool.Shutdown()
	if err := cache.Close(); err != nil {
		appLog.Warn("redis close", "error", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		appLog.Warn("store close", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLog.Warn("tracing shutdown", "error", err)
	}
	return err
}
