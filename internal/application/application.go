package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fitsync/session-service/internal/config"
	"github.com/fitsync/session-service/internal/database"
	"github.com/fitsync/session-service/internal/detector"
	"github.com/fitsync/session-service/internal/handler"
	"github.com/fitsync/session-service/internal/router"
	"github.com/fitsync/session-service/internal/service"
)

// API is the HTTP + WebSocket API application.
type API struct {
	cfg  *config.Config
	srv  *http.Server
	db   *gorm.DB
	hub  *service.RelayHub
	pool *service.DetectPool
}

// NewAPI creates the API application: validates config, runs migrations,
// opens the database, builds the router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.AppEnv == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	hub := service.NewRelayHub(cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.WSMaxMessageSize, cfg.WSSendBuffer, logger)
	pool := service.NewDetectPool(cfg.DetectWorkers, detector.New(logger), logger)
	sessionSvc := service.NewSessionService(db)

	sessions := handler.NewSessionHandler(sessionSvc, cfg.WSBaseURL)
	parserH := handler.NewParserHandler(sessionSvc, cfg.ParserDefaultDuration, logger)
	detectorH := handler.NewDetectorHandler(pool, hub, cfg.DetectConfidenceThreshold, logger)
	relayWS := handler.NewRelayWSHandler(hub, sessionSvc, logger)
	health := handler.NewHealthHandler()

	r := router.New(sessions, parserH, detectorH, relayWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, hub: hub, pool: pool}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Sessions:      %s/sessions", base)
	log.Printf("  Parser:        %s/parser/description", base)
	log.Printf("  Zone detector: %s/zone-detector/detect", base)
	log.Printf("  WebSocket:     ws://%s:%s/ws/session/:session_id/:user_id", host, a.cfg.HTTPPort)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	// Drain HTTP first; in-flight detect requests still need the pool.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		a.pool.Stop()
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.pool.Stop()
	return nil
}
