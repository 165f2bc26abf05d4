package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"auth-gateway/internal/audit"
	"auth-gateway/internal/authflow"
	"auth-gateway/internal/config"
	"auth-gateway/internal/cookie"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/provider"
	"auth-gateway/internal/proxy"
	"auth-gateway/internal/session"
	"auth-gateway/internal/token"
)

const proxyTimeout = 30 * time.Second

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	cookies, err := cookie.NewTransport(cfg.CookieSecure, cfg.CookieSameSite)
	if err != nil {
		return nil, nil, err
	}

	clients := make([]*provider.Client, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		client, err := provider.New(pc)
		if err != nil {
			return nil, nil, err
		}
		clients = append(clients, client)
	}
	registry := provider.NewRegistry(clients...)

	var sessions session.Store
	if infra.Redis != nil {
		sessions = session.NewRedisStore(infra.Redis.Client)
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if infra.DB != nil {
		pgRecorder, err := audit.NewPostgresRecorder(ctx, infra.DB)
		if err != nil {
			return nil, nil, err
		}
		recorder = pgRecorder
	}

	authHandler := authflow.NewHandler(
		registry,
		tokens,
		sessions,
		cookies,
		recorder,
		cfg.FrontendBaseURL,
	)

	table, err := proxy.NewTable(cfg.Routes)
	if err != nil {
		return nil, nil, err
	}
	forwarder := proxy.NewForwarder(table, proxyTimeout)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Everything not claimed by the auth endpoints flows through the
	// proxy table; unmatched paths fall out as 404 there.
	router.NoRoute(forwarder.Handle)

	logger.Info("routes registered", map[string]any{
		"providers": registry.Names(),
		"routes":    len(table.Routes()),
	})

	return router, infra.Close, nil
}
