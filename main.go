package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Ezhil1K/ChemSure/config"
	"github.com/Ezhil1K/ChemSure/handler"
	"github.com/Ezhil1K/ChemSure/middleware"
	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/Ezhil1K/ChemSure/service"
	"github.com/Ezhil1K/ChemSure/view"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully",
		"lookup_url", cfg.Lookup.BaseURL,
		"archive", cfg.Archive.Enabled,
		"api_auth", cfg.AuthEnabled(),
	)

	lookupClient := service.NewLookupClient(&cfg.Lookup)
	sessions := service.NewSessionStore(&cfg.Store, lookupClient)

	// A nil Archiver disables archiving
	var archiver handler.Archiver
	if cfg.Archive.Enabled {
		archive, err := service.NewArchive(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize MINIO archive", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = archive.EnsureBucket(ctx)
		cancel()
		if err != nil {
			slog.Error("failed to ensure MINIO bucket", "bucket", cfg.Archive.Bucket, "error", err)
			os.Exit(1)
		}
		archiver = archive
	}

	lookupHandler := handler.NewLookupHandler(sessions, lookupClient, archiver)
	authHandler := handler.NewAuthHandler(cfg)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.SetHTMLTemplate(view.Templates())

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Session())
	router.Use(middleware.RequestLogger())
	router.Use(cacheMiddleware())
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"sessions":  sessions.Count(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Page
	router.GET("/", lookupHandler.Page)
	router.POST("/search", lookupHandler.Search)
	router.POST("/upload", lookupHandler.Upload)
	router.POST("/clear", lookupHandler.Clear)

	api := router.Group("/api")
	api.GET("/state", lookupHandler.State)
	if cfg.AuthEnabled() {
		api.POST("/auth/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.POST("/lookup", lookupHandler.APILookup)
		protected.POST("/upload", lookupHandler.APIUpload)
		if cfg.AuthEnabled() {
			protected.GET("/auth/me", authHandler.GetCurrentUser)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	archiveCtx, archiveCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer archiveCancel()
	if err := lookupHandler.Wait(archiveCtx); err != nil {
		slog.Warn("pending archive uploads abandoned", "error", err)
	}

	slog.Info("server exited gracefully")
}

// cacheMiddleware keeps the page and the API out of caches; both show per-session state
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/" || strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
