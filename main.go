package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hoaxify/attachments"
	"hoaxify/config"
	"hoaxify/db"
	"hoaxify/handlers"
	"hoaxify/logger"
	"hoaxify/models"
	"hoaxify/posts"
	"hoaxify/storage"
	"hoaxify/store"
	"hoaxify/timeline"
	"hoaxify/utils"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
	shutdownTimeout       = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("load config")
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("create logger")
	}
	if err = run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	database, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	if err = models.Migrate(database); err != nil {
		return err
	}
	blobs, err := storage.New(cfg, log)
	if err != nil {
		return err
	}

	stores := store.New(database)
	engine := timeline.NewEngine(stores.Posts, stores.Users, cfg.Paging(), log)
	hub := handlers.NewHub(log)
	service := posts.NewService(stores, engine, hub, log)
	uploader := attachments.NewUploader(stores.Attachments, blobs, cfg.MaxUploadBytes, cfg.ThumbSize, log)
	reclaimer := attachments.NewReclaimer(stores, blobs, cfg.Reclaim(), log)
	reclaimer.Start()
	defer reclaimer.Stop()

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogMiddleware(log))
	if err = router.SetTrustedProxies([]string{}); err != nil {
		log.Warn().Err(err).Msg("set trusted proxies")
	}
	if cfg.DebugMode {
		router.Use(utils.ErrorLogMiddleware(log))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))
	cookieStore := gormsessions.NewStore(database, true, []byte(cfg.SessionKey))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime, HttpOnly: true})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !cfg.DebugMode {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/1.0/ws/"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default
	handlers.RegisterRoutes(router, stores.Users, handlers.NewHoaxHandlers(service, uploader, log), hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if domains := cfg.TLSDomainList(); len(domains) > 0 {
		log.Info().Strs("domains", domains).Msg("serving with TLS")
		return autotls.RunWithContext(ctx, router, domains...)
	}
	server := &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.BindAddress).Msg("listening")
		errs <- server.ListenAndServe()
	}()
	select {
	case err = <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
