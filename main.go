package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/dgapp/config"
	"github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/handlers"
	applog "github.com/padraicbc/dgapp/logger"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}
	h := handlers.New(bdb, logger, cfg.JWTKey(), cfg.CourseDeletePolicy)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*", echo.HeaderAuthorization},
	}))

	h.Register(e)

	s := &http.Server{
		Addr:         cfg.Port,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	if cfg.Debug || len(cfg.TLSDomains) == 0 {
		logger.Info("starting server", zap.Bool("debug", cfg.Debug), zap.String("addr", cfg.Port))
		go func() { serverErrors <- s.ListenAndServe() }()
	} else {
		autoTLS := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(".cache"),
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
		}
		s.Addr = ":443"
		s.TLSConfig = autoTLS.TLSConfig()
		logger.Info("starting tls server", zap.Strings("domains", cfg.TLSDomains))
		go func() { serverErrors <- s.ListenAndServeTLS("", "") }()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			_ = s.Close()
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
