package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "socialnet/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"socialnet/internal/app"
	"socialnet/internal/config"
	"socialnet/internal/handler"
	"socialnet/internal/router"
)

// @title Social Network API
// @version 1.0
// @description Social network API with posts, comments, likes, follows, and bounded JWT sessions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	app.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Initialize handlers
	authHandler := handler.NewAuthHandler(a.AuthService)
	userHandler := handler.NewUserHandler(a.UserService)
	postHandler := handler.NewPostHandler(a.PostService)
	commentHandler := handler.NewCommentHandler(a.CommentService)

	// Register routes
	router.Register(
		e,
		cfg,
		a.JWT,
		a.AuthService,
		authHandler,
		userHandler,
		postHandler,
		commentHandler,
	)

	slog.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server listening", "addr", addr, "db", cfg.DBDriver, "sessions", cfg.SessionBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	// SwaggerHost may already include a scheme
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
