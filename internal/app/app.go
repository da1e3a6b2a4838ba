// Package app assembles the storage, session, event and service layers from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"socialnet/internal/auth"
	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/db"
	"socialnet/internal/events"
	"socialnet/internal/lock"
	"socialnet/internal/repository"
	"socialnet/internal/service"
)

// App holds every long-lived dependency of the process.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Store     repository.Store
	Cache     *cache.Client
	Publisher events.Publisher
	JWT       *auth.JWTService
	Ledger    auth.Ledger
	Engine    *service.RelationshipEngine

	AuthService    service.AuthService
	UserService    service.UserService
	PostService    service.PostService
	CommentService service.CommentService

	closers []func() error
}

// New opens the database (resetting and migrating it as configured), connects Redis and
// NATS, and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	gormDB, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	a.DB = gormDB
	a.closers = append(a.closers, func() error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	a.Store = repository.NewStore(gormDB)

	a.Cache = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	a.closers = append(a.closers, a.Cache.Close)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.Cache.Ping(pingCtx); err != nil {
		if cfg.SessionBackend == "redis" {
			_ = a.Close()
			return nil, fmt.Errorf("redis unavailable for session ledger: %w", err)
		}
		slog.Warn("redis unavailable, user cache disabled", "addr", cfg.RedisAddr, "error", err)
	}

	if cfg.NatsURL != "" {
		pub, err := events.Connect(cfg.NatsURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		a.Publisher = pub
		a.closers = append(a.closers, pub.Close)
	} else {
		a.Publisher = events.NopPublisher{}
	}

	locks := lock.New()
	a.JWT = auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	switch cfg.SessionBackend {
	case "redis":
		a.Ledger = auth.NewRedisLedger(a.Cache.Redis(), a.JWT, cfg.MaxSessions)
	case "store":
		a.Ledger = auth.NewStoreLedger(a.Store, a.JWT, locks, cfg.MaxSessions)
	default:
		_ = a.Close()
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	a.Engine = service.NewRelationshipEngine(a.Store, locks, a.Publisher)
	a.AuthService = service.NewAuthService(a.Store.Users(), a.Ledger, a.Publisher)
	a.UserService = service.NewUserService(a.Store, a.Engine, locks, a.Cache, cfg.UserCacheTTL)
	a.PostService = service.NewPostService(a.Store, a.Engine, locks, a.Publisher)
	a.CommentService = service.NewCommentService(a.Store, a.Engine, locks, a.Publisher)

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// InitLogger installs the default slog logger: JSON unless format is "text".
func InitLogger(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
