// Package config assembles the process-wide dependencies once at startup.
// Nothing here is global: callers pass the Dependencies value explicitly.
package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"todo-collab/configs"
	"todo-collab/internal/oauth"
	"todo-collab/internal/repository"
	"todo-collab/internal/service"
	"todo-collab/internal/session"
	"todo-collab/pkg/cache"
	"todo-collab/pkg/database"
	"todo-collab/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrMissingSessionSecret stops startup: sessions and the OAuth state
// cookie are keyed with SESSION_SECRET.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is not set")

type Dependencies struct {
	Config configs.Config

	DB    *sqlx.DB
	Redis *redis.Client // nil without REDIS_HOST

	Store    *repository.Store
	Cache    cache.Cache
	Services *service.Services
	Sessions *session.Manager
	Google   *oauth.Provider // nil without Google credentials
	Validate *validator.Validate
}

// Build connects to the store (and Redis when configured) and wires the
// services. The caller owns the result and must Close it.
func Build(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	if cfg.SessionSecret == "" {
		return nil, ErrMissingSessionSecret
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	logger.SystemLogger.Info("Database connected", zap.String("driver", cfg.DBDriver))

	d := &Dependencies{
		Config:   cfg,
		DB:       db,
		Cache:    cache.Nop{},
		Validate: NewValidator(),
	}

	if cfg.RedisAddr() != "" {
		client, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		d.Redis = client
		d.Cache = cache.NewRedis(client)
		logger.SystemLogger.Info("Redis connected", zap.String("addr", cfg.RedisAddr()))
	} else {
		logger.SystemLogger.Info("Redis not configured, caching disabled")
	}

	d.Store = repository.NewStore(db)
	d.Services = service.New(d.Store, d.Cache)
	d.Sessions = session.NewManager(cfg.SessionSecret, cfg.SessionTTL, d.Cache)
	if cfg.GoogleEnabled() {
		d.Google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL, cfg.SessionSecret)
	}
	return d, nil
}

func (d *Dependencies) Close() error {
	var errs []error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}
