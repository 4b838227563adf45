// Package app wires configuration into the database, cache, Firebase,
// storage and domain services shared by the server, worker and CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe_app_echo/internal/config"
	"recipe_app_echo/internal/realtime"
	"recipe_app_echo/internal/services"
)

const (
	cachePrefix          = "recipe_app:"
	firebaseImagesPrefix = "recipes/"
	memoryBrokerBuffer   = 64
)

// App holds the initialized infrastructure and services
type App struct {
	Config *config.Config
	Log    *zap.Logger

	DB       *gorm.DB
	Cache    *services.RedisCache
	Firebase *services.FirebaseClients
	Broker   realtime.Broker
	Mirror   *services.RecipeMirror
	Images   services.ImageStore

	Recipes   *services.RecipeService
	Favorites *services.FavoriteService
	Profiles  *services.ProfileService
}

// New connects everything configured in cfg. Only the database is required;
// Redis, Firebase and image storage degrade with a warning.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	db, err := services.InitDB(cfg.DatabaseURL, services.GormLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("run database migrations: %w", err)
	}
	a.DB = db

	if cfg.RedisURL != "" {
		cache, err := services.NewRedisCache(ctx, cfg.RedisURL, cachePrefix)
		if err != nil {
			log.Warn("Redis unavailable, caching and cross-instance realtime disabled", zap.Error(err))
		} else {
			a.Cache = cache
		}
	}

	fb, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
	if err != nil {
		log.Warn("Firebase initialization failed, auth features will not work until valid credentials are provided", zap.Error(err))
	} else {
		a.Firebase = fb
	}

	if client := a.Cache.Client(); client != nil {
		a.Broker = realtime.NewRedisBroker(client, realtime.DefaultChannel, log)
	} else {
		a.Broker = realtime.NewMemoryBroker(memoryBrokerBuffer)
	}

	if cfg.FirestoreMirror {
		if a.Firebase == nil {
			log.Warn("FIRESTORE_MIRROR is set but Firebase is not initialized")
		} else {
			a.Mirror = services.NewRecipeMirror(a.Firebase.Firestore, services.DefaultMirrorCollection, log)
		}
	}

	a.Images = a.imageStore()

	a.Profiles = services.NewProfileService(db)
	a.Favorites = services.NewFavoriteService(db, a.Broker, log)

	opts := services.RecipeServiceOptions{
		Cache:     a.Cache,
		CacheTTL:  cfg.CacheTTL,
		Images:    a.Images,
		Favorites: a.Favorites,
		Log:       log,
	}
	if a.Mirror != nil {
		opts.Mirror = a.Mirror
	}
	a.Recipes = services.NewRecipeService(db, opts)

	return a, nil
}

func (a *App) imageStore() services.ImageStore {
	cfg := a.Config
	switch cfg.ImageBackend {
	case config.ImageBackendFirebase:
		if a.Firebase == nil || cfg.FirebaseStorageBucket == "" {
			a.Log.Warn("Firebase Storage not configured, recipe uploads disabled")
			return nil
		}
		bucket, err := a.Firebase.Storage.Bucket(cfg.FirebaseStorageBucket)
		if err != nil {
			a.Log.Warn("Firebase Storage bucket unavailable, recipe uploads disabled", zap.Error(err))
			return nil
		}
		return services.NewFirebaseImageStore(bucket, cfg.FirebaseStorageBucket, firebaseImagesPrefix)
	default:
		if !cfg.SupabaseConfigured() {
			a.Log.Warn("SUPABASE_URL or SUPABASE_SERVICE_KEY not set, recipe uploads disabled")
			return nil
		}
		store, err := services.NewSupabaseImageStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err != nil {
			a.Log.Warn("Supabase storage unavailable, recipe uploads disabled", zap.Error(err))
			return nil
		}
		return store
	}
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	if err := a.Firebase.Close(); err != nil {
		a.Log.Warn("Failed to close Firestore", zap.Error(err))
	}
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("Failed to close Redis", zap.Error(err))
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
