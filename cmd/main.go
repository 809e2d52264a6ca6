package main

import (
	"ReqFilter/internal/auth"
	"ReqFilter/internal/config"
	"ReqFilter/internal/db"
	"ReqFilter/internal/handler"
	"ReqFilter/internal/logger"
	"ReqFilter/internal/model"
	"ReqFilter/internal/resolver"
	"ReqFilter/internal/router"
	"ReqFilter/internal/store"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	stdoutFlag := flag.Bool("stdout", false, "log to stdout instead of log/app.log")
	flag.Parse()

	if *stdoutFlag {
		logger.SetOutput(os.Stdout)
	} else if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)
	logger.SetStatic(map[string]any{"service": "reqfilter"})
	cfg := config.LoadConfig()

	// Initialize registry
	registry, err := model.InitRegistry(cfg.ModelsDir, cfg.ResourcesDir)
	if err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("registry_initialized", map[string]any{"resources": registry.ResourceNames()})

	if cfg.Locale != "" {
		dict, err := model.LoadLocale(cfg.LocalesDir, cfg.Locale)
		if err != nil {
			// без словаря остаются заголовки из YAML
			logger.Warn("locale_load_failed", map[string]any{"locale": cfg.Locale, "error": err.Error()})
		} else {
			logger.Info("locale_loaded", map[string]any{"locale": cfg.Locale, "titles": registry.Localize(dict)})
		}
	}

	records, err := openStore(cfg.Store, registry)
	if err != nil {
		logger.Error("store_init_failed", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()

	// Redis is optional: without it lookups always go to the store
	var flusher handler.Flusher
	if cfg.Cache.RedisAddr != "" {
		db.InitRedis(cfg.Cache.RedisAddr)
		if err := db.PingRedis(context.Background()); err != nil {
			logger.Warn("redis_unavailable", map[string]any{"error": err.Error()})
		} else {
			cached := store.NewCached(records, db.RDB, cfg.Cache.TTL)
			records, flusher = cached, cached
			logger.Info("record_cache_enabled", map[string]any{"addr": cfg.Cache.RedisAddr})
		}
	}

	var verifier *auth.Verifier
	if cfg.Auth.Enabled {
		if verifier, err = auth.NewVerifier(cfg.Auth.JWT); err != nil {
			logger.Error("auth_init_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		logger.Info("auth_enabled", map[string]any{
			"algorithm":   cfg.Auth.JWT.Algorithm,
			"flush_scope": cfg.Auth.FlushScope,
		})
	}

	h := router.InitRoutes(cfg, resolver.New(registry, records), flusher, verifier)

	logger.Info("server_start", map[string]any{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, h); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func openStore(cfg config.StoreConfig, catalog store.Catalog) (store.RecordStore, error) {
	switch cfg.Driver {
	case "postgres":
		if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
			return nil, err
		}
		logger.Info("postgres_connected", nil)
		return store.NewPostgres(db.Pool, catalog), nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "app.db"
		}
		conn, err := store.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite_opened", map[string]any{"path": path})
		return store.NewSQLite(conn, catalog), nil
	case "memory":
		m, err := store.LoadMemory(cfg.SeedDir)
		if err != nil {
			return nil, err
		}
		logger.Info("memory_store_seeded", map[string]any{"dir": cfg.SeedDir})
		return m, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Driver)
}
