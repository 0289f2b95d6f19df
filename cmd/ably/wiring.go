package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"ably/internal/cache"
	"ably/internal/config"
	"ably/internal/engine"
	"ably/internal/services"
	"ably/internal/validate"
	"ably/internal/version"
)

// buildEngine wires the validators, remote services and their cache from
// cfg. The returned cleanup closes the cache backend.
func buildEngine(cfg config.Config, maxProblems int, logger *zerolog.Logger) (*engine.Engine, func(), error) {
	backend, err := cache.Open(cache.Options{
		Kind:     cfg.Cache.Backend,
		RedisURL: cfg.Cache.RedisURL,
		Dir:      cfg.Cache.Dir,
		MaxSize:  cfg.Cache.MaxSize,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close failed")
		}
	}

	opts := engine.Options{
		MaxProblems: maxProblems,
		Logger:      logger,
	}
	if cfg.Validators.WHATWG {
		opts.WHATWG = validate.NewHTMLValidate(logger, cfg.Validators.WHATWGCommand, "")
	}
	if cfg.Validators.W3C {
		client := services.NewHTTPClient(logger, cfg.Validators.Timeout.Duration, cfg.Services.LogRequests)
		opts.W3C = validate.NewNuClient(logger, client, version.UserAgent(), cfg.Validators.W3CURL)
	}
	if cfg.Services.Enabled {
		client := services.NewHTTPClient(logger, cfg.Services.Timeout.Duration, cfg.Services.LogRequests)
		opts.Captioner = services.NewCaptioner(services.CaptionOptions{
			URL:        cfg.Services.CaptionURL,
			Token:      os.Getenv(cfg.Services.CaptionTokenEnv),
			UserAgent:  version.UserAgent(),
			HTTPClient: client,
			Cache:      backend,
			TTL:        cfg.Cache.TTL.Duration,
			Logger:     logger,
		})
		opts.Scheme = services.NewSchemeClient(services.SchemeOptions{
			URL:        cfg.Services.SchemeURL,
			UserAgent:  version.UserAgent(),
			HTTPClient: client,
			Cache:      backend,
			TTL:        cfg.Cache.TTL.Duration,
			Logger:     logger,
		})
	}

	eng, err := engine.New(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

// effectiveMaxProblems prefers --max-problems over the settings file.
func effectiveMaxProblems(flag int, cfg config.Config) int {
	if flag > 0 {
		return flag
	}
	return cfg.Check.MaxProblems
}
