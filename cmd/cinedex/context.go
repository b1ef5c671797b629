package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/export"
	"cinedex/internal/logging"
	"cinedex/internal/pipeline"
	"cinedex/internal/store"
	"cinedex/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore runs fn against the catalog database. Commands that never talk
// to the upstream API use this path so they work without an access token.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

// withPipeline runs fn against a fully wired pipeline.
func (c *commandContext) withPipeline(fn func(*config.Config, *pipeline.Pipeline) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAccessToken(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := tmdb.New(tmdb.Config{
		AccessToken:  cfg.TMDB.AccessToken,
		BaseURL:      cfg.TMDB.BaseURL,
		Language:     cfg.TMDB.Language,
		RateLimit:    cfg.TMDB.RateLimit,
		MaxCast:      cfg.TMDB.MaxCast,
		IncludeAdult: cfg.TMDB.IncludeAdult,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	exports, err := export.NewHandler(export.Config{
		BaseURL:  cfg.TMDB.ExportURL,
		CacheDir: cfg.Paths.ExportCacheDir,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return fn(cfg, pipeline.New(cfg, client, st, exports, logger))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
