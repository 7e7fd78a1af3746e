package main

import (
	"fmt"
	"os"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/logging"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/search"
	"github.com/pders01/lazyload/internal/storage"
	"github.com/pders01/lazyload/internal/validation"
)

// env bundles what every command opens: configuration, logger and, when
// asked for, the contact repository.
type env struct {
	cfg     *config.Config
	log     paging.Logger
	repo    *storage.Store
	paths   *validation.PathValidator
	closers []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// pathValidator confines paths to the lazyload directories unless the user
// chose locations explicitly.
func pathValidator() *validation.PathValidator {
	if configPath != "" || dbPath != "" {
		return validation.NewPermissivePathValidator()
	}
	return validation.NewPathValidator()
}

func openEnv(cfg *config.Config, withRepo bool) (*env, error) {
	e := &env{cfg: cfg, paths: pathValidator()}

	if cfg.Log.Path != "" {
		p, err := e.paths.File(cfg.Log.Path)
		if err != nil {
			return nil, fmt.Errorf("log path: %w", err)
		}
		cfg.Log.Path = p
	}
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	e.log = logger
	e.closers = append(e.closers, closeLog)

	if withRepo {
		p, err := e.paths.File(cfg.Database.Path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("database path: %w", err)
		}
		repo, err := storage.NewStoreWithTimeout(p, cfg.Database.Timeout)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.repo = repo
		e.closers = append(e.closers, repo.Close)
		e.log.Debug("database opened", paging.Fields{"path": p})
	}
	return e, nil
}

// openIndex opens the full-text index next to the database. The index is
// closed with the env.
func (e *env) openIndex() (*search.Index, error) {
	path := e.cfg.Database.SearchIndex
	if path != "" {
		p, err := e.paths.Directory(path)
		if err != nil {
			return nil, fmt.Errorf("search index path: %w", err)
		}
		path = p
	}
	idx, err := search.Open(e.repo, path, e.log)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, idx.Close)
	return idx, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	e.closers = nil
}
