package main

import (
	"errors"
	"fmt"

	"github.com/bebsworthy/pathsieve/internal/catalog"
	"github.com/bebsworthy/pathsieve/internal/config"
	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/hoststate"
	"github.com/bebsworthy/pathsieve/internal/metrics"
	"github.com/bebsworthy/pathsieve/internal/toggles"
	pkgconfig "github.com/bebsworthy/pathsieve/pkg/config"
)

// loadConfiguration loads --config, or searches the default paths. Without
// any configuration file only the built-in catalog is used.
func loadConfiguration() (*config.Resolved, error) {
	loader := config.NewLoader()
	if configPath != "" {
		res, err := loader.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return res, nil
	}

	res, err := loader.Load()
	if errors.Is(err, config.ErrNoConfig) {
		debug.Log("No configuration file, using the built-in catalog only")
		return &config.Resolved{
			Config: &pkgconfig.Config{Version: config.CurrentSchemaVersion, Builtins: true},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return res, nil
}

// engine is everything a classification run needs
type engine struct {
	config   *config.Resolved
	toggles  *toggles.Store
	state    *hoststate.State
	catalog  *catalog.Catalog
	registry *filter.Registry
	metrics  *metrics.Collector
}

// toggleDefaults merges built-in defaults with the configuration's toggles
func toggleDefaults(cfg *pkgconfig.Config) map[string]bool {
	values := make(map[string]bool)
	if cfg.Builtins {
		for name, v := range catalog.DefaultValues() {
			values[name] = v
		}
	}
	for name, v := range cfg.Toggles {
		values[name] = v
	}
	return values
}

// newEngine wires the toggle store, host state, built-in and configured
// filters into one registry. Built-in filters come first.
func newEngine(res *config.Resolved, state *hoststate.State, onFullscreenAd func()) (*engine, error) {
	if state == nil {
		state = hoststate.New()
	}
	e := &engine{
		config:  res,
		toggles: toggles.NewStoreWithDefaults(toggleDefaults(res.Config)),
		state:   state,
	}

	var filters []filter.Filter
	if res.Builtins {
		e.catalog = catalog.Build(catalog.Context{
			Toggles:        e.toggles,
			State:          state,
			OnFullscreenAd: onFullscreenAd,
			Options:        catalog.DefaultOptions(),
		})
		filters = append(filters, e.catalog.Filters()...)
	}

	configured, err := filter.FromConfigs(res.Filters, e.toggles)
	if err != nil {
		return nil, err
	}
	filters = append(filters, configured...)

	e.registry = filter.NewRegistry(filters...)
	e.metrics = metrics.NewCollector(e.registry)
	debug.Log("Engine: %d filters, %d toggles", len(filters), len(e.toggles.Names()))
	return e, nil
}
