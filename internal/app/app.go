// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app opens the governance engine described by a configuration and
// runs the long-lived service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/blinklabs-io/agora/internal/tracing"
	"github.com/blinklabs-io/agora/internal/version"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrAlreadyDeployed is returned by Deploy when the data directory already
// holds a deployment
var ErrAlreadyDeployed = errors.New("already deployed")

type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	db              *database.Database
	eventBus        *event.EventBus
	engine          *governance.Engine
	shutdownTracing func(context.Context) error
}

// Open opens the database in the configured data directory and builds an
// engine on top of it. Governance events are logged at debug level.
func Open(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*App, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
	}
	if cfg.Tracing {
		shutdown, err := tracing.Setup(ctx, tracing.Config{
			ServiceName:    "agora",
			ServiceVersion: version.GetVersionString(),
			Stdout:         cfg.TracingStdout,
		})
		if err != nil {
			return nil, err
		}
		a.shutdownTracing = shutdown
	}
	db, err := database.New(&database.Config{
		DataDir:       cfg.DatabasePath,
		Logger:        logger,
		PromRegistry:  promRegistry,
		BlobCacheSize: cfg.BadgerCacheSize,
	})
	if err != nil {
		if db != nil {
			db.Close() //nolint:errcheck
		}
		a.closeTracing()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	a.eventBus = event.NewEventBus(promRegistry, logger)
	for _, eventType := range event.GovernanceEventTypes {
		a.eventBus.SubscribeFunc(eventType, a.logEvent)
	}
	a.engine, err = governance.NewEngine(governance.EngineConfig{
		Database:     db,
		EventBus:     a.eventBus,
		Logger:       logger,
		PromRegistry: promRegistry,
	})
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	return a, nil
}

func (a *App) logEvent(evt event.Event) {
	a.logger.Debug(
		"governance event",
		"component", "app",
		"type", string(evt.Type),
		"data", fmt.Sprintf("%+v", evt.Data),
	)
}

func (a *App) Engine() *governance.Engine {
	return a.engine
}

func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) closeTracing() error {
	if a.shutdownTracing == nil {
		return nil
	}
	err := a.shutdownTracing(context.Background())
	a.shutdownTracing = nil
	return err
}

// Close stops the event bus and closes the database
func (a *App) Close() error {
	var errs []error
	if a.eventBus != nil {
		a.eventBus.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.closeTracing(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Deployment returns the recorded deployment
func (a *App) Deployment() (*config.Deployment, error) {
	return config.LoadDeployment(a.cfg.DatabasePath)
}

// Deploy creates and wires a Controller, a SafeController and a Storage in
// the required order and records their addresses
func (a *App) Deploy(
	ctx context.Context,
	deployer common.Address,
	safeManager common.Address,
	pool common.Address,
) (*config.Deployment, error) {
	if _, err := a.Deployment(); err == nil {
		return nil, ErrAlreadyDeployed
	} else if !errors.Is(err, config.ErrNoDeployment) {
		return nil, err
	}
	eng := a.engine
	controller, err := eng.DeployController(ctx, deployer)
	if err != nil {
		return nil, err
	}
	safeController, err := eng.DeploySafeController(ctx, deployer)
	if err != nil {
		return nil, err
	}
	storage, err := eng.DeployStorage(ctx, deployer, pool, controller)
	if err != nil {
		return nil, err
	}
	if err := eng.Controller(controller).InitialiseController(ctx, deployer, storage, safeController); err != nil {
		return nil, err
	}
	if err := eng.SafeController(safeController).InitialiseSafeController(ctx, deployer, safeManager, controller); err != nil {
		return nil, err
	}
	d := &config.Deployment{
		Deployer:       deployer,
		Controller:     controller,
		SafeController: safeController,
		Storage:        storage,
		SafeManager:    safeManager,
		Pool:           pool,
	}
	if err := config.SaveDeployment(a.cfg.DatabasePath, d); err != nil {
		return nil, err
	}
	a.logger.Info(
		"deployment complete",
		"component", "app",
		"controller", controller.Hex(),
		"safe_controller", safeController.Hex(),
		"storage", storage.Hex(),
	)
	return d, nil
}
