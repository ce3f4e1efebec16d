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

package governance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/agora/governance"

type EngineConfig struct {
	Database       *database.Database
	EventBus       *event.EventBus
	Logger         *slog.Logger
	PromRegistry   prometheus.Registerer
	TracerProvider trace.TracerProvider
}

// Engine executes governance operations one at a time. Each mutating
// operation runs under the write lock inside a single database transaction
// and is assigned the next journal sequence number when it commits.
type Engine struct {
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *engineMetrics
	tracer   trace.Tracer
	mu       sync.RWMutex
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	e := &Engine{
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger,
	}
	if e.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e.logger = e.logger.With("component", "governance")
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	e.tracer = tp.Tracer(tracerName)
	if cfg.PromRegistry != nil {
		e.initMetrics(cfg.PromRegistry)
		seq, err := e.db.JournalSeq(nil)
		if err != nil {
			return nil, fmt.Errorf("read journal sequence: %w", err)
		}
		e.metrics.journalSeq.Set(float64(seq))
	}
	return e, nil
}

// opState is shared by every frame of a single operation
type opState struct {
	txn      *database.Txn
	now      time.Time
	events   []event.Event
	onCommit []func()
	seq      uint64
}

// frame is the execution context of a call. Calls between components
// share the operation state and change only the caller.
type frame struct {
	*opState
	engine *Engine
	caller common.Address
}

// as returns a frame for a call made by the component at caller
func (f *frame) as(caller common.Address) *frame {
	return &frame{
		opState: f.opState,
		engine:  f.engine,
		caller:  caller,
	}
}

func (f *frame) emit(eventType event.EventType, data any) {
	evt := event.NewEvent(eventType, data)
	evt.Timestamp = f.now
	f.events = append(f.events, evt)
}

func (f *frame) afterCommit(fn func()) {
	f.onCommit = append(f.onCommit, fn)
}

// execute runs fn as a single atomic operation
func (e *Engine) execute(
	ctx context.Context,
	op string,
	caller common.Address,
	target common.Address,
	fn func(*frame) error,
) error {
	start := time.Now()
	_, span := e.tracer.Start(
		ctx,
		"governance."+op,
		trace.WithAttributes(
			attribute.String("agora.op", op),
			attribute.String("agora.caller", caller.Hex()),
			attribute.String("agora.target", target.Hex()),
		),
	)
	defer span.End()
	err := e.run(ctx, op, caller, target, fn, span)
	e.metrics.observeCall(op, err, start)
	if err != nil {
		span.SetStatus(codes.Error, KindOf(err))
		span.RecordError(err)
		if KindOf(err) == KindInternal {
			e.logger.Error(
				"operation failed",
				"op", op,
				"caller", caller.Hex(),
				"error", err,
			)
		} else {
			e.logger.Debug(
				"operation rejected",
				"op", op,
				"caller", caller.Hex(),
				"kind", KindOf(err),
			)
		}
	}
	return err
}

func (e *Engine) run(
	ctx context.Context,
	op string,
	caller common.Address,
	target common.Address,
	fn func(*frame) error,
	span trace.Span,
) error {
	// Operations cannot be cancelled once the lock is held
	if err := ctx.Err(); err != nil {
		return newOpError(op, caller, err)
	}
	f := &frame{
		opState: &opState{now: time.Now()},
		engine:  e,
		caller:  caller,
	}
	err := e.commit(f, op, target, fn)
	if err != nil {
		return newOpError(op, caller, err)
	}
	span.SetAttributes(attribute.Int64("agora.seq", int64(f.seq))) // #nosec G115
	e.logger.Debug(
		"operation committed",
		"op", op,
		"caller", caller.Hex(),
		"seq", f.seq,
	)
	if e.metrics != nil {
		e.metrics.journalSeq.Set(float64(f.seq))
	}
	for _, fn := range f.onCommit {
		fn()
	}
	if e.eventBus != nil {
		for _, evt := range f.events {
			e.eventBus.Publish(evt.Type, evt)
		}
	}
	return nil
}

func (e *Engine) commit(
	f *frame,
	op string,
	target common.Address,
	fn func(*frame) error,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	txn := e.db.Transaction(true)
	f.txn = txn
	return txn.Do(func(txn *database.Txn) error {
		seq, err := e.db.JournalSeq(txn)
		if err != nil {
			return fmt.Errorf("read journal sequence: %w", err)
		}
		f.seq = seq + 1
		if f.caller == (common.Address{}) {
			return ErrUnauthorized
		}
		if err := fn(f); err != nil {
			return err
		}
		return e.db.AppendJournal(
			database.JournalEntry{
				Seq:    f.seq,
				Op:     op,
				Caller: f.caller.Bytes(),
				Target: target.Bytes(),
				Time:   f.now.UnixMilli(),
			},
			txn,
		)
	})
}

// view runs fn against a consistent read-only snapshot
func (e *Engine) view(
	ctx context.Context,
	op string,
	fn func(*database.Txn) error,
) error {
	if err := ctx.Err(); err != nil {
		return newOpError(op, common.Address{}, err)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	txn := e.db.Transaction(false)
	defer txn.Release()
	if err := fn(txn); err != nil {
		return newOpError(op, common.Address{}, err)
	}
	return nil
}

// deploy allocates the address of a new component created by f.caller
func (f *frame) deploy(kind string) (common.Address, error) {
	db := f.engine.db
	nonce, err := db.DeployerNonce(f.caller.Bytes(), f.txn)
	if err != nil {
		return common.Address{}, fmt.Errorf("read deployer nonce: %w", err)
	}
	addr := crypto.CreateAddress(f.caller, nonce)
	if err := db.CreateComponent(
		&models.Component{
			Kind:        kind,
			Address:     addr.Bytes(),
			Deployer:    f.caller.Bytes(),
			Nonce:       nonce,
			CreatedSeq:  f.seq,
			CreatedTime: f.now,
		},
		f.txn,
	); err != nil {
		return common.Address{}, fmt.Errorf("create component: %w", err)
	}
	f.emit(
		event.ComponentDeployedEventType,
		event.ComponentDeployedEvent{
			Kind:     kind,
			Address:  addr,
			Deployer: f.caller,
			Nonce:    nonce,
			Seq:      f.seq,
		},
	)
	return addr, nil
}

// getComponent returns the component at addr, which must be of the given kind
func getComponent(
	db *database.Database,
	txn *database.Txn,
	addr common.Address,
	kind string,
) (*models.Component, error) {
	component, err := db.GetComponent(addr.Bytes(), txn)
	if err != nil {
		if errors.Is(err, models.ErrComponentNotFound) {
			return nil, fmt.Errorf("%s %s: %w", kind, addr.Hex(), ErrNotFound)
		}
		return nil, err
	}
	if component.Kind != kind {
		return nil, fmt.Errorf(
			"%s %s is a %s: %w",
			kind,
			addr.Hex(),
			component.Kind,
			ErrNotFound,
		)
	}
	return component, nil
}

// DeployController creates a new, unwired Controller
func (e *Engine) DeployController(
	ctx context.Context,
	deployer common.Address,
) (common.Address, error) {
	var addr common.Address
	err := e.execute(ctx, "DeployController", deployer, common.Address{}, func(f *frame) error {
		var err error
		addr, err = f.deploy(ComponentKindController)
		if err != nil {
			return err
		}
		return e.db.SetControllerState(
			&models.ControllerState{Address: addr.Bytes()},
			f.txn,
		)
	})
	return addr, err
}

// DeploySafeController creates a new, unwired SafeController
func (e *Engine) DeploySafeController(
	ctx context.Context,
	deployer common.Address,
) (common.Address, error) {
	var addr common.Address
	err := e.execute(ctx, "DeploySafeController", deployer, common.Address{}, func(f *frame) error {
		var err error
		addr, err = f.deploy(ComponentKindSafeController)
		if err != nil {
			return err
		}
		return e.db.SetSafeControllerState(
			&models.SafeControllerState{Address: addr.Bytes()},
			f.txn,
		)
	})
	return addr, err
}

// DeployStorage creates a new Storage for pool. When controller is not the
// zero address the Storage trusts it from the start, otherwise
// Storage.InitialiseController must be called later.
func (e *Engine) DeployStorage(
	ctx context.Context,
	deployer common.Address,
	pool common.Address,
	controller common.Address,
) (common.Address, error) {
	var addr common.Address
	err := e.execute(ctx, "DeployStorage", deployer, controller, func(f *frame) error {
		if controller != (common.Address{}) {
			if _, err := getComponent(e.db, f.txn, controller, ComponentKindController); err != nil {
				return err
			}
		}
		var err error
		addr, err = f.deploy(ComponentKindStorage)
		if err != nil {
			return err
		}
		return e.db.SetStorageState(
			&models.StorageState{
				Address:    addr.Bytes(),
				Pool:       addressBytes(pool),
				Controller: addressBytes(controller),
			},
			f.txn,
		)
	})
	return addr, err
}

// Components lists deployed components of the given kind, or all components
// when kind is empty
func (e *Engine) Components(ctx context.Context, kind string) ([]Component, error) {
	var ret []Component
	err := e.view(ctx, "Components", func(txn *database.Txn) error {
		components, err := e.db.GetComponents(kind, txn)
		if err != nil {
			return err
		}
		ret = make([]Component, 0, len(components))
		for i := range components {
			ret = append(ret, componentFromModel(&components[i]))
		}
		return nil
	})
	return ret, err
}

// Component returns the component deployed at addr
func (e *Engine) Component(ctx context.Context, addr common.Address) (Component, error) {
	var ret Component
	err := e.view(ctx, "Component", func(txn *database.Txn) error {
		component, err := e.db.GetComponent(addr.Bytes(), txn)
		if err != nil {
			if errors.Is(err, models.ErrComponentNotFound) {
				return ErrNotFound
			}
			return err
		}
		ret = componentFromModel(component)
		return nil
	})
	return ret, err
}

// Seq returns the sequence number of the last committed operation
func (e *Engine) Seq(ctx context.Context) (uint64, error) {
	var ret uint64
	err := e.view(ctx, "Seq", func(txn *database.Txn) error {
		var err error
		ret, err = e.db.JournalSeq(txn)
		return err
	})
	return ret, err
}

// Journal returns up to limit committed operations starting at fromSeq.
// A limit of 0 returns everything from fromSeq on.
func (e *Engine) Journal(
	ctx context.Context,
	fromSeq uint64,
	limit int,
) ([]JournalEntry, error) {
	var ret []JournalEntry
	err := e.view(ctx, "Journal", func(txn *database.Txn) error {
		entries, err := e.db.Journal(fromSeq, limit, txn)
		if err != nil {
			return err
		}
		ret = make([]JournalEntry, 0, len(entries))
		for _, entry := range entries {
			ret = append(ret, JournalEntry{
				Seq:    entry.Seq,
				Op:     entry.Op,
				Caller: toAddress(entry.Caller),
				Target: toAddress(entry.Target),
				Time:   time.UnixMilli(entry.Time),
			})
		}
		return nil
	})
	return ret, err
}
