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
	"fmt"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/ethereum/go-ethereum/common"
)

// Controller is the admin-gated orchestrator of a deployment. Every mutating
// operation authorizes the caller against the admin set of its Storage.
type Controller struct {
	engine  *Engine
	address common.Address
}

// Controller returns a handle to the Controller at addr
func (e *Engine) Controller(addr common.Address) *Controller {
	return &Controller{engine: e, address: addr}
}

func (c *Controller) Address() common.Address {
	return c.address
}

func (c *Controller) load(txn *database.Txn) (*models.ControllerState, error) {
	return loadControllerState(c.engine.db, txn, c.address)
}

func loadControllerState(
	db *database.Database,
	txn *database.Txn,
	addr common.Address,
) (*models.ControllerState, error) {
	if _, err := getComponent(db, txn, addr, ComponentKindController); err != nil {
		return nil, err
	}
	state, err := db.GetControllerState(addr.Bytes(), txn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("controller %s has no state: %w", addr.Hex(), ErrNotFound)
	}
	return state, nil
}

// InitialiseController wires the Controller to storage and safeController.
// Only the deployer may call it, once. The Storage must already trust this
// Controller. The caller becomes the first admin.
func (c *Controller) InitialiseController(
	ctx context.Context,
	caller common.Address,
	storage common.Address,
	safeController common.Address,
) error {
	db := c.engine.db
	return c.engine.execute(ctx, "Controller.InitialiseController", caller, c.address, func(f *frame) error {
		component, err := getComponent(db, f.txn, c.address, ComponentKindController)
		if err != nil {
			return err
		}
		if toAddress(component.Deployer) != f.caller {
			return ErrUnauthorized
		}
		state, err := c.load(f.txn)
		if err != nil {
			return err
		}
		if len(state.Storage) > 0 {
			return ErrAlreadyInitialised
		}
		storageState, err := loadStorageState(db, f.txn, storage)
		if err != nil {
			return err
		}
		if _, err := getComponent(db, f.txn, safeController, ComponentKindSafeController); err != nil {
			return err
		}
		if toAddress(storageState.Controller) != c.address {
			return fmt.Errorf(
				"storage %s does not trust controller %s: %w",
				storage.Hex(),
				c.address.Hex(),
				ErrUnauthorized,
			)
		}
		state.Storage = storage.Bytes()
		state.SafeController = safeController.Bytes()
		state.InitialisedSeq = f.seq
		if err := db.SetControllerState(state, f.txn); err != nil {
			return err
		}
		storageHandle := c.engine.Storage(storage)
		asController := f.as(c.address)
		if err := storageHandle.bindSafeController(asController, safeController); err != nil {
			return err
		}
		if _, err := storageHandle.addAdmin(asController, f.caller); err != nil {
			return err
		}
		f.emit(
			event.ComponentInitialisedEventType,
			event.ComponentInitialisedEvent{
				Kind:       ComponentKindController,
				Address:    c.address,
				References: []common.Address{storage, safeController},
				Seq:        f.seq,
			},
		)
		f.emit(
			event.AdminAddedEventType,
			event.AdminAddedEvent{
				Storage:  storage,
				Identity: f.caller,
				AddedBy:  f.caller,
				Seq:      f.seq,
			},
		)
		return nil
	})
}

// requireAdmin loads the wired Controller state and checks that f.caller is
// in the admin set of its Storage
func (c *Controller) requireAdmin(f *frame) (*models.ControllerState, error) {
	state, err := c.load(f.txn)
	if err != nil {
		return nil, err
	}
	if len(state.Storage) == 0 {
		return nil, ErrNotInitialised
	}
	isAdmin, err := c.engine.db.IsAdmin(state.Storage, f.caller.Bytes(), f.txn)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrUnauthorized
	}
	return state, nil
}

// AddAdmin adds identity to the admin set. Adding an existing admin is a no-op.
func (c *Controller) AddAdmin(
	ctx context.Context,
	caller common.Address,
	identity common.Address,
) error {
	return c.engine.execute(ctx, "Controller.AddAdmin", caller, identity, func(f *frame) error {
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		storage := toAddress(state.Storage)
		added, err := c.engine.Storage(storage).addAdmin(f.as(c.address), identity)
		if err != nil {
			return err
		}
		if added {
			f.emit(
				event.AdminAddedEventType,
				event.AdminAddedEvent{
					Storage:  storage,
					Identity: identity,
					AddedBy:  f.caller,
					Seq:      f.seq,
				},
			)
		}
		return nil
	})
}

// ResignAsAdmin removes the caller from the admin set. The last admin cannot resign.
func (c *Controller) ResignAsAdmin(ctx context.Context, caller common.Address) error {
	return c.engine.execute(ctx, "Controller.ResignAsAdmin", caller, caller, func(f *frame) error {
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		storage := toAddress(state.Storage)
		if err := c.engine.Storage(storage).removeAdmin(f.as(c.address), f.caller); err != nil {
			return err
		}
		f.emit(
			event.AdminResignedEventType,
			event.AdminResignedEvent{
				Storage:  storage,
				Identity: f.caller,
				Seq:      f.seq,
			},
		)
		return nil
	})
}

// CheckIsAdmin reports whether identity is in the admin set
func (c *Controller) CheckIsAdmin(ctx context.Context, identity common.Address) (bool, error) {
	var ret bool
	err := c.engine.view(ctx, "Controller.CheckIsAdmin", func(txn *database.Txn) error {
		state, err := c.load(txn)
		if err != nil {
			return err
		}
		if len(state.Storage) == 0 {
			return ErrNotInitialised
		}
		ret, err = c.engine.db.IsAdmin(state.Storage, identity.Bytes(), txn)
		return err
	})
	return ret, err
}

// BallotCreateBallot registers a new ballot in Storage and returns its id
func (c *Controller) BallotCreateBallot(
	ctx context.Context,
	caller common.Address,
	title string,
) (uint64, error) {
	var ret uint64
	err := c.engine.execute(ctx, "Controller.BallotCreateBallot", caller, c.address, func(f *frame) error {
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		ret, _, err = c.engine.Storage(toAddress(state.Storage)).registerBallot(f.as(c.address), title)
		return err
	})
	return ret, err
}

// BallotCreateProposals appends proposals to a ballot that is still in the
// Created state, preserving input order
func (c *Controller) BallotCreateProposals(
	ctx context.Context,
	caller common.Address,
	ballotRef common.Address,
	names []string,
	documentRefs []string,
) error {
	return c.engine.execute(ctx, "Controller.BallotCreateProposals", caller, ballotRef, func(f *frame) error {
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		ballot := c.engine.Ballot(ballotRef)
		if _, err := ballot.loadOwned(f.txn, toAddress(state.Storage)); err != nil {
			return err
		}
		if len(names) != len(documentRefs) {
			return fmt.Errorf(
				"%d names, %d document references: %w",
				len(names),
				len(documentRefs),
				ErrArityMismatch,
			)
		}
		return ballot.addProposals(f.as(c.address), names, documentRefs)
	})
}

// BallotStart moves ballot id from Created to Active
func (c *Controller) BallotStart(
	ctx context.Context,
	caller common.Address,
	id uint64,
) error {
	return c.engine.execute(ctx, "Controller.BallotStart", caller, c.address, func(f *frame) error {
		return c.transition(f, id, BallotStateCreated)
	})
}

// BallotEnd moves ballot id from Active to Closed
func (c *Controller) BallotEnd(
	ctx context.Context,
	caller common.Address,
	id uint64,
) error {
	return c.engine.execute(ctx, "Controller.BallotEnd", caller, c.address, func(f *frame) error {
		return c.transition(f, id, BallotStateActive)
	})
}

func (c *Controller) transition(f *frame, id uint64, from BallotState) error {
	state, err := c.requireAdmin(f)
	if err != nil {
		return err
	}
	record, err := c.engine.Storage(toAddress(state.Storage)).getBallotRecord(f.txn, id)
	if err != nil {
		return err
	}
	return c.engine.Ballot(toAddress(record.Address)).advance(f.as(c.address), id, from)
}

// RegisterVoter adds identity to the voter registry. Registering an existing
// voter is a no-op.
func (c *Controller) RegisterVoter(
	ctx context.Context,
	caller common.Address,
	identity common.Address,
) error {
	return c.engine.execute(ctx, "Controller.RegisterVoter", caller, identity, func(f *frame) error {
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		storage := toAddress(state.Storage)
		added, err := c.engine.Storage(storage).addVoter(f.as(c.address), identity)
		if err != nil {
			return err
		}
		if added {
			f.emit(
				event.VoterRegisteredEventType,
				event.VoterRegisteredEvent{
					Storage:  storage,
					Identity: identity,
					Seq:      f.seq,
				},
			)
		}
		return nil
	})
}

// ForwardOutcome forwards the chosen proposal of a closed ballot to the
// SafeController and returns the nonce of the recorded action. An outcome is
// forwarded at most once per ballot.
func (c *Controller) ForwardOutcome(
	ctx context.Context,
	caller common.Address,
	id uint64,
	proposalIndex uint32,
) (uint64, error) {
	var ret uint64
	err := c.engine.execute(ctx, "Controller.ForwardOutcome", caller, c.address, func(f *frame) error {
		db := c.engine.db
		state, err := c.requireAdmin(f)
		if err != nil {
			return err
		}
		record, err := c.engine.Storage(toAddress(state.Storage)).getBallotRecord(f.txn, id)
		if err != nil {
			return err
		}
		ballotAddr := toAddress(record.Address)
		ballot, err := c.engine.Ballot(ballotAddr).load(f.txn)
		if err != nil {
			return err
		}
		if BallotState(ballot.State) != BallotStateClosed {
			return fmt.Errorf(
				"ballot %d is %s: %w",
				id,
				BallotState(ballot.State),
				ErrInvalidState,
			)
		}
		proposal, err := db.GetProposal(ballotAddr.Bytes(), proposalIndex, f.txn)
		if err != nil {
			return err
		}
		if proposal == nil {
			return fmt.Errorf("proposal %d: %w", proposalIndex, ErrNotFound)
		}
		if ballot.ForwardedNonce != nil {
			return fmt.Errorf(
				"ballot %d already forwarded as action %d: %w",
				id,
				*ballot.ForwardedNonce,
				ErrInvalidState,
			)
		}
		ret, err = c.engine.SafeController(toAddress(state.SafeController)).forward(
			f.as(c.address),
			record,
			proposal,
		)
		if err != nil {
			return err
		}
		return db.SetBallotForwardedNonce(ballotAddr.Bytes(), ret, f.txn)
	})
	return ret, err
}

// GetStorage returns the wired Storage
func (c *Controller) GetStorage(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := c.engine.view(ctx, "Controller.GetStorage", func(txn *database.Txn) error {
		state, err := c.load(txn)
		if err != nil {
			return err
		}
		if len(state.Storage) == 0 {
			return ErrNotInitialised
		}
		ret = toAddress(state.Storage)
		return nil
	})
	return ret, err
}

// GetSafeController returns the wired SafeController
func (c *Controller) GetSafeController(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := c.engine.view(ctx, "Controller.GetSafeController", func(txn *database.Txn) error {
		state, err := c.load(txn)
		if err != nil {
			return err
		}
		if len(state.SafeController) == 0 {
			return ErrNotInitialised
		}
		ret = toAddress(state.SafeController)
		return nil
	})
	return ret, err
}
