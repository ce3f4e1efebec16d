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

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/blinklabs-io/agora/event"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"
)

// SafeController bridges a deployment to the external safe manager. It
// accepts forwarded outcomes only from its wired Controller and numbers them
// with a monotonically increasing proposal counter.
type SafeController struct {
	engine  *Engine
	address common.Address
}

// SafeController returns a handle to the SafeController at addr
func (e *Engine) SafeController(addr common.Address) *SafeController {
	return &SafeController{engine: e, address: addr}
}

func (s *SafeController) Address() common.Address {
	return s.address
}

func (s *SafeController) load(txn *database.Txn) (*models.SafeControllerState, error) {
	db := s.engine.db
	if _, err := getComponent(db, txn, s.address, ComponentKindSafeController); err != nil {
		return nil, err
	}
	state, err := db.GetSafeControllerState(s.address.Bytes(), txn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("safe controller %s has no state: %w", s.address.Hex(), ErrNotFound)
	}
	return state, nil
}

// InitialiseSafeController wires the SafeController to the safe manager and
// to controller. Only the deployer may call it, once.
func (s *SafeController) InitialiseSafeController(
	ctx context.Context,
	caller common.Address,
	safeManager common.Address,
	controller common.Address,
) error {
	db := s.engine.db
	return s.engine.execute(ctx, "SafeController.InitialiseSafeController", caller, s.address, func(f *frame) error {
		component, err := getComponent(db, f.txn, s.address, ComponentKindSafeController)
		if err != nil {
			return err
		}
		if toAddress(component.Deployer) != f.caller {
			return ErrUnauthorized
		}
		state, err := s.load(f.txn)
		if err != nil {
			return err
		}
		if len(state.Controller) > 0 {
			return ErrAlreadyInitialised
		}
		if _, err := getComponent(db, f.txn, controller, ComponentKindController); err != nil {
			return err
		}
		state.Controller = controller.Bytes()
		state.SafeManager = addressBytes(safeManager)
		state.InitialisedSeq = f.seq
		if err := db.SetSafeControllerState(state, f.txn); err != nil {
			return err
		}
		f.emit(
			event.ComponentInitialisedEventType,
			event.ComponentInitialisedEvent{
				Kind:       ComponentKindSafeController,
				Address:    s.address,
				References: []common.Address{safeManager, controller},
				Seq:        f.seq,
			},
		)
		return nil
	})
}

// requireController loads the state and checks that f.caller is the wired Controller
func (s *SafeController) requireController(f *frame) (*models.SafeControllerState, error) {
	state, err := s.load(f.txn)
	if err != nil {
		return nil, err
	}
	if len(state.Controller) == 0 {
		return nil, ErrNotInitialised
	}
	if toAddress(state.Controller) != f.caller {
		return nil, ErrUnauthorized
	}
	return state, nil
}

// Forward records an outbound action for a proposal of a registered ballot.
// Only the wired Controller may call it; admins go through
// Controller.ForwardOutcome.
func (s *SafeController) Forward(
	ctx context.Context,
	caller common.Address,
	ballot common.Address,
	proposalIndex uint32,
) (uint64, error) {
	var ret uint64
	err := s.engine.execute(ctx, "SafeController.Forward", caller, ballot, func(f *frame) error {
		db := s.engine.db
		if _, err := s.requireController(f); err != nil {
			return err
		}
		record, err := db.GetBallotRecordByAddress(ballot.Bytes(), f.txn)
		if err != nil {
			if errorsIsNotFound(err) {
				return fmt.Errorf("ballot %s: %w", ballot.Hex(), ErrNotFound)
			}
			return err
		}
		proposal, err := db.GetProposal(ballot.Bytes(), proposalIndex, f.txn)
		if err != nil {
			return err
		}
		if proposal == nil {
			return fmt.Errorf("proposal %d: %w", proposalIndex, ErrNotFound)
		}
		ret, err = s.forward(f, record, proposal)
		return err
	})
	return ret, err
}

func (s *SafeController) forward(
	f *frame,
	record *models.BallotRecord,
	proposal *models.Proposal,
) (uint64, error) {
	db := s.engine.db
	state, err := s.requireController(f)
	if err != nil {
		return 0, err
	}
	pool, err := s.resolvePool(f.txn, state)
	if err != nil {
		return 0, err
	}
	state.ProposalCounter++
	nonce := state.ProposalCounter
	payload, err := cbor.Marshal(SafeActionPayload{
		SafeController: s.address.Bytes(),
		SafeManager:    state.SafeManager,
		Pool:           addressBytes(pool),
		Ballot:         record.Address,
		BallotID:       record.BallotID,
		ProposalIndex:  proposal.ProposalIndex,
		ProposalName:   proposal.Name,
		DocumentRef:    proposal.DocumentRef,
		Nonce:          nonce,
	})
	if err != nil {
		return 0, fmt.Errorf("encode safe action: %w", err)
	}
	actionHash := crypto.Keccak256Hash(payload)
	if err := db.SetSafeActionPayload(s.address.Bytes(), nonce, payload, f.txn); err != nil {
		return 0, err
	}
	if err := db.CreateSafeAction(
		&models.SafeAction{
			SafeController: s.address.Bytes(),
			SafeManager:    state.SafeManager,
			Pool:           addressBytes(pool),
			Ballot:         record.Address,
			BallotID:       record.BallotID,
			ProposalIndex:  proposal.ProposalIndex,
			ProposalName:   proposal.Name,
			DocumentRef:    proposal.DocumentRef,
			ActionHash:     actionHash.Bytes(),
			Nonce:          nonce,
			CreatedSeq:     f.seq,
		},
		f.txn,
	); err != nil {
		return 0, err
	}
	if err := db.SetSafeControllerState(state, f.txn); err != nil {
		return 0, err
	}
	f.afterCommit(func() {
		if m := s.engine.metrics; m != nil {
			m.proposalCounter.WithLabelValues(s.address.Hex()).Set(float64(nonce))
		}
	})
	f.emit(
		event.SafeActionForwardedEventType,
		event.SafeActionForwardedEvent{
			SafeController: s.address,
			SafeManager:    toAddress(state.SafeManager),
			Ballot:         toAddress(record.Address),
			ActionHash:     actionHash,
			Nonce:          nonce,
			Seq:            f.seq,
		},
	)
	return nonce, nil
}

// resolvePool returns the pool identifier of the Storage wired to the
// Controller of this SafeController
func (s *SafeController) resolvePool(
	txn *database.Txn,
	state *models.SafeControllerState,
) (common.Address, error) {
	db := s.engine.db
	if len(state.Controller) == 0 {
		return common.Address{}, ErrNotInitialised
	}
	controllerState, err := loadControllerState(db, txn, toAddress(state.Controller))
	if err != nil {
		return common.Address{}, err
	}
	if len(controllerState.Storage) == 0 {
		return common.Address{}, ErrNotInitialised
	}
	storageState, err := loadStorageState(db, txn, toAddress(controllerState.Storage))
	if err != nil {
		return common.Address{}, err
	}
	return toAddress(storageState.Pool), nil
}

// GetController returns the wired Controller
func (s *SafeController) GetController(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "SafeController.GetController", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		if len(state.Controller) == 0 {
			return ErrNotInitialised
		}
		ret = toAddress(state.Controller)
		return nil
	})
	return ret, err
}

// GetSafeManager returns the external safe manager authority
func (s *SafeController) GetSafeManager(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "SafeController.GetSafeManager", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		if len(state.Controller) == 0 {
			return ErrNotInitialised
		}
		ret = toAddress(state.SafeManager)
		return nil
	})
	return ret, err
}

// ProposalCounter returns the number of actions forwarded so far
func (s *SafeController) ProposalCounter(ctx context.Context) (uint64, error) {
	var ret uint64
	err := s.engine.view(ctx, "SafeController.ProposalCounter", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		ret = state.ProposalCounter
		return nil
	})
	return ret, err
}

// Pool returns the pool identifier of the deployment
func (s *SafeController) Pool(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "SafeController.Pool", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		ret, err = s.resolvePool(txn, state)
		return err
	})
	return ret, err
}

// GetAction returns the action recorded under nonce, including its encoded payload
func (s *SafeController) GetAction(ctx context.Context, nonce uint64) (SafeAction, error) {
	var ret SafeAction
	err := s.engine.view(ctx, "SafeController.GetAction", func(txn *database.Txn) error {
		db := s.engine.db
		if _, err := s.load(txn); err != nil {
			return err
		}
		action, err := db.GetSafeAction(s.address.Bytes(), nonce, txn)
		if err != nil {
			if errorsIsNotFound(err) {
				return fmt.Errorf("action %d: %w", nonce, ErrNotFound)
			}
			return err
		}
		ret = safeActionFromModel(action)
		payload, err := db.GetSafeActionPayload(s.address.Bytes(), nonce, txn)
		if err != nil && !errors.Is(err, types.ErrBlobKeyNotFound) {
			return err
		}
		ret.Payload = payload
		return nil
	})
	return ret, err
}

// Actions returns all recorded actions in nonce order
func (s *SafeController) Actions(ctx context.Context) ([]SafeAction, error) {
	var ret []SafeAction
	err := s.engine.view(ctx, "SafeController.Actions", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		actions, err := s.engine.db.GetSafeActions(s.address.Bytes(), txn)
		if err != nil {
			return err
		}
		ret = make([]SafeAction, 0, len(actions))
		for i := range actions {
			ret = append(ret, safeActionFromModel(&actions[i]))
		}
		return nil
	})
	return ret, err
}
