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
	"github.com/blinklabs-io/agora/event"
	"github.com/ethereum/go-ethereum/common"
)

// Storage is the registry of a deployment: the admin set, the ballot
// registry, the voter registry and the pool identifier. It trusts exactly
// one Controller and accepts mutations only from it.
type Storage struct {
	engine  *Engine
	address common.Address
}

// Storage returns a handle to the Storage at addr. The component is looked
// up on every call.
func (e *Engine) Storage(addr common.Address) *Storage {
	return &Storage{engine: e, address: addr}
}

func (s *Storage) Address() common.Address {
	return s.address
}

func (s *Storage) load(txn *database.Txn) (*models.StorageState, error) {
	return loadStorageState(s.engine.db, txn, s.address)
}

func loadStorageState(
	db *database.Database,
	txn *database.Txn,
	addr common.Address,
) (*models.StorageState, error) {
	if _, err := getComponent(db, txn, addr, ComponentKindStorage); err != nil {
		return nil, err
	}
	state, err := db.GetStorageState(addr.Bytes(), txn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("storage %s has no state: %w", addr.Hex(), ErrNotFound)
	}
	return state, nil
}

// InitialiseController sets the trusted Controller. Only the deployer of the
// Storage may call it, and only once.
func (s *Storage) InitialiseController(
	ctx context.Context,
	caller common.Address,
	controller common.Address,
) error {
	db := s.engine.db
	return s.engine.execute(ctx, "Storage.InitialiseController", caller, s.address, func(f *frame) error {
		component, err := getComponent(db, f.txn, s.address, ComponentKindStorage)
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
		if err := db.SetStorageState(state, f.txn); err != nil {
			return err
		}
		f.emit(
			event.ComponentInitialisedEventType,
			event.ComponentInitialisedEvent{
				Kind:       ComponentKindStorage,
				Address:    s.address,
				References: []common.Address{controller},
				Seq:        f.seq,
			},
		)
		return nil
	})
}

// requireController loads the Storage state and checks that f.caller is the
// trusted Controller
func (s *Storage) requireController(f *frame) (*models.StorageState, error) {
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

// RegisterBallot deploys a Ballot on behalf of the trusted Controller and
// appends it to the registry
func (s *Storage) RegisterBallot(
	ctx context.Context,
	caller common.Address,
	title string,
) (uint64, error) {
	var ret uint64
	err := s.engine.execute(ctx, "Storage.RegisterBallot", caller, s.address, func(f *frame) error {
		var err error
		ret, _, err = s.registerBallot(f, title)
		return err
	})
	return ret, err
}

func (s *Storage) registerBallot(
	f *frame,
	title string,
) (uint64, common.Address, error) {
	db := s.engine.db
	state, err := s.requireController(f)
	if err != nil {
		return 0, common.Address{}, err
	}
	// The Ballot is created by the Controller
	ballotAddr, err := f.deploy(ComponentKindBallot)
	if err != nil {
		return 0, common.Address{}, err
	}
	if err := db.CreateBallot(
		&models.Ballot{
			Address:    ballotAddr.Bytes(),
			Storage:    s.address.Bytes(),
			Controller: f.caller.Bytes(),
			Title:      title,
			State:      uint8(BallotStateCreated),
		},
		f.txn,
	); err != nil {
		return 0, common.Address{}, err
	}
	ballotID := state.BallotCount
	if err := db.CreateBallotRecord(
		&models.BallotRecord{
			Storage:     s.address.Bytes(),
			Address:     ballotAddr.Bytes(),
			BallotID:    ballotID,
			Title:       title,
			CreatedSeq:  f.seq,
			CreatedTime: f.now,
		},
		f.txn,
	); err != nil {
		return 0, common.Address{}, err
	}
	state.BallotCount++
	if err := db.SetStorageState(state, f.txn); err != nil {
		return 0, common.Address{}, err
	}
	ballotCount := state.BallotCount
	f.afterCommit(func() {
		if m := s.engine.metrics; m != nil {
			m.ballots.WithLabelValues(s.address.Hex()).Set(float64(ballotCount))
		}
	})
	f.emit(
		event.BallotCreatedEventType,
		event.BallotCreatedEvent{
			Storage:  s.address,
			Ballot:   ballotAddr,
			Title:    title,
			BallotID: ballotID,
			Seq:      f.seq,
		},
	)
	return ballotID, ballotAddr, nil
}

// bindSafeController records the SafeController announced by the trusted
// Controller at its initialisation
func (s *Storage) bindSafeController(f *frame, safeController common.Address) error {
	state, err := s.requireController(f)
	if err != nil {
		return err
	}
	if len(state.SafeController) > 0 {
		return ErrAlreadyInitialised
	}
	state.SafeController = safeController.Bytes()
	return s.engine.db.SetStorageState(state, f.txn)
}

// addAdmin adds identity to the admin set and reports whether it was new
func (s *Storage) addAdmin(f *frame, identity common.Address) (bool, error) {
	db := s.engine.db
	if _, err := s.requireController(f); err != nil {
		return false, err
	}
	isAdmin, err := db.IsAdmin(s.address.Bytes(), identity.Bytes(), f.txn)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return false, nil
	}
	if err := db.AddAdmin(
		&models.Admin{
			Storage:  s.address.Bytes(),
			Identity: identity.Bytes(),
			AddedSeq: f.seq,
		},
		f.txn,
	); err != nil {
		return false, err
	}
	s.refreshAdminGauge(f)
	return true, nil
}

// removeAdmin removes identity from the admin set. The last admin cannot be
// removed.
func (s *Storage) removeAdmin(f *frame, identity common.Address) error {
	db := s.engine.db
	if _, err := s.requireController(f); err != nil {
		return err
	}
	isAdmin, err := db.IsAdmin(s.address.Bytes(), identity.Bytes(), f.txn)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrUnauthorized
	}
	count, err := db.CountAdmins(s.address.Bytes(), f.txn)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdminProtected
	}
	if err := db.RemoveAdmin(s.address.Bytes(), identity.Bytes(), f.txn); err != nil {
		return err
	}
	s.refreshAdminGauge(f)
	return nil
}

func (s *Storage) refreshAdminGauge(f *frame) {
	if s.engine.metrics == nil {
		return
	}
	count, err := s.engine.db.CountAdmins(s.address.Bytes(), f.txn)
	if err != nil {
		return
	}
	f.afterCommit(func() {
		s.engine.metrics.admins.WithLabelValues(s.address.Hex()).Set(float64(count))
	})
}

// addVoter adds identity to the voter registry and reports whether it was new
func (s *Storage) addVoter(f *frame, identity common.Address) (bool, error) {
	db := s.engine.db
	state, err := s.requireController(f)
	if err != nil {
		return false, err
	}
	created, err := db.AddVoter(
		&models.Voter{
			Storage:       s.address.Bytes(),
			Identity:      identity.Bytes(),
			RegisteredSeq: f.seq,
		},
		f.txn,
	)
	if err != nil || !created {
		return false, err
	}
	state.VoterCount++
	if err := db.SetStorageState(state, f.txn); err != nil {
		return false, err
	}
	voterCount := state.VoterCount
	f.afterCommit(func() {
		if m := s.engine.metrics; m != nil {
			m.voters.WithLabelValues(s.address.Hex()).Set(float64(voterCount))
		}
	})
	return true, nil
}

// GetBallot returns the registry entry for ballot id
func (s *Storage) GetBallot(ctx context.Context, id uint64) (BallotRecord, error) {
	var ret BallotRecord
	err := s.engine.view(ctx, "Storage.GetBallot", func(txn *database.Txn) error {
		record, err := s.getBallotRecord(txn, id)
		if err != nil {
			return err
		}
		ret = ballotRecordFromModel(record)
		return nil
	})
	return ret, err
}

func (s *Storage) getBallotRecord(txn *database.Txn, id uint64) (*models.BallotRecord, error) {
	state, err := s.load(txn)
	if err != nil {
		return nil, err
	}
	if id >= state.BallotCount {
		return nil, fmt.Errorf("ballot %d: %w", id, ErrNotFound)
	}
	record, err := s.engine.db.GetBallotRecord(s.address.Bytes(), id, txn)
	if err != nil {
		if errors.Is(err, models.ErrBallotNotFound) {
			return nil, fmt.Errorf("ballot %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return record, nil
}

// GetBallotAddress returns the address of the Ballot registered as id
func (s *Storage) GetBallotAddress(ctx context.Context, id uint64) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "Storage.GetBallotAddress", func(txn *database.Txn) error {
		record, err := s.getBallotRecord(txn, id)
		if err != nil {
			return err
		}
		ret = toAddress(record.Address)
		return nil
	})
	return ret, err
}

// Ballots returns the whole registry in id order
func (s *Storage) Ballots(ctx context.Context) ([]BallotRecord, error) {
	var ret []BallotRecord
	err := s.engine.view(ctx, "Storage.Ballots", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		records, err := s.engine.db.GetBallotRecords(s.address.Bytes(), txn)
		if err != nil {
			return err
		}
		ret = make([]BallotRecord, 0, len(records))
		for i := range records {
			ret = append(ret, ballotRecordFromModel(&records[i]))
		}
		return nil
	})
	return ret, err
}

func (s *Storage) BallotCount(ctx context.Context) (uint64, error) {
	var ret uint64
	err := s.engine.view(ctx, "Storage.BallotCount", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		ret = state.BallotCount
		return nil
	})
	return ret, err
}

func (s *Storage) VoterCount(ctx context.Context) (uint64, error) {
	var ret uint64
	err := s.engine.view(ctx, "Storage.VoterCount", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		ret = state.VoterCount
		return nil
	})
	return ret, err
}

// GetController returns the trusted Controller
func (s *Storage) GetController(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "Storage.GetController", func(txn *database.Txn) error {
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

// GetSafeController returns the SafeController bound by the trusted
// Controller at its initialisation
func (s *Storage) GetSafeController(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "Storage.GetSafeController", func(txn *database.Txn) error {
		state, err := s.load(txn)
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

// Pool returns the pool identifier configured at deployment
func (s *Storage) Pool(ctx context.Context) (common.Address, error) {
	var ret common.Address
	err := s.engine.view(ctx, "Storage.Pool", func(txn *database.Txn) error {
		state, err := s.load(txn)
		if err != nil {
			return err
		}
		ret = toAddress(state.Pool)
		return nil
	})
	return ret, err
}

func (s *Storage) IsAdmin(ctx context.Context, identity common.Address) (bool, error) {
	var ret bool
	err := s.engine.view(ctx, "Storage.IsAdmin", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		var err error
		ret, err = s.engine.db.IsAdmin(s.address.Bytes(), identity.Bytes(), txn)
		return err
	})
	return ret, err
}

func (s *Storage) AdminCount(ctx context.Context) (uint64, error) {
	var ret uint64
	err := s.engine.view(ctx, "Storage.AdminCount", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		var err error
		ret, err = s.engine.db.CountAdmins(s.address.Bytes(), txn)
		return err
	})
	return ret, err
}

// Admins returns the admin set in the order members were added
func (s *Storage) Admins(ctx context.Context) ([]common.Address, error) {
	var ret []common.Address
	err := s.engine.view(ctx, "Storage.Admins", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		admins, err := s.engine.db.GetAdmins(s.address.Bytes(), txn)
		if err != nil {
			return err
		}
		ret = make([]common.Address, 0, len(admins))
		for _, admin := range admins {
			ret = append(ret, toAddress(admin.Identity))
		}
		return nil
	})
	return ret, err
}

func (s *Storage) IsVoter(ctx context.Context, identity common.Address) (bool, error) {
	var ret bool
	err := s.engine.view(ctx, "Storage.IsVoter", func(txn *database.Txn) error {
		if _, err := s.load(txn); err != nil {
			return err
		}
		var err error
		ret, err = s.engine.db.IsVoter(s.address.Bytes(), identity.Bytes(), txn)
		return err
	})
	return ret, err
}
