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

// Ballot is a single decision round. Its title is fixed at creation,
// proposals may be appended only while it is Created and votes may be cast
// only while it is Active.
type Ballot struct {
	engine  *Engine
	address common.Address
}

// Ballot returns a handle to the Ballot at addr
func (e *Engine) Ballot(addr common.Address) *Ballot {
	return &Ballot{engine: e, address: addr}
}

func (b *Ballot) Address() common.Address {
	return b.address
}

func (b *Ballot) load(txn *database.Txn) (*models.Ballot, error) {
	db := b.engine.db
	if _, err := getComponent(db, txn, b.address, ComponentKindBallot); err != nil {
		return nil, err
	}
	ballot, err := db.GetBallot(b.address.Bytes(), txn)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, fmt.Errorf("ballot %s: %w", b.address.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return ballot, nil
}

// loadOwned loads the ballot and checks that it belongs to storage
func (b *Ballot) loadOwned(txn *database.Txn, storage common.Address) (*models.Ballot, error) {
	ballot, err := b.load(txn)
	if err != nil {
		return nil, err
	}
	if toAddress(ballot.Storage) != storage {
		return nil, fmt.Errorf(
			"ballot %s is not registered in storage %s: %w",
			b.address.Hex(),
			storage.Hex(),
			ErrNotFound,
		)
	}
	return ballot, nil
}

// requireController loads the ballot and checks that f.caller is the
// Controller that created it
func (b *Ballot) requireController(f *frame) (*models.Ballot, error) {
	ballot, err := b.load(f.txn)
	if err != nil {
		return nil, err
	}
	if toAddress(ballot.Controller) != f.caller {
		return nil, ErrUnauthorized
	}
	return ballot, nil
}

func (b *Ballot) addProposals(f *frame, names []string, documentRefs []string) error {
	db := b.engine.db
	ballot, err := b.requireController(f)
	if err != nil {
		return err
	}
	if BallotState(ballot.State) != BallotStateCreated {
		return fmt.Errorf(
			"proposals cannot be added to a ballot that is %s: %w",
			BallotState(ballot.State),
			ErrInvalidState,
		)
	}
	if len(names) == 0 {
		return nil
	}
	first, err := db.CountProposals(b.address.Bytes(), f.txn)
	if err != nil {
		return err
	}
	proposals := make([]models.Proposal, 0, len(names))
	for i, name := range names {
		proposals = append(proposals, models.Proposal{
			Ballot:        b.address.Bytes(),
			ProposalIndex: first + uint32(i), // #nosec G115
			Name:          name,
			DocumentRef:   documentRefs[i],
		})
	}
	if err := db.AddProposals(proposals, f.txn); err != nil {
		return err
	}
	f.emit(
		event.ProposalsAddedEventType,
		event.ProposalsAddedEvent{
			Ballot:     b.address,
			FirstIndex: first,
			Count:      uint32(len(proposals)), // #nosec G115
			Seq:        f.seq,
		},
	)
	return nil
}

// advance moves the ballot from the given state to the next one
func (b *Ballot) advance(f *frame, id uint64, from BallotState) error {
	ballot, err := b.requireController(f)
	if err != nil {
		return err
	}
	current := BallotState(ballot.State)
	if current != from {
		return fmt.Errorf("ballot %d is %s: %w", id, current, ErrInvalidState)
	}
	to, ok := current.next()
	if !ok {
		return fmt.Errorf("ballot %d is %s: %w", id, current, ErrInvalidState)
	}
	if err := b.engine.db.SetBallotState(b.address.Bytes(), uint8(to), f.txn); err != nil {
		return err
	}
	f.emit(
		event.BallotStateChangedEventType,
		event.BallotStateChangedEvent{
			Ballot:   b.address,
			BallotID: id,
			From:     uint8(current),
			To:       uint8(to),
			Seq:      f.seq,
		},
	)
	return nil
}

// Vote casts the caller's vote for a proposal. The caller must be a
// registered voter of the ballot's Storage and may vote once.
func (b *Ballot) Vote(
	ctx context.Context,
	caller common.Address,
	proposalIndex uint32,
) error {
	return b.engine.execute(ctx, "Ballot.Vote", caller, b.address, func(f *frame) error {
		db := b.engine.db
		ballot, err := b.load(f.txn)
		if err != nil {
			return err
		}
		if BallotState(ballot.State) != BallotStateActive {
			return fmt.Errorf(
				"votes cannot be cast on a ballot that is %s: %w",
				BallotState(ballot.State),
				ErrInvalidState,
			)
		}
		isVoter, err := db.IsVoter(ballot.Storage, f.caller.Bytes(), f.txn)
		if err != nil {
			return err
		}
		if !isVoter {
			return ErrUnauthorized
		}
		proposal, err := db.GetProposal(b.address.Bytes(), proposalIndex, f.txn)
		if err != nil {
			return err
		}
		if proposal == nil {
			return fmt.Errorf("proposal %d: %w", proposalIndex, ErrNotFound)
		}
		voted, err := db.HasVoted(b.address.Bytes(), f.caller.Bytes(), f.txn)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}
		if err := db.CreateVote(
			&models.Vote{
				Ballot:        b.address.Bytes(),
				Voter:         f.caller.Bytes(),
				ProposalIndex: proposalIndex,
				CastSeq:       f.seq,
			},
			f.txn,
		); err != nil {
			return err
		}
		if err := db.IncrementProposalVoteCount(b.address.Bytes(), proposalIndex, f.txn); err != nil {
			return err
		}
		f.emit(
			event.VoteCastEventType,
			event.VoteCastEvent{
				Ballot:        b.address,
				Voter:         f.caller,
				ProposalIndex: proposalIndex,
				Seq:           f.seq,
			},
		)
		return nil
	})
}

func (b *Ballot) Title(ctx context.Context) (string, error) {
	var ret string
	err := b.engine.view(ctx, "Ballot.Title", func(txn *database.Txn) error {
		ballot, err := b.load(txn)
		if err != nil {
			return err
		}
		ret = ballot.Title
		return nil
	})
	return ret, err
}

func (b *Ballot) State(ctx context.Context) (BallotState, error) {
	var ret BallotState
	err := b.engine.view(ctx, "Ballot.State", func(txn *database.Txn) error {
		ballot, err := b.load(txn)
		if err != nil {
			return err
		}
		ret = BallotState(ballot.State)
		return nil
	})
	return ret, err
}

// Proposals returns the proposals in index order
func (b *Ballot) Proposals(ctx context.Context) ([]Proposal, error) {
	var ret []Proposal
	err := b.engine.view(ctx, "Ballot.Proposals", func(txn *database.Txn) error {
		if _, err := b.load(txn); err != nil {
			return err
		}
		proposals, err := b.engine.db.GetProposals(b.address.Bytes(), txn)
		if err != nil {
			return err
		}
		ret = make([]Proposal, 0, len(proposals))
		for i := range proposals {
			ret = append(ret, proposalFromModel(&proposals[i]))
		}
		return nil
	})
	return ret, err
}

func (b *Ballot) Proposal(ctx context.Context, index uint32) (Proposal, error) {
	var ret Proposal
	err := b.engine.view(ctx, "Ballot.Proposal", func(txn *database.Txn) error {
		if _, err := b.load(txn); err != nil {
			return err
		}
		proposal, err := b.engine.db.GetProposal(b.address.Bytes(), index, txn)
		if err != nil {
			return err
		}
		if proposal == nil {
			return fmt.Errorf("proposal %d: %w", index, ErrNotFound)
		}
		ret = proposalFromModel(proposal)
		return nil
	})
	return ret, err
}

// HasVoted reports whether identity has voted on this ballot
func (b *Ballot) HasVoted(ctx context.Context, identity common.Address) (bool, error) {
	var ret bool
	err := b.engine.view(ctx, "Ballot.HasVoted", func(txn *database.Txn) error {
		if _, err := b.load(txn); err != nil {
			return err
		}
		var err error
		ret, err = b.engine.db.HasVoted(b.address.Bytes(), identity.Bytes(), txn)
		return err
	})
	return ret, err
}
