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

package governance_test

import (
	"testing"

	"github.com/blinklabs-io/agora/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageLateControllerBinding(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	storageAddr, err := eng.DeployStorage(ctx, deployerAddr, poolAddr, common.Address{})
	require.NoError(t, err)
	storage := eng.Storage(storageAddr)
	_, err = storage.GetController(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = storage.GetSafeController(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)

	controllerAddr, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	err = storage.InitialiseController(ctx, strangerAddr, controllerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	err = storage.InitialiseController(ctx, deployerAddr, strangerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
	require.NoError(t, storage.InitialiseController(ctx, deployerAddr, controllerAddr))
	err = storage.InitialiseController(ctx, deployerAddr, controllerAddr)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialised)

	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	require.NoError(t, eng.Controller(controllerAddr).InitialiseController(ctx, deployerAddr, storageAddr, safeControllerAddr))
	safeController, err := storage.GetSafeController(ctx)
	require.NoError(t, err)
	assert.Equal(t, safeControllerAddr, safeController)
}

func TestDeployStorageUnknownController(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.DeployStorage(t.Context(), deployerAddr, poolAddr, strangerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
}

func TestBallotIDsDense(t *testing.T) {
	ctx := t.Context()
	d := deploy(t, newTestEngine(t))
	titles := []string{"first", "second", "third", "fourth"}
	for i, title := range titles {
		id, err := d.controller.BallotCreateBallot(ctx, deployerAddr, title)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}
	// A rejected creation does not consume an id
	_, err := d.controller.BallotCreateBallot(ctx, strangerAddr, "rejected")
	require.Error(t, err)
	id, err := d.controller.BallotCreateBallot(ctx, deployerAddr, "fifth")
	require.NoError(t, err)
	assert.Equal(t, uint64(len(titles)), id)

	records, err := d.storage.Ballots(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(titles)+1)
	seen := make(map[common.Address]bool)
	for i, record := range records {
		assert.Equal(t, uint64(i), record.ID)
		assert.False(t, seen[record.Reference])
		seen[record.Reference] = true
		title, err := d.engine.Ballot(record.Reference).Title(ctx)
		require.NoError(t, err)
		assert.Equal(t, record.Title, title)
	}

	_, err = d.storage.GetBallot(ctx, uint64(len(records)))
	require.ErrorIs(t, err, governance.ErrNotFound)
	_, err = d.storage.GetBallotAddress(ctx, uint64(len(records)))
	require.ErrorIs(t, err, governance.ErrNotFound)
}

func TestVoterRegistry(t *testing.T) {
	ctx := t.Context()
	d := deploy(t, newTestEngine(t))
	require.NoError(t, d.controller.RegisterVoter(ctx, deployerAddr, aliceAddr))
	require.NoError(t, d.controller.RegisterVoter(ctx, deployerAddr, aliceAddr))
	require.NoError(t, d.controller.RegisterVoter(ctx, deployerAddr, bobAddr))
	count, err := d.storage.VoterCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
	isVoter, err := d.storage.IsVoter(ctx, aliceAddr)
	require.NoError(t, err)
	assert.True(t, isVoter)
	isVoter, err = d.storage.IsVoter(ctx, strangerAddr)
	require.NoError(t, err)
	assert.False(t, isVoter)
}

func TestUnknownStorage(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Storage(strangerAddr).BallotCount(t.Context())
	require.ErrorIs(t, err, governance.ErrNotFound)
	_, err = eng.Component(t.Context(), strangerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
}
