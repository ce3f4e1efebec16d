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

func TestAdminSet(t *testing.T) {
	ctx := t.Context()
	d := deploy(t, newTestEngine(t))

	// Adding an existing admin is a no-op
	require.NoError(t, d.controller.AddAdmin(ctx, deployerAddr, aliceAddr))
	require.NoError(t, d.controller.AddAdmin(ctx, deployerAddr, aliceAddr))
	require.NoError(t, d.controller.AddAdmin(ctx, aliceAddr, bobAddr))
	count, err := d.storage.AdminCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
	admins, err := d.storage.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{deployerAddr, aliceAddr, bobAddr}, admins)

	for _, addr := range []common.Address{deployerAddr, aliceAddr, bobAddr} {
		isAdmin, err := d.controller.CheckIsAdmin(ctx, addr)
		require.NoError(t, err)
		assert.True(t, isAdmin, addr.Hex())
	}
	isAdmin, err := d.controller.CheckIsAdmin(ctx, strangerAddr)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// The admin set never drops below one
	require.NoError(t, d.controller.ResignAsAdmin(ctx, deployerAddr))
	require.NoError(t, d.controller.ResignAsAdmin(ctx, aliceAddr))
	err = d.controller.ResignAsAdmin(ctx, bobAddr)
	require.ErrorIs(t, err, governance.ErrLastAdminProtected)
	assert.Equal(t, governance.KindLastAdminProtected, governance.KindOf(err))
	count, err = d.storage.AdminCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// A resigned admin loses its rights
	err = d.controller.AddAdmin(ctx, deployerAddr, strangerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	err = d.controller.ResignAsAdmin(ctx, deployerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
}

func TestNonAdminRejected(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	d := deploy(t, eng)
	_, err := d.controller.BallotCreateBallot(ctx, deployerAddr, "existing")
	require.NoError(t, err)
	ballotAddr, err := d.storage.GetBallotAddress(ctx, 0)
	require.NoError(t, err)
	seqBefore, err := eng.Seq(ctx)
	require.NoError(t, err)

	checks := map[string]func() error{
		"AddAdmin": func() error {
			return d.controller.AddAdmin(ctx, strangerAddr, strangerAddr)
		},
		"ResignAsAdmin": func() error {
			return d.controller.ResignAsAdmin(ctx, strangerAddr)
		},
		"BallotCreateBallot": func() error {
			_, err := d.controller.BallotCreateBallot(ctx, strangerAddr, "x")
			return err
		},
		"BallotCreateProposals": func() error {
			return d.controller.BallotCreateProposals(ctx, strangerAddr, ballotAddr, []string{"P"}, []string{"D"})
		},
		"BallotStart": func() error {
			return d.controller.BallotStart(ctx, strangerAddr, 0)
		},
		"BallotEnd": func() error {
			return d.controller.BallotEnd(ctx, strangerAddr, 0)
		},
		"RegisterVoter": func() error {
			return d.controller.RegisterVoter(ctx, strangerAddr, strangerAddr)
		},
		"ForwardOutcome": func() error {
			_, err := d.controller.ForwardOutcome(ctx, strangerAddr, 0, 0)
			return err
		},
		"Storage.RegisterBallot": func() error {
			_, err := d.storage.RegisterBallot(ctx, deployerAddr, "x")
			return err
		},
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			err := check()
			require.ErrorIs(t, err, governance.ErrUnauthorized)
			var opErr *governance.OpError
			require.ErrorAs(t, err, &opErr)
		})
	}

	seqAfter, err := eng.Seq(ctx)
	require.NoError(t, err)
	assert.Equal(t, seqBefore, seqAfter)
	count, err := d.storage.BallotCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	admins, err := d.storage.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{deployerAddr}, admins)
	isVoter, err := d.storage.IsVoter(ctx, strangerAddr)
	require.NoError(t, err)
	assert.False(t, isVoter)
	proposals, err := eng.Ballot(ballotAddr).Proposals(ctx)
	require.NoError(t, err)
	assert.Empty(t, proposals)
	state, err := eng.Ballot(ballotAddr).State(ctx)
	require.NoError(t, err)
	assert.Equal(t, governance.BallotStateCreated, state)
}

func TestReinitialisationRejected(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	d := deploy(t, eng)
	otherSafeController, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	otherController, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)

	err = d.controller.InitialiseController(ctx, deployerAddr, d.storage.Address(), otherSafeController)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialised)
	err = d.safeController.InitialiseSafeController(ctx, deployerAddr, strangerAddr, otherController)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialised)
	err = d.storage.InitialiseController(ctx, deployerAddr, otherController)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialised)

	safeController, err := d.controller.GetSafeController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.safeController.Address(), safeController)
	safeManager, err := d.safeController.GetSafeManager(ctx)
	require.NoError(t, err)
	assert.Equal(t, safeManagerAddr, safeManager)
	controller, err := d.safeController.GetController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.controller.Address(), controller)
	controller, err = d.storage.GetController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.controller.Address(), controller)
}

func TestInitialisationRequiresDeployer(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	controllerAddr, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	storageAddr, err := eng.DeployStorage(ctx, deployerAddr, poolAddr, controllerAddr)
	require.NoError(t, err)

	err = eng.Controller(controllerAddr).InitialiseController(ctx, strangerAddr, storageAddr, safeControllerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	err = eng.SafeController(safeControllerAddr).InitialiseSafeController(ctx, strangerAddr, safeManagerAddr, controllerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)

	// The rejected attempts leave the components open for the deployer
	require.NoError(t, eng.Controller(controllerAddr).InitialiseController(ctx, deployerAddr, storageAddr, safeControllerAddr))
	require.NoError(t, eng.SafeController(safeControllerAddr).InitialiseSafeController(ctx, deployerAddr, safeManagerAddr, controllerAddr))
}

func TestControllerNotTrustedByStorage(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	trusted, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	untrusted, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	storageAddr, err := eng.DeployStorage(ctx, deployerAddr, poolAddr, trusted)
	require.NoError(t, err)

	err = eng.Controller(untrusted).InitialiseController(ctx, deployerAddr, storageAddr, safeControllerAddr)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	_, err = eng.Controller(untrusted).GetStorage(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
}

func TestInitialiseControllerMissingReferences(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	controllerAddr, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	storageAddr, err := eng.DeployStorage(ctx, deployerAddr, poolAddr, controllerAddr)
	require.NoError(t, err)
	controller := eng.Controller(controllerAddr)

	err = controller.InitialiseController(ctx, deployerAddr, strangerAddr, safeControllerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
	err = controller.InitialiseController(ctx, deployerAddr, storageAddr, strangerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
	// A component of the wrong kind is not a valid reference
	err = controller.InitialiseController(ctx, deployerAddr, storageAddr, controllerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
	err = eng.Controller(strangerAddr).InitialiseController(ctx, deployerAddr, storageAddr, safeControllerAddr)
	require.ErrorIs(t, err, governance.ErrNotFound)
}

func TestNotInitialised(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	controllerAddr, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	controller := eng.Controller(controllerAddr)
	safeController := eng.SafeController(safeControllerAddr)

	err = controller.AddAdmin(ctx, deployerAddr, aliceAddr)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = controller.BallotCreateBallot(ctx, deployerAddr, "early")
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	err = controller.RegisterVoter(ctx, deployerAddr, aliceAddr)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = controller.CheckIsAdmin(ctx, deployerAddr)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = controller.GetStorage(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = controller.GetSafeController(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = safeController.GetController(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	_, err = safeController.GetSafeManager(ctx)
	require.ErrorIs(t, err, governance.ErrNotInitialised)
	assert.Equal(t, governance.KindNotInitialised, governance.KindOf(err))
}
