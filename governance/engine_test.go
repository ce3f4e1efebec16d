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
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployerAddr    = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	aliceAddr       = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bobAddr         = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	strangerAddr    = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	safeManagerAddr = common.HexToAddress("0x5afe000000000000000000000000000000000001")
	poolAddr        = common.HexToAddress("0xba1a000000000000000000000000000000000001")
)

type deployment struct {
	engine         *governance.Engine
	storage        *governance.Storage
	controller     *governance.Controller
	safeController *governance.SafeController
}

func newTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func newTestEngine(t *testing.T) *governance.Engine {
	t.Helper()
	eng, err := governance.NewEngine(governance.EngineConfig{
		Database: newTestDatabase(t, ""),
	})
	require.NoError(t, err)
	return eng
}

// deploy performs the full deployment in the required order
func deploy(t *testing.T, eng *governance.Engine) deployment {
	t.Helper()
	ctx := t.Context()
	controllerAddr, err := eng.DeployController(ctx, deployerAddr)
	require.NoError(t, err)
	safeControllerAddr, err := eng.DeploySafeController(ctx, deployerAddr)
	require.NoError(t, err)
	storageAddr, err := eng.DeployStorage(ctx, deployerAddr, poolAddr, controllerAddr)
	require.NoError(t, err)
	d := deployment{
		engine:         eng,
		storage:        eng.Storage(storageAddr),
		controller:     eng.Controller(controllerAddr),
		safeController: eng.SafeController(safeControllerAddr),
	}
	require.NoError(t, d.controller.InitialiseController(ctx, deployerAddr, storageAddr, safeControllerAddr))
	require.NoError(t, d.safeController.InitialiseSafeController(ctx, deployerAddr, safeManagerAddr, controllerAddr))
	return d
}

func TestDeploymentWiring(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	d := deploy(t, eng)

	// Addresses are derived from the deployer and its nonce
	assert.Equal(t, crypto.CreateAddress(deployerAddr, 0), d.controller.Address())
	assert.Equal(t, crypto.CreateAddress(deployerAddr, 1), d.safeController.Address())
	assert.Equal(t, crypto.CreateAddress(deployerAddr, 2), d.storage.Address())

	controller, err := d.storage.GetController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.controller.Address(), controller)
	safeController, err := d.storage.GetSafeController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.safeController.Address(), safeController)
	pool, err := d.storage.Pool(ctx)
	require.NoError(t, err)
	assert.Equal(t, poolAddr, pool)

	storage, err := d.controller.GetStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.storage.Address(), storage)
	safeController, err = d.controller.GetSafeController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.safeController.Address(), safeController)

	controller, err = d.safeController.GetController(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.controller.Address(), controller)
	safeManager, err := d.safeController.GetSafeManager(ctx)
	require.NoError(t, err)
	assert.Equal(t, safeManagerAddr, safeManager)
	pool, err = d.safeController.Pool(ctx)
	require.NoError(t, err)
	assert.Equal(t, poolAddr, pool)
	counter, err := d.safeController.ProposalCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), counter)

	// The initialising caller is the first and only admin
	admins, err := d.storage.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{deployerAddr}, admins)

	components, err := eng.Components(ctx, "")
	require.NoError(t, err)
	assert.Len(t, components, 3)
	component, err := eng.Component(ctx, d.storage.Address())
	require.NoError(t, err)
	assert.Equal(t, governance.ComponentKindStorage, component.Kind)
	assert.Equal(t, deployerAddr, component.Deployer)
	assert.Equal(t, uint64(2), component.Nonce)
}

func TestCoronaInnovationScenario(t *testing.T) {
	ctx := t.Context()
	d := deploy(t, newTestEngine(t))

	assertBallotCount := func(expected uint64) {
		t.Helper()
		count, err := d.storage.BallotCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, count)
	}

	id, err := d.controller.BallotCreateBallot(ctx, deployerAddr, "Corona Innovation")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	assertBallotCount(1)

	ballotAddr, err := d.storage.GetBallotAddress(ctx, id)
	require.NoError(t, err)
	require.NoError(t, d.controller.BallotCreateProposals(
		ctx,
		deployerAddr,
		ballotAddr,
		[]string{"P1", "P2"},
		[]string{"D1", "D2"},
	))
	assertBallotCount(1)

	ballot := d.engine.Ballot(ballotAddr)
	title, err := ballot.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corona Innovation", title)

	require.NoError(t, d.controller.BallotStart(ctx, deployerAddr, id))
	state, err := ballot.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, governance.BallotStateActive, state)
	assert.Equal(t, governance.BallotState(1), state)
	assertBallotCount(1)

	require.NoError(t, d.controller.BallotEnd(ctx, deployerAddr, id))
	state, err = ballot.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, governance.BallotStateClosed, state)
	assert.Equal(t, governance.BallotState(3), state)
	assertBallotCount(1)

	proposals, err := ballot.Proposals(ctx)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, "P1", proposals[0].Name)
	assert.Equal(t, "D1", proposals[0].DocumentRef)
	assert.Equal(t, "P2", proposals[1].Name)
	assert.Equal(t, "D2", proposals[1].DocumentRef)
}

func TestJournal(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	d := deploy(t, eng)

	seq, err := eng.Seq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)

	// Rejected operations are not journaled
	_, err = d.controller.BallotCreateBallot(ctx, strangerAddr, "nope")
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	seq, err = eng.Seq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)

	_, err = d.controller.BallotCreateBallot(ctx, deployerAddr, "yes")
	require.NoError(t, err)

	entries, err := eng.Journal(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	expectedOps := []string{
		"DeployController",
		"DeploySafeController",
		"DeployStorage",
		"Controller.InitialiseController",
		"SafeController.InitialiseSafeController",
		"Controller.BallotCreateBallot",
	}
	for i, entry := range entries {
		assert.Equal(t, uint64(i+1), entry.Seq)
		assert.Equal(t, expectedOps[i], entry.Op)
		assert.Equal(t, deployerAddr, entry.Caller)
	}

	entries, err = eng.Journal(ctx, 4, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Controller.InitialiseController", entries[0].Op)
	assert.Equal(t, d.controller.Address(), entries[0].Target)

	// The creating operation's sequence number is the ballot's logical timestamp
	record, err := d.storage.GetBallot(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), record.CreatedAt)
}

func TestZeroCallerRejected(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.DeployController(t.Context(), common.Address{})
	require.ErrorIs(t, err, governance.ErrUnauthorized)
}

func TestCancelledContext(t *testing.T) {
	eng := newTestEngine(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := eng.DeployController(ctx, deployerAddr)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, governance.KindCanceled, governance.KindOf(err))
	seq, err := eng.Seq(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := t.Context()
	dataDir := t.TempDir()

	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	eng, err := governance.NewEngine(governance.EngineConfig{Database: db})
	require.NoError(t, err)
	d := deploy(t, eng)
	_, err = d.controller.BallotCreateBallot(ctx, deployerAddr, "Corona Innovation")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	eng, err = governance.NewEngine(governance.EngineConfig{
		Database: newTestDatabase(t, dataDir),
	})
	require.NoError(t, err)
	storage := eng.Storage(d.storage.Address())
	count, err := storage.BallotCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	isAdmin, err := eng.Controller(d.controller.Address()).CheckIsAdmin(ctx, deployerAddr)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// The journal and address derivation continue where they left off
	id, err := eng.Controller(d.controller.Address()).BallotCreateBallot(ctx, deployerAddr, "Second")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	seq, err := eng.Seq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seq)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	ctx := t.Context()
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	eng, err := governance.NewEngine(governance.EngineConfig{
		Database: newTestDatabase(t, ""),
		EventBus: bus,
	})
	require.NoError(t, err)
	d := deploy(t, eng)

	_, created := bus.Subscribe(event.BallotCreatedEventType)
	_, changed := bus.Subscribe(event.BallotStateChangedEventType)

	// A rejected operation publishes nothing
	_, err = d.controller.BallotCreateBallot(ctx, strangerAddr, "nope")
	require.Error(t, err)

	_, err = d.controller.BallotCreateBallot(ctx, deployerAddr, "Corona Innovation")
	require.NoError(t, err)
	require.NoError(t, d.controller.BallotStart(ctx, deployerAddr, 0))

	created0 := testutil.RequireEvent[event.BallotCreatedEvent](t, created, time.Second)
	assert.Equal(t, "Corona Innovation", created0.Title)
	assert.Equal(t, uint64(0), created0.BallotID)
	assert.Equal(t, d.storage.Address(), created0.Storage)
	testutil.RequireNoReceive(t, created, 50*time.Millisecond, "one ballot created")

	started := testutil.RequireEvent[event.BallotStateChangedEvent](t, changed, time.Second)
	assert.Equal(t, uint8(governance.BallotStateCreated), started.From)
	assert.Equal(t, uint8(governance.BallotStateActive), started.To)
}

func TestMetrics(t *testing.T) {
	ctx := t.Context()
	reg := prometheus.NewRegistry()
	eng, err := governance.NewEngine(governance.EngineConfig{
		Database:     newTestDatabase(t, ""),
		PromRegistry: reg,
	})
	require.NoError(t, err)
	d := deploy(t, eng)
	_, err = d.controller.BallotCreateBallot(ctx, deployerAddr, "b")
	require.NoError(t, err)
	require.ErrorIs(t, d.controller.ResignAsAdmin(ctx, deployerAddr), governance.ErrLastAdminProtected)

	expected := fmt.Sprintf(`
# HELP agora_journal_seq sequence number of the last committed operation
# TYPE agora_journal_seq gauge
agora_journal_seq 6
# HELP agora_storage_admins size of the admin set
# TYPE agora_storage_admins gauge
agora_storage_admins{storage="%[1]s"} 1
# HELP agora_storage_ballots number of registered ballots
# TYPE agora_storage_ballots gauge
agora_storage_ballots{storage="%[1]s"} 1
`, d.storage.Address().Hex())
	require.NoError(t, promtestutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"agora_journal_seq",
		"agora_storage_admins",
		"agora_storage_ballots",
	))
	assert.InDelta(
		t,
		1,
		counterValue(t, reg, "agora_governance_calls_total", map[string]string{
			"op":   "Controller.ResignAsAdmin",
			"kind": governance.KindLastAdminProtected,
		}),
		0,
	)
	assert.InDelta(
		t,
		1,
		counterValue(t, reg, "agora_governance_calls_total", map[string]string{
			"op":   "Controller.BallotCreateBallot",
			"kind": governance.KindOK,
		}),
		0,
	)
}

func counterValue(
	t *testing.T,
	reg *prometheus.Registry,
	name string,
	labels map[string]string,
) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if labels[label.GetName()] != label.GetValue() {
					continue metricLoop
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestConcurrentBallotCreation(t *testing.T) {
	ctx := t.Context()
	d := deploy(t, newTestEngine(t))

	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	ids := make(chan uint64, workers*perWorker)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := d.controller.BallotCreateBallot(ctx, deployerAddr, "concurrent")
				if err != nil {
					errs <- err
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(errs)
	close(ids)
	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate ballot id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	count, err := d.storage.BallotCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker), count)
	for id := range uint64(workers * perWorker) {
		_, err := d.storage.GetBallot(ctx, id)
		require.NoError(t, err)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, governance.KindOK, governance.KindOf(nil))
	assert.Equal(t, governance.KindInternal, governance.KindOf(errors.New("disk on fire")))
	err := &governance.OpError{
		Op:     "Controller.AddAdmin",
		Caller: strangerAddr,
		Err:    fmt.Errorf("wrapped: %w", governance.ErrUnauthorized),
	}
	assert.Equal(t, governance.KindUnauthorized, governance.KindOf(err))
	assert.ErrorIs(t, err, governance.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Controller.AddAdmin")
	assert.Contains(t, err.Error(), strangerAddr.Hex())
}
