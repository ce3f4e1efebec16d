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

package app_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/internal/app"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer    = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	safeManager = common.HexToAddress("0x5afe000000000000000000000000000000000001")
	pool        = common.HexToAddress("0xba1a000000000000000000000000000000000001")
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:    t.TempDir(),
		BindAddr:        "127.0.0.1",
		ShutdownTimeout: "5s",
	}
}

func TestDeploy(t *testing.T) {
	ctx := t.Context()
	cfg := testConfig(t)

	a, err := app.Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	_, err = a.Deployment()
	require.ErrorIs(t, err, config.ErrNoDeployment)
	d, err := a.Deploy(ctx, deployer, safeManager, pool)
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(deployer, 0), d.Controller)
	assert.Equal(t, crypto.CreateAddress(deployer, 1), d.SafeController)
	assert.Equal(t, crypto.CreateAddress(deployer, 2), d.Storage)
	_, err = a.Deploy(ctx, deployer, safeManager, pool)
	require.ErrorIs(t, err, app.ErrAlreadyDeployed)
	require.NoError(t, a.Close())

	// The deployment survives a restart
	a, err = app.Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Close() //nolint:errcheck
	})
	loaded, err := a.Deployment()
	require.NoError(t, err)
	assert.Equal(t, d, loaded)
	storage, err := a.Engine().Controller(loaded.Controller).GetStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, loaded.Storage, storage)
	gotPool, err := a.Engine().Storage(loaded.Storage).Pool(ctx)
	require.NoError(t, err)
	assert.Equal(t, pool, gotPool)
}

func TestServeMetrics(t *testing.T) {
	cfg := testConfig(t)
	a, err := app.Open(t.Context(), cfg, nil, nil)
	require.NoError(t, err)
	d, err := a.Deploy(t.Context(), deployer, safeManager, pool)
	require.NoError(t, err)
	_, err = a.Engine().Controller(d.Controller).BallotCreateBallot(t.Context(), deployer, "served")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- app.Serve(ctx, cfg, nil, listener)
	}()

	url := "http://" + listener.Addr().String() + "/metrics"
	var body string
	testutil.WaitForCondition(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(buf)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, "metrics endpoint")
	assert.Contains(t, body, `agora_storage_ballots{storage="`+d.Storage.Hex()+`"} 1`)
	assert.Contains(t, body, `agora_storage_admins{storage="`+d.Storage.Hex()+`"} 1`)
	assert.Contains(t, body, "agora_journal_seq 6")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for shutdown")
	}
}
