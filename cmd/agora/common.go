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

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/agora/internal/app"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// session is an opened app plus the deployment it operates on
type session struct {
	*app.App
	deployment *config.Deployment
}

// openApp opens the engine for a command. The deployment is required unless
// needDeployment is false.
func openApp(cmd *cobra.Command, needDeployment bool) (*session, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	logger := commonRun()
	a, err := app.Open(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	s := &session{App: a}
	if needDeployment {
		s.deployment, err = a.Deployment()
		if err != nil {
			a.Close() //nolint:errcheck
			return nil, err
		}
	}
	return s, nil
}

// caller returns the --from address, or the deployer when unset
func (s *session) caller() (common.Address, error) {
	if globalFlags.from != "" {
		return parseAddress(globalFlags.from)
	}
	if s.deployment == nil {
		return common.Address{}, errors.New("--from is required")
	}
	return s.deployment.Deployer, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseBallotID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ballot id: %q", s)
	}
	return id, nil
}

func parseProposalIndex(s string) (uint32, error) {
	idx, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal index: %q", s)
	}
	return uint32(idx), nil
}

func printYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// withSession opens a session for the duration of fn
func withSession(
	cmd *cobra.Command,
	needDeployment bool,
	fn func(*session) error,
) error {
	s, err := openApp(cmd, needDeployment)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck
	return fn(s)
}
