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
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func deployCommand() *cobra.Command {
	var safeManager, pool string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy and wire a Controller, SafeController and Storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				deployer, err := s.caller()
				if err != nil {
					return err
				}
				cfg := s.Config()
				safeManagerAddr := cfg.SafeManager()
				if safeManager != "" {
					if safeManagerAddr, err = parseAddress(safeManager); err != nil {
						return err
					}
				}
				poolAddr := cfg.Pool()
				if pool != "" {
					if poolAddr, err = parseAddress(pool); err != nil {
						return err
					}
				}
				d, err := s.Deploy(cmd.Context(), deployer, safeManagerAddr, poolAddr)
				if err != nil {
					return err
				}
				return printYAML(cmd, d)
			})
		},
	}
	cmd.Flags().StringVar(&safeManager, "safe-manager", "", "safe manager address (defaults to safeManagerAddress)")
	cmd.Flags().StringVar(&pool, "pool", "", "pool address (defaults to poolAddress)")
	return cmd
}

// addressList is the printed form of a list of identities
func addressList(addrs []common.Address) []string {
	ret := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		ret = append(ret, addr.Hex())
	}
	return ret
}
