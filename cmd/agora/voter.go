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
	"fmt"

	"github.com/spf13/cobra"
)

func voterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voter",
		Short: "Manage the voter registry",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "register <identity>",
			Short: "Register a voter",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				identity, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				return withSession(cmd, true, func(s *session) error {
					caller, err := s.caller()
					if err != nil {
						return err
					}
					return s.Engine().Controller(s.deployment.Controller).RegisterVoter(cmd.Context(), caller, identity)
				})
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of registered voters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, true, func(s *session) error {
					count, err := s.Engine().Storage(s.deployment.Storage).VoterCount(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), count)
					return nil
				})
			},
		},
	)
	return cmd
}
