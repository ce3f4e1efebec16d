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

func adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin set",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <identity>",
			Short: "Add an admin",
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
					return s.Engine().Controller(s.deployment.Controller).AddAdmin(cmd.Context(), caller, identity)
				})
			},
		},
		&cobra.Command{
			Use:   "resign",
			Short: "Remove the caller from the admin set",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, true, func(s *session) error {
					caller, err := s.caller()
					if err != nil {
						return err
					}
					return s.Engine().Controller(s.deployment.Controller).ResignAsAdmin(cmd.Context(), caller)
				})
			},
		},
		&cobra.Command{
			Use:   "check <identity>",
			Short: "Report whether an identity is an admin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				identity, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				return withSession(cmd, true, func(s *session) error {
					isAdmin, err := s.Engine().Controller(s.deployment.Controller).CheckIsAdmin(cmd.Context(), identity)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), isAdmin)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List admins",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, true, func(s *session) error {
					admins, err := s.Engine().Storage(s.deployment.Storage).Admins(cmd.Context())
					if err != nil {
						return err
					}
					return printYAML(cmd, addressList(admins))
				})
			},
		},
	)
	return cmd
}
