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
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/agora/governance"
	"github.com/spf13/cobra"
)

type safeActionView struct {
	ProposalName  string `yaml:"proposalName"`
	DocumentRef   string `yaml:"documentRef"`
	SafeManager   string `yaml:"safeManager"`
	Pool          string `yaml:"pool"`
	Ballot        string `yaml:"ballot"`
	ActionHash    string `yaml:"actionHash"`
	Payload       string `yaml:"payload,omitempty"`
	Nonce         uint64 `yaml:"nonce"`
	BallotID      uint64 `yaml:"ballotId"`
	CreatedAt     uint64 `yaml:"createdAt"`
	ProposalIndex uint32 `yaml:"proposalIndex"`
}

func newSafeActionView(action governance.SafeAction) safeActionView {
	view := safeActionView{
		Nonce:         action.Nonce,
		SafeManager:   action.SafeManager.Hex(),
		Pool:          action.Pool.Hex(),
		Ballot:        action.Ballot.Hex(),
		BallotID:      action.BallotID,
		ProposalIndex: action.ProposalIndex,
		ProposalName:  action.ProposalName,
		DocumentRef:   action.DocumentRef,
		ActionHash:    action.ActionHash.Hex(),
		CreatedAt:     action.CreatedAt,
	}
	if len(action.Payload) > 0 {
		view.Payload = hex.EncodeToString(action.Payload)
	}
	return view
}

func safeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safe",
		Short: "Forward ballot outcomes to the safe manager",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "forward <ballot-id> <proposal-index>",
			Short: "Forward the chosen proposal of a closed ballot and print the action nonce",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseBallotID(args[0])
				if err != nil {
					return err
				}
				index, err := parseProposalIndex(args[1])
				if err != nil {
					return err
				}
				return withSession(cmd, true, func(s *session) error {
					caller, err := s.caller()
					if err != nil {
						return err
					}
					nonce, err := s.Engine().Controller(s.deployment.Controller).ForwardOutcome(cmd.Context(), caller, id, index)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), nonce)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "show [nonce]",
			Short: "Show one forwarded action, or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, true, func(s *session) error {
					safeController := s.Engine().SafeController(s.deployment.SafeController)
					if len(args) == 0 {
						actions, err := safeController.Actions(cmd.Context())
						if err != nil {
							return err
						}
						views := make([]safeActionView, 0, len(actions))
						for _, action := range actions {
							views = append(views, newSafeActionView(action))
						}
						return printYAML(cmd, views)
					}
					nonce, err := strconv.ParseUint(args[0], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid nonce: %q", args[0])
					}
					action, err := safeController.GetAction(cmd.Context(), nonce)
					if err != nil {
						return err
					}
					return printYAML(cmd, newSafeActionView(action))
				})
			},
		},
	)
	return cmd
}
