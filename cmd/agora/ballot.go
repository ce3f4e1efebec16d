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
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/spf13/cobra"
)

type ballotView struct {
	Title     string         `yaml:"title"`
	State     string         `yaml:"state"`
	Address   string         `yaml:"address"`
	Created   time.Time      `yaml:"created"`
	Proposals []proposalView `yaml:"proposals,omitempty"`
	ID        uint64         `yaml:"id"`
	CreatedAt uint64         `yaml:"createdAt"`
}

type proposalView struct {
	Name        string `yaml:"name"`
	DocumentRef string `yaml:"documentRef"`
	Index       uint32 `yaml:"index"`
	Votes       uint64 `yaml:"votes"`
}

func ballotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ballot",
		Short: "Create and run ballots",
	}
	cmd.AddCommand(
		ballotCreateCommand(),
		ballotProposalsCommand(),
		ballotTransitionCommand("start", "Open a ballot for voting"),
		ballotTransitionCommand("end", "Close a ballot"),
		ballotShowCommand(),
		ballotListCommand(),
		ballotVoteCommand(),
	)
	return cmd
}

func ballotCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a ballot and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				caller, err := s.caller()
				if err != nil {
					return err
				}
				id, err := s.Engine().Controller(s.deployment.Controller).BallotCreateBallot(cmd.Context(), caller, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func ballotProposalsCommand() *cobra.Command {
	var names, documentRefs []string
	cmd := &cobra.Command{
		Use:   "proposals <ballot-id>",
		Short: "Add proposals to a ballot that has not started",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBallotID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, true, func(s *session) error {
				caller, err := s.caller()
				if err != nil {
					return err
				}
				ballotAddr, err := s.Engine().Storage(s.deployment.Storage).GetBallotAddress(cmd.Context(), id)
				if err != nil {
					return err
				}
				return s.Engine().Controller(s.deployment.Controller).BallotCreateProposals(
					cmd.Context(),
					caller,
					ballotAddr,
					names,
					documentRefs,
				)
			})
		},
	}
	cmd.Flags().StringArrayVar(&names, "name", nil, "proposal name (repeatable)")
	cmd.Flags().StringArrayVar(&documentRefs, "doc", nil, "proposal document reference (repeatable, one per --name)")
	return cmd
}

func ballotTransitionCommand(use string, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ballot-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBallotID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, true, func(s *session) error {
				caller, err := s.caller()
				if err != nil {
					return err
				}
				controller := s.Engine().Controller(s.deployment.Controller)
				if use == "start" {
					return controller.BallotStart(cmd.Context(), caller, id)
				}
				return controller.BallotEnd(cmd.Context(), caller, id)
			})
		},
	}
}

func ballotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ballot-id>",
		Short: "Show a ballot and its proposals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBallotID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, true, func(s *session) error {
				record, err := s.Engine().Storage(s.deployment.Storage).GetBallot(cmd.Context(), id)
				if err != nil {
					return err
				}
				view, err := newBallotView(cmd, s.Engine(), record, true)
				if err != nil {
					return err
				}
				return printYAML(cmd, view)
			})
		},
	}
}

func ballotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ballots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				records, err := s.Engine().Storage(s.deployment.Storage).Ballots(cmd.Context())
				if err != nil {
					return err
				}
				views := make([]ballotView, 0, len(records))
				for _, record := range records {
					view, err := newBallotView(cmd, s.Engine(), record, false)
					if err != nil {
						return err
					}
					views = append(views, view)
				}
				return printYAML(cmd, views)
			})
		},
	}
}

func ballotVoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <ballot-id> <proposal-index>",
		Short: "Vote for a proposal of an active ballot",
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
				ballotAddr, err := s.Engine().Storage(s.deployment.Storage).GetBallotAddress(cmd.Context(), id)
				if err != nil {
					return err
				}
				return s.Engine().Ballot(ballotAddr).Vote(cmd.Context(), caller, index)
			})
		},
	}
}

func newBallotView(
	cmd *cobra.Command,
	eng *governance.Engine,
	record governance.BallotRecord,
	withProposals bool,
) (ballotView, error) {
	ballot := eng.Ballot(record.Reference)
	state, err := ballot.State(cmd.Context())
	if err != nil {
		return ballotView{}, err
	}
	view := ballotView{
		ID:        record.ID,
		Title:     record.Title,
		State:     state.String(),
		Address:   record.Reference.Hex(),
		Created:   record.CreatedTime,
		CreatedAt: record.CreatedAt,
	}
	if !withProposals {
		return view, nil
	}
	proposals, err := ballot.Proposals(cmd.Context())
	if err != nil {
		return ballotView{}, err
	}
	for _, p := range proposals {
		view.Proposals = append(view.Proposals, proposalView{
			Index:       p.Index,
			Name:        p.Name,
			DocumentRef: p.DocumentRef,
			Votes:       p.VoteCount,
		})
	}
	return view, nil
}
