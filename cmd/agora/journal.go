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
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

type journalView struct {
	Op     string    `yaml:"op"`
	Caller string    `yaml:"caller"`
	Target string    `yaml:"target,omitempty"`
	Time   time.Time `yaml:"time"`
	Seq    uint64    `yaml:"seq"`
}

func journalCommand() *cobra.Command {
	var fromSeq uint64
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print committed operations in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				entries, err := s.Engine().Journal(cmd.Context(), fromSeq, limit)
				if err != nil {
					return err
				}
				views := make([]journalView, 0, len(entries))
				for _, entry := range entries {
					view := journalView{
						Seq:    entry.Seq,
						Op:     entry.Op,
						Caller: entry.Caller.Hex(),
						Time:   entry.Time.UTC(),
					}
					if entry.Target != (common.Address{}) {
						view.Target = entry.Target.Hex()
					}
					views = append(views, view)
				}
				return printYAML(cmd, views)
			})
		},
	}
	cmd.Flags().Uint64Var(&fromSeq, "from-seq", 1, "first sequence number to print")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0 for all)")
	return cmd
}
