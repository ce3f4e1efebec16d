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

package models

import "errors"

var ErrSafeActionNotFound = errors.New("safe action not found")

// SafeAction is an outbound governance action forwarded to the safe manager.
// The encoded payload lives in the blob store, ActionHash is its keccak256.
type SafeAction struct {
	ProposalName   string `gorm:"not null"`
	DocumentRef    string `gorm:"not null"`
	SafeController []byte `gorm:"uniqueIndex:idx_safe_action_nonce,priority:1;size:20;not null"`
	SafeManager    []byte `gorm:"size:20;not null"`
	Pool           []byte `gorm:"size:20"`
	Ballot         []byte `gorm:"index;size:20;not null"`
	ActionHash     []byte `gorm:"size:32;not null"`
	ID             uint   `gorm:"primarykey"`
	Nonce          uint64 `gorm:"uniqueIndex:idx_safe_action_nonce,priority:2;not null"`
	BallotID       uint64 `gorm:"not null"`
	CreatedSeq     uint64 `gorm:"not null"`
	ProposalIndex  uint32 `gorm:"not null"`
}

func (SafeAction) TableName() string {
	return "safe_action"
}
