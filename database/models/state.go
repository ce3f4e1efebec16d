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

// StorageState holds the wiring and counters of a Storage component
type StorageState struct {
	Address        []byte `gorm:"uniqueIndex;size:20;not null"`
	Controller     []byte `gorm:"size:20"`
	SafeController []byte `gorm:"size:20"`
	Pool           []byte `gorm:"size:20"`
	ID             uint   `gorm:"primarykey"`
	BallotCount    uint64 `gorm:"not null"`
	VoterCount     uint64 `gorm:"not null"`
}

func (StorageState) TableName() string {
	return "storage_state"
}

// ControllerState holds the wiring of a Controller component. Both references
// are empty until the controller is initialised.
type ControllerState struct {
	Address        []byte `gorm:"uniqueIndex;size:20;not null"`
	Storage        []byte `gorm:"size:20"`
	SafeController []byte `gorm:"size:20"`
	ID             uint   `gorm:"primarykey"`
	InitialisedSeq uint64
}

func (ControllerState) TableName() string {
	return "controller_state"
}

// SafeControllerState holds the wiring and proposal counter of a
// SafeController component
type SafeControllerState struct {
	Address         []byte `gorm:"uniqueIndex;size:20;not null"`
	Controller      []byte `gorm:"size:20"`
	SafeManager     []byte `gorm:"size:20"`
	ID              uint   `gorm:"primarykey"`
	ProposalCounter uint64 `gorm:"not null"`
	InitialisedSeq  uint64
}

func (SafeControllerState) TableName() string {
	return "safe_controller_state"
}
