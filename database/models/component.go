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

import (
	"errors"
	"time"
)

var ErrComponentNotFound = errors.New("component not found")

// Component kinds
const (
	ComponentKindStorage        = "storage"
	ComponentKindController     = "controller"
	ComponentKindSafeController = "safe_controller"
	ComponentKindBallot         = "ballot"
)

// Component is an independently addressable entity. Its address is derived
// from the deployer address and the deployer's nonce.
type Component struct {
	CreatedTime time.Time
	Kind        string `gorm:"index;size:32;not null"`
	Address     []byte `gorm:"uniqueIndex;size:20;not null"`
	Deployer    []byte `gorm:"uniqueIndex:idx_component_deployer_nonce,priority:1;size:20;not null"`
	ID          uint   `gorm:"primarykey"`
	Nonce       uint64 `gorm:"uniqueIndex:idx_component_deployer_nonce,priority:2;not null"`
	CreatedSeq  uint64 `gorm:"not null"`
}

func (Component) TableName() string {
	return "component"
}
