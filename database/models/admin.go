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

// Admin is a member of the admin set of a Storage component
type Admin struct {
	Storage  []byte `gorm:"uniqueIndex:idx_admin_storage_identity,priority:1;size:20;not null"`
	Identity []byte `gorm:"uniqueIndex:idx_admin_storage_identity,priority:2;size:20;not null"`
	ID       uint   `gorm:"primarykey"`
	AddedSeq uint64 `gorm:"not null"`
}

func (Admin) TableName() string {
	return "admin"
}
