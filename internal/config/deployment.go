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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const DeploymentFileName = "deployment.yaml"

// ErrNoDeployment is returned when the data directory holds no deployment record
var ErrNoDeployment = errors.New("no deployment found, run 'agora deploy' first")

// Deployment records the component addresses created by 'agora deploy'
type Deployment struct {
	Deployer       common.Address `yaml:"deployer"`
	Controller     common.Address `yaml:"controller"`
	SafeController common.Address `yaml:"safeController"`
	Storage        common.Address `yaml:"storage"`
	SafeManager    common.Address `yaml:"safeManager"`
	Pool           common.Address `yaml:"pool"`
}

func SaveDeployment(dataDir string, d *Deployment) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	buf, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode deployment: %w", err)
	}
	path := filepath.Join(dataDir, DeploymentFileName)
	// #nosec G306
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write deployment: %w", err)
	}
	return nil
}

func LoadDeployment(dataDir string) (*Deployment, error) {
	buf, err := os.ReadFile(filepath.Join(dataDir, DeploymentFileName)) // #nosec G304
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDeployment
		}
		return nil, fmt.Errorf("read deployment: %w", err)
	}
	var d Deployment
	if err := yaml.Unmarshal(buf, &d); err != nil {
		return nil, fmt.Errorf("parse deployment: %w", err)
	}
	return &d, nil
}
