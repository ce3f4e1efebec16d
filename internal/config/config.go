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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "agora.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath    string `yaml:"databasePath"       split_words:"true"`
	BindAddr        string `yaml:"bindAddr"           split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout"    split_words:"true"`
	// Addresses of the external safe manager and of the governed pool. The
	// unprefixed variable names are accepted as well.
	SafeManagerAddress string `yaml:"safeManagerAddress" envconfig:"SAFE_MANAGER_ADDRESS"`
	PoolAddress        string `yaml:"poolAddress"        envconfig:"BALANCER_POOL_ADDRESS"`
	BadgerCacheSize    uint64 `yaml:"badgerCacheSize"    split_words:"true"`
	MetricsPort        uint   `yaml:"metricsPort"        split_words:"true"`
	Tracing            bool   `yaml:"tracing"`
	TracingStdout      bool   `yaml:"tracingStdout"      split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".agora",
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		BadgerCacheSize: 268435456,
		MetricsPort:     12799,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.agora/agora.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".agora", "agora.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/agora/agora.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/agora/agora.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("agora", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// Validate checks that configured values can be parsed
func (c *Config) Validate() error {
	var errs []error
	if c.SafeManagerAddress != "" && !common.IsHexAddress(c.SafeManagerAddress) {
		errs = append(errs, fmt.Errorf("invalid safeManagerAddress: %q", c.SafeManagerAddress))
	}
	if c.PoolAddress != "" && !common.IsHexAddress(c.PoolAddress) {
		errs = append(errs, fmt.Errorf("invalid poolAddress: %q", c.PoolAddress))
	}
	if c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("invalid shutdownTimeout: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SafeManager returns the configured safe manager address, or the zero
// address when unset
func (c *Config) SafeManager() common.Address {
	if c.SafeManagerAddress == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.SafeManagerAddress)
}

// Pool returns the configured pool address, or the zero address when unset
func (c *Config) Pool() common.Address {
	if c.PoolAddress == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.PoolAddress)
}

func (c *Config) ShutdownDuration() time.Duration {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
