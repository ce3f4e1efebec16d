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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/blinklabs-io/agora/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "agora"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug   bool
		dataDir string
		from    string
	}{}
	configFile string
)

func commonRun() *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	// Command output goes to stdout, so logs go to stderr
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Permissioned ballot governance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.dataDir, "data-dir", "", "data directory (overrides databasePath)")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.from, "from", "", "caller address (defaults to the deployer)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Override config with command line flags
		if globalFlags.dataDir != "" {
			cfg.DatabasePath = globalFlags.dataDir
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(deployCommand())
	rootCmd.AddCommand(adminCommand())
	rootCmd.AddCommand(ballotCommand())
	rootCmd.AddCommand(voterCommand())
	rootCmd.AddCommand(safeCommand())
	rootCmd.AddCommand(journalCommand())
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

// exitCode distinguishes rejected operations from failures
func exitCode(err error) int {
	var opErr *governance.OpError
	if errors.As(err, &opErr) && governance.KindOf(err) != governance.KindInternal {
		return 2
	}
	return 1
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		var opErr *governance.OpError
		if errors.As(err, &opErr) {
			fmt.Fprintf(os.Stderr, "kind: %s\n", governance.KindOf(err))
		}
		os.Exit(exitCode(err))
	}
}
