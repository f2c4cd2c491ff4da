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
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/ayllu/database/plugin"
	"github.com/blinklabs-io/ayllu/internal/config"
	"github.com/blinklabs-io/ayllu/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "ayllu"

const rootLongHelp = `ayllu keeps the books of member-run communities: who belongs, what they
pooled, which shared resources exist and who holds them. Allocations are
sized by each member's share of the pool, disputes and capacity
expansions go to a contribution-weighted vote, and every committed call
is appended to a height-ordered journal.

Run without a subcommand to serve the ledger and its HTTP API.`

var rootFlags struct {
	debug       bool
	configFile  string
	blob        string
	metadata    string
	dataDir     string
	apiPort     uint
	metricsPort uint
}

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", programName)
}

// commonRun installs the process logger and GOMAXPROCS. It runs only for
// commands that start the ledger.
func commonRun() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if rootFlags.debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"starting ledger",
		"component", programName,
		"version", version.GetVersionString(),
	)
	return logger
}

// listPlugins renders the plugin listing requested by passing "list" as a
// store plugin name
func listPlugins(
	blobPlugin, metadataPlugin string,
) (shouldExit bool, output string) {
	var buf strings.Builder
	if blobPlugin == "list" {
		config.ListPlugins(&buf, plugin.PluginTypeBlob)
	}
	if metadataPlugin == "list" {
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		config.ListPlugins(&buf, plugin.PluginTypeMetadata)
	}
	return buf.Len() > 0, buf.String()
}

// applyFlags overrides loaded settings with the flags set on the command
// line. Unset flags leave the file and environment values alone.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("blob") {
		cfg.BlobPlugin = rootFlags.blob
	}
	if flags.Changed("metadata") {
		cfg.MetadataPlugin = rootFlags.metadata
	}
	if flags.Changed("data-dir") {
		cfg.DatabasePath = rootFlags.dataDir
	}
	if flags.Changed("api-port") {
		cfg.ApiPort = rootFlags.apiPort
	}
	if flags.Changed("metrics-port") {
		cfg.MetricsPort = rootFlags.metricsPort
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the blob and metadata store plugins and their options",
		Run: func(cmd *cobra.Command, args []string) {
			_, output := listPlugins("list", "list")
			fmt.Print(output)
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ledger version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", programName, version.GetVersionString())
		},
	}
}

func newRootCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Community governance and resource allocation ledger",
		Long:         rootLongHelp,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			serveCommand().Run(cmd, args)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&rootFlags.debug, "debug", "D", false, "log at debug level with source locations")
	flags.StringVar(&rootFlags.configFile, "config", "", "ledger config file (default ~/.ayllu/ayllu.yaml, then /etc/ayllu/ayllu.yaml)")
	flags.StringVarP(&rootFlags.blob, "blob", "b", config.DefaultBlobPlugin, "store for counters, tip and journal, 'list' to show available")
	flags.StringVarP(&rootFlags.metadata, "metadata", "m", config.DefaultMetadataPlugin, "store for entity tables, 'list' to show available")
	flags.StringVarP(&rootFlags.dataDir, "data-dir", "d", "", "directory holding both stores, empty in config keeps them in memory")
	flags.UintVar(&rootFlags.apiPort, "api-port", 0, "HTTP API port, 0 disables the API")
	flags.UintVar(&rootFlags.metricsPort, "metrics-port", 0, "prometheus and pprof port")
	if err := plugin.PopulateCmdlineOptions(flags); err != nil {
		return nil, fmt.Errorf("add plugin flags: %w", err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Plugin listing needs no config
		if shouldExit, output := listPlugins(rootFlags.blob, rootFlags.metadata); shouldExit {
			fmt.Print(output)
			os.Exit(0)
		}
		cfg, err := config.LoadConfig(rootFlags.configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(
		serveCommand(),
		listCommand(),
		versionCommand(),
		tokenCommand(),
	)
	return rootCmd, nil
}

func main() {
	rootCmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// cobra already printed the error
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
