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
	"io"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/ayllu/database/plugin"
	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "ayllu.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultGenesisTime     = "2025-01-01T00:00:00Z"
	// One block per minute makes the default voting window one day
	DefaultBlockInterval = "1m"
)

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

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin    string `yaml:"metadataPlugin"    envconfig:"DATABASE_METADATA_PLUGIN"`
	BlobPlugin        string `yaml:"blobPlugin"        envconfig:"DATABASE_BLOB_PLUGIN"`
	DatabasePath      string `yaml:"databasePath"                                         split_words:"true"`
	BindAddr          string `yaml:"bindAddr"                                             split_words:"true"`
	ShutdownTimeout   string `yaml:"shutdownTimeout"                                      split_words:"true"`
	ApiJwtSecret      string `yaml:"apiJwtSecret"      envconfig:"API_JWT_SECRET"`
	GenesisTime       string `yaml:"genesisTime"                                          split_words:"true"`
	BlockInterval     string `yaml:"blockInterval"                                        split_words:"true"`
	VotingWeight      string `yaml:"votingWeight"                                         split_words:"true"`
	VotingWindow      uint64 `yaml:"votingWindow"                                         split_words:"true"`
	QuorumBasisPoints uint64 `yaml:"quorumBasisPoints"                                    split_words:"true"`
	MetricsPort       uint   `yaml:"metricsPort"                                          split_words:"true"`
	ApiPort           uint   `yaml:"apiPort"                                              split_words:"true"`
	Tracing           bool   `yaml:"tracing"`
	TracingStdout     bool   `yaml:"tracingStdout"                                        split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		BindAddr:          "0.0.0.0",
		DatabasePath:      ".ayllu",
		MetricsPort:       12799,
		ApiPort:           8080,
		BlobPlugin:        DefaultBlobPlugin,
		MetadataPlugin:    DefaultMetadataPlugin,
		ShutdownTimeout:   DefaultShutdownTimeout,
		GenesisTime:       DefaultGenesisTime,
		BlockInterval:     DefaultBlockInterval,
		VotingWindow:      ledger.DefaultVotingWindow,
		QuorumBasisPoints: ledger.DefaultQuorumBasisPoints,
		VotingWeight:      string(ledger.VotingWeightContribution),
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.ayllu/ayllu.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".ayllu", "ayllu.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/ayllu/ayllu.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/ayllu/ayllu.yaml"
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

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			err = yaml.Unmarshal(configBytes, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				if name, ok := pluginName(tempCfg.Database.Blob); ok {
					globalConfig.BlobPlugin = name
				}
				mergePluginSection(
					pluginConfig,
					"blob",
					pluginSections("blob", tempCfg.Database.Blob),
				)
			}
			if tempCfg.Database.Metadata != nil {
				if name, ok := pluginName(tempCfg.Database.Metadata); ok {
					globalConfig.MetadataPlugin = name
				}
				mergePluginSection(
					pluginConfig,
					"metadata",
					pluginSections("metadata", tempCfg.Database.Metadata),
				)
			}
		}
		if len(pluginConfig) > 0 {
			err = plugin.ProcessConfig(pluginConfig)
			if err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process("ayllu", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// pluginName pulls the "plugin" key out of a database section
func pluginName(section map[string]any) (string, bool) {
	val, exists := section["plugin"]
	if !exists {
		return "", false
	}
	name, ok := val.(string)
	if !ok {
		return "", false
	}
	delete(section, "plugin")
	return name, true
}

// pluginSections converts a database section into per-plugin option maps
func pluginSections(
	sectionName string,
	section map[string]any,
) map[string]map[string]any {
	ret := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				sectionName,
				k,
				v,
			)
		}
	}
	return ret
}

// mergePluginSection merges with existing plugin config instead of
// overwriting it
func mergePluginSection(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	section map[string]map[string]any,
) {
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = section
		return
	}
	maps.Copy(pluginConfig[pluginType], section)
}

// Validate checks the settings that are parsed lazily by the node
func (c *Config) Validate() error {
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.BlockClock(); err != nil {
		return err
	}
	if c.QuorumBasisPoints > 10000 {
		return fmt.Errorf(
			"invalid quorumBasisPoints: %d (must be at most 10000)",
			c.QuorumBasisPoints,
		)
	}
	switch ledger.VotingWeight(c.VotingWeight) {
	case ledger.VotingWeightContribution, ledger.VotingWeightMember:
	default:
		return fmt.Errorf(
			"invalid votingWeight: %q (must be 'contribution' or 'member')",
			c.VotingWeight,
		)
	}
	return nil
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid shutdownTimeout %q: %w",
			c.ShutdownTimeout,
			err,
		)
	}
	return ret, nil
}

// BlockClock builds the clock that maps wall time onto block heights
func (c *Config) BlockClock() (*ledger.BlockClock, error) {
	genesis, err := time.Parse(time.RFC3339, c.GenesisTime)
	if err != nil {
		return nil, fmt.Errorf("invalid genesisTime %q: %w", c.GenesisTime, err)
	}
	interval, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid blockInterval %q: %w",
			c.BlockInterval,
			err,
		)
	}
	return ledger.NewBlockClock(genesis, interval)
}

func (c *Config) GovernancePolicy() ledger.GovernancePolicy {
	return ledger.GovernancePolicy{
		VotingWindow:      c.VotingWindow,
		QuorumBasisPoints: c.QuorumBasisPoints,
		VotingWeight:      ledger.VotingWeight(c.VotingWeight),
	}
}

// ApiListenAddress joins the bind address and API port
func (c *Config) ApiListenAddress() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.ApiPort)
}

// MetricsListenAddress joins the bind address and metrics port
func (c *Config) MetricsListenAddress() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.MetricsPort)
}

// ListPlugins writes the registered plugins of pluginType to w
func ListPlugins(w io.Writer, pluginType plugin.PluginType) {
	fmt.Fprintf(
		w,
		"Available %s plugins:\n",
		plugin.PluginTypeName(pluginType),
	)
	for _, p := range plugin.GetPlugins(pluginType) {
		fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Description)
	}
}
