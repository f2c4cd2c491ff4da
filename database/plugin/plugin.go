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

package plugin

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type Plugin interface {
	Start() error
	Stop() error
}

// PluginContext carries process-wide dependencies into a plugin at
// construction time. Zero values are valid.
type PluginContext struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

func (c PluginContext) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c.Logger
}

type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

func StartPlugin(
	pluginType PluginType,
	pluginName string,
	ctx PluginContext,
) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName, ctx)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	ctx.logger().Debug(
		fmt.Sprintf(
			"started %s plugin '%s'",
			PluginTypeName(pluginType),
			pluginName,
		),
		"component", "database",
	)
	return p, nil
}

// SetPluginOption performs a type-checked assignment of an option value.
// Unknown option names are ignored so callers can set options such as
// data-dir that not every implementation has.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		for _, opt := range p.Options {
			if opt.Name != optionName {
				continue
			}
			return opt.assign(value)
		}
		return nil
	}
	return fmt.Errorf(
		"plugin %s of type %s not found",
		pluginName,
		PluginTypeName(pluginType),
	)
}
