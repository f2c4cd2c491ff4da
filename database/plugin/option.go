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
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const envVarPrefix = "AYLLU_DATABASE_"

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

// assign stores value into Dest after checking both against the option type
func (p *PluginOption) assign(value any) error {
	if p.Dest == nil {
		return fmt.Errorf("nil destination for option %s", p.Name)
	}
	switch p.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected string",
				p.Name,
			)
		}
		dest, ok := p.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *string",
				p.Name,
			)
		}
		*dest = v
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected bool",
				p.Name,
			)
		}
		dest, ok := p.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *bool",
				p.Name,
			)
		}
		*dest = v
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected int",
				p.Name,
			)
		}
		dest, ok := p.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *int",
				p.Name,
			)
		}
		*dest = v
	case PluginOptionTypeUint:
		var v uint64
		switch tv := value.(type) {
		case uint64:
			v = tv
		case int:
			if tv < 0 {
				return fmt.Errorf(
					"invalid value for option %s: negative int",
					p.Name,
				)
			}
			v = uint64(tv)
		default:
			return fmt.Errorf(
				"invalid type for option %s: expected uint64 or int",
				p.Name,
			)
		}
		dest, ok := p.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *uint64",
				p.Name,
			)
		}
		*dest = v
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			p.Type,
			p.Name,
		)
	}
	return nil
}

// assignString parses a string from the environment or the command line
// into the option's type
func (p *PluginOption) assignString(value string) error {
	switch p.Type {
	case PluginOptionTypeString:
		return p.assign(value)
	case PluginOptionTypeBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.assign(v)
	case PluginOptionTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.assign(v)
	case PluginOptionTypeUint:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.assign(v)
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			p.Type,
			p.Name,
		)
	}
}

// assignAny accepts the loosely typed values produced by YAML decoding
func (p *PluginOption) assignAny(value any) error {
	switch tv := value.(type) {
	case string:
		return p.assignString(tv)
	case int:
		if p.Type == PluginOptionTypeString {
			return p.assign(strconv.Itoa(tv))
		}
		if p.Type == PluginOptionTypeUint {
			return p.assign(tv)
		}
	case uint64:
		if p.Type == PluginOptionTypeInt {
			return p.assignString(strconv.FormatUint(tv, 10))
		}
	}
	return p.assign(value)
}

func (p *PluginOption) flagName(pluginType PluginType, pluginName string) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginType),
		pluginName,
		p.Name,
	)
}

func (p *PluginOption) envVarName(pluginType PluginType, pluginName string) string {
	name := fmt.Sprintf(
		"%s%s_%s_%s",
		envVarPrefix,
		PluginTypeName(pluginType),
		pluginName,
		p.Name,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *PluginOption) addToFlagSet(
	fs *pflag.FlagSet,
	pluginType PluginType,
	pluginName string,
) error {
	name := p.flagName(pluginType, pluginName)
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		if !ok {
			return fmt.Errorf("invalid destination for option %s", name)
		}
		def, _ := p.DefaultValue.(string)
		fs.StringVar(dest, name, def, p.Description)
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		if !ok {
			return fmt.Errorf("invalid destination for option %s", name)
		}
		def, _ := p.DefaultValue.(bool)
		fs.BoolVar(dest, name, def, p.Description)
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		if !ok {
			return fmt.Errorf("invalid destination for option %s", name)
		}
		def, _ := p.DefaultValue.(int)
		fs.IntVar(dest, name, def, p.Description)
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("invalid destination for option %s", name)
		}
		def, _ := p.DefaultValue.(uint64)
		fs.Uint64Var(dest, name, def, p.Description)
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, name)
	}
	return nil
}

// PopulateCmdlineOptions adds a flag for every option of every registered plugin
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for i := range entry.Options {
			if err := entry.Options[i].addToFlagSet(fs, entry.Type, entry.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessEnvVars applies AYLLU_DATABASE_<TYPE>_<NAME>_<OPTION> variables
func ProcessEnvVars() error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for i := range entry.Options {
			opt := &entry.Options[i]
			value, ok := os.LookupEnv(opt.envVarName(entry.Type, entry.Name))
			if !ok {
				continue
			}
			if err := opt.assignString(value); err != nil {
				return fmt.Errorf(
					"%s plugin %s: %w",
					PluginTypeName(entry.Type),
					entry.Name,
					err,
				)
			}
		}
	}
	return nil
}

// ProcessConfig applies option values from the config file, keyed by
// plugin type, then plugin name, then option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for pluginTypeName, pluginTypeData := range pluginConfig {
		pluginType := PluginTypeFromString(pluginTypeName)
		if pluginType == 0 {
			return fmt.Errorf("unknown plugin type: %s", pluginTypeName)
		}
		for pluginName, pluginData := range pluginTypeData {
			found := false
			for _, entry := range pluginEntries {
				if entry.Type != pluginType || entry.Name != pluginName {
					continue
				}
				found = true
				for i := range entry.Options {
					opt := &entry.Options[i]
					value, ok := pluginData[opt.Name]
					if !ok {
						continue
					}
					if err := opt.assignAny(value); err != nil {
						return fmt.Errorf(
							"%s plugin %s: %w",
							pluginTypeName,
							pluginName,
							err,
						)
					}
				}
			}
			if !found {
				return fmt.Errorf(
					"unknown %s plugin: %s",
					pluginTypeName,
					pluginName,
				)
			}
		}
	}
	return nil
}
