// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	cfgloader "nativehints.apache.org/nativehints-go/internal/config"
	"nativehints.apache.org/nativehints-go/internal/engine/condition"
	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// buildFlags are shared by every command that needs a build configuration.
// Flags win over environment variables, which win over the file.
type buildFlags struct {
	cfgPath    string
	catalog    string
	facilities []string
	classpath  []string
	format     string
	output     string
	settings   map[string]string
}

func (f *buildFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVarP(&f.cfgPath, "config", "c", "", "build config file path")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "catalog document (defaults to the embedded catalog)")
	cmd.Flags().StringSliceVar(&f.facilities, "facility", nil, "facility known to be present (repeatable)")
	cmd.Flags().StringSliceVar(&f.classpath, "classpath", nil, "directory scanned for facility artifacts (repeatable)")
	cmd.Flags().StringToStringVar(&f.settings, "set", nil, "configuration option or setting, key=value (repeatable)")
	if withOutput {
		cmd.Flags().StringVar(&f.format, "format", "", "manifest format: json, yaml or arrow")
		cmd.Flags().StringVarP(&f.output, "output", "o", "", "manifest output file, - for stdout")
	}
}

// load reads the configuration and applies the flags on top.
func (f *buildFlags) load(logOut io.Writer) (*cfgtypes.BuildConfig, *cfgloader.Loader, error) {
	loader := cfgloader.New(f.cfgPath, logger.NewLogger(logOut, nil))
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := f.apply(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func (f *buildFlags) apply(cfg *cfgtypes.BuildConfig) error {
	if f.catalog != "" {
		cfg.Catalog = f.catalog
	}
	cfg.Facilities.Static = append(cfg.Facilities.Static, f.facilities...)
	cfg.Facilities.Classpath = append(cfg.Facilities.Classpath, f.classpath...)
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	if len(f.settings) > 0 {
		if cfg.Settings == nil {
			cfg.Settings = make(map[string]string, len(f.settings))
		}
		for k, v := range f.settings {
			cfg.Settings[k] = v
		}
		// --set on a declared option must beat the file's options section
		for k, v := range f.settings {
			switch k {
			case condition.OptionProtocolCompression:
				cfg.Options.ProtocolCompression = v
			case condition.OptionMetricsEnabled:
				cfg.Options.MetricsEnabled = v
			case condition.OptionHealthEnabled:
				cfg.Options.HealthEnabled = v
			case condition.OptionDriverVersion:
				cfg.Options.DriverVersion = v
			}
		}
	}
	return cfgloader.ValidateConfig(cfg)
}
