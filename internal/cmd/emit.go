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
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	cfgloader "nativehints.apache.org/nativehints-go/internal/config"
	"nativehints.apache.org/nativehints-go/internal/metrics"
	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

func EmitCommand() *cobra.Command {

	var (
		flags       buildFlags
		watch       bool
		quiet       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:     "emit",
		Aliases: []string{"e"},
		Short:   "Evaluate the catalog and write the activation manifest",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loader, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}
			log := logger.NewLogger(cmd.ErrOrStderr(), cfg.Logging())
			loader.PrintConfig(cfg)

			summary := cmd.ErrOrStderr()
			if quiet {
				summary = io.Discard
			}

			if err := emitOnce(cmd.Context(), log, cfg, cmd.OutOrStdout(), summary); err != nil {
				if !watch {
					return err
				}
				log.Error(err, "build failed, waiting for a config change")
			}
			if !watch {
				return nil
			}
			if loader.Path() == "" {
				return errors.New("--watch needs a config file (-c)")
			}
			return watchAndEmit(cmd.Context(), log, loader, cfg, &flags, cmd.OutOrStdout(), summary)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild whenever the config file changes")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the build summary")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address while watching")
	return cmd
}

func emitOnce(ctx context.Context, log logger.Logger, cfg *cfgtypes.BuildConfig, stdout, summary io.Writer) error {
	result, err := runBuild(ctx, log, cfg, stdout)
	if err != nil {
		return err
	}
	return printSummary(summary, log, cfg, result)
}

// watchAndEmit rebuilds from scratch on every config revision until ctx is done.
func watchAndEmit(ctx context.Context, log logger.Logger, loader *cfgloader.Loader, cfg *cfgtypes.BuildConfig, flags *buildFlags, stdout, summary io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Metrics.Addr != "" {
		runner := metrics.New(cfg.Metrics.Addr, log)
		go func() {
			if err := runner.Start(ctx); err != nil {
				log.Error(err, "metrics server stopped")
			}
		}()
	}

	err := loader.WatchConfigAndReload(ctx, func(next *cfgtypes.BuildConfig) {
		if err := flags.apply(next); err != nil {
			log.Error(err, "invalid config after reload")
			return
		}
		if err := emitOnce(ctx, log, next, stdout, summary); err != nil {
			log.Error(err, "build failed, waiting for a config change")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
