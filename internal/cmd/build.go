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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nativehints.apache.org/nativehints-go/internal/catalogdata"
	"nativehints.apache.org/nativehints-go/internal/constants"
	"nativehints.apache.org/nativehints-go/internal/engine"
	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	"nativehints.apache.org/nativehints-go/internal/engine/recorder"
	"nativehints.apache.org/nativehints-go/internal/facility"
	"nativehints.apache.org/nativehints-go/internal/metrics"
	"nativehints.apache.org/nativehints-go/internal/report"
	"nativehints.apache.org/nativehints-go/internal/store"
	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// buildResult is the outcome of one full build.
type buildResult struct {
	manifest  *recorder.Manifest
	output    *emitter.SerializedManifest
	warnings  []*errtypes.MissingOptionalFacilityWarning
	published string
}

// loadCatalog returns the configured document, or the embedded one.
func loadCatalog(cfg *cfgtypes.BuildConfig) (*catalogdata.Document, error) {
	if cfg.Catalog == "" {
		if cfg.Component != constants.DefaultComponent {
			return nil, errtypes.NewInvalidConfigurationError("component", cfg.Component,
				"no embedded catalog, set catalog to a document path", constants.DefaultComponent)
		}
		return catalogdata.CassandraClient()
	}
	data, err := os.ReadFile(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	doc, err := catalogdata.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.Catalog, err)
	}
	return doc, nil
}

func detectFacilities(log logger.Logger, cfg *cfgtypes.BuildConfig, doc *catalogdata.Document) (facility.Set, error) {
	return facility.Detect(log,
		facility.Static(cfg.Facilities.Static...),
		facility.Env(cfg.Facilities.Env),
		facility.Artifacts(cfg.Facilities.Classpath, doc.Artifacts()),
	)
}

// runBuild performs one build from cfg and writes the manifest. Nothing is
// written when the build aborts.
func runBuild(ctx context.Context, log logger.Logger, cfg *cfgtypes.BuildConfig, stdout io.Writer) (*buildResult, error) {
	format, err := emitter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	doc, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	set, err := detectFacilities(log, cfg, doc)
	if err != nil {
		return nil, err
	}

	session := engine.NewSession(log)
	if err := doc.Register(session); err != nil {
		return nil, err
	}
	out, err := session.Run(cfg.Configuration(), set, format)
	if err != nil {
		return nil, err
	}

	result := &buildResult{
		manifest: session.Manifest(),
		output:   out,
		warnings: session.Warnings(),
	}

	if err := writeOutput(cfg.Output.Path, out.Data, stdout); err != nil {
		return nil, err
	}
	if cfg.Store.Enabled {
		if result.published, err = publish(ctx, log, cfg, out); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return nil, fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}
	return result, nil
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == constants.DefaultOutputFile {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	// write then rename so readers never see a partial manifest
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func publish(ctx context.Context, log logger.Logger, cfg *cfgtypes.BuildConfig, out *emitter.SerializedManifest) (string, error) {
	s, err := store.Open(cfg.Store.Platform, cfg.Store.DSN, cfg.Store.Table, log)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := s.EnsureSchema(ctx); err != nil {
		return "", err
	}
	created, err := s.Publish(ctx, cfg.Component, out)
	if err != nil {
		return "", err
	}
	if created {
		return "new row in " + cfg.Store.Table, nil
	}
	return "already present in " + cfg.Store.Table, nil
}

func printSummary(w io.Writer, log logger.Logger, cfg *cfgtypes.BuildConfig, r *buildResult) error {
	return report.New(w, log).Print(report.Summary{
		Version:   Version,
		Component: cfg.Component,
		Manifest:  r.manifest,
		Output:    r.output,
		Warnings:  r.warnings,
		Published: r.published,
	})
}
