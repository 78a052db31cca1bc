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

// Package report renders the human readable summary of a build.
package report

import (
	"embed"
	"io"
	"text/template"

	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	"nativehints.apache.org/nativehints-go/internal/engine/recorder"
	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

//go:embed summary.tmpl
var embedTemplates embed.FS

var summaryTemplate = template.Must(template.ParseFS(embedTemplates, "summary.tmpl"))

// Summary is everything shown after a build.
type Summary struct {
	Version   string
	Component string
	Manifest  *recorder.Manifest
	Output    *emitter.SerializedManifest
	Warnings  []*errtypes.MissingOptionalFacilityWarning
	Published string
}

type kindCount struct {
	Kind  string
	Count int
}

type summaryVars struct {
	Version   string
	Component string
	ID        string
	Digest    string
	Format    string
	Bytes     int
	Entries   int
	Kinds     []kindCount
	Warnings  []string
	Published string
}

// Printer writes summaries to a writer, usually stderr so stdout stays
// reserved for the manifest.
type Printer struct {
	out    io.Writer
	logger logger.Logger
}

func New(out io.Writer, log logger.Logger) *Printer {

	return &Printer{out: out, logger: log.WithName("report")}
}

func (p *Printer) Print(s Summary) error {

	vars := summaryVars{
		Version:   s.Version,
		Component: s.Component,
		Published: s.Published,
	}
	if s.Output != nil {
		vars.ID = s.Output.ID.String()
		vars.Digest = s.Output.Digest
		vars.Format = string(s.Output.Format)
		vars.Bytes = len(s.Output.Data)
		vars.Entries = s.Output.Entries
	}
	counts := s.Manifest.Counts()
	for _, kind := range capability.Kinds() {
		if n := counts[kind]; n > 0 {
			vars.Kinds = append(vars.Kinds, kindCount{Kind: kind.String(), Count: n})
		}
	}
	for _, w := range s.Warnings {
		vars.Warnings = append(vars.Warnings, w.Error())
	}

	if err := summaryTemplate.Execute(p.out, vars); err != nil {
		p.logger.Error(err, "summary template execute error")
		return err
	}
	return nil
}
