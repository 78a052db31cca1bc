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

// Package evaluator decides, for each catalog entry, whether it is active.
package evaluator

import (
	"fmt"

	"nativehints.apache.org/nativehints-go/internal/engine/catalog"
	"nativehints.apache.org/nativehints-go/internal/engine/condition"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// SkipReason says why an entry was not activated.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipCondition       SkipReason = "condition"
	SkipDriverVersion   SkipReason = "driver-version"
	SkipMissingFacility SkipReason = "missing-facility"
)

// Decision is the outcome for a single entry.
type Decision struct {
	Entry   catalog.Entry
	Active  bool
	Reason  SkipReason
	Warning *errtypes.MissingOptionalFacilityWarning
}

// Evaluator is stateless apart from its logger; it may be shared.
type Evaluator struct {
	logger logger.Logger
}

func New(logger logger.Logger) *Evaluator {
	return &Evaluator{logger: logger.WithName("evaluator")}
}

// Evaluate applies, in order, the entry condition, the driver version
// constraint and the facility requirements. Only the last one can produce
// a warning, and only when the condition asked for the entry.
func (e *Evaluator) Evaluate(entry catalog.Entry, cfg condition.Configuration, facilities condition.Facilities) (Decision, error) {
	in := condition.Inputs{Config: cfg, Facilities: facilities}
	decision := Decision{Entry: entry}

	cond := entry.Condition
	if cond == nil {
		cond = condition.Always
	}
	holds, err := cond.Holds(in)
	if err != nil {
		return decision, fmt.Errorf("capability %q: %w", entry.Name, err)
	}
	if !holds {
		decision.Reason = SkipCondition
		e.logger.V(1).Info("capability skipped", "name", entry.Name, "reason", decision.Reason)
		return decision, nil
	}

	if entry.DriverVersions != nil {
		version, err := cfg.Version(condition.OptionDriverVersion)
		if err != nil {
			return decision, fmt.Errorf("capability %q: %w", entry.Name, err)
		}
		// an unknown driver version never excludes anything
		if version != nil && !entry.DriverVersions.Check(version) {
			decision.Reason = SkipDriverVersion
			e.logger.V(1).Info("capability skipped", "name", entry.Name, "reason", decision.Reason,
				"driverVersion", version.String(), "constraint", entry.DriverVersions.String())
			return decision, nil
		}
	}

	if missing := missingAll(in, entry.Requires); len(missing) > 0 {
		decision.Reason = SkipMissingFacility
		decision.Warning = errtypes.NewMissingOptionalFacilityWarning(entry.Name, missing, false, entry.Description)
		return decision, nil
	}
	if len(entry.RequiresAnyOf) > 0 && !anyPresent(in, entry.RequiresAnyOf) {
		decision.Reason = SkipMissingFacility
		decision.Warning = errtypes.NewMissingOptionalFacilityWarning(entry.Name,
			append([]string(nil), entry.RequiresAnyOf...), true, entry.Description)
		return decision, nil
	}

	decision.Active = true
	return decision, nil
}

// EvaluateAll evaluates entries in order and stops at the first error.
func (e *Evaluator) EvaluateAll(entries []catalog.Entry, cfg condition.Configuration, facilities condition.Facilities) ([]Decision, error) {
	decisions := make([]Decision, 0, len(entries))
	for _, entry := range entries {
		d, err := e.Evaluate(entry, cfg, facilities)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

func missingAll(in condition.Inputs, names []string) []string {
	var missing []string
	for _, name := range names {
		if !in.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func anyPresent(in condition.Inputs, names []string) bool {
	for _, name := range names {
		if in.Has(name) {
			return true
		}
	}
	return false
}
