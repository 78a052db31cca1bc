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

package engine

import "fmt"

// Phase is a step of the one-directional build lifecycle.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseCatalogPopulated
	PhaseConditionsEvaluated
	PhaseManifestFrozen
	PhaseEmitted
)

var phaseNames = [...]string{
	PhaseUninitialized:       "Uninitialized",
	PhaseCatalogPopulated:    "CatalogPopulated",
	PhaseConditionsEvaluated: "ConditionsEvaluated",
	PhaseManifestFrozen:      "ManifestFrozen",
	PhaseEmitted:             "Emitted",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}
