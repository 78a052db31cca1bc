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

package capability

import (
	"fmt"
	"sort"

	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

// Kind says how the downstream image builder must treat a capability.
// The ordinal order is the grouping order of emitted manifests.
type Kind int

const (
	ReflectionHint Kind = iota + 1
	ResourceHint
	RuntimeInitHint
	FeatureFlag
)

var kindNames = map[Kind]string{
	ReflectionHint:  "reflection-hint",
	ResourceHint:    "resource-hint",
	RuntimeInitHint: "runtime-init-hint",
	FeatureFlag:     "feature-flag",
}

// Kinds returns every kind in manifest order.
func Kinds() []Kind {
	return []Kind{ReflectionHint, ResourceHint, RuntimeInitHint, FeatureFlag}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts the string form used in catalog documents and manifests.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errtypes.ErrUnknownKind, s)
}

// Capability is an immutable (kind, name, payload) triple.
type Capability struct {
	Name    string
	Kind    Kind
	Payload string
}

func (c Capability) String() string {
	return c.Kind.String() + ":" + c.Name
}

// Less orders capabilities by kind, then name.
func Less(a, b Capability) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Name < b.Name
}

// SortStable sorts caps in place in manifest order.
func SortStable(caps []Capability) {
	sort.SliceStable(caps, func(i, j int) bool {
		return Less(caps[i], caps[j])
	})
}
