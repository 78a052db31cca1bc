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

// Package catalog holds the static set of capabilities a build may activate.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"nativehints.apache.org/nativehints-go/internal/engine/condition"
	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Entry is a registered capability plus everything needed to decide on it.
type Entry struct {
	capability.Capability

	Condition      condition.Condition
	Requires       []string // all of these facilities must be present
	RequiresAnyOf  []string // at least one of these facilities must be present
	DriverVersions *semver.Constraints
	Description    string
}

// RegistrationOption customizes an Entry at registration time.
type RegistrationOption func(*Entry) error

// WithCondition sets a programmatic condition.
func WithCondition(c condition.Condition) RegistrationOption {
	return func(e *Entry) error {
		e.Condition = c
		return nil
	}
}

// WithExpression compiles source into the entry condition.
func WithExpression(source string) RegistrationOption {
	return func(e *Entry) error {
		if strings.TrimSpace(source) == "" {
			return nil
		}
		expression, err := condition.NewExpression(source)
		if err != nil {
			return err
		}
		e.Condition = expression
		return nil
	}
}

// WithRequires gates the entry on every named facility.
func WithRequires(facilities ...string) RegistrationOption {
	return func(e *Entry) error {
		e.Requires = append(e.Requires, facilities...)
		return nil
	}
}

// WithRequiresAnyOf gates the entry on at least one named facility.
func WithRequiresAnyOf(facilities ...string) RegistrationOption {
	return func(e *Entry) error {
		e.RequiresAnyOf = append(e.RequiresAnyOf, facilities...)
		return nil
	}
}

// WithDriverVersions restricts the entry to driver versions matching constraint.
func WithDriverVersions(constraint string) RegistrationOption {
	return func(e *Entry) error {
		if strings.TrimSpace(constraint) == "" {
			return nil
		}
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return fmt.Errorf("driver version constraint %q: %w", constraint, err)
		}
		e.DriverVersions = c
		return nil
	}
}

// WithDescription attaches operator-facing text, used in warnings.
func WithDescription(description string) RegistrationOption {
	return func(e *Entry) error {
		e.Description = description
		return nil
	}
}

// Catalog maps capability names to entries. It is filled at process start,
// sealed, and only read afterwards.
type Catalog struct {
	entries map[string]*Entry
	order   []string
	sealed  bool
	logger  logger.Logger
}

func New(logger logger.Logger) *Catalog {
	return &Catalog{
		entries: make(map[string]*Entry),
		logger:  logger.WithName("catalog"),
	}
}

// Register adds a capability. Names are unique across kinds.
func (c *Catalog) Register(item capability.Capability, options ...RegistrationOption) error {
	if c.sealed {
		return errtypes.NewLifecycleViolationError("register", "CatalogPopulated", "Uninitialized")
	}
	if strings.TrimSpace(item.Name) == "" {
		return errtypes.ErrCapabilityNameEmpty
	}
	if !item.Kind.IsValid() {
		return fmt.Errorf("capability %q: %w: %s", item.Name, errtypes.ErrUnknownKind, item.Kind)
	}
	if _, exists := c.entries[item.Name]; exists {
		return errtypes.NewDuplicateCapabilityError("catalog", item.Name)
	}

	entry := &Entry{Capability: item}
	for _, option := range options {
		if err := option(entry); err != nil {
			return fmt.Errorf("capability %q: %w", item.Name, err)
		}
	}
	if entry.Condition == nil {
		entry.Condition = condition.Always
	}

	c.entries[item.Name] = entry
	c.order = append(c.order, item.Name)

	c.logger.V(1).Info("capability registered",
		"name", item.Name,
		"kind", item.Kind.String(),
		"condition", entry.Condition.String())
	return nil
}

// Seal ends registration. Sealing twice is harmless.
func (c *Catalog) Seal() {
	if !c.sealed {
		c.sealed = true
		c.logger.Info("catalog sealed", "capabilities", len(c.entries))
	}
}

func (c *Catalog) Sealed() bool {
	return c.sealed
}

// Get returns a copy of the entry registered under name.
func (c *Catalog) Get(name string) (Entry, bool) {
	entry, ok := c.entries[name]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// All returns copies of every entry ordered by kind, then name.
func (c *Catalog) All() []Entry {
	all := make([]Entry, 0, len(c.entries))
	for _, name := range c.order {
		all = append(all, c.entries[name].clone())
	}
	sort.SliceStable(all, func(i, j int) bool {
		return capability.Less(all[i].Capability, all[j].Capability)
	})
	return all
}

// Names returns the registered names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (e *Entry) clone() Entry {
	out := *e
	out.Requires = append([]string(nil), e.Requires...)
	out.RequiresAnyOf = append([]string(nil), e.RequiresAnyOf...)
	return out
}
