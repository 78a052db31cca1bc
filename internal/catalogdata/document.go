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

// Package catalogdata loads versioned capability catalog documents.
package catalogdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"nativehints.apache.org/nativehints-go/internal/engine/catalog"
	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

//go:embed cassandra-client.yaml
var cassandraClient []byte

//go:embed catalog.schema.json
var schemaSource []byte

const schemaURL = "catalog.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Document is the decoded form of a catalog YAML file.
type Document struct {
	Version      int             `yaml:"version"`
	Component    string          `yaml:"component"`
	Facilities   []FacilityDoc   `yaml:"facilities"`
	Capabilities []CapabilityDoc `yaml:"capabilities"`
}

// FacilityDoc describes an optional dependency and how to spot it on a classpath.
type FacilityDoc struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Artifacts   []string `yaml:"artifacts"`
}

type CapabilityDoc struct {
	Name           string   `yaml:"name"`
	Kind           string   `yaml:"kind"`
	Payload        string   `yaml:"payload"`
	When           string   `yaml:"when"`
	Requires       []string `yaml:"requires"`
	RequiresAnyOf  []string `yaml:"requiresAnyOf"`
	DriverVersions string   `yaml:"driverVersions"`
	Description    string   `yaml:"description"`
}

// Registrar accepts capabilities. Both catalog.Catalog and engine.Session satisfy it.
type Registrar interface {
	Register(item capability.Capability, options ...catalog.RegistrationOption) error
}

// CassandraClient returns the embedded catalog of the Cassandra driver integration.
func CassandraClient() (*Document, error) {
	return Parse(cassandraClient)
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errtypes.ErrCatalogDocumentEmpty
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog document: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog document: %w", err)
	}
	return &doc, nil
}

// Register adds every capability of the document to r, stopping at the first error.
func (d *Document) Register(r Registrar) error {
	for _, c := range d.Capabilities {
		kind, err := capability.ParseKind(c.Kind)
		if err != nil {
			return fmt.Errorf("capability %q: %w", c.Name, err)
		}
		item := capability.Capability{Name: c.Name, Kind: kind, Payload: c.Payload}
		if err := r.Register(item,
			catalog.WithExpression(c.When),
			catalog.WithRequires(c.Requires...),
			catalog.WithRequiresAnyOf(c.RequiresAnyOf...),
			catalog.WithDriverVersions(c.DriverVersions),
			catalog.WithDescription(strings.TrimSpace(c.Description)),
		); err != nil {
			return err
		}
	}
	return nil
}

// Artifacts maps facility names to their classpath glob patterns.
func (d *Document) Artifacts() map[string][]string {
	out := make(map[string][]string, len(d.Facilities))
	for _, f := range d.Facilities {
		if len(f.Artifacts) > 0 {
			out[f.Name] = append([]string(nil), f.Artifacts...)
		}
	}
	return out
}

// Facility returns the declared facility called name.
func (d *Document) Facility(name string) (FacilityDoc, bool) {
	for _, f := range d.Facilities {
		if f.Name == name {
			return f, true
		}
	}
	return FacilityDoc{}, false
}

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("failed to add catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validate checks a decoded YAML tree. The tree is round-tripped through JSON
// so the validator sees JSON types only.
func validate(raw interface{}) error {
	s, err := schema()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", errtypes.ErrCatalogDocumentSchema, err)
	}
	var instance interface{}
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("%w: %v", errtypes.ErrCatalogDocumentSchema, err)
	}

	if err := s.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("%w:\n    - %s", errtypes.ErrCatalogDocumentSchema,
				strings.Join(collectMessages(validationErr), "\n    - "))
		}
		return fmt.Errorf("%w: %v", errtypes.ErrCatalogDocumentSchema, err)
	}
	return nil
}

func collectMessages(err *jsonschema.ValidationError) []string {
	var messages []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}
