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

package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/ipc"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"gopkg.in/yaml.v3"

	"nativehints.apache.org/nativehints-go/internal/types/capability"
)

// ManifestVersion is written into every encoded manifest.
const ManifestVersion = 1

// Encoder turns ordered manifest entries into bytes. Implementations must be
// deterministic.
type Encoder interface {
	Encode(entries []capability.Capability) ([]byte, error)
}

// document is the tree shared by the JSON and YAML encodings.
type document struct {
	Version int             `json:"version" yaml:"version"`
	Entries []documentEntry `json:"entries" yaml:"entries"`
}

type documentEntry struct {
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func newDocument(entries []capability.Capability) document {
	doc := document{Version: ManifestVersion, Entries: make([]documentEntry, 0, len(entries))}
	for _, item := range entries {
		doc.Entries = append(doc.Entries, documentEntry{
			Kind:    item.Kind.String(),
			Name:    item.Name,
			Payload: item.Payload,
		})
	}
	return doc
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(entries []capability.Capability) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(entries)); err != nil {
		return nil, fmt.Errorf("failed to encode json manifest: %w", err)
	}
	return buf.Bytes(), nil
}

type yamlEncoder struct{}

func (yamlEncoder) Encode(entries []capability.Capability) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(entries)); err != nil {
		return nil, fmt.Errorf("failed to encode yaml manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Arrow column names.
const (
	ColumnKind    = "kind"
	ColumnName    = "name"
	ColumnPayload = "payload"
)

// ArrowSchema is the schema of the single record batch in an arrow manifest.
func ArrowSchema() *arrow.Schema {
	metadata := arrow.NewMetadata(
		[]string{"manifest.version"},
		[]string{fmt.Sprint(ManifestVersion)},
	)
	return arrow.NewSchema([]arrow.Field{
		{Name: ColumnKind, Type: arrow.BinaryTypes.String},
		{Name: ColumnName, Type: arrow.BinaryTypes.String},
		{Name: ColumnPayload, Type: arrow.BinaryTypes.String},
	}, &metadata)
}

type arrowEncoder struct {
	mem memory.Allocator
}

func (e arrowEncoder) Encode(entries []capability.Capability) ([]byte, error) {
	mem := e.mem
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := ArrowSchema()

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	kinds := builder.Field(0).(*array.StringBuilder)
	names := builder.Field(1).(*array.StringBuilder)
	payloads := builder.Field(2).(*array.StringBuilder)
	for _, item := range entries {
		kinds.Append(item.Kind.String())
		names.Append(item.Name)
		payloads.Append(item.Payload)
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write arrow record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close arrow writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeArrow reads an arrow manifest back into capabilities.
func DecodeArrow(data []byte) ([]capability.Capability, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow manifest: %w", err)
	}
	defer reader.Release()

	var out []capability.Capability
	for reader.Next() {
		record := reader.Record()
		if record.NumCols() != 3 {
			return nil, fmt.Errorf("arrow manifest has %d columns, want 3", record.NumCols())
		}
		kinds, okKinds := record.Column(0).(*array.String)
		names, okNames := record.Column(1).(*array.String)
		payloads, okPayloads := record.Column(2).(*array.String)
		if !okKinds || !okNames || !okPayloads {
			return nil, fmt.Errorf("arrow manifest columns must be strings, got %s", record.Schema())
		}
		for i := 0; i < int(record.NumRows()); i++ {
			kind, err := capability.ParseKind(kinds.Value(i))
			if err != nil {
				return nil, err
			}
			out = append(out, capability.Capability{
				Name:    names.Value(i),
				Kind:    kind,
				Payload: payloads.Value(i),
			})
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arrow manifest: %w", err)
	}
	return out, nil
}
