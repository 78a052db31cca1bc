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

// Package condition holds the build inputs and the pure predicates that
// decide whether a capability applies.
package condition

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// maxExpressionNodes bounds the size of catalog expressions.
const maxExpressionNodes = 200

// Facilities is the read-only view of detected optional facilities.
type Facilities interface {
	Has(name string) bool
}

type noFacilities struct{}

func (noFacilities) Has(string) bool { return false }

// Inputs is what a condition may look at. Nothing else is reachable,
// in particular not the activation state of other capabilities.
type Inputs struct {
	Config     Configuration
	Facilities Facilities
}

// Has reports facility presence. Unknown names and a nil set read as absent.
func (in Inputs) Has(name string) bool {
	if in.Facilities == nil {
		return false
	}
	return in.Facilities.Has(name)
}

// Condition is a side-effect-free, deterministic predicate.
type Condition interface {
	Holds(in Inputs) (bool, error)
	String() string
}

// Predicate adapts a Go function. The function must not perform I/O.
type Predicate func(in Inputs) (bool, error)

func (p Predicate) Holds(in Inputs) (bool, error) {
	return p(in)
}

func (p Predicate) String() string {
	return "predicate"
}

// Always is the condition of capabilities that declare none.
var Always Condition = Predicate(func(Inputs) (bool, error) { return true, nil })

// Expression is a condition written in the expr language. It can call
//
//	enum(key)     normalized enum option value
//	flag(key)     boolean option value
//	setting(key)  raw value of any key
//	has(name)     facility presence
type Expression struct {
	source  string
	program *vm.Program
}

var (
	programCache = make(map[string]*vm.Program)
	cacheMu      sync.RWMutex
)

// NewExpression compiles source. Identical sources share one program.
func NewExpression(source string) (*Expression, error) {
	program, err := compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", source, err)
	}
	return &Expression{source: source, program: program}, nil
}

// MustExpression is NewExpression for static declarations.
func MustExpression(source string) *Expression {
	e, err := NewExpression(source)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) String() string {
	return e.source
}

// Holds runs the program. Configuration failures raised inside the
// expression take precedence over the boolean result.
func (e *Expression) Holds(in Inputs) (bool, error) {
	var failure error
	output, err := expr.Run(e.program, environment(in, &failure))
	if failure != nil {
		return false, failure
	}
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", e.source, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T, want bool", e.source, output)
	}
	return result, nil
}

func compile(source string) (*vm.Program, error) {
	cacheMu.RLock()
	program, found := programCache[source]
	cacheMu.RUnlock()
	if found {
		return program, nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if program, found := programCache[source]; found {
		return program, nil
	}

	var failure error
	program, err := expr.Compile(source,
		expr.Env(environment(Inputs{Facilities: noFacilities{}}, &failure)),
		expr.AsBool(),
		expr.MaxNodes(maxExpressionNodes),
	)
	if err != nil {
		return nil, err
	}
	programCache[source] = program
	return program, nil
}

// environment binds the expression functions to in. The first
// configuration error is kept in failure.
func environment(in Inputs, failure *error) map[string]interface{} {
	record := func(err error) {
		if err != nil && *failure == nil {
			*failure = err
		}
	}
	return map[string]interface{}{
		"enum": func(key string) string {
			v, err := in.Config.Enum(key)
			record(err)
			return v
		},
		"flag": func(key string) bool {
			v, err := in.Config.Flag(key)
			record(err)
			return v
		},
		"setting": func(key string) string {
			return in.Config.Setting(key)
		},
		"has": func(name string) bool {
			return in.Has(name)
		},
	}
}
