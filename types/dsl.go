/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "encoding/json"

// Module is the top-level IR object the core consumes once, at load time.
type Module struct {
	Version      string         `json:"version"`
	ModuleName   string         `json:"module"`
	Components   []ComponentDecl `json:"components"`
	Rules        []RuleDecl     `json:"rules"`
	Functions    []FunctionDecl `json:"functions"`
	ChoicePoints []ChoicePoint  `json:"choice_points,omitempty"`
	SourceMap    *SourceMap     `json:"source_map,omitempty"`
	InitialState InitialState   `json:"initial_state"`

	// Extra preserves any top-level key the typed fields above don't
	// recognize, so tolerant parsing round-trips forward-compatible IR
	// payloads without loss.
	Extra map[string]any `json:"-"`
}

// FieldDecl is one declared field of a component.
type FieldDecl struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Default any       `json:"default,omitempty"`
}

// ComponentDecl declares a component schema: its name and ordered fields.
type ComponentDecl struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Fields []FieldDecl `json:"fields"`
}

// Trigger names the event a rule responds to and how rule-local variables
// bind to the firing entity/entities.
type Trigger struct {
	Type     string            `json:"type"`
	Event    string            `json:"event"`
	Bindings map[string]string `json:"bindings,omitempty"`
}

// Filter names the components an entity must carry to match a rule.
type Filter struct {
	Components []string `json:"components,omitempty"`
}

// RuleDecl is a declarative handler: trigger + filter + condition + actions.
type RuleDecl struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Trigger   Trigger `json:"trigger"`
	Filter    Filter  `json:"filter,omitempty"`
	Condition *Expr   `json:"condition,omitempty"`
	Actions   []Action `json:"actions"`
}

// Param is a named, typed function parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionDecl is a module-level helper function shared by all rules.
type FunctionDecl struct {
	Name       string  `json:"name"`
	Params     []Param `json:"params"`
	ReturnType string  `json:"return_type"`
	Body       *Expr   `json:"body"`
}

// BoundFunctionDecl is a choice function attached to one entity. Source, if
// present, is a JavaScript body evaluated by the choice package's script
// bridge instead of interpreting Body directly.
type BoundFunctionDecl struct {
	Params     []Param `json:"params"`
	ReturnType string  `json:"return_type"`
	Body       *Expr   `json:"body,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// ChoicePoint is UI-facing metadata only; the simulation core loads and
// retains it but never interprets it.
type ChoicePoint struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Signature         string   `json:"signature"`
	Params            []Param  `json:"params"`
	ReturnType        string   `json:"return_type"`
	Docstring         string   `json:"docstring,omitempty"`
	Category          string   `json:"category,omitempty"`
	ApplicableClasses []string `json:"applicable_classes,omitempty"`
}

// SourceMap is debug-only metadata, loaded and retained but never executed.
type SourceMap struct {
	Files []SourceFile `json:"files"`
}

// SourceFile is one surface-language source file referenced by SourceMap.
type SourceFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// EntityDecl describes one initial entity: its explicit id, component data,
// and any bound choice functions.
type EntityDecl struct {
	ID             int                          `json:"id"`
	Components     map[string]map[string]any    `json:"components"`
	BoundFunctions map[string]BoundFunctionDecl `json:"bound_functions,omitempty"`
}

// InitialState is the set of entities present before the first Step.
type InitialState struct {
	Entities []EntityDecl `json:"entities"`
}

// ParseModule decodes raw IR JSON into a Module, preserving unrecognized
// top-level keys in Extra so forward-compatible IR payloads round-trip
// without loss.
func ParseModule(raw []byte) (*Module, error) {
	var m Module
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	known := map[string]bool{
		"version": true, "module": true, "components": true, "rules": true,
		"functions": true, "choice_points": true, "source_map": true,
		"initial_state": true,
	}
	for k, v := range generic {
		if !known[k] {
			if m.Extra == nil {
				m.Extra = map[string]any{}
			}
			m.Extra[k] = v
		}
	}
	return &m, nil
}
