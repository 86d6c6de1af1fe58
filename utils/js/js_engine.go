/*
 * Copyright 2023 The RuleGo Authors.
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

// Package js provides the goja-backed JavaScript runtime shared by bound
// choice functions that declare a "source" body instead of an expression
// tree. Each Engine wraps one goja.Runtime seeded with one entity's script
// source: run the source once at construction to define its top-level
// functions, then invoke a named function per call rather than
// re-evaluating the whole source every time.
package js

import (
	"errors"

	"github.com/dop251/goja"
)

// Engine runs one compiled JavaScript source and invokes named functions
// defined within it, exporting their results back to Go values.
type Engine struct {
	vm *goja.Runtime
}

// New runs source once against a fresh VM, so any functions the source
// declares become callable by name.
func New(source string) (*Engine, error) {
	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, err
	}
	return &Engine{vm: vm}, nil
}

// Call invokes funcName with args, exporting the JS return value to a Go
// value via goja's Export.
func (e *Engine) Call(funcName string, args ...any) (any, error) {
	params := make([]goja.Value, len(args))
	for i, v := range args {
		params[i] = e.vm.ToValue(v)
	}
	fn, ok := goja.AssertFunction(e.vm.Get(funcName))
	if !ok {
		return nil, errors.New(funcName + " is not a function")
	}
	res, err := fn(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}
