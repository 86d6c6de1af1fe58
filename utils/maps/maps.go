// Package maps bridges loosely-typed map data and the engine's typed
// structs, wrapping mapstructure and fatih/structs for either direction.
package maps

import (
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
)

// Map2Struct decodes a generic map (as produced by a YAML/JSON/JS host that
// already parsed a document into map[string]any) into a typed target.
func Map2Struct(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// Struct2Map renders a struct as a plain map, for loggable/dumpable views
// of typed state.
func Struct2Map(v any) map[string]any {
	return structs.Map(v)
}
