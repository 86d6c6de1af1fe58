package types

// ComponentSchema is the resolved, validated form of a ComponentDecl: a
// field-name-to-type map plus the default value for each field, used by the
// store to coerce writes and to seed omitted fields on AddComponent.
type ComponentSchema struct {
	Name    string
	Fields  []FieldDecl
	Types   map[string]FieldType
	Default map[string]any
}

// NewComponentSchema builds a ComponentSchema from an IR ComponentDecl.
func NewComponentSchema(decl ComponentDecl) ComponentSchema {
	s := ComponentSchema{
		Name:    decl.Name,
		Fields:  decl.Fields,
		Types:   make(map[string]FieldType, len(decl.Fields)),
		Default: make(map[string]any, len(decl.Fields)),
	}
	for _, f := range decl.Fields {
		s.Types[f.Name] = f.Type
		s.Default[f.Name] = f.Default
	}
	return s
}
