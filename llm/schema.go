package llm

import (
	"encoding/json"
	"reflect"
	"strings"
)

// ResponseSchema describes the JSON structure a model must return.
type ResponseSchema struct {
	// Name identifies the schema for providers that require one.
	Name string
	// Description is passed to providers that surface it to the model.
	Description string
	// Schema is a JSON Schema document.
	Schema json.RawMessage
}

// SchemaBuilder provides a fluent API for constructing JSON Schema objects
// from Go structs. Use SchemaFrom[T]() to create a builder from a struct type.
type SchemaBuilder struct {
	properties    map[string]*propertyDef
	required      []string
	propertyOrder []string
}

type propertyDef struct {
	Type        string
	Description string
	Enum        []any
	Items       *propertyDef
	Nested      *SchemaBuilder
}

// SchemaFrom creates a SchemaBuilder by reflecting on the given struct type.
// Field names are taken from json tags. Fields without omitempty are required.
func SchemaFrom[T any]() *SchemaBuilder {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return &SchemaBuilder{properties: make(map[string]*propertyDef)}
	}
	return buildFromStruct(t)
}

func buildFromStruct(t reflect.Type) *SchemaBuilder {
	sb := &SchemaBuilder{properties: make(map[string]*propertyDef)}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		parts := strings.Split(jsonTag, ",")
		name := parts[0]
		if name == "" {
			name = field.Name
		}

		prop := typeToPropertyDef(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		sb.properties[name] = prop
		sb.propertyOrder = append(sb.propertyOrder, name)

		omit := false
		for _, opt := range parts[1:] {
			if opt == "omitempty" || opt == "omitzero" {
				omit = true
			}
		}
		if !omit {
			sb.required = append(sb.required, name)
		}
	}

	return sb
}

func typeToPropertyDef(t reflect.Type) *propertyDef {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &propertyDef{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &propertyDef{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &propertyDef{Type: "number"}
	case reflect.Bool:
		return &propertyDef{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &propertyDef{Type: "array", Items: typeToPropertyDef(t.Elem())}
	case reflect.Struct:
		return &propertyDef{Type: "object", Nested: buildFromStruct(t)}
	case reflect.Map:
		return &propertyDef{Type: "object"}
	default:
		return &propertyDef{Type: "string"}
	}
}

// lookup resolves a dotted path such as "labels.name", descending into
// array items and nested objects.
func (s *SchemaBuilder) lookup(path string) *propertyDef {
	head, rest, nested := strings.Cut(path, ".")
	prop, ok := s.properties[head]
	if !ok {
		return nil
	}
	if !nested {
		return prop
	}
	for prop.Items != nil {
		prop = prop.Items
	}
	if prop.Nested == nil {
		return nil
	}
	return prop.Nested.lookup(rest)
}

// Desc sets the description for a field. Nested fields use dotted paths.
func (s *SchemaBuilder) Desc(field, description string) *SchemaBuilder {
	if prop := s.lookup(field); prop != nil {
		prop.Description = description
	}
	return s
}

// Enum sets the allowed values for a string field. Nested fields use dotted
// paths; for arrays of strings the enum applies to the items.
func (s *SchemaBuilder) Enum(field string, values ...string) *SchemaBuilder {
	prop := s.lookup(field)
	if prop == nil {
		return s
	}
	for prop.Items != nil {
		prop = prop.Items
	}
	prop.Enum = make([]any, len(values))
	for i, v := range values {
		prop.Enum[i] = v
	}
	return s
}

// Build generates the JSON Schema as json.RawMessage.
func (s *SchemaBuilder) Build() json.RawMessage {
	data, err := json.Marshal(s.toMap())
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

// Response wraps the built schema as a named ResponseSchema.
func (s *SchemaBuilder) Response(name, description string) ResponseSchema {
	return ResponseSchema{Name: name, Description: description, Schema: s.Build()}
}

func (s *SchemaBuilder) toMap() map[string]any {
	props := make(map[string]any, len(s.properties))
	for _, name := range s.propertyOrder {
		props[name] = s.properties[name].toMap()
	}
	result := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.required) > 0 {
		result["required"] = s.required
	}
	return result
}

func (p *propertyDef) toMap() map[string]any {
	if p.Nested != nil {
		result := p.Nested.toMap()
		if p.Description != "" {
			result["description"] = p.Description
		}
		return result
	}

	result := map[string]any{"type": p.Type}
	if p.Description != "" {
		result["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		result["enum"] = p.Enum
	}
	if p.Items != nil {
		result["items"] = p.Items.toMap()
	}
	return result
}
