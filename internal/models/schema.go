package models

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// FieldKind is the stored type of a document field
type FieldKind string

const (
	KindString FieldKind = "string"
	KindBool   FieldKind = "bool"
)

// FieldSpec describes one persisted field of a document type
type FieldSpec struct {
	Name            string
	Kind            FieldKind
	Required        bool
	RequiredMessage string
	Default         interface{}
	Unique          bool
	UniqueMessage   string
}

// Schema is a named document-type descriptor: which fields a document carries,
// which are required, their defaults and which must be unique in the collection.
type Schema struct {
	Name       string
	Collection string
	Fields     []FieldSpec
}

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError is returned when a document does not satisfy its schema
type SchemaError struct {
	Schema string
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s validation failed", e.Schema)
	}
	return fmt.Sprintf("%s validation failed: %s: %s", e.Schema, e.Errors[0].Field, e.Errors[0].Message)
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Schema)
)

// Model returns the descriptor registered under name, building it with define
// on first use. Later calls with the same name return the same *Schema and
// never call define again.
func Model(name string, define func() *Schema) *Schema {
	registryMu.Lock()
	defer registryMu.Unlock()

	if schema, ok := registry[name]; ok {
		return schema
	}

	schema := define()
	schema.Name = name
	registry[name] = schema
	return schema
}

// UniqueFields returns the fields backed by a unique index
func (s *Schema) UniqueFields() []FieldSpec {
	var unique []FieldSpec
	for _, f := range s.Fields {
		if f.Unique {
			unique = append(unique, f)
		}
	}
	return unique
}

// ApplyDefaults fills absent fields that declare a default
func (s *Schema) ApplyDefaults(doc bson.M) {
	for _, f := range s.Fields {
		if f.Default == nil {
			continue
		}
		if v, ok := doc[f.Name]; !ok || v == nil {
			doc[f.Name] = f.Default
		}
	}
}

// Validate checks required fields and field kinds, returning every failure
func (s *Schema) Validate(doc bson.M) []FieldError {
	var errs []FieldError
	for _, f := range s.Fields {
		v, present := doc[f.Name]
		if !present || v == nil || v == "" {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Message: f.RequiredMessage})
			}
			continue
		}

		switch f.Kind {
		case KindString:
			if _, ok := v.(string); !ok {
				errs = append(errs, FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a string", f.Name)})
			}
		case KindBool:
			if _, ok := v.(bool); !ok {
				errs = append(errs, FieldError{Field: f.Name, Message: fmt.Sprintf("%s must be a boolean", f.Name)})
			}
		}
	}
	return errs
}

// Prepare converts v to a document, applies defaults and validates it
func (s *Schema) Prepare(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", s.Name, err)
	}

	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", s.Name, err)
	}

	s.ApplyDefaults(doc)

	if errs := s.Validate(doc); len(errs) > 0 {
		return nil, &SchemaError{Schema: s.Name, Errors: errs}
	}

	return doc, nil
}
