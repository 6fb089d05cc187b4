// Package schema holds JSON Schema documents and the Validator capability
// used to check decoded values against them.
//
// Schemas are plain data: they are parsed from JSON or YAML documents and
// handed to a Validator, which owns all evaluation state.
package schema

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Schema is a parsed JSON Schema document.
type Schema struct {
	// ID identifies the document in messages and is used as its resource
	// location when compiling.
	ID  string
	Doc interface{}
}

// String returns the schema identifier.
func (s *Schema) String() string {
	if s == nil {
		return "<nil>"
	}

	return s.ID
}

// Parse parses a JSON schema document.
func Parse(id string, data []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed parsing json schema %s", id)
	}

	return &Schema{ID: id, Doc: doc}, nil
}

// ParseYAML parses a schema document written in YAML.
func ParseYAML(id string, data []byte) (*Schema, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed parsing yaml schema %s", id)
	}

	doc, err := normalizeYAML(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed normalizing yaml schema %s", id)
	}

	return &Schema{ID: id, Doc: doc}, nil
}

// Load reads the schema called name from fsys. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func Load(fsys fs.FS, name string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading schema %s", name)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(name, data)
	default:
		return Parse(name, data)
	}
}

// MustLoad is like Load but panics on failure. It is meant for schemas
// embedded in the binary.
func MustLoad(fsys fs.FS, name string) *Schema {
	s, err := Load(fsys, name)
	if err != nil {
		panic(err)
	}

	return s
}

// normalizeYAML converts the map[interface{}]interface{} values yaml may
// produce for non string keys into json compatible maps.
func normalizeYAML(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, item := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non string key %v", k)
			}
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			m[key] = n
		}
		return m, nil
	case []interface{}:
		for i, item := range t {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
