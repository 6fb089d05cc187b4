package schema

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Violation describes a single schema rule a value does not satisfy. Path is
// a JSON pointer to the offending property.
type Violation struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Validator checks values against schemas.
type Validator interface {
	// Validate returns true when v conforms to s. Otherwise it returns false
	// and one violation per rule v breaks.
	Validate(s *Schema, v interface{}) (bool, []Violation)
}

// JSONSchemaValidator validates values with a JSON Schema implementation.
// Every call compiles the schema with a fresh compiler, so the validator
// holds no state and can be shared between invocations.
type JSONSchemaValidator struct {
	printer *message.Printer
}

// NewJSONSchemaValidator returns a validator reporting messages in English.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{printer: message.NewPrinter(language.English)}
}

// Validate implements Validator.
func (v *JSONSchemaValidator) Validate(s *Schema, value interface{}) (bool, []Violation) {
	if s == nil {
		return false, []Violation{{Message: "schema is not provided", Path: ""}}
	}

	compiled, err := v.compile(s)
	if err != nil {
		return false, []Violation{{Message: err.Error(), Path: ""}}
	}

	err = compiled.Validate(value)
	if err == nil {
		return true, nil
	}

	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return false, []Violation{{Message: err.Error(), Path: ""}}
	}

	violations := v.collect(verr, nil)
	if len(violations) == 0 {
		violations = append(violations, Violation{
			Message: verr.ErrorKind.LocalizedString(v.printer),
			Path:    pointer(verr.InstanceLocation),
		})
	}

	return false, violations
}

func (v *JSONSchemaValidator) compile(s *Schema) (*jsonschema.Schema, error) {
	loc := resourceURL(s.ID)

	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, s.Doc); err != nil {
		return nil, errors.Wrapf(err, "failed adding schema %s", s.ID)
	}

	compiled, err := c.Compile(loc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed compiling schema %s", s.ID)
	}

	return compiled, nil
}

// collect walks the error tree and returns its leaves. Missing required
// properties are reported one by one, pointing at the property itself.
func (v *JSONSchemaValidator) collect(verr *jsonschema.ValidationError, out []Violation) []Violation {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			out = v.collect(cause, out)
		}
		return out
	}

	if required, ok := verr.ErrorKind.(*kind.Required); ok {
		for _, missing := range required.Missing {
			single := &kind.Required{Missing: []string{missing}}
			out = append(out, Violation{
				Message: single.LocalizedString(v.printer),
				Path:    pointer(append(append([]string{}, verr.InstanceLocation...), missing)),
			})
		}
		return out
	}

	return append(out, Violation{
		Message: verr.ErrorKind.LocalizedString(v.printer),
		Path:    pointer(verr.InstanceLocation),
	})
}

// resourceURL turns a schema id into an absolute location the compiler
// accepts without touching the filesystem.
func resourceURL(id string) string {
	if u, err := url.Parse(id); err == nil && u.IsAbs() {
		return id
	}

	if id == "" {
		id = "schema.json"
	}

	return "mem:///" + strings.TrimPrefix(id, "/")
}

func pointer(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		sb.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}

	return sb.String()
}
