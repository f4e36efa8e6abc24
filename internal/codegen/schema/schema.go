// Package schema renders JSON Schema documents for scanned procedures and
// merges per-file schemas into the global payload schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/pattern"
)

// Draft07 is the $schema value of every per-file document.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// HeaderExt is the extension every schema-producing file must carry.
const HeaderExt = ".h"

// Field constrains a single parameter value.
type Field struct {
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	Pattern     string  `json:"pattern,omitempty"`
}

// Property is one named entry of an ordered properties object.
type Property struct {
	Name  string
	Value any
}

// Properties marshals as a JSON object keeping insertion order.
type Properties []Property

func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalRaw(prop.Name)
		if err != nil {
			return nil, err
		}
		v, err := marshalRaw(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Object is a closed object schema.
type Object struct {
	Type                 string     `json:"type"`
	Required             []string   `json:"required"`
	AdditionalProperties bool       `json:"additionalProperties"`
	Properties           Properties `json:"properties"`
}

// AnyOf holds alternative schemas.
type AnyOf struct {
	AnyOf []*Object `json:"anyOf"`
}

// Definitions groups the audit and remediation halves of a file.
type Definitions struct {
	Audit       AnyOf `json:"audit"`
	Remediation AnyOf `json:"remediation"`
}

// File is the schema document generated for one header.
type File struct {
	Schema      string      `json:"$schema"`
	Definitions Definitions `json:"definitions"`
}

// ForProcedure builds the payload schema of proc: an object with exactly
// one property named after the procedure whose value holds the parameters.
func ForProcedure(m *model.Model, proc *model.Procedure) (*Object, error) {
	inner := &Object{
		Type:     "object",
		Required: []string{},
	}

	if proc.ParamsName != "" {
		params, ok := m.Parameters(proc.ParamsName)
		if !ok {
			return nil, model.Errorf(model.UnresolvedReference, proc.Pos, proc.Symbol(),
				"unknown parameters struct %s", proc.ParamsName)
		}
		for _, p := range params.Params {
			if !p.Optional {
				inner.Required = append(inner.Required, p.Name)
			}
		}
		for _, p := range params.Params {
			f := Field{Type: "string", Description: p.Description}
			if p.Pattern != nil {
				expanded, err := pattern.Expand(*p.Pattern)
				if err != nil {
					e := model.Errorf(model.InvalidPattern,
						model.Position{File: params.Pos.File, Line: p.Line},
						proc.Symbol()+"."+p.Name, "derived pattern does not compile")
					e.Cause = err
					return nil, e
				}
				f.Pattern = expanded
			}
			inner.Properties = append(inner.Properties, Property{Name: p.Name, Value: f})
		}
	}

	return &Object{
		Type:       "object",
		Required:   []string{proc.Name},
		Properties: Properties{{Name: proc.Name, Value: inner}},
	}, nil
}

// ForFile builds the schema document for every procedure declared in file.
func ForFile(m *model.Model, file string) (*File, error) {
	doc := &File{
		Schema: Draft07,
		Definitions: Definitions{
			Audit:       AnyOf{AnyOf: []*Object{}},
			Remediation: AnyOf{AnyOf: []*Object{}},
		},
	}
	for _, k := range []model.Kind{model.Audit, model.Remediate} {
		for _, proc := range m.ProceduresIn(k, file) {
			obj, err := ForProcedure(m, proc)
			if err != nil {
				return nil, err
			}
			if k == model.Audit {
				doc.Definitions.Audit.AnyOf = append(doc.Definitions.Audit.AnyOf, obj)
			} else {
				doc.Definitions.Remediation.AnyOf = append(doc.Definitions.Remediation.AnyOf, obj)
			}
		}
	}
	return doc, nil
}

// Stem returns the file identifier without its header extension.
func Stem(file string) (string, error) {
	base := path.Base(file)
	if !strings.HasSuffix(base, HeaderExt) {
		return "", fmt.Errorf("file %s does not end with %s", file, HeaderExt)
	}
	return strings.TrimSuffix(base, HeaderExt), nil
}

// FilePath is the location of the schema for stem, relative to the schema directory.
func FilePath(stem string) string {
	return "procedures/" + stem + ".schema.json"
}

// Marshal serializes v with two-space indentation and a trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
