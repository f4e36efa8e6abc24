// Package mof renders OsConfigResource MOF instances for compliance rules.
//
// Each resource carries an audit and an optional remediation procedure tree.
// String values of the form "$name:default" inside the audit tree become
// rule parameters: the value is rewritten to "$name" and the default is
// reported in the desired object value.
package mof

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultConfigurationName names the configuration document.
const DefaultConfigurationName = "ComplianceExample"

// Resource is one entry of the input list.
type Resource struct {
	Name      string          `json:"name" validate:"required,excludes=\""`
	Key       string          `json:"key" validate:"required,excludes=\""`
	Audit     json.RawMessage `json:"audit,omitempty"`
	Remediate json.RawMessage `json:"remediate,omitempty"`
}

// Parameter is a value extracted from the audit tree.
type Parameter struct {
	Name    string
	Default string
}

// Generator renders MOF documents.
type Generator struct {
	ConfigurationName string
	Now               func() time.Time

	validate *validator.Validate
}

func New() *Generator {
	return &Generator{
		ConfigurationName: DefaultConfigurationName,
		Now:               time.Now,
		validate:          validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ParseResources decodes and validates a JSON array of resources.
func (g *Generator) ParseResources(data []byte) ([]Resource, error) {
	var resources []Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	for i := range resources {
		if err := g.validate.Struct(&resources[i]); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return nil, fmt.Errorf("resource %d: field %s failed %q validation", i, verrs[0].Field(), verrs[0].Tag())
			}
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
	}
	return resources, nil
}

// RuleID derives a stable identifier from the resource name.
func RuleID(name string) string {
	sum := sha256.Sum256([]byte(name))
	id, _ := uuid.FromBytes(sum[:16])
	return id.String()
}

// Render writes one instance per resource followed by the configuration document.
func (g *Generator) Render(w io.Writer, resources []Resource) error {
	var buf bytes.Buffer
	for i, r := range resources {
		if err := g.renderResource(&buf, i, r); err != nil {
			return fmt.Errorf("resource %s: %w", r.Name, err)
		}
	}
	fmt.Fprintf(&buf, documentTemplate, g.Now().UTC().Format("01/02/2006 15:04:05")+" UTC", g.ConfigurationName)
	_, err := w.Write(buf.Bytes())
	return err
}

func (g *Generator) renderResource(buf *bytes.Buffer, index int, r Resource) error {
	procedure, params, err := ProcedureObject(r)
	if err != nil {
		return err
	}
	desired := make([]string, 0, len(params))
	for _, p := range params {
		desired = append(desired, p.Name+"="+p.Default)
	}
	fmt.Fprintf(buf, resourceTemplate,
		index,
		r.Name,
		r.Key,
		RuleID(r.Name),
		base64.StdEncoding.EncodeToString(procedure),
		strings.Join(desired, " "),
		g.ConfigurationName)
	return nil
}

// ProcedureObject builds the compact procedure JSON of r with its
// parameterized audit tree, and returns the extracted parameters.
func ProcedureObject(r Resource) ([]byte, []Parameter, error) {
	var params parameters
	var out bytes.Buffer
	out.WriteString(`{"name":`)
	if err := writeString(&out, r.Name); err != nil {
		return nil, nil, err
	}
	if present(r.Remediate) {
		if !gjson.ValidBytes(r.Remediate) {
			return nil, nil, errors.New("remediate is not valid JSON")
		}
		out.WriteString(`,"remediate":`)
		out.Write(pretty.Ugly(r.Remediate))
	}
	if present(r.Audit) {
		if !gjson.ValidBytes(r.Audit) {
			return nil, nil, errors.New("audit is not valid JSON")
		}
		out.WriteString(`,"audit":`)
		if err := params.rewrite(&out, gjson.ParseBytes(r.Audit)); err != nil {
			return nil, nil, err
		}
	}
	out.WriteString(`,"parameters":{`)
	for i, p := range params.list {
		if i > 0 {
			out.WriteByte(',')
		}
		if err := writeString(&out, p.Name); err != nil {
			return nil, nil, err
		}
		out.WriteByte(':')
		if err := writeString(&out, p.Default); err != nil {
			return nil, nil, err
		}
	}
	out.WriteString("}}")
	return out.Bytes(), params.list, nil
}

func present(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) > 0 && !bytes.Equal(s, []byte("null"))
}

// parameters keeps first-seen order; a repeated name updates the default.
type parameters struct {
	list  []Parameter
	index map[string]int
}

func (p *parameters) set(name, def string) {
	if p.index == nil {
		p.index = map[string]int{}
	}
	if i, ok := p.index[name]; ok {
		p.list[i].Default = def
		return
	}
	p.index[name] = len(p.list)
	p.list = append(p.list, Parameter{Name: name, Default: def})
}

// rewrite copies v compactly to out, replacing "$name:default" object
// member values with "$name". Strings directly inside arrays are kept.
func (p *parameters) rewrite(out *bytes.Buffer, v gjson.Result) error {
	switch {
	case v.IsObject():
		out.WriteByte('{')
		first := true
		var err error
		v.ForEach(func(key, value gjson.Result) bool {
			if !first {
				out.WriteByte(',')
			}
			first = false
			out.Write(pretty.Ugly([]byte(key.Raw)))
			out.WriteByte(':')
			if value.Type == gjson.String && strings.HasPrefix(value.Str, "$") {
				name, def, _ := strings.Cut(value.Str[1:], ":")
				p.set(name, def)
				err = writeString(out, "$"+name)
			} else {
				err = p.rewrite(out, value)
			}
			return err == nil
		})
		if err != nil {
			return err
		}
		out.WriteByte('}')
	case v.IsArray():
		out.WriteByte('[')
		for i, item := range v.Array() {
			if i > 0 {
				out.WriteByte(',')
			}
			if err := p.rewrite(out, item); err != nil {
				return err
			}
		}
		out.WriteByte(']')
	default:
		out.Write(pretty.Ugly([]byte(v.Raw)))
	}
	return nil
}

func writeString(out *bytes.Buffer, s string) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out.Truncate(out.Len() - 1)
	return nil
}
