// Package model holds the semantic model built from scanned procedure headers.
//
// The model is populated by the scanner, checked once by the validator and then
// read by the schema and binding generators. Entities are never removed or
// replaced after they are added.
package model

import (
	"sort"
	"strings"
)

// Kind distinguishes the two halves of a procedure.
type Kind string

const (
	Audit     Kind = "Audit"
	Remediate Kind = "Remediate"
)

// DefaultScalarTypes are the field types every header may use without declaring them.
var DefaultScalarTypes = []string{"int", "std::string", "regex", "bool", "mode_t", "Pattern"}

// Parameter is one field of a parameter struct.
type Parameter struct {
	Type        string  `json:"type" yaml:"type"`                                   // e.g. "std::string", "Optional<Separated<Pattern, '|'>>"
	Name        string  `json:"name" yaml:"name"`                                   // field name, unique within its struct
	Optional    bool    `json:"optional" yaml:"optional"`                           // true when Type is Optional<...>
	Description *string `json:"description,omitempty" yaml:"description,omitempty"` // from the preceding /// line
	Pattern     *string `json:"pattern,omitempty" yaml:"pattern,omitempty"`         // from the preceding /// pattern: line
	Line        int     `json:"line" yaml:"line"`
}

// Parameters is a <Name>Params struct declaration.
type Parameters struct {
	Name   string      `json:"name" yaml:"name"`
	Params []Parameter `json:"params" yaml:"params"`
	Pos    Position    `json:"pos" yaml:"pos"`
}

// Field returns the parameter with the given name.
func (p *Parameters) Field(name string) (Parameter, bool) {
	for _, f := range p.Params {
		if f.Name == name {
			return f, true
		}
	}
	return Parameter{}, false
}

// EnumLabel is one enumerator with its display value.
type EnumLabel struct {
	Ident       string `json:"ident" yaml:"ident"`
	Display     string `json:"display" yaml:"display"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Enum is an `enum class` declaration.
type Enum struct {
	Name        string      `json:"name" yaml:"name"`
	Labels      []EnumLabel `json:"labels" yaml:"labels"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Pos         Position    `json:"pos" yaml:"pos"`
}

// Procedure is a single Audit<Name> or Remediate<Name> declaration.
type Procedure struct {
	Kind       Kind     `json:"kind" yaml:"kind"`
	Name       string   `json:"name" yaml:"name"`
	ParamsName string   `json:"paramsName,omitempty" yaml:"paramsName,omitempty"` // empty when the procedure takes no params
	Pos        Position `json:"pos" yaml:"pos"`
}

// Symbol returns the C++ function name, e.g. "AuditEnsureFoo".
func (p *Procedure) Symbol() string {
	return string(p.Kind) + p.Name
}

// Model is the aggregate of every declaration seen during a run.
type Model struct {
	audits       map[string]*Procedure
	remediations map[string]*Procedure
	enums        map[string]*Enum
	parameters   map[string]*Parameters
	supported    map[string]struct{}
	files        map[string]struct{}

	enumOrder  []string
	paramOrder []string
}

// New creates an empty model whose supported types are DefaultScalarTypes plus extra.
func New(extra ...string) *Model {
	m := &Model{
		audits:       make(map[string]*Procedure),
		remediations: make(map[string]*Procedure),
		enums:        make(map[string]*Enum),
		parameters:   make(map[string]*Parameters),
		supported:    make(map[string]struct{}),
		files:        make(map[string]struct{}),
	}
	for _, t := range DefaultScalarTypes {
		m.supported[t] = struct{}{}
	}
	for _, t := range extra {
		if t = strings.TrimSpace(t); t != "" {
			m.supported[t] = struct{}{}
		}
	}
	return m
}

// AddParameters registers a parameter struct.
func (m *Model) AddParameters(p *Parameters) error {
	if prev, ok := m.parameters[p.Name]; ok {
		e := Errorf(DuplicateDeclaration, p.Pos, p.Name, "parameters struct declared twice")
		e.Prev = &prev.Pos
		return e
	}
	m.parameters[p.Name] = p
	m.paramOrder = append(m.paramOrder, p.Name)
	return nil
}

// AddEnum registers an enum and makes its name usable as a field type.
func (m *Model) AddEnum(e *Enum) error {
	if prev, ok := m.enums[e.Name]; ok {
		err := Errorf(DuplicateDeclaration, e.Pos, e.Name, "enum declared twice")
		err.Prev = &prev.Pos
		return err
	}
	m.enums[e.Name] = e
	m.enumOrder = append(m.enumOrder, e.Name)
	m.supported[e.Name] = struct{}{}
	return nil
}

// AddProcedure registers a procedure and marks its file as processed.
// The referenced parameters struct, if any, must already be registered.
func (m *Model) AddProcedure(p *Procedure) error {
	procs, err := m.byKind(p.Kind)
	if err != nil {
		return Errorf(MalformedDeclaration, p.Pos, p.Name, "%v", err)
	}
	if p.ParamsName != "" {
		if _, ok := m.parameters[p.ParamsName]; !ok {
			return Errorf(UnresolvedReference, p.Pos, p.Symbol(),
				"parameters struct %s is not declared before its use", p.ParamsName)
		}
	}
	if prev, ok := procs[p.Name]; ok {
		e := Errorf(DuplicateDeclaration, p.Pos, p.Symbol(), "procedure declared twice")
		e.Prev = &prev.Pos
		return e
	}
	procs[p.Name] = p
	m.MarkFile(p.Pos.File)
	return nil
}

// MarkFile records file as contributing procedures to the model.
func (m *Model) MarkFile(file string) {
	if file != "" {
		m.files[file] = struct{}{}
	}
}

func (m *Model) byKind(k Kind) (map[string]*Procedure, error) {
	switch k {
	case Audit:
		return m.audits, nil
	case Remediate:
		return m.remediations, nil
	default:
		return nil, &unknownKindError{kind: k}
	}
}

type unknownKindError struct{ kind Kind }

func (e *unknownKindError) Error() string { return "invalid procedure type " + string(e.kind) }

// Procedure looks up a procedure by kind and name.
func (m *Model) Procedure(k Kind, name string) (*Procedure, bool) {
	procs, err := m.byKind(k)
	if err != nil {
		return nil, false
	}
	p, ok := procs[name]
	return p, ok
}

// Procedures returns every procedure of kind k sorted by name.
func (m *Model) Procedures(k Kind) []*Procedure {
	procs, _ := m.byKind(k)
	out := make([]*Procedure, 0, len(procs))
	for _, name := range sortedKeys(procs) {
		out = append(out, procs[name])
	}
	return out
}

// ProceduresIn returns the procedures of kind k declared in file, sorted by name.
func (m *Model) ProceduresIn(k Kind, file string) []*Procedure {
	var out []*Procedure
	for _, p := range m.Procedures(k) {
		if p.Pos.File == file {
			out = append(out, p)
		}
	}
	return out
}

// Parameters looks up a parameter struct by name.
func (m *Model) Parameters(name string) (*Parameters, bool) {
	p, ok := m.parameters[name]
	return p, ok
}

// AllParameters returns parameter structs in declaration order.
func (m *Model) AllParameters() []*Parameters {
	out := make([]*Parameters, 0, len(m.paramOrder))
	for _, name := range m.paramOrder {
		out = append(out, m.parameters[name])
	}
	return out
}

// Enum looks up an enum by name.
func (m *Model) Enum(name string) (*Enum, bool) {
	e, ok := m.enums[name]
	return e, ok
}

// Enums returns enums in declaration order.
func (m *Model) Enums() []*Enum {
	out := make([]*Enum, 0, len(m.enumOrder))
	for _, name := range m.enumOrder {
		out = append(out, m.enums[name])
	}
	return out
}

// IsSupported reports whether t is a built-in scalar or a declared enum.
func (m *Model) IsSupported(t string) bool {
	_, ok := m.supported[t]
	return ok
}

// SupportedTypes returns the supported scalar type names, sorted.
func (m *Model) SupportedTypes() []string {
	return sortedKeys(m.supported)
}

// Files returns the processed file identifiers, sorted.
func (m *Model) Files() []string {
	return sortedKeys(m.files)
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
