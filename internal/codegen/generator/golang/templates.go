package golang

const bindingsTemplate = `{{.Header}}

package {{.Package}}
{{if .Enums}}
import "fmt"
{{end}}
{{- range $e := .Enums}}
// {{$e.Name}} is declared at {{$e.Pos}}.
{{- if $e.Description}}
// {{$e.Description}}
{{- end}}
type {{$e.Name}} int

const (
{{- range $i, $l := $e.Labels}}
	{{$l.Const}}{{if eq $i 0}} {{$e.Name}} = iota{{end}}
{{- end}}
)

var {{$e.Var}}Labels = map[string]{{$e.Name}}{
{{- range $e.Labels}}{{if not .Shadowed}}
	{{quote .Display}}: {{.Const}},
{{- end}}{{end}}
}

var {{$e.Var}}Names = revertMap({{$e.Var}}Labels)

// Parse{{$e.Name}} returns the {{$e.Name}} value labelled s.
func Parse{{$e.Name}}(s string) ({{$e.Name}}, error) {
	v, ok := {{$e.Var}}Labels[s]
	if !ok {
		return 0, fmt.Errorf("invalid {{$e.Name}} label %q", s)
	}
	return v, nil
}

// MarshalText returns the label of v. A value without a label is out of range.
func (v {{$e.Name}}) MarshalText() ([]byte, error) {
	s, ok := {{$e.Var}}Names[v]
	if !ok {
		return nil, fmt.Errorf("{{$e.Name}} value %d out of range", int(v))
	}
	return []byte(s), nil
}

func (v *{{$e.Name}}) UnmarshalText(text []byte) error {
	parsed, err := Parse{{$e.Name}}(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v {{$e.Name}}) String() string {
	if s, ok := {{$e.Var}}Names[v]; ok {
		return s
	}
	return fmt.Sprintf("{{$e.Name}}(%d)", int(v))
}
{{end}}
{{- range $s := .Structs}}
// {{$s.Name}} binds the parameters declared at {{$s.Pos}}.
type {{$s.Name}} struct {
{{- range $s.Fields}}
	{{.Name}} {{.Type}} {{tag .}}
{{- end}}
}

var {{$s.Var}}Names = []string{ {{- range $i, $f := $s.Fields}}{{if $i}}, {{end}}{{quote $f.Wire}}{{end}} }

// FieldNames lists the payload names of the fields in declaration order.
func ({{$s.Name}}) FieldNames() []string { return {{$s.Var}}Names }

// Fields returns pointers to the fields in declaration order.
func (p *{{$s.Name}}) Fields() []any {
	return []any{ {{- range $i, $f := $s.Fields}}{{if $i}}, {{end}}&p.{{$f.Name}}{{end}} }
}
{{end}}
// Handlers pairs the audit and remediation halves of a procedure. A nil
// half is not implemented.
type Handlers struct {
	Audit     Handler
	Remediate Handler
}

// ProcedureMap maps procedure names to their handlers.
var ProcedureMap = map[string]Handlers{
{{- range .Dispatch}}
	{{quote .Name}}: {Audit: {{.Audit}}, Remediate: {{.Remediate}}},
{{- end}}
}
{{- if .Enums}}

func revertMap[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
{{- end}}
`
