package golang

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/osconfig/cegen/internal/codegen/common"
	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/validator"
)

func tplFuncs() template.FuncMap {
	return template.FuncMap{
		"quote": strconv.Quote,
		"tag":   tag,
	}
}

// scalarTypes maps built-in C++ scalars to Go. Other non-enum scalars are
// carried as strings.
var scalarTypes = map[string]string{
	"int":    "int",
	"bool":   "bool",
	"mode_t": "uint32",
}

func convertEnum(e *model.Enum) goEnum {
	ge := goEnum{
		Name:        e.Name,
		Var:         common.ToCamelCase(e.Name),
		Pos:         e.Pos,
		Description: e.Description,
	}
	// The first enumerator wins a repeated display label, like the C++ map
	// initializer. Later ones keep their constant but have no label.
	seen := make(map[string]bool, len(e.Labels))
	for _, l := range e.Labels {
		gl := goLabel{
			Display: l.Display,
			Const:   e.Name + common.ExportName(l.Ident),
		}
		if seen[l.Display] {
			gl.Display = ""
			gl.Shadowed = true
		}
		seen[l.Display] = true
		ge.Labels = append(ge.Labels, gl)
	}
	return ge
}

// descriptorMethods are the methods generated on every parameter struct.
var descriptorMethods = map[string]bool{
	"FieldNames": true,
	"Fields":     true,
}

func convertStruct(m *model.Model, p *model.Parameters) (goStruct, error) {
	gs := goStruct{
		Name: p.Name,
		Var:  common.ToCamelCase(p.Name),
		Pos:  p.Pos,
	}
	byName := make(map[string]string, len(p.Params))
	for _, f := range p.Params {
		name := common.ExportName(f.Name)
		if descriptorMethods[name] {
			return goStruct{}, fmt.Errorf("%s.%s: Go field %s clashes with the generated %s method", p.Name, f.Name, name, name)
		}
		if prev, ok := byName[name]; ok {
			return goStruct{}, fmt.Errorf("%s.%s: Go field %s is also produced by %s", p.Name, f.Name, name, prev)
		}
		byName[name] = f.Name

		typ, err := goType(m, f)
		if err != nil {
			return goStruct{}, fmt.Errorf("%s.%s: %w", p.Name, f.Name, err)
		}
		gs.Fields = append(gs.Fields, goField{
			Name:     name,
			Type:     typ,
			Wire:     f.Name,
			Optional: f.Optional,
		})
	}
	return gs, nil
}

// goType maps Optional<X> to *X and Separated<X, ...> to []X.
func goType(m *model.Model, f model.Parameter) (string, error) {
	scalar, err := validator.ScalarType(f)
	if err != nil {
		return "", err
	}
	typ, ok := scalarTypes[scalar]
	if !ok {
		typ = "string"
		if _, isEnum := m.Enum(scalar); isEnum {
			typ = scalar
		}
	}

	inner := strings.TrimSpace(f.Type)
	if f.Optional {
		inner = strings.TrimSuffix(strings.TrimPrefix(inner, "Optional<"), ">")
	}
	if strings.HasPrefix(inner, "Separated<") {
		return "[]" + typ, nil
	}
	if f.Optional {
		return "*" + typ, nil
	}
	return typ, nil
}

// tag renders the struct tag carrying the payload name of f.
func tag(f goField) string {
	opts := f.Wire
	if f.Optional {
		opts += ",omitempty"
	}
	return "`json:" + strconv.Quote(opts) + "`"
}

func handler(p *model.Procedure) string {
	if p == nil {
		return "nil"
	}
	return "MakeHandler(" + p.Symbol() + ")"
}
