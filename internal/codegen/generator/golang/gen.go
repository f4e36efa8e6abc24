// Package golang renders Go bindings for the scanned procedures: typed enums
// with label conversion, parameter structs with field descriptors, and the
// procedure dispatch table.
package golang

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"log/slog"
	"text/template"

	"github.com/osconfig/cegen/internal/artifact"
	"github.com/osconfig/cegen/internal/codegen/common"
	"github.com/osconfig/cegen/internal/codegen/meta"
	"github.com/osconfig/cegen/internal/codegen/model"
)

// OutputFile is the name of the generated Go source.
const OutputFile = "procedure_map.go"

type goEnum struct {
	Name        string
	Var         string
	Pos         model.Position
	Description string
	Labels      []goLabel
}

type goLabel struct {
	Display  string
	Const    string
	Shadowed bool // display label already taken by an earlier enumerator
}

type goStruct struct {
	Name   string
	Var    string
	Pos    model.Position
	Fields []goField
}

type goField struct {
	Name     string
	Type     string
	Wire     string
	Optional bool
}

type goHandlers struct {
	Name      string
	Audit     string
	Remediate string
}

type templateData struct {
	Header   string
	Package  string
	Enums    []goEnum
	Structs  []goStruct
	Dispatch []goHandlers
}

// Generate renders procedure_map.go in opts.GoPackage.
func Generate(logger *slog.Logger, m *model.Model, opts meta.Options) ([]artifact.File, error) {
	opts = opts.WithDefaults()
	if !token.IsIdentifier(opts.GoPackage) {
		return nil, fmt.Errorf("invalid Go package name %q", opts.GoPackage)
	}

	data := templateData{
		Header:  common.GoFileHeader(opts.Version),
		Package: opts.GoPackage,
	}

	for _, e := range m.Enums() {
		data.Enums = append(data.Enums, convertEnum(e))
	}
	for _, p := range m.AllParameters() {
		gs, err := convertStruct(m, p)
		if err != nil {
			return nil, err
		}
		data.Structs = append(data.Structs, gs)
	}
	for _, d := range m.Dispatch() {
		data.Dispatch = append(data.Dispatch, goHandlers{
			Name:      d.Name,
			Audit:     handler(d.Audit),
			Remediate: handler(d.Remediate),
		})
	}

	tmpl, err := template.New(OutputFile).Funcs(tplFuncs()).Parse(bindingsTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", OutputFile, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", OutputFile, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", OutputFile, err)
	}

	logger.Info("Rendered Go bindings",
		"package", opts.GoPackage,
		"enums", len(data.Enums),
		"parameters", len(data.Structs),
		"procedures", len(data.Dispatch))
	return []artifact.File{{Path: OutputFile, Data: src}}, nil
}
