package cpp

import (
	"bytes"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/osconfig/cegen/internal/artifact"
	"github.com/osconfig/cegen/internal/codegen/meta"
	"github.com/osconfig/cegen/internal/codegen/model"
)

const (
	HeaderFile = "ProcedureMap.h"
	SourceFile = "ProcedureMap.cpp"
)

type templateData struct {
	Header     string
	Includes   []string
	Enums      []*model.Enum
	Parameters []*model.Parameters
	Dispatch   []model.DispatchEntry
}

// Generate renders the C++ procedure map: enum label maps, parameter
// bindings, enum string conversion and the evaluator dispatch table.
func Generate(logger *slog.Logger, m *model.Model, _ meta.Options) ([]artifact.File, error) {
	data := templateData{
		Header:     writeFileHeader(),
		Includes:   includes(m),
		Enums:      m.Enums(),
		Parameters: m.AllParameters(),
		Dispatch:   m.Dispatch(),
	}

	var files []artifact.File
	for _, t := range []struct {
		name string
		tpl  string
	}{
		{HeaderFile, headerTemplate},
		{SourceFile, sourceTemplate},
	} {
		logger.Debug("Rendering " + t.name)
		out, err := render(t.name, t.tpl, data)
		if err != nil {
			return nil, err
		}
		files = append(files, artifact.File{Path: t.name, Data: out})
	}

	logger.Info("Rendered C++ bindings",
		"enums", len(data.Enums),
		"parameters", len(data.Parameters),
		"procedures", len(data.Dispatch))
	return files, nil
}

func render(name, tpl string, data templateData) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(tplFuncs()).Parse(tpl)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}
