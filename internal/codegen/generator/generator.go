package generator

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/osconfig/cegen/internal/artifact"
	"github.com/osconfig/cegen/internal/codegen/generator/cpp"
	"github.com/osconfig/cegen/internal/codegen/generator/golang"
	"github.com/osconfig/cegen/internal/codegen/meta"
	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/scanner"
	"github.com/osconfig/cegen/internal/codegen/schema"
	"github.com/osconfig/cegen/internal/codegen/validator"
)

// GlobalSchemaFile is the merged payload schema, relative to the schema directory.
const GlobalSchemaFile = "payload.schema.json"

type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// Config selects what is scanned and how bindings are rendered.
type Config struct {
	Glob       string
	ExtraTypes []string
	Meta       meta.Options
}

type LanguageGenerator func(logger *slog.Logger, m *model.Model, opts meta.Options) ([]artifact.File, error)

var generators = map[string]LanguageGenerator{
	"cpp": cpp.Generate,
	"go":  golang.Generate,
}

// Output holds every artifact of one run, relative to the schema and
// binding output directories.
type Output struct {
	Schemas  []artifact.File
	Bindings []artifact.File
}

func New(cfg Config, logger *slog.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: logger,
	}
}

// Languages returns the binding targets in sorted order.
func Languages() []string {
	out := make([]string, 0, len(generators))
	for k := range generators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Scan discovers and scans the headers of fsys and validates the result.
func (g *Generator) Scan(fsys fs.FS) (*model.Model, error) {
	g.logger.Info("Scanning declarations", "glob", g.glob())

	files, err := scanner.Discover(fsys, g.cfg.Glob)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Discovered headers", "files", files)

	m := model.New(g.cfg.ExtraTypes...)
	if err := scanner.ScanAll(m, fsys, files); err != nil {
		return nil, err
	}
	g.logger.Info("Scanned headers",
		"files", len(files),
		"parameters", len(m.AllParameters()),
		"enums", len(m.Enums()),
		"audits", len(m.Procedures(model.Audit)),
		"remediations", len(m.Procedures(model.Remediate)))

	g.logger.Debug("Validating model")
	if err := validator.Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Schemas renders one schema per file declaring procedures plus the global
// payload schema merged from base.
func (g *Generator) Schemas(m *model.Model, base []byte) ([]artifact.File, error) {
	files := m.Files()
	out := make([]artifact.File, 0, len(files)+1)
	for _, f := range files {
		stem, err := schema.Stem(f)
		if err != nil {
			return nil, err
		}
		doc, err := schema.ForFile(m, f)
		if err != nil {
			return nil, err
		}
		data, err := schema.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", f, err)
		}
		g.logger.Debug("Rendered file schema", "file", f)
		out = append(out, artifact.File{Path: schema.FilePath(stem), Data: data})
	}

	global, err := schema.MergeGlobal(base, files)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", GlobalSchemaFile, err)
	}
	out = append(out, artifact.File{Path: GlobalSchemaFile, Data: global})

	g.logger.Info("Rendered schemas", "files", len(files))
	return out, nil
}

// GenerateLang renders the bindings of one language below a directory named
// after it.
func (g *Generator) GenerateLang(m *model.Model, lang string) ([]artifact.File, error) {
	gen, ok := generators[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language '%s' (supported: %v)", lang, Languages())
	}

	g.logger.Info("Generating bindings", "language", lang)

	files, err := gen(g.logger, m, g.cfg.Meta)
	if err != nil {
		return nil, fmt.Errorf("generate %s bindings: %w", lang, err)
	}
	for i := range files {
		files[i].Path = path.Join(lang, files[i].Path)
	}
	return files, nil
}

// Render produces every artifact in memory. Nothing is written.
func (g *Generator) Render(m *model.Model, base []byte, langs []string) (*Output, error) {
	schemas, err := g.Schemas(m, base)
	if err != nil {
		return nil, err
	}
	out := &Output{Schemas: schemas}
	for _, lang := range langs {
		files, err := g.GenerateLang(m, lang)
		if err != nil {
			return nil, err
		}
		out.Bindings = append(out.Bindings, files...)
	}
	return out, nil
}

func (g *Generator) glob() string {
	if g.cfg.Glob == "" {
		return scanner.DefaultGlob
	}
	return g.cfg.Glob
}
