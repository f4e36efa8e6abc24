package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osconfig/cegen/internal/artifact"
	"github.com/osconfig/cegen/internal/codegen/common"
	"github.com/osconfig/cegen/internal/codegen/generator"
	"github.com/osconfig/cegen/internal/codegen/meta"
	"github.com/osconfig/cegen/internal/log"
)

type Generate struct {
	Source     string   `help:"Directory containing the procedure headers" required:"" type:"existingdir" env:"CEGEN_SOURCE"`
	Glob       string   `help:"Glob selecting headers below --source" default:"**/*.h" env:"CEGEN_GLOB"`
	SchemaDir  string   `help:"Directory receiving the JSON schemas" required:"" env:"CEGEN_SCHEMA_DIR"`
	BaseSchema string   `help:"Payload schema to merge into (defaults to <schema-dir>/payload.schema.json)" env:"CEGEN_BASE_SCHEMA"`
	Output     string   `help:"Directory receiving the bindings, one subdirectory per language" required:"" env:"CEGEN_OUTPUT"`
	Lang       []string `help:"Binding languages: cpp, go" default:"cpp,go" env:"CEGEN_LANG"`
	GoPackage  string   `help:"Package name of the Go bindings" default:"procedures" env:"CEGEN_GO_PACKAGE"`
	ExtraType  []string `name:"extra-type" help:"Additional scalar type accepted in parameter structs" env:"CEGEN_EXTRA_TYPES"`
	DryRun     bool     `help:"Render everything but only list the files that would be written"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	return g.run(logger, rawLogger, os.Stdout)
}

func (g *Generate) run(logger *slog.Logger, rawLogger log.RawLogger, stdout io.Writer) error {
	logger.Info("Starting cegen generation", "source", g.Source, "schemaDir", g.SchemaDir, "output", g.Output, "lang", g.Lang)

	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	gen := generator.New(generator.Config{
		Glob:       g.Glob,
		ExtraTypes: g.ExtraType,
		Meta:       meta.Options{GoPackage: g.GoPackage, Version: version},
	}, logger)

	m, err := gen.Scan(os.DirFS(g.Source))
	if err != nil {
		return err
	}

	basePath := g.basePath()
	base, err := os.ReadFile(basePath)
	if err != nil {
		return fmt.Errorf("read base schema: %w", err)
	}

	out, err := gen.Render(m, base, g.Lang)
	if err != nil {
		return err
	}

	batches := []artifact.Batch{
		{Root: g.SchemaDir, Files: out.Schemas},
		{Root: g.Output, Files: out.Bindings},
	}
	for _, b := range batches {
		for _, f := range b.Files {
			rawLogger.Log(filepath.ToSlash(filepath.Join(b.Root, f.Path)), f.Data)
		}
	}

	if g.DryRun {
		for _, b := range batches {
			for _, p := range b.Paths() {
				if _, err := fmt.Fprintln(stdout, p); err != nil {
					return err
				}
			}
		}
		logger.Info("Dry run complete, nothing written")
		return nil
	}

	if err := artifact.NewWriter(logger).Write(batches...); err != nil {
		return err
	}
	logger.Info("Generation complete", "schemas", len(out.Schemas), "bindings", len(out.Bindings))
	return nil
}

func (g *Generate) basePath() string {
	if g.BaseSchema != "" {
		return g.BaseSchema
	}
	return filepath.Join(g.SchemaDir, generator.GlobalSchemaFile)
}
