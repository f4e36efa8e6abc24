package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/osconfig/cegen/internal/mof"
)

type Mof struct {
	Resources string `arg:"" help:"JSON file listing the resources" type:"existingfile"`
	Name      string `help:"Configuration name" default:"ComplianceExample" env:"CEGEN_MOF_NAME"`
}

// Run is called by Kong when the mof command is executed.
func (c *Mof) Run(logger *slog.Logger) error {
	return c.run(logger, os.Stdout)
}

func (c *Mof) run(logger *slog.Logger, w io.Writer) error {
	data, err := os.ReadFile(c.Resources)
	if err != nil {
		return fmt.Errorf("read resources: %w", err)
	}

	gen := mof.New()
	if c.Name != "" {
		gen.ConfigurationName = c.Name
	}
	resources, err := gen.ParseResources(data)
	if err != nil {
		return err
	}
	logger.Debug("Rendering MOF", "resources", len(resources), "configuration", gen.ConfigurationName)
	return gen.Render(w, resources)
}
