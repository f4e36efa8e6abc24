package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ddddddO/gtree"
	yaml "gopkg.in/yaml.v3"

	"github.com/osconfig/cegen/internal/codegen/generator"
	"github.com/osconfig/cegen/internal/codegen/model"
)

type Inspect struct {
	Source    string   `help:"Directory containing the procedure headers" required:"" type:"existingdir" env:"CEGEN_SOURCE"`
	Glob      string   `help:"Glob selecting headers below --source" default:"**/*.h" env:"CEGEN_GLOB"`
	ExtraType []string `name:"extra-type" help:"Additional scalar type accepted in parameter structs" env:"CEGEN_EXTRA_TYPES"`
	Format    string   `help:"Output format" enum:"tree,json,yaml" default:"tree"`
}

// modelView is the serialized form of a validated model.
type modelView struct {
	Files        []string            `json:"files" yaml:"files"`
	Enums        []*model.Enum       `json:"enums" yaml:"enums"`
	Parameters   []*model.Parameters `json:"parameters" yaml:"parameters"`
	Audits       []*model.Procedure  `json:"audits" yaml:"audits"`
	Remediations []*model.Procedure  `json:"remediations" yaml:"remediations"`
	Dispatch     []dispatchView      `json:"dispatch" yaml:"dispatch"`
}

type dispatchView struct {
	Name      string `json:"name" yaml:"name"`
	Audit     string `json:"audit,omitempty" yaml:"audit,omitempty"`
	Remediate string `json:"remediate,omitempty" yaml:"remediate,omitempty"`
}

// Run is called by Kong when the inspect command is executed.
func (c *Inspect) Run(logger *slog.Logger) error {
	return c.run(logger, os.Stdout)
}

func (c *Inspect) run(logger *slog.Logger, w io.Writer) error {
	gen := generator.New(generator.Config{Glob: c.Glob, ExtraTypes: c.ExtraType}, logger)
	m, err := gen.Scan(os.DirFS(c.Source))
	if err != nil {
		return err
	}

	switch c.Format {
	case "tree", "":
		return gtree.OutputFromRoot(w, modelTree(m))
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(newModelView(m))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newModelView(m)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
}

func newModelView(m *model.Model) modelView {
	v := modelView{
		Files:        m.Files(),
		Enums:        m.Enums(),
		Parameters:   m.AllParameters(),
		Audits:       m.Procedures(model.Audit),
		Remediations: m.Procedures(model.Remediate),
	}
	for _, d := range m.Dispatch() {
		dv := dispatchView{Name: d.Name}
		if d.Audit != nil {
			dv.Audit = d.Audit.Symbol()
		}
		if d.Remediate != nil {
			dv.Remediate = d.Remediate.Symbol()
		}
		v.Dispatch = append(v.Dispatch, dv)
	}
	return v
}

func modelTree(m *model.Model) *gtree.Node {
	root := gtree.NewRoot("model")

	enums := root.Add("enums")
	for _, e := range m.Enums() {
		node := enums.Add(fmt.Sprintf("%s (%s)", e.Name, e.Pos))
		for _, l := range e.Labels {
			node.Add(fmt.Sprintf("%s = %s", l.Display, l.Ident))
		}
	}

	params := root.Add("parameters")
	for _, p := range m.AllParameters() {
		node := params.Add(fmt.Sprintf("%s (%s)", p.Name, p.Pos))
		for _, f := range p.Params {
			text := fmt.Sprintf("%s %s", f.Type, f.Name)
			if f.Pattern != nil {
				text += " /" + *f.Pattern + "/"
			}
			node.Add(text)
		}
	}

	for _, k := range []model.Kind{model.Audit, model.Remediate} {
		procs := root.Add(string(k))
		for _, p := range m.Procedures(k) {
			text := fmt.Sprintf("%s (%s)", p.Symbol(), p.Pos)
			if p.ParamsName != "" {
				text += " <- " + p.ParamsName
			}
			procs.Add(text)
		}
	}
	return root
}
