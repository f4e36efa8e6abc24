// Command scan-headers dumps the raw declarations found below a directory as
// JSON without validating them.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/scanner"
)

type declarations struct {
	Files        []string            `json:"files"`
	Enums        []*model.Enum       `json:"enums"`
	Parameters   []*model.Parameters `json:"parameters"`
	Audits       []*model.Procedure  `json:"audits"`
	Remediations []*model.Procedure  `json:"remediations"`
}

func main() {
	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	fsys := os.DirFS(root)
	files, err := scanner.Discover(fsys, scanner.DefaultGlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to discover headers: %v\n", err)
		os.Exit(1)
	}

	m := model.New()
	if err := scanner.ScanAll(m, fsys, files); err != nil {
		fmt.Fprintf(os.Stderr, "failed to scan headers: %v\n", err)
		os.Exit(1)
	}

	output, err := json.MarshalIndent(declarations{
		Files:        files,
		Enums:        m.Enums(),
		Parameters:   m.AllParameters(),
		Audits:       m.Procedures(model.Audit),
		Remediations: m.Procedures(model.Remediate),
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(output))
}
