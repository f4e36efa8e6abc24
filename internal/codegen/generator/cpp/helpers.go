package cpp

import (
	"sort"
	"strings"
	"text/template"

	"github.com/osconfig/cegen/internal/codegen/common"
	"github.com/osconfig/cegen/internal/codegen/model"
)

func tplFuncs() template.FuncMap {
	return template.FuncMap{
		"members":  members,
		"names":    names,
		"handlers": handlers,
	}
}

func writeFileHeader() string {
	return common.FileHeader("//")
}

// includes lists every header declaring at least one procedure.
func includes(m *model.Model) []string {
	seen := make(map[string]struct{})
	for _, k := range []model.Kind{model.Audit, model.Remediate} {
		for _, p := range m.Procedures(k) {
			seen[p.Pos.File] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// members renders the pointer-to-member list of a Bindings tuple.
func members(p *model.Parameters) string {
	parts := make([]string, 0, len(p.Params))
	for _, f := range p.Params {
		parts = append(parts, "&T::"+f.Name)
	}
	return strings.Join(parts, ", ")
}

// names renders the brace initializer of a Bindings names array.
func names(p *model.Parameters) string {
	parts := make([]string, 0, len(p.Params))
	for _, f := range p.Params {
		parts = append(parts, `"`+f.Name+`"`)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// handlers renders the {audit, remediation} pair of a dispatch entry.
func handlers(e model.DispatchEntry) string {
	return "{" + handler(e.Audit) + ", " + handler(e.Remediate) + "}"
}

func handler(p *model.Procedure) string {
	if p == nil {
		return "nullptr"
	}
	return "MakeHandler(" + p.Symbol() + ")"
}
