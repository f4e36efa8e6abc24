package scanner

import (
	"regexp"

	"github.com/osconfig/cegen/internal/codegen/model"
)

var (
	structOpenRe  = regexp.MustCompile(`struct\s+(\w+Params)\b`)
	enumOpenRe    = regexp.MustCompile(`enum\s+class\s+(\w+)`)
	procedureRe   = regexp.MustCompile(`Result<Status>\s+(Audit|Remediate)(\w+)\s*(.*)`)
	procParamsRe  = regexp.MustCompile(`\(\s*const\s*(\w+)\s*&\s*\w+\s*,\s*IndicatorsTree`)
	forwardDeclRe = regexp.MustCompile(`^[^{]*;\s*$`)
)

// ScanHeader scans one header and adds its parameter structs, enums and
// procedures to m. file is the identifier recorded on every declaration,
// normally the header's base name.
func ScanHeader(m *model.Model, file string, src []byte) error {
	c := NewCursor(file, src)
	for {
		line, ok := c.Next()
		if !ok {
			return nil
		}

		if loc := structOpenRe.FindStringSubmatchIndex(line); loc != nil {
			if err := scanParams(m, c, line, loc); err != nil {
				return err
			}
			continue
		}

		if loc := enumOpenRe.FindStringSubmatchIndex(line); loc != nil {
			if err := scanEnum(m, c, line, loc); err != nil {
				return err
			}
			continue
		}

		if sm := procedureRe.FindStringSubmatch(line); sm != nil {
			proc := &model.Procedure{
				Kind: model.Kind(sm[1]),
				Name: sm[2],
				Pos:  pos(c),
			}
			if pm := procParamsRe.FindStringSubmatch(sm[3]); pm != nil {
				proc.ParamsName = pm[1]
			}
			if err := m.AddProcedure(proc); err != nil {
				return err
			}
		}
	}
}

func scanParams(m *model.Model, c *Cursor, line string, loc []int) error {
	name := line[loc[2]:loc[3]]
	rest := line[loc[1]:]
	if forwardDeclRe.MatchString(rest) {
		return nil
	}
	declared := pos(c)
	fields, err := NewParamBlockScanner(name).Scan(c, rest)
	if err != nil {
		return err
	}
	return m.AddParameters(&model.Parameters{Name: name, Params: fields, Pos: declared})
}

func scanEnum(m *model.Model, c *Cursor, line string, loc []int) error {
	name := line[loc[2]:loc[3]]
	rest := line[loc[1]:]
	if forwardDeclRe.MatchString(rest) {
		return nil
	}
	e, err := NewEnumBlockScanner(name, pos(c)).Scan(c, rest)
	if err != nil {
		return err
	}
	return m.AddEnum(e)
}
