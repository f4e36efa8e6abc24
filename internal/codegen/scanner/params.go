package scanner

import (
	"regexp"
	"strings"

	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/pattern"
)

var (
	paramsCloseRe = regexp.MustCompile(`^}\s*;`)
	patternNoteRe = regexp.MustCompile(`^///\s*pattern:\s*(.*)`)
	docNoteRe     = regexp.MustCompile(`^///\s*(.*)`)
	fieldDeclRe   = regexp.MustCompile(`((\w|::)+)(<(.*)>)?\s+(\w+)(\s*;|\s*=[^;]*;)`)
)

// ParamBlockScanner consumes the body of a `struct <Name>Params` declaration.
// Pending description and pattern annotations attach to the next field and
// survive blank or unrecognized lines in between.
type ParamBlockScanner struct {
	name    string
	inside  bool
	desc    *string
	pattern *string
	fields  []model.Parameter
	seen    map[string]int
}

// NewParamBlockScanner prepares a scanner for the struct called name.
func NewParamBlockScanner(name string) *ParamBlockScanner {
	return &ParamBlockScanner{name: name, seen: make(map[string]int)}
}

// Scan consumes the text after the struct name on the opening line (rest)
// and then lines from c up to and including the closing `};`.
func (s *ParamBlockScanner) Scan(c *Cursor, rest string) ([]model.Parameter, error) {
	done, err := s.feed(c, strings.TrimSpace(rest))
	for !done && err == nil {
		line, ok := c.Next()
		if !ok {
			return nil, model.Errorf(model.MalformedDeclaration, pos(c), s.name,
				"end of file before the closing '};' of the struct")
		}
		done, err = s.feed(c, line)
	}
	if err != nil {
		return nil, err
	}
	return s.fields, nil
}

func (s *ParamBlockScanner) feed(c *Cursor, text string) (bool, error) {
	if !s.inside {
		i := strings.Index(text, "{")
		if i < 0 {
			return false, nil
		}
		s.inside = true
		text = strings.TrimSpace(text[i+1:])
	}

	for text != "" {
		if paramsCloseRe.MatchString(text) {
			return true, nil
		}

		if m := patternNoteRe.FindStringSubmatch(text); m != nil {
			p := strings.TrimSpace(m[1])
			if err := pattern.Validate(p); err != nil {
				e := model.Errorf(model.InvalidPattern, pos(c), s.name, "field pattern %q does not compile", p)
				e.Cause = err
				return false, e
			}
			s.pattern = &p
			return false, nil
		}
		if m := docNoteRe.FindStringSubmatch(text); m != nil {
			d := strings.TrimSpace(m[1])
			s.desc = &d
			return false, nil
		}
		if strings.HasPrefix(text, "//") {
			return false, nil
		}

		loc := fieldDeclRe.FindStringSubmatchIndex(text)
		if loc == nil {
			return false, nil
		}
		if err := s.addField(c, text, loc); err != nil {
			return false, err
		}
		text = strings.TrimSpace(text[loc[1]:])
	}
	return false, nil
}

func (s *ParamBlockScanner) addField(c *Cursor, text string, loc []int) error {
	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}
	typ := group(1)
	name := group(5)
	optional := typ == "Optional"
	if loc[6] >= 0 {
		typ = typ + "<" + group(4) + ">"
	}

	if prev, ok := s.seen[name]; ok {
		e := model.Errorf(model.DuplicateDeclaration, pos(c), s.name+"."+name, "field declared twice")
		e.Prev = &model.Position{File: c.File(), Line: prev}
		return e
	}
	s.seen[name] = c.Line()
	s.fields = append(s.fields, model.Parameter{
		Type:        typ,
		Name:        name,
		Optional:    optional,
		Description: s.desc,
		Pattern:     s.pattern,
		Line:        c.Line(),
	})
	s.desc = nil
	s.pattern = nil
	return nil
}

func pos(c *Cursor) model.Position {
	return model.Position{File: c.File(), Line: c.Line()}
}
