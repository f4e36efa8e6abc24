package scanner

import (
	"regexp"
	"strings"

	"github.com/osconfig/cegen/internal/codegen/model"
)

var (
	enumCloseRe  = regexp.MustCompile(`^}.*;`)
	labelNoteRe  = regexp.MustCompile(`^///\s*label:\s*(.*)`)
	enumeratorRe = regexp.MustCompile(`^(\w+)\s*(=.*)?$`)
)

// EnumBlockScanner consumes the body of an `enum class` declaration.
//
// A `/// label:` annotation sets the display value of the next enumerator.
// Any other `///` line becomes the enum description (the last one wins) and
// the description of the next enumerator.
type EnumBlockScanner struct {
	enum   model.Enum
	inside bool
	label  *string
	desc   string
	seen   map[string]int
}

// NewEnumBlockScanner prepares a scanner for the enum called name declared at p.
func NewEnumBlockScanner(name string, p model.Position) *EnumBlockScanner {
	return &EnumBlockScanner{
		enum: model.Enum{Name: name, Pos: p},
		seen: make(map[string]int),
	}
}

// Scan consumes rest of the opening line and then lines from c up to and
// including the closing `};`.
func (s *EnumBlockScanner) Scan(c *Cursor, rest string) (*model.Enum, error) {
	done, err := s.feed(c, strings.TrimSpace(rest))
	for !done && err == nil {
		line, ok := c.Next()
		if !ok {
			return nil, model.Errorf(model.MalformedDeclaration, pos(c), s.enum.Name,
				"missing enum closing")
		}
		done, err = s.feed(c, line)
	}
	if err != nil {
		return nil, err
	}
	return &s.enum, nil
}

func (s *EnumBlockScanner) feed(c *Cursor, text string) (bool, error) {
	if !s.inside {
		i := strings.Index(text, "{")
		if i < 0 {
			return false, nil
		}
		s.inside = true
		text = strings.TrimSpace(text[i+1:])
	}
	if text == "" {
		return false, nil
	}

	if m := labelNoteRe.FindStringSubmatch(text); m != nil {
		l := strings.TrimSpace(m[1])
		s.label = &l
		return false, nil
	}
	if m := docNoteRe.FindStringSubmatch(text); m != nil {
		s.desc = strings.TrimSpace(m[1])
		s.enum.Description = s.desc
		return false, nil
	}
	if strings.HasPrefix(text, "//") {
		return false, nil
	}

	body, closing := text, false
	if i := strings.Index(text, "}"); i >= 0 {
		body = text[:i]
		closing = enumCloseRe.MatchString(text[i:])
	}
	if j := strings.Index(body, "//"); j >= 0 {
		body = body[:j]
	}
	for _, part := range strings.Split(body, ",") {
		m := enumeratorRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		if err := s.commit(c, m[1]); err != nil {
			return false, err
		}
	}
	return closing, nil
}

func (s *EnumBlockScanner) commit(c *Cursor, ident string) error {
	if prev, ok := s.seen[ident]; ok {
		e := model.Errorf(model.DuplicateDeclaration, pos(c), s.enum.Name+"::"+ident, "enumerator declared twice")
		e.Prev = &model.Position{File: c.File(), Line: prev}
		return e
	}
	s.seen[ident] = c.Line()

	display := ident
	if s.label != nil && *s.label != "" {
		display = *s.label
	}
	s.enum.Labels = append(s.enum.Labels, model.EnumLabel{
		Ident:       ident,
		Display:     display,
		Description: s.desc,
	})
	s.label = nil
	s.desc = ""
	return nil
}
