// Package pattern validates field patterns and derives the placeholder-aware
// form emitted into JSON schemas.
//
// Patterns are compiled with ECMAScript semantics since that is the dialect
// JSON Schema validators apply to the "pattern" keyword.
package pattern

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Compile compiles p using the JSON Schema regex dialect.
func Compile(p string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(p, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", p, err)
	}
	return re, nil
}

// Validate reports whether p compiles.
func Validate(p string) error {
	_, err := Compile(p)
	return err
}

// Core strips the anchors of p so it can be embedded after a placeholder
// prefix. A missing anchor is replaced by ".*" on that side.
func Core(p string) string {
	s := p
	if strings.HasPrefix(s, "^") {
		s = s[1:]
	} else {
		s = ".*" + s
	}
	if strings.HasSuffix(s, "$") {
		s = s[:len(s)-1]
	} else {
		s = s + ".*"
	}
	return s
}

// WithPlaceholder returns a pattern accepting either a value matching p or a
// placeholder "$name:value" whose value matches the unanchored core of p.
func WithPlaceholder(p string) string {
	return `(^\$[a-zA-Z0-9_]+:(` + Core(p) + `)$|(` + p + `))`
}

// Expand derives the placeholder-aware pattern and checks that it compiles.
func Expand(p string) (string, error) {
	out := WithPlaceholder(p)
	if err := Validate(out); err != nil {
		return "", err
	}
	return out, nil
}

// Match reports whether s matches the compiled pattern p.
func Match(p, s string) (bool, error) {
	re, err := Compile(p)
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}
