package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExportName turns a C++ identifier into an exported Go identifier, keeping
// inner capitalization: "test_etcGroupPath" -> "TestEtcGroupPath".
func ExportName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})

	var result strings.Builder
	for _, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		result.WriteRune(unicode.ToUpper(r))
		result.WriteString(word[size:])
	}
	out := result.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		return "N" + out
	}
	return out
}

// ToCamelCase lowers the first rune of ExportName(s).
func ToCamelCase(s string) string {
	exported := ExportName(s)
	if exported == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(exported)
	return string(unicode.ToLower(r)) + exported[size:]
}

func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		isUpper := r >= 'A' && r <= 'Z'

		if i > 0 && isUpper {
			prevIsLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			// "XMLParser" -> "xml_parser", not "x_m_l_parser"
			nextIsLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if (prevIsLower || nextIsLower) && runes[i-1] != '_' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
