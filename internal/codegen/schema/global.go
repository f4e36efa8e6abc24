package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	auditProcedurePath       = "definitions.auditProcedure"
	remediationProcedurePath = "definitions.remediationProcedure"

	// FallbackRef lets a procedure without a remediation half validate
	// against its audit half.
	FallbackRef = "#definitions/auditProcedure"
)

var (
	auditRefRe       = regexp.MustCompile(`^procedures/([^/]+)\.schema\.json#/definitions/audit`)
	remediationRefRe = regexp.MustCompile(`^procedures/([^/]+)\.schema\.json#/definitions/remediation`)
)

// AuditRef and RemediationRef point at the definitions of a per-file schema.
func AuditRef(stem string) string       { return FilePath(stem) + "#/definitions/audit" }
func RemediationRef(stem string) string { return FilePath(stem) + "#/definitions/remediation" }

// MergeGlobal rewrites the anyOf lists of the base payload schema so they
// reference the schema of every file in files. References are keyed by file
// stem, so merging the output again with the same files is a no-op. Any
// other content of base is preserved in its original order.
func MergeGlobal(base []byte, files []string) ([]byte, error) {
	if !gjson.ValidBytes(base) {
		return nil, fmt.Errorf("base schema is not valid JSON")
	}
	for _, p := range []string{auditProcedurePath, remediationProcedurePath} {
		if !gjson.GetBytes(base, p).IsObject() {
			return nil, fmt.Errorf("base schema has no %s object", p)
		}
	}

	audits, err := collectRefs(base, auditProcedurePath, auditRefRe, true)
	if err != nil {
		return nil, err
	}
	remediations, err := collectRefs(base, remediationProcedurePath, remediationRefRe, false)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	for _, f := range sorted {
		stem, err := Stem(f)
		if err != nil {
			return nil, err
		}
		if audits[stem], err = refObject(AuditRef(stem)); err != nil {
			return nil, err
		}
		if remediations[stem], err = refObject(RemediationRef(stem)); err != nil {
			return nil, err
		}
	}

	fallback, err := refObject(FallbackRef)
	if err != nil {
		return nil, err
	}

	out := base
	out, err = sjson.SetRawBytes(out, auditProcedurePath+".anyOf", rawArray(audits))
	if err != nil {
		return nil, fmt.Errorf("set audit refs: %w", err)
	}
	out, err = sjson.SetRawBytes(out, remediationProcedurePath+".anyOf", rawArray(remediations, fallback))
	if err != nil {
		return nil, fmt.Errorf("set remediation refs: %w", err)
	}
	return pretty.PrettyOptions(out, &pretty.Options{Indent: "  "}), nil
}

// collectRefs indexes the existing $ref entries of path.anyOf by file stem.
// Entries not matching re are an error when strict, otherwise dropped.
func collectRefs(doc []byte, path string, re *regexp.Regexp, strict bool) (map[string]string, error) {
	refs := make(map[string]string)
	for _, entry := range gjson.GetBytes(doc, path+".anyOf").Array() {
		m := re.FindStringSubmatch(entry.Get("$ref").String())
		if m == nil {
			if strict {
				return nil, fmt.Errorf("invalid reference %s in %s", entry.Raw, path)
			}
			continue
		}
		refs[m[1]] = string(pretty.Ugly([]byte(entry.Raw)))
	}
	return refs, nil
}

func refObject(ref string) (string, error) {
	obj, err := sjson.Set("{}", "$ref", ref)
	if err != nil {
		return "", fmt.Errorf("build reference %s: %w", ref, err)
	}
	return obj, nil
}

func rawArray(byStem map[string]string, tail ...string) []byte {
	stems := make([]string, 0, len(byStem))
	for s := range byStem {
		stems = append(stems, s)
	}
	sort.Strings(stems)

	items := make([]string, 0, len(stems)+len(tail))
	for _, s := range stems {
		items = append(items, byStem[s])
	}
	items = append(items, tail...)
	return []byte("[" + strings.Join(items, ",") + "]")
}
