package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/osconfig/cegen/internal/codegen/schema"
)

const baseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "payload",
  "definitions": {
    "auditProcedure": {
      "anyOf": [
        {"$ref": "procedures/Zeta.schema.json#/definitions/audit"},
        {"$ref": "procedures/EnsureFilePermissions.schema.json#/definitions/audit"}
      ]
    },
    "remediationProcedure": {
      "anyOf": [
        {"$ref": "procedures/Zeta.schema.json#/definitions/remediation"},
        {"$ref": "#definitions/auditProcedure"}
      ]
    },
    "value": {"type": "string", "maxLength": 4096}
  },
  "required": ["rules"]
}`

func refs(t *testing.T, doc []byte, path string) []string {
	t.Helper()
	var out []string
	for _, r := range gjson.GetBytes(doc, path+".anyOf").Array() {
		out = append(out, r.Get("$ref").String())
	}
	return out
}

func TestMergeGlobal(t *testing.T) {
	out, err := schema.MergeGlobal([]byte(baseSchema), []string{"UfwStatus.h", "EnsureFilePermissions.h"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"procedures/EnsureFilePermissions.schema.json#/definitions/audit",
		"procedures/UfwStatus.schema.json#/definitions/audit",
		"procedures/Zeta.schema.json#/definitions/audit",
	}, refs(t, out, "definitions.auditProcedure"))
	assert.Equal(t, []string{
		"procedures/EnsureFilePermissions.schema.json#/definitions/remediation",
		"procedures/UfwStatus.schema.json#/definitions/remediation",
		"procedures/Zeta.schema.json#/definitions/remediation",
		schema.FallbackRef,
	}, refs(t, out, "definitions.remediationProcedure"))

	var keys []string
	gjson.ParseBytes(out).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"$schema", "title", "definitions", "required"}, keys)
	assert.Equal(t, int64(4096), gjson.GetBytes(out, "definitions.value.maxLength").Int())
	assert.Equal(t, byte('\n'), out[len(out)-1])
	assert.Contains(t, string(out), "\n  \"title\": \"payload\",\n")
}

func TestMergeGlobalIsIdempotent(t *testing.T) {
	files := []string{"EnsureFilePermissions.h", "UfwStatus.h"}
	first, err := schema.MergeGlobal([]byte(baseSchema), files)
	require.NoError(t, err)
	second, err := schema.MergeGlobal(first, files)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMergeGlobalErrors(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		files []string
	}{
		{
			name: "invalid json",
			base: `{"definitions": `,
		},
		{
			name: "missing auditProcedure",
			base: `{"definitions": {"remediationProcedure": {"anyOf": []}}}`,
		},
		{
			name: "foreign audit reference",
			base: `{"definitions": {"auditProcedure": {"anyOf": [{"$ref": "#/other"}]}, "remediationProcedure": {"anyOf": []}}}`,
		},
		{
			name:  "file without header extension",
			base:  `{"definitions": {"auditProcedure": {"anyOf": []}, "remediationProcedure": {"anyOf": []}}}`,
			files: []string{"Foo.hpp"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.MergeGlobal([]byte(tt.base), tt.files)
			assert.Error(t, err)
		})
	}
}

func TestMergeGlobalCreatesMissingAnyOf(t *testing.T) {
	out, err := schema.MergeGlobal([]byte(`{"definitions": {"auditProcedure": {}, "remediationProcedure": {}}}`), []string{"A.h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"procedures/A.schema.json#/definitions/audit"}, refs(t, out, "definitions.auditProcedure"))
	assert.Equal(t, []string{"procedures/A.schema.json#/definitions/remediation", schema.FallbackRef},
		refs(t, out, "definitions.remediationProcedure"))
}
