package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/osconfig/cegen/internal/log"
	th "github.com/osconfig/cegen/internal/testing"
)

const baseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "auditProcedure": {"anyOf": []},
    "remediationProcedure": {"anyOf": []}
  }
}
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree materializes header fixtures below dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, src := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, th.Header(src), 0o644))
	}
}

func newGenerate(t *testing.T, files map[string]string) *Generate {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeTree(t, src, files)

	schemas := filepath.Join(root, "schemas")
	require.NoError(t, os.MkdirAll(schemas, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(schemas, "payload.schema.json"), []byte(baseSchema), 0o644))

	return &Generate{
		Source:    src,
		Glob:      "**/*.h",
		SchemaDir: schemas,
		Output:    filepath.Join(root, "out"),
		Lang:      []string{"cpp", "go"},
		GoPackage: "procedures",
	}
}

func TestGenerateWritesArtifacts(t *testing.T) {
	g := newGenerate(t, th.Sample)
	var raw bytes.Buffer
	require.NoError(t, g.run(discard(), log.NewRaw(&raw), io.Discard))

	for _, p := range []string{
		filepath.Join(g.SchemaDir, "procedures", "EnsureFilePermissions.schema.json"),
		filepath.Join(g.SchemaDir, "procedures", "UfwStatus.schema.json"),
		filepath.Join(g.Output, "cpp", "ProcedureMap.h"),
		filepath.Join(g.Output, "cpp", "ProcedureMap.cpp"),
		filepath.Join(g.Output, "go", "procedure_map.go"),
	} {
		assert.FileExists(t, p)
	}

	global, err := os.ReadFile(filepath.Join(g.SchemaDir, "payload.schema.json"))
	require.NoError(t, err)
	assert.Contains(t, string(global), `"$ref": "procedures/EnsureShadowContains.schema.json#/definitions/audit"`)
	assert.Contains(t, string(global), `"$ref": "#definitions/auditProcedure"`)

	assert.Contains(t, raw.String(), "procedure_map.go")

	// A second run over its own output is stable.
	require.NoError(t, g.run(discard(), log.NewRaw(nil), io.Discard))
	again, err := os.ReadFile(filepath.Join(g.SchemaDir, "payload.schema.json"))
	require.NoError(t, err)
	assert.Equal(t, string(global), string(again))
}

func TestGenerateDryRun(t *testing.T) {
	g := newGenerate(t, th.Sample)
	g.DryRun = true
	g.Lang = []string{"go"}

	var out bytes.Buffer
	require.NoError(t, g.run(discard(), log.NewRaw(nil), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, filepath.Join(g.Output, "go", "procedure_map.go"), lines[len(lines)-1])
	assert.NoDirExists(t, g.Output)
	assert.NoDirExists(t, filepath.Join(g.SchemaDir, "procedures"))
}

func TestGenerateFailureLeavesOutputUntouched(t *testing.T) {
	files := map[string]string{
		"A.h": "Result<Status> AuditFoo(IndicatorsTree& i);\n",
		"B.h": "Result<Status> AuditFoo(IndicatorsTree& i);\n",
	}
	g := newGenerate(t, files)

	err := g.run(discard(), log.NewRaw(nil), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B.h:1")
	assert.NoDirExists(t, g.Output)

	global, err := os.ReadFile(filepath.Join(g.SchemaDir, "payload.schema.json"))
	require.NoError(t, err)
	assert.Equal(t, baseSchema, string(global))
}

func TestGenerateMissingBaseSchema(t *testing.T) {
	g := newGenerate(t, th.Sample)
	g.BaseSchema = filepath.Join(t.TempDir(), "missing.json")

	err := g.run(discard(), log.NewRaw(nil), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read base schema")
}

func TestInspectFormats(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, th.Sample)

	t.Run("tree", func(t *testing.T) {
		var out bytes.Buffer
		c := &Inspect{Source: src, Format: "tree"}
		require.NoError(t, c.run(discard(), &out))
		assert.True(t, strings.HasPrefix(out.String(), "model\n"))
		assert.Contains(t, out.String(), "ComparisonOperation (EnsureShadowContains.h:3)")
		assert.Contains(t, out.String(), "AuditEnsureShadowContains (EnsureShadowContains.h:")
		assert.Contains(t, out.String(), "RemediateEnsureFilePermissionsCollection (UfwStatus.h:")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		c := &Inspect{Source: src, Format: "json"}
		require.NoError(t, c.run(discard(), &out))

		var v modelView
		require.NoError(t, json.Unmarshal(out.Bytes(), &v))
		assert.Equal(t, []string{"EnsureFilePermissions.h", "EnsureShadowContains.h", "UfwStatus.h"}, v.Files)
		require.Len(t, v.Dispatch, 4)
		assert.Equal(t, dispatchView{Name: "UfwStatus", Audit: "AuditUfwStatus"}, v.Dispatch[3])
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		c := &Inspect{Source: src, Format: "yaml"}
		require.NoError(t, c.run(discard(), &out))

		var v modelView
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &v))
		require.Len(t, v.Parameters, 2)
		assert.Equal(t, "EnsureFilePermissionsParams", v.Parameters[0].Name)
		assert.Equal(t, "owner", v.Parameters[0].Params[1].Name)
	})
}

func TestMofCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "resources.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"name": "EnsureFoo", "key": "foo"}]`), 0o644))

	var out bytes.Buffer
	c := &Mof{Resources: file, Name: "Baseline"}
	require.NoError(t, c.run(discard(), &out))
	assert.Contains(t, out.String(), "instance of OsConfigResource as $OsConfigResource0ref\n")
	assert.Contains(t, out.String(), `   ConfigurationName = "Baseline";`)
	assert.Contains(t, out.String(), `    Name="Baseline";`)
}
