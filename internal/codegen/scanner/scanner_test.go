package scanner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/scanner"
	th "github.com/osconfig/cegen/internal/testing"
)

func TestParamBlockScanner(t *testing.T) {
	src := th.Header(`
		{
		    /// Path to the file
		    std::string filename;

		    // not a description
		    /// Required owner
		    Optional<Separated<Pattern, '|'>> owner;

		    /// pattern: ^[0-7]{3,4}$

		    Optional<mode_t> permissions = 0644;
		    int depth;
		};
		int trailing;
	`)
	c := scanner.NewCursor("Foo.h", src)

	fields, err := scanner.NewParamBlockScanner("FooParams").Scan(c, "")
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, 13, c.Line(), "cursor should stop on the closing line")

	assert.Equal(t, "std::string", fields[0].Type)
	assert.Equal(t, "filename", fields[0].Name)
	assert.False(t, fields[0].Optional)
	require.NotNil(t, fields[0].Description)
	assert.Equal(t, "Path to the file", *fields[0].Description)
	assert.Equal(t, 3, fields[0].Line)

	assert.Equal(t, "Optional<Separated<Pattern, '|'>>", fields[1].Type)
	assert.True(t, fields[1].Optional)
	require.NotNil(t, fields[1].Description)
	assert.Equal(t, "Required owner", *fields[1].Description)

	assert.Equal(t, "Optional<mode_t>", fields[2].Type)
	assert.Nil(t, fields[2].Description)
	require.NotNil(t, fields[2].Pattern)
	assert.Equal(t, "^[0-7]{3,4}$", *fields[2].Pattern)

	assert.Equal(t, "int", fields[3].Type)
	assert.Nil(t, fields[3].Description, "annotations are cleared once consumed")
	assert.Nil(t, fields[3].Pattern)
}

func TestParamBlockScannerSingleLineLayout(t *testing.T) {
	c := scanner.NewCursor("Foo.h", []byte("/// pattern: ^/.*$\nstd::string path; };\n"))
	fields, err := scanner.NewParamBlockScanner("FooParams").Scan(c, " { /// the path")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "path", fields[0].Name)
	assert.Equal(t, "the path", *fields[0].Description)
	assert.Equal(t, "^/.*$", *fields[0].Pattern)
}

func TestParamBlockScannerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
	}{
		{
			name: "missing closing brace",
			src:  "{\n int a;\n",
			kind: model.ErrMalformedDeclaration,
		},
		{
			name: "invalid pattern",
			src:  "{\n /// pattern: ^[0-7$\n int a;\n};\n",
			kind: model.ErrInvalidPattern,
		},
		{
			name: "duplicate field",
			src:  "{\n int a;\n std::string a;\n};\n",
			kind: model.ErrDuplicateDeclaration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := scanner.NewCursor("Foo.h", []byte(tt.src))
			_, err := scanner.NewParamBlockScanner("FooParams").Scan(c, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestEnumBlockScanner(t *testing.T) {
	src := th.Header(`
		{
		    /// label: all_exist
		    AllExist,

		    /// Matches when none exist
		    NoneExist,

		    /// label: only one
		    OnlyOneExists
		};
	`)
	c := scanner.NewCursor("Foo.h", src)
	e, err := scanner.NewEnumBlockScanner("Behavior", model.Position{File: "Foo.h", Line: 1}).Scan(c, "")
	require.NoError(t, err)

	assert.Equal(t, "Behavior", e.Name)
	assert.Equal(t, []model.EnumLabel{
		{Ident: "AllExist", Display: "all_exist"},
		{Ident: "NoneExist", Display: "NoneExist", Description: "Matches when none exist"},
		{Ident: "OnlyOneExists", Display: "only one"},
	}, e.Labels)
	assert.Equal(t, "Matches when none exist", e.Description)
}

func TestEnumBlockScannerSingleLine(t *testing.T) {
	c := scanner.NewCursor("Foo.h", nil)
	e, err := scanner.NewEnumBlockScanner("Mode", model.Position{}).Scan(c, "{ Read, Write = 2, Exec };")
	require.NoError(t, err)
	require.Len(t, e.Labels, 3)
	assert.Equal(t, "Write", e.Labels[1].Ident)
}

func TestEnumBlockScannerErrors(t *testing.T) {
	c := scanner.NewCursor("Foo.h", []byte("{\n A,\n B,\n"))
	_, err := scanner.NewEnumBlockScanner("Mode", model.Position{}).Scan(c, "")
	assert.ErrorIs(t, err, model.ErrMalformedDeclaration)

	c = scanner.NewCursor("Foo.h", []byte("{\n A,\n A,\n};\n"))
	_, err = scanner.NewEnumBlockScanner("Mode", model.Position{}).Scan(c, "")
	assert.ErrorIs(t, err, model.ErrDuplicateDeclaration)
}

func TestScanHeaderEndToEnd(t *testing.T) {
	m := model.New()
	src := "struct FooParams { /// the path\n /// pattern: ^/.*$\n std::string path; };\n" +
		"Result<Status> AuditFoo(const FooParams &p, IndicatorsTree &t);\n"
	require.NoError(t, scanner.ScanHeader(m, "Foo.h", []byte(src)))

	params, ok := m.Parameters("FooParams")
	require.True(t, ok)
	assert.Equal(t, model.Position{File: "Foo.h", Line: 1}, params.Pos)
	require.Len(t, params.Params, 1)

	audit, ok := m.Procedure(model.Audit, "Foo")
	require.True(t, ok)
	assert.Equal(t, "FooParams", audit.ParamsName)
	assert.Equal(t, 4, audit.Pos.Line)
	assert.Equal(t, []string{"Foo.h"}, m.Files())
}

func TestScanHeaderLongLines(t *testing.T) {
	m := model.New()
	src := "// " + strings.Repeat("x", 2<<20) + "\r\n" +
		"Result<Status> AuditFoo(IndicatorsTree& i);\r\n"
	require.NoError(t, scanner.ScanHeader(m, "Foo.h", []byte(src)))

	audit, ok := m.Procedure(model.Audit, "Foo")
	require.True(t, ok, "declarations after a long line are scanned")
	assert.Equal(t, 2, audit.Pos.Line)
}

func TestCursorLines(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\n\n b \n", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		c := scanner.NewCursor("Foo.h", []byte(tt.src))
		var got []string
		for {
			line, ok := c.Next()
			if !ok {
				break
			}
			got = append(got, line)
		}
		assert.Equal(t, tt.want, got, "%q", tt.src)
		assert.Equal(t, len(tt.want), c.Line())
	}
}

func TestScanSample(t *testing.T) {
	m := th.MustScan(t, th.Sample)

	assert.Equal(t, []string{"EnsureFilePermissions.h", "EnsureShadowContains.h", "UfwStatus.h"}, m.Files())

	audits := m.Procedures(model.Audit)
	require.Len(t, audits, 3)
	assert.Equal(t, "EnsureFilePermissions", audits[0].Name)
	assert.Equal(t, "EnsureShadowContains", audits[1].Name)
	assert.Equal(t, "UfwStatus", audits[2].Name)
	assert.Empty(t, audits[2].ParamsName)

	enum, ok := m.Enum("ComparisonOperation")
	require.True(t, ok)
	assert.Len(t, enum.Labels, 3)
	assert.True(t, m.IsSupported("ComparisonOperation"))

	params := m.AllParameters()
	require.Len(t, params, 2)
	assert.Equal(t, "EnsureFilePermissionsParams", params[0].Name)
	op, ok := params[1].Field("operation")
	require.True(t, ok)
	assert.Equal(t, "ComparisonOperation", op.Type)
}

func TestScanDeclarationErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		kind  error
		msg   []string
	}{
		{
			name: "duplicate audit across files",
			files: map[string]string{
				"A.h": "Result<Status> AuditEnsureFoo(IndicatorsTree& i);\n",
				"B.h": "// B\nResult<Status> AuditEnsureFoo(IndicatorsTree& i);\n",
			},
			kind: model.ErrDuplicateDeclaration,
			msg:  []string{"B.h:2", "A.h:1"},
		},
		{
			name: "duplicate audit in one file",
			files: map[string]string{
				"A.h": "Result<Status> AuditEnsureFoo(IndicatorsTree& i);\nResult<Status> AuditEnsureFoo(IndicatorsTree& i);\n",
			},
			kind: model.ErrDuplicateDeclaration,
			msg:  []string{"A.h:2", "A.h:1"},
		},
		{
			name: "params declared after use",
			files: map[string]string{
				"A.h": "Result<Status> AuditBar(const BarParams& p, IndicatorsTree& i);\nstruct BarParams\n{\n int a;\n};\n",
			},
			kind: model.ErrUnresolvedReference,
			msg:  []string{"BarParams", "A.h:1"},
		},
		{
			name: "params never declared",
			files: map[string]string{
				"A.h": "Result<Status> RemediateBar(const BarParams& p, IndicatorsTree& i);\n",
			},
			kind: model.ErrUnresolvedReference,
		},
		{
			name: "duplicate params struct",
			files: map[string]string{
				"A.h": "struct BarParams\n{\n int a;\n};\n",
				"B.h": "struct BarParams\n{\n int b;\n};\n",
			},
			kind: model.ErrDuplicateDeclaration,
			msg:  []string{"B.h:1", "A.h:1"},
		},
		{
			name: "duplicate enum",
			files: map[string]string{
				"A.h": "enum class Mode\n{\n A,\n};\nenum class Mode\n{\n B,\n};\n",
			},
			kind: model.ErrDuplicateDeclaration,
		},
		{
			name: "enum missing terminator",
			files: map[string]string{
				"A.h": "enum class Mode\n{\n A,\n",
			},
			kind: model.ErrMalformedDeclaration,
			msg:  []string{"missing enum closing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := th.ScanFiles(t, tt.files)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			for _, s := range tt.msg {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestAuditAndRemediationMayShareName(t *testing.T) {
	m := th.MustScan(t, map[string]string{
		"A.h": "Result<Status> AuditFoo(IndicatorsTree& i);\nResult<Status> RemediateFoo(IndicatorsTree& i);\n",
	})
	_, ok := m.Procedure(model.Audit, "Foo")
	assert.True(t, ok)
	_, ok = m.Procedure(model.Remediate, "Foo")
	assert.True(t, ok)
}

func TestForwardDeclarationsAreSkipped(t *testing.T) {
	m := th.MustScan(t, map[string]string{
		"A.h": "struct FooParams;\nenum class Mode;\nstruct FooParams\n{\n int a;\n};\n",
	})
	p, ok := m.Parameters("FooParams")
	require.True(t, ok)
	assert.Equal(t, 3, p.Pos.Line)
}

func TestDiscoverOrdersByBaseName(t *testing.T) {
	fsys := th.FS(map[string]string{
		"z/A.h":    "",
		"a/C.h":    "",
		"B.h":      "",
		"a/B.h":    "",
		"notes.md": "",
	})
	files, err := scanner.Discover(fsys, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"z/A.h", "B.h", "a/B.h", "a/C.h"}, files)
}
