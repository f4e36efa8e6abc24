// Package testing holds helpers shared by the codegen tests.
package testing

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/lithammer/dedent"

	"github.com/osconfig/cegen/internal/codegen/model"
	"github.com/osconfig/cegen/internal/codegen/scanner"
)

// Header dedents an indented header literal so tests can keep fixtures aligned
// with the surrounding code.
func Header(src string) []byte {
	return []byte(strings.TrimLeft(dedent.Dedent(src), "\n"))
}

// FS builds an in-memory source tree from path -> indented header text.
func FS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: Header(src), Mode: 0o644}
	}
	return fsys
}

// ScanFiles discovers and scans files into a fresh model, returning the scan error.
func ScanFiles(t *testing.T, files map[string]string) (*model.Model, error) {
	t.Helper()
	m := model.New()
	return m, ScanInto(t, m, files)
}

// ScanInto discovers and scans files into m.
func ScanInto(t *testing.T, m *model.Model, files map[string]string) error {
	t.Helper()
	fsys := FS(files)
	paths, err := scanner.Discover(fsys, scanner.DefaultGlob)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	return scanner.ScanAll(m, fsys, paths)
}

// MustScan is ScanFiles that fails the test on error.
func MustScan(t *testing.T, files map[string]string) *model.Model {
	t.Helper()
	m, err := ScanFiles(t, files)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return m
}

// Sample is a small but representative header set: enums with labels, nested
// Optional/Separated types, patterns, audit-only and paired procedures.
var Sample = map[string]string{
	"procedures/EnsureFilePermissions.h": `
		#include <Evaluator.h>

		namespace ComplianceEngine
		{
		struct EnsureFilePermissionsParams
		{
		    /// Path to the file
		    std::string filename;

		    /// Required owner of the file, single or | separated
		    Optional<Separated<Pattern, '|'>> owner;

		    /// Required octal permissions of the file
		    /// pattern: ^[0-7]{3,4}$
		    Optional<mode_t> permissions;
		};

		Result<Status> AuditEnsureFilePermissions(const EnsureFilePermissionsParams& params, IndicatorsTree& indicators, ContextInterface& context);
		Result<Status> RemediateEnsureFilePermissions(const EnsureFilePermissionsParams& params, IndicatorsTree& indicators, ContextInterface& context);
		} // namespace ComplianceEngine
	`,
	"procedures/EnsureShadowContains.h": `
		namespace ComplianceEngine
		{
		enum class ComparisonOperation
		{
		    /// label: eq
		    Equal,

		    /// label: ne
		    NotEqual,

		    /// label: match
		    PatternMatch,
		};

		struct EnsureShadowContainsParams
		{
		    /// A pattern or value to match usernames against
		    Optional<std::string> username;

		    /// A comparison operation for the value parameter
		    /// pattern: ^(eq|ne|match)$
		    ComparisonOperation operation = ComparisonOperation::Equal;
		};

		Result<Status> AuditEnsureShadowContains(const EnsureShadowContainsParams& params, IndicatorsTree& indicators, ContextInterface& context);
		} // namespace ComplianceEngine
	`,
	"procedures/sub/UfwStatus.h": `
		namespace ComplianceEngine
		{
		Result<Status> AuditUfwStatus(IndicatorsTree& indicators, ContextInterface& context);
		Result<Status> RemediateEnsureFilePermissionsCollection(IndicatorsTree& indicators, ContextInterface& context);
		} // namespace ComplianceEngine
	`,
}
