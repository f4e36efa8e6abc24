package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestConfigInitGenerate(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "generate.json")
	c := &ConfigInit{Command: "generate", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "**/*.h", got["glob"])
	assert.Equal(t, "procedures", got["go_package"])
	assert.Equal(t, []any{"cpp", "go"}, got["lang"])
	assert.Equal(t, []any{}, got["extra_type"])
	assert.Equal(t, false, got["dry_run"])
	assert.Contains(t, got, "schema_dir")

	err = c.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	c.Force = true
	assert.NoError(t, c.Run())
}

func TestConfigInitFormats(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "inspect.yaml")
	require.NoError(t, (&ConfigInit{Command: "inspect", Format: "yml", Output: yml}).Run())
	data, err := os.ReadFile(yml)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "tree", got["format"])
	assert.Contains(t, string(data), "# Directory containing the procedure headers (required); env CEGEN_SOURCE\nsource:")
	assert.Less(t, strings.Index(string(data), "source:"), strings.Index(string(data), "glob:"), "declaration order is kept")

	tml := filepath.Join(dir, "mof.toml")
	require.NoError(t, (&ConfigInit{Command: "mof", Format: "toml", Output: tml}).Run())
	tree, err := toml.LoadFile(tml)
	require.NoError(t, err)
	assert.Equal(t, "ComplianceExample", tree.Get("name"))
	assert.False(t, tree.Has("resources"), "positional arguments are not configurable")
	data, err = os.ReadFile(tml)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Configuration name; env CEGEN_MOF_NAME")

	assert.Error(t, (&ConfigInit{Command: "generate", Format: "ini", Output: filepath.Join(dir, "x")}).Run())
	assert.Error(t, (&ConfigInit{Command: "config", Format: "json", Output: filepath.Join(dir, "y")}).Run())
}

func TestConfigInitDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup only")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	tests := []struct {
		name string
		init ConfigInit
		want string
	}{
		{name: "explicit output", init: ConfigInit{Command: "mof", Output: "out/mof.json"}, want: "out/mof.json"},
		{name: "user directory", init: ConfigInit{Command: "inspect", User: true}, want: filepath.Join(xdg, "cegen", "inspect.toml")},
		{name: "working directory", init: ConfigInit{Command: "generate"}, want: "generate.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.init.destination("toml")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandSettings(t *testing.T) {
	for name, typ := range configurable {
		t.Run(name, func(t *testing.T) {
			settings, err := commandSettings(typ)
			require.NoError(t, err)
			require.NotEmpty(t, settings)
			for _, s := range settings {
				assert.NotContains(t, s.key, "-", "kong resolves file keys with underscores")
				assert.NotEmpty(t, s.help, s.key)
			}
		})
	}

	type unsupported struct {
		Ratio float64 `help:"x"`
	}
	_, err := commandSettings(reflect.TypeOf(unsupported{}))
	assert.ErrorContains(t, err, "flag Ratio")
}
