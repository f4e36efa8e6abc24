package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/osconfig/cegen/internal/codegen/common"
	"github.com/osconfig/cegen/internal/configpaths"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Write a settings file preset with a command's defaults"`
}

// ConfigInit writes the flags of one command, with their defaults, as a
// settings file the config loaders pick up.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command whose flags are written" enum:"generate,inspect,mof"`
	Format  string `help:"File format" enum:"json,yaml,yml,toml" default:"yaml"`
	Output  string `help:"Destination file (defaults to <command>.<format> in the working directory)"`
	User    bool   `help:"Write to the user config directory instead of the working directory"`
	Force   bool   `help:"Overwrite an existing file"`
}

// configurable lists the commands whose flags can be preset.
var configurable = map[string]reflect.Type{
	"generate": reflect.TypeOf(Generate{}),
	"inspect":  reflect.TypeOf(Inspect{}),
	"mof":      reflect.TypeOf(Mof{}),
}

// setting is one flag as it appears in a settings file.
type setting struct {
	key      string
	value    any
	help     string
	env      string
	required bool
}

func (s setting) comment() string {
	text := s.help
	if s.required {
		text += " (required)"
	}
	if s.env != "" {
		text += "; env " + s.env
	}
	return text
}

// Run is called by Kong when the config init command is executed.
func (c *ConfigInit) Run() error {
	t, ok := configurable[c.Command]
	if !ok {
		return fmt.Errorf("no settings for command %q", c.Command)
	}
	format := strings.ToLower(c.Format)
	if format == "yml" {
		format = "yaml"
	}

	settings, err := commandSettings(t)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = settingsJSON(settings)
	case "yaml":
		data, err = settingsYAML(settings)
	case "toml":
		data, err = settingsTOML(settings)
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	if err != nil {
		return fmt.Errorf("encode %s settings: %w", c.Command, err)
	}

	dest, err := c.destination(format)
	if err != nil {
		return err
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func (c *ConfigInit) destination(format string) (string, error) {
	switch {
	case c.Output != "":
		return c.Output, nil
	case c.User:
		return configpaths.DefaultNamedConfigPath(c.Command, format)
	default:
		return filepath.Join(".", c.Command+"."+format), nil
	}
}

// commandSettings walks the flags of a command struct in declaration order.
// Positional arguments are skipped; kong only resolves flags from files.
func commandSettings(t reflect.Type) ([]setting, error) {
	var out []setting
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("arg"); ok {
			continue
		}
		value, err := defaultValue(f.Type, f.Tag.Get("default"))
		if err != nil {
			return nil, fmt.Errorf("flag %s: %w", f.Name, err)
		}
		_, required := f.Tag.Lookup("required")
		out = append(out, setting{
			key:      settingKey(f),
			value:    value,
			help:     f.Tag.Get("help"),
			env:      f.Tag.Get("env"),
			required: required,
		})
	}
	return out, nil
}

// settingKey is the key kong's file resolvers look up for a flag: the flag
// name with dashes replaced by underscores.
func settingKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return strings.ReplaceAll(name, "-", "_")
	}
	return common.ToSnakeCase(f.Name)
}

func defaultValue(t reflect.Type, def string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return def, nil
	case reflect.Bool:
		if def == "" {
			return false, nil
		}
		return strconv.ParseBool(def)
	case reflect.Int, reflect.Int32, reflect.Int64:
		if def == "" {
			return int64(0), nil
		}
		return strconv.ParseInt(def, 10, 64)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported list of %s", t.Elem())
		}
		if def == "" {
			return []string{}, nil
		}
		return strings.Split(def, ","), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

func settingsJSON(settings []setting) ([]byte, error) {
	values := make(map[string]any, len(settings))
	for _, s := range settings {
		values[s.key] = s.value
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// settingsYAML keeps declaration order and writes each help text as a comment.
func settingsYAML(settings []setting) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range settings {
		var value yaml.Node
		if err := value.Encode(s.value); err != nil {
			return nil, err
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.key, HeadComment: "# " + s.comment()},
			&value)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func settingsTOML(settings []setting) ([]byte, error) {
	tree, err := toml.TreeFromMap(map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		tree.SetWithComment(s.key, s.comment(), false, s.value)
	}
	return tree.Marshal()
}
