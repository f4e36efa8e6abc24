// Package config defines the command line of cegen.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/osconfig/cegen/internal/cmd"
)

// CLI is the root kong command.
type CLI struct {
	Log     Log              `embed:"" prefix:"log."`
	Config  string           `help:"Configuration file (json, yaml or toml)" type:"path" env:"CEGEN_CONFIG"`
	Version kong.VersionFlag `help:"Print the version and exit"`

	Generate cmd.Generate      `cmd:"" help:"Generate JSON schemas and bindings from procedure headers"`
	Inspect  cmd.Inspect       `cmd:"" help:"Print the validated declaration model"`
	Mof      cmd.Mof           `cmd:"" help:"Render MOF resource instances from a resource list"`
	Cfg      cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

// Log configures the process logger.
type Log struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"CEGEN_LOG_LEVEL"`
	Format  string `help:"Log format; auto uses text on a terminal and json otherwise" enum:"auto,text,json" default:"auto" env:"CEGEN_LOG_FORMAT"`
	File    string `help:"Write logs to this file instead of stdout" env:"CEGEN_LOG_FILE"`
	RawFile string `help:"Dump every rendered artifact to this file" env:"CEGEN_LOG_RAW_FILE"`
}
