// Package config loads the YAML configuration shared by the gcnc commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/vm"
)

// InterpreterConfig controls line interpretation.
type InterpreterConfig struct {
	Scale    int64 `yaml:"scale"`    // fixed-point units per input unit
	Lenient  bool  `yaml:"lenient"`  // default malformed numbers to their prefix or 0
	Relative bool  `yaml:"relative"` // start in relative positioning mode
}

// ServerConfig controls `gcnc serve`.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`
	History string `yaml:"history"` // sqlite path, empty disables the run log
}

// ConsoleConfig controls `gcnc console`.
type ConsoleConfig struct {
	Port string `yaml:"port"` // serial device, empty means stdin/stdout
	Baud int    `yaml:"baud"`
}

type Config struct {
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Server      ServerConfig      `yaml:"server"`
	Console     ConsoleConfig     `yaml:"console"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			Scale: int64(gcode.Scale),
		},
		Server: ServerConfig{
			Addr:    ":9091",
			DataDir: "./data",
			History: "./history.db",
		},
		Console: ConsoleConfig{
			Baud: 115200,
		},
	}
}

// Load reads the config file at path on top of Default().
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Interpreter.Scale <= 0 {
		return errors.New("interpreter.scale must be positive")
	}
	if c.Console.Baud <= 0 {
		return errors.New("console.baud must be positive")
	}
	return nil
}

// Options returns the vm options described by c.
func (c InterpreterConfig) Options() vm.Options {
	return vm.Options{
		Scale:    gcode.Fixed(c.Scale),
		Lenient:  c.Lenient,
		Relative: c.Relative,
	}
}
