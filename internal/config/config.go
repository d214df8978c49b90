package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file name.
const FileName = "uvm_tbgen.yaml"

// Config is the top-level configuration for uvm-tbgen.
type Config struct {
	Generate   GenerateConfig   `yaml:"generate" json:"generate"`
	Templates  TemplatesConfig  `yaml:"templates" json:"templates"`
	Lint       LintConfig       `yaml:"lint" json:"lint"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-" json:"-"`
}

// GenerateConfig controls the generate command.
type GenerateConfig struct {
	// OutDir is the output directory for generated files
	OutDir string `yaml:"outdir" json:"outdir"`

	// TopName is the testbench top module name
	TopName string `yaml:"topname" json:"topname"`

	// Workers limits parallel rendering (0 = one per CPU, 1 = sequential)
	Workers int `yaml:"workers" json:"workers"`

	// RunScript also writes an executable run.sh
	RunScript bool `yaml:"run_script" json:"run_script"`

	// TimingPath appends per-phase timings as JSON lines when set
	TimingPath string `yaml:"timing_path" json:"timing_path"`

	// Strict turns render-context contract violations into errors
	Strict bool `yaml:"strict" json:"strict"`
}

// TemplatesConfig points at template overrides.
type TemplatesConfig struct {
	// Dir holds *.sv.tmpl files that replace the built-in templates
	Dir string `yaml:"dir" json:"dir"`
}

// LintConfig contains interface lint configuration
type LintConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled"`

	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `yaml:"rules,omitempty" json:"rules"`

	// MaxWidth is the port width above which wide_port fires
	MaxWidth int `yaml:"max_width" json:"max_width"`

	// PolicyDir holds extra *.rego files evaluated with the built-in rules
	PolicyDir string `yaml:"policy_dir,omitempty" json:"policy_dir"`
}

// SimulationConfig controls the simulate command.
type SimulationConfig struct {
	// Simulator is a simulator name or "auto"
	Simulator string `yaml:"simulator" json:"simulator"`

	// Sources are glob patterns for testbench files, relative to the testbench dir
	Sources []string `yaml:"sources" json:"sources"`

	// Exclude removes files matched by Sources
	Exclude []string `yaml:"exclude,omitempty" json:"exclude"`

	Seed int    `yaml:"seed" json:"seed"`
	GUI  bool   `yaml:"gui" json:"gui"`
	// Timeout bounds a whole simulation run, e.g. "30m"
	Timeout string `yaml:"timeout" json:"timeout"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Defaults shared by DefaultConfig and applyDefaults.
const (
	DefaultOutDir    = "generated_tb"
	DefaultTopName   = "my_dut_tb"
	DefaultSimulator = "auto"
	DefaultTimeout   = "30m"
	DefaultMaxWidth  = 64
)

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{
			OutDir:  DefaultOutDir,
			TopName: DefaultTopName,
			Workers: 0, // auto
		},
		Lint: LintConfig{
			Enabled:  boolPtr(true),
			Rules:    map[string]string{},
			MaxWidth: DefaultMaxWidth,
		},
		Simulation: SimulationConfig{
			Simulator: DefaultSimulator,
			Sources:   []string{"*.sv"},
			Exclude:   []string{},
			Timeout:   DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./uvm_tbgen.yaml (current working directory)
//  2. ./.uvm_tbgen.yaml (current working directory)
//  3. <dir of dutPath>/uvm_tbgen.yaml (if different from cwd)
//  4. ~/.config/uvm_tbgen/config.yaml
//
// Returns DefaultConfig if no config file is found
func Load(dutPath string) (*Config, error) {
	return load(dutPath, os.UserHomeDir)
}

func load(dutPath string, home func() (string, error)) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, "."+FileName),
	}

	if dutPath != "" {
		dir := dutPath
		if info, err := os.Stat(dutPath); err == nil && !info.IsDir() {
			dir = filepath.Dir(dutPath)
		}
		absDir, _ := filepath.Abs(dir)
		if absDir != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(absDir, FileName),
				filepath.Join(absDir, "."+FileName),
			)
		}
	}

	if h, err := home(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(h, ".config", "uvm_tbgen", "config.yaml"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. JSON is accepted too.
// Unknown keys are an error so typos do not silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.Path = path

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Generate.OutDir == "" {
		c.Generate.OutDir = DefaultOutDir
	}
	if c.Generate.TopName == "" {
		c.Generate.TopName = DefaultTopName
	}
	if c.Lint.Enabled == nil {
		c.Lint.Enabled = boolPtr(true)
	}
	if c.Lint.Rules == nil {
		c.Lint.Rules = make(map[string]string)
	}
	if c.Lint.MaxWidth == 0 {
		c.Lint.MaxWidth = DefaultMaxWidth
	}
	if c.Simulation.Simulator == "" {
		c.Simulation.Simulator = DefaultSimulator
	}
	if len(c.Simulation.Sources) == 0 {
		c.Simulation.Sources = []string{"*.sv"}
	}
	if c.Simulation.Exclude == nil {
		c.Simulation.Exclude = []string{}
	}
	if c.Simulation.Timeout == "" {
		c.Simulation.Timeout = DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString("# uvm-tbgen configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// LintEnabled reports whether interface lint runs at all.
func (c *Config) LintEnabled() bool {
	return c.Lint.Enabled == nil || *c.Lint.Enabled
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}

// SimulationTimeout parses simulation.timeout. Zero means no limit.
func (c *Config) SimulationTimeout() (time.Duration, error) {
	if c.Simulation.Timeout == "" || c.Simulation.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Simulation.Timeout)
	if err != nil {
		return 0, fmt.Errorf("simulation.timeout: %w", err)
	}
	return d, nil
}
