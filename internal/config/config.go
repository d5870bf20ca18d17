package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = "ezcompose.toml"

// EnvPrefix prefixes every environment override, e.g. EZCOMPOSE_LOG_LEVEL.
const EnvPrefix = "EZCOMPOSE_"

// Sink names accepted in [export].sinks.
const (
	SinkClipboard = "clipboard"
	SinkStdout    = "stdout"
	SinkFile      = "file"
	SinkBundle    = "bundle"
)

type Config struct {
	// Path is the file the config was loaded from; empty for defaults.
	Path string `toml:"-"`

	Workspace   WorkspaceConfig   `toml:"workspace" envPrefix:"WORKSPACE_"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" envPrefix:"DIAGNOSTICS_"`
	Export      ExportConfig      `toml:"export" envPrefix:"EXPORT_"`
	Log         LogConfig         `toml:"log" envPrefix:"LOG_"`
}

type WorkspaceConfig struct {
	// Root defaults to the directory holding the config file, else cwd.
	Root string `toml:"root" env:"ROOT"`
}

type DiagnosticsConfig struct {
	// Command is run to collect diagnostics; "{file}" is replaced by the
	// absolute path of the file being added.
	Command []string `toml:"command" env:"COMMAND" envSeparator:" "`
	// Report is a JSON diagnostics report read on every capture.
	Report  string   `toml:"report" env:"REPORT"`
	Timeout Duration `toml:"timeout" env:"TIMEOUT"`
	Jobs    int      `toml:"jobs" env:"JOBS"`
	Max     int      `toml:"max" env:"MAX"`
}

type ExportConfig struct {
	Sinks            []string `toml:"sinks" env:"SINKS" envSeparator:","`
	File             string   `toml:"file" env:"FILE"`
	Bundle           string   `toml:"bundle" env:"BUNDLE"`
	ClipboardCommand []string `toml:"clipboard_command" env:"CLIPBOARD_COMMAND" envSeparator:" "`
}

type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	Mode  string `toml:"mode" env:"MODE"`
}

// Duration decodes "30s"-style strings from TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{
			Timeout: Duration{30 * time.Second},
			Jobs:    4,
			Max:     100,
		},
		Export: ExportConfig{
			Sinks:  []string{SinkClipboard},
			File:   "ezcompose.txt",
			Bundle: "ezcompose.mp",
		},
		Log: LogConfig{
			Level: "warn",
			Mode:  "development",
		},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("diagnostics", "command") && len(cfg.Diagnostics.Command) == 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].command must not be empty", path)
	}
	if meta.IsDefined("export", "sinks") && len(cfg.Export.Sinks) == 0 {
		return Config{}, fmt.Errorf("%s: [export].sinks must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the explicit config file, or the one found from startDir,
// or the defaults; then applies EZCOMPOSE_* environment overrides and
// resolves the workspace root to an absolute path.
func Resolve(startDir, explicit string) (Config, error) {
	cfg := Default()
	path := explicit
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}

	root, err := cfg.resolveRoot(startDir)
	if err != nil {
		return Config{}, err
	}
	cfg.Workspace.Root = root
	return cfg, nil
}

// Validate checks values that TOML and env decoding cannot.
func (c Config) Validate() error {
	for _, name := range c.Export.Sinks {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case SinkClipboard, SinkStdout, SinkFile, SinkBundle:
		default:
			return fmt.Errorf("unknown sink %q (expected clipboard|stdout|file|bundle)", name)
		}
	}
	if c.Diagnostics.Timeout.Duration < 0 {
		return fmt.Errorf("[diagnostics].timeout must not be negative")
	}
	if c.Diagnostics.Jobs < 0 {
		return fmt.Errorf("[diagnostics].jobs must not be negative")
	}
	return nil
}

func (c Config) resolveRoot(startDir string) (string, error) {
	root := strings.TrimSpace(c.Workspace.Root)
	switch {
	case root != "" && filepath.IsAbs(root):
	case root != "" && c.Path != "":
		root = filepath.Join(filepath.Dir(c.Path), root)
	case root != "":
		root = filepath.Join(startDir, root)
	case c.Path != "":
		root = filepath.Dir(c.Path)
	default:
		root = startDir
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return abs, nil
}
