// Package config loads .murc.toml and overlays it with CLI flags, a user
// home file, and environment variables, per SPEC_FULL.md §4.12.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mu-graph/mu/errs"
)

// Scanner holds scanner.* options.
type Scanner struct {
	Ignore          []string `toml:"ignore"`
	MaxFileSizeKB   int      `toml:"max_file_size_kb"`
	FollowSymlinks  bool     `toml:"follow_symlinks"`
}

// Parser holds parser.* options.
type Parser struct {
	Languages []string `toml:"languages"`
}

// Reducer holds reducer.* options.
type Reducer struct {
	ComplexityThreshold int  `toml:"complexity_threshold"`
	StripStdlibImports  bool `toml:"strip_stdlib_imports"`
	StripSpecialMethods bool `toml:"strip_special_methods"`
	MinMethodComplexity int  `toml:"min_method_complexity"`
}

// Output holds output.* options.
type Output struct {
	Format     string `toml:"format"`
	ShellSafe  bool   `toml:"shell_safe"`
}

// Config is the fully merged configuration, the shape every other component
// consumes.
type Config struct {
	Scanner Scanner `toml:"scanner"`
	Parser  Parser  `toml:"parser"`
	Reducer Reducer `toml:"reducer"`
	Output  Output  `toml:"output"`
}

// Default returns built-in defaults; this is the bottom of the precedence
// stack (CLI flags > project file > user home file > environment > default).
func Default() *Config {
	return &Config{
		Scanner: Scanner{MaxFileSizeKB: 1024},
		Reducer: Reducer{ComplexityThreshold: 15},
		Output:  Output{Format: "mu"},
	}
}

// Load resolves the effective configuration for a project root: it starts
// from Default, overlays the user home file (~/.murc.toml), then the
// project file (<root>/.murc.toml), then environment variables, then the
// explicit cliOverrides function (applied last so CLI flags always win).
func Load(projectRoot string, cliOverrides func(*Config)) (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		overlayFile(cfg, filepath.Join(home, ".murc.toml"))
	}

	if projectRoot != "" {
		path := filepath.Join(projectRoot, ".murc.toml")
		if _, statErr := os.Stat(path); statErr == nil {
			if _, decodeErr := toml.DecodeFile(path, cfg); decodeErr != nil {
				return nil, errs.Wrap(errs.Config, "malformed config file", decodeErr).WithPath(path, 0)
			}
		}
	}

	overlayEnv(cfg)

	if cliOverrides != nil {
		cliOverrides(cfg)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile merges a TOML file into cfg if it exists; missing files are
// not an error at this layer (only the project file's absence is expected
// in most runs).
func overlayFile(cfg *Config, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_, _ = toml.DecodeFile(path, cfg)
}

// overlayEnv applies MU_* environment variables. Kept as a small explicit
// merge rather than a generic env-to-struct library: see DESIGN.md.
func overlayEnv(cfg *Config) {
	if v := os.Getenv("MU_SCANNER_MAX_FILE_SIZE_KB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scanner.MaxFileSizeKB = n
		}
	}
	if v := os.Getenv("MU_SCANNER_FOLLOW_SYMLINKS"); v != "" {
		cfg.Scanner.FollowSymlinks = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MU_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("MU_REDUCER_COMPLEXITY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reducer.ComplexityThreshold = n
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Scanner.MaxFileSizeKB < 0 {
		return errs.New(errs.Config, "scanner.max_file_size_kb must be >= 0")
	}
	switch cfg.Output.Format {
	case "", "mu", "json", "md", "markdown":
	default:
		return errs.New(errs.Config, "output.format must be one of mu|json|md")
	}
	return nil
}
