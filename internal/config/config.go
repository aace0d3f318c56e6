package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Conversion configures the external hyperspectral workflow invocation.
type Conversion struct {
	Script                string `toml:"script"`
	Shell                 string `toml:"shell"`
	HistogramEqualization bool   `toml:"histogram_equalization"`
	NewCalibrationMethod  bool   `toml:"new_calibration_method"`
	TimeoutSeconds        int    `toml:"timeout_seconds"`
	Site                  string `toml:"site"`
	Overwrite             bool   `toml:"overwrite"`
}

// Validation contains the structural validator thresholds.
type Validation struct {
	MaxPlantReflectance float64 `toml:"max_plant_reflectance"`
	SaturatedExposure   int     `toml:"saturated_exposure"`
	ExpectedDimensions  int     `toml:"expected_dimensions"`
	// HistoryPattern, when set, must match the root history attribute.
	HistoryPattern string `toml:"history_pattern"`
	// LegacyZenithCheck fails the zenith check only when values fall outside
	// both bounds at once.
	LegacyZenithCheck bool `toml:"legacy_zenith_check"`
	Verbosity         int  `toml:"verbosity"`
}

// Clowder contains configuration for the data-management service.
type Clowder struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`
	Key           string `toml:"key"`
	Space         string `toml:"space"`
	ExtractorName string `toml:"extractor_name"`
}

// BETYdb contains configuration for trait submission.
type BETYdb struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Key     string `toml:"key"`
}

// Traits holds the fixed column values written to the trait CSV.
type Traits struct {
	IndexStandardName string `toml:"index_standard_name"`
	AccessLevel       int    `toml:"access_level"`
	Species           string `toml:"species"`
	Plot              string `toml:"plot"`
	CitationAuthor    string `toml:"citation_author"`
	CitationYear      int    `toml:"citation_year"`
	CitationTitle     string `toml:"citation_title"`
	Method            string `toml:"method"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Paths: staging, output, log, and state directories
//   - Conversion: hyperspectral workflow script and its flags
//   - Validation: structural validator thresholds
//   - Clowder: upload of produced containers
//   - BETYdb: trait submission
//   - Traits: fixed trait CSV column values
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	Validation Validation `toml:"validation"`
	Clowder    Clowder    `toml:"clowder"`
	BETYdb     BETYdb     `toml:"betydb"`
	Traits     Traits     `toml:"traits"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the path it was resolved from, and whether that file existed; a
// missing file yields defaults. Path fields come back expanded.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath honours an explicit path even when it does not exist.
// Otherwise the user config wins over hyperspectral.toml in the working
// directory, and the user location is reported when neither exists.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if isFile(candidate) {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectories creates the staging, log and state directories. The
// output tree is created best-effort since it may live on a mount that is
// not up yet; preflight reports it separately.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// HistoryDBPath returns the location of the capture history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the lock file guarding concurrent extract runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "extract.lock")
}

// ExpandPath resolves "~" and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
