package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeServices()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	defaults := Default().Paths
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.staging_dir", &c.Paths.StagingDir, defaults.StagingDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaults.OutputDir},
		{"paths.log_dir", &c.Paths.LogDir, defaults.LogDir},
		{"paths.state_dir", &c.Paths.StateDir, defaults.StateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Script = strings.TrimSpace(c.Conversion.Script)
	if c.Conversion.Script == "" {
		c.Conversion.Script = defaultScript
	}
	c.Conversion.Shell = strings.TrimSpace(c.Conversion.Shell)
	if c.Conversion.Shell == "" {
		c.Conversion.Shell = defaultShell
	}
	c.Conversion.Site = strings.TrimSpace(c.Conversion.Site)
	if c.Conversion.Site == "" {
		c.Conversion.Site = defaultSite
	}
}

func (c *Config) normalizeServices() {
	c.Clowder.URL = strings.TrimRight(strings.TrimSpace(c.Clowder.URL), "/")
	if c.Clowder.Key == "" {
		if value, ok := os.LookupEnv("CLOWDER_KEY"); ok {
			c.Clowder.Key = value
		}
	}
	c.Clowder.Key = strings.TrimSpace(c.Clowder.Key)
	c.Clowder.ExtractorName = strings.TrimSpace(c.Clowder.ExtractorName)
	if c.Clowder.ExtractorName == "" {
		c.Clowder.ExtractorName = defaultExtractor
	}

	c.BETYdb.URL = strings.TrimSpace(c.BETYdb.URL)
	if c.BETYdb.URL == "" {
		c.BETYdb.URL = defaultBETYdbURL
	}
	if c.BETYdb.Key == "" {
		if value, ok := os.LookupEnv("BETYDB_KEY"); ok {
			c.BETYdb.Key = value
		}
	}
	c.BETYdb.Key = strings.TrimSpace(c.BETYdb.Key)

	c.Traits.IndexStandardName = strings.TrimSpace(c.Traits.IndexStandardName)
	if c.Traits.IndexStandardName == "" {
		c.Traits.IndexStandardName = DefaultIndexStandardName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
