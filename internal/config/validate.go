package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateClowder(); err != nil {
		return err
	}
	if err := c.validateBETYdb(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateConversion() error {
	if c.Conversion.TimeoutSeconds < 0 {
		return errors.New("conversion.timeout_seconds must be zero (no limit) or positive")
	}
	return nil
}

func (c *Config) validateValidation() error {
	v := c.Validation
	if v.MaxPlantReflectance <= 0 {
		return errors.New("validation.max_plant_reflectance must be positive")
	}
	if v.SaturatedExposure <= 0 {
		return errors.New("validation.saturated_exposure must be positive")
	}
	if v.ExpectedDimensions < 0 {
		return errors.New("validation.expected_dimensions must not be negative")
	}
	if v.Verbosity < 0 || v.Verbosity > 3 {
		return errors.New("validation.verbosity must be between 0 and 3")
	}
	if pattern := strings.TrimSpace(v.HistoryPattern); pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("validation.history_pattern: %w", err)
		}
	}
	return nil
}

func (c *Config) validateClowder() error {
	if !c.Clowder.Enabled {
		return nil
	}
	if c.Clowder.URL == "" {
		return errors.New("clowder.url must be set when clowder.enabled is true")
	}
	if c.Clowder.Key == "" {
		return errors.New("clowder.key must be set when clowder.enabled is true (or set CLOWDER_KEY)")
	}
	return nil
}

func (c *Config) validateBETYdb() error {
	if !c.BETYdb.Enabled {
		return nil
	}
	if c.BETYdb.Key == "" {
		return errors.New("betydb.key must be set when betydb.enabled is true (or set BETYDB_KEY)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
