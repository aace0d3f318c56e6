package validation

import "hyperspectral/internal/config"

// Config holds the validator thresholds. Build it once and pass it by value.
type Config struct {
	MaxPlantReflectance float64
	SaturatedExposure   float64
	ExpectedDimensions  int
	// HistoryPattern, when non-empty, is a regular expression the root
	// history attribute must match.
	HistoryPattern string
	// LegacyZenithCheck fails the zenith check only when the angle array has
	// values both above 90 and below 0.
	LegacyZenithCheck bool
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MaxPlantReflectance: config.DefaultMaxPlantReflectance,
		SaturatedExposure:   config.DefaultSaturatedExposure,
		ExpectedDimensions:  config.DefaultExpectedDimensions,
	}
}

// ConfigFrom copies the [validation] settings.
func ConfigFrom(settings config.Validation) Config {
	return Config{
		MaxPlantReflectance: settings.MaxPlantReflectance,
		SaturatedExposure:   float64(settings.SaturatedExposure),
		ExpectedDimensions:  settings.ExpectedDimensions,
		HistoryPattern:      settings.HistoryPattern,
		LegacyZenithCheck:   settings.LegacyZenithCheck,
	}
}
