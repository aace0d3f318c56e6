package config

const (
	defaultConfigPath  = "~/.config/hyperspectral/config.toml"
	projectConfigName  = "hyperspectral.toml"
	defaultStagingDir  = "~/.local/share/hyperspectral/staging"
	defaultOutputDir   = "~/sites/ua-mac/Level_1"
	defaultLogDir      = "~/.local/share/hyperspectral/logs"
	defaultStateDir    = "~/.local/share/hyperspectral/state"
	defaultScript      = "hyperspectral_workflow.sh"
	defaultShell       = "bash"
	defaultSite        = "ua-mac"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultRetention   = 30
	defaultExtractor   = "terra.hyperspectral"
	defaultBETYdbURL   = "https://terraref.ncsa.illinois.edu/bety/api/beta/traits.csv"
	defaultConvTimeout = 4 * 60 * 60

	// DefaultMaxPlantReflectance is the reflectance above which a pixel has no physical meaning for vegetation.
	DefaultMaxPlantReflectance = 0.6
	// DefaultSaturatedExposure is the 16-bit sensor ceiling.
	DefaultSaturatedExposure = 1<<16 - 1
	// DefaultExpectedDimensions is the historical root dimension count.
	DefaultExpectedDimensions = 4
	// DefaultIndexStandardName identifies the NDVI705 variable in the indices container.
	DefaultIndexStandardName = "normalized_difference_chlorophyll_index_750_705"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Conversion: Conversion{
			Script:                defaultScript,
			Shell:                 defaultShell,
			HistogramEqualization: true,
			NewCalibrationMethod:  true,
			TimeoutSeconds:        defaultConvTimeout,
			Site:                  defaultSite,
		},
		Validation: Validation{
			MaxPlantReflectance: DefaultMaxPlantReflectance,
			SaturatedExposure:   DefaultSaturatedExposure,
			ExpectedDimensions:  DefaultExpectedDimensions,
			Verbosity:           2,
		},
		Clowder: Clowder{
			ExtractorName: defaultExtractor,
		},
		BETYdb: BETYdb{
			URL: defaultBETYdbURL,
		},
		Traits: Traits{
			IndexStandardName: DefaultIndexStandardName,
			AccessLevel:       2,
			Species:           "Sorghum bicolor",
			Plot:              "Full Field",
			CitationAuthor:    "Butowsky, Henry",
			CitationYear:      2016,
			CitationTitle:     "Maricopa Field Station Data and Metadata",
			Method:            "Hyperspectral NDVI705 Indices",
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetention,
		},
	}
}
