package config

const (
	defaultConfigPath       = "~/.config/proxymill/config.toml"
	defaultOutputDir        = "~/proxymill/proxies"
	defaultLogDir           = "~/.local/share/proxymill/logs"
	defaultJavaBinary       = "java"
	defaultJarFile          = "proximity-0.6.2.jar"
	defaultStandardTemplate = "templates/hlf.zip"
	defaultArtDir           = "art"
	defaultSetSymbol        = "jmp"
	defaultArtSource        = "BEST"
	defaultMaxCardCount     = 20
	defaultMaxRetries       = 3
	defaultArtFileExtension = ".jpg"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultLedgerFile       = "ledger.db"
	defaultNtfyTimeout      = 10
)

var (
	validArtExtensions = []string{".jpg", ".jpeg", ".png"}
	validRarities      = []string{"common", "uncommon", "rare", "mythic"}
	validPasses        = []string{PassStandard, PassSketch, PassDoubleFeature}
	validLogLevels     = []string{"trace", "debug", "info", "warn", "error"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:     defaultOutputDir,
			LogDir:        defaultLogDir,
			RawOutputDirs: []string{"images/fronts", "images/backs"},
		},
		Renderer: Renderer{
			JavaBinary: defaultJavaBinary,
			JarFile:    defaultJarFile,
			Templates: map[string]string{
				PassStandard: defaultStandardTemplate,
			},
			Passes:       []string{PassStandard, PassSketch, PassDoubleFeature},
			ArtDir:       defaultArtDir,
			SetSymbol:    defaultSetSymbol,
			ArtSource:    defaultArtSource,
			UseCardBack:  true,
			MaxCardCount: defaultMaxCardCount,
			MaxRetries:   defaultMaxRetries,
		},
		Cards: Cards{
			ArtFileExtension: defaultArtFileExtension,
			ExcludedSetTypes: []string{"alchemy"},
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
