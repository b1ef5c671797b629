package config

const (
	defaultDataDir        = "~/.local/share/cinedex"
	defaultExportCacheDir = "~/.local/share/cinedex/cache/exports"
	defaultLogDir         = "~/.local/share/cinedex/logs"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBExportURL  = "http://files.tmdb.org/p/exports"
	defaultTMDBLanguage   = "en-US"
	defaultRateLimit      = 35
	defaultMaxCast        = 8
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:        defaultDataDir,
			ExportCacheDir: defaultExportCacheDir,
			LogDir:         defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:   defaultTMDBBaseURL,
			ExportURL: defaultTMDBExportURL,
			Language:  defaultTMDBLanguage,
			RateLimit: defaultRateLimit,
			MaxCast:   defaultMaxCast,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
