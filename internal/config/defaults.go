package config

const (
	defaultStateDir          = "~/.local/share/sheaf"
	defaultLogDir            = "~/.local/share/sheaf/logs"
	defaultPlaceholderPrefix = "Unnamed"
	defaultSampleBytes       = 8192
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// defaultKeyColumns returns a fresh slice so callers cannot mutate the
// defaults through a shared backing array.
func defaultKeyColumns() []string {
	return []string{"game_id", "play_id"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Merge: Merge{
			KeyColumns: defaultKeyColumns(),
		},
		Strip: Strip{
			PlaceholderPrefix: defaultPlaceholderPrefix,
		},
		Dialect: Dialect{
			SampleBytes: defaultSampleBytes,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
