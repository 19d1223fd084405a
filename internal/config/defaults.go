package config

const (
	defaultDataDir       = "/lyman/data1/obsdata"
	defaultLogDir        = "~/.local/share/nightsweep/logs"
	defaultIngestCommand = "raw-ingest"
	defaultIngestWorkers = 4
	defaultIngestTimeout = 0
	defaultUnitGlob      = "7DT*"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Ingest: Ingest{
			Command:        defaultIngestCommand,
			Workers:        defaultIngestWorkers,
			TimeoutMinutes: defaultIngestTimeout,
			UnitGlob:       defaultUnitGlob,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
