package config

const (
	defaultStateDir      = "~/.local/share/tilestats"
	defaultPolicy        = "max-merge"
	defaultInput         = "tornik-map-20171006.10000.tsv"
	defaultOutput        = "tornik-map-20171006.10000.output"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultOutputAtomic  = true
	defaultOutputLock    = true
	defaultHistoryEnable = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Parse: Parse{
			Policy:        defaultPolicy,
			DefaultInput:  defaultInput,
			DefaultOutput: defaultOutput,
		},
		Output: Output{
			Atomic: defaultOutputAtomic,
			Lock:   defaultOutputLock,
		},
		History: History{
			Enabled: defaultHistoryEnable,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
