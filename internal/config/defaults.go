package config

const (
	defaultStagingDir   = "~/.local/share/rigprep/staging"
	defaultOutputDir    = "~/rigs"
	defaultLogDir       = "~/.local/share/rigprep/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultGenerator    = "rigprep"
	defaultRootName     = "Armature"
	defaultWrapperJoint = "_rootJoint"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Export: Export{
			OverwriteExisting: true,
			Generator:         defaultGenerator,
		},
		Rig: Rig{
			RootName:     defaultRootName,
			WrapperJoint: defaultWrapperJoint,
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
