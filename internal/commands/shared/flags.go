package shared

// Global flag values - set by root command
var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
	presetFlag    string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() (config, logLevel, logFormat, preset *string) {
	return &configFlag, &logLevelFlag, &logFormatFlag, &presetFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// ResetFlagsForTest clears global flag state between command tests.
func ResetFlagsForTest() {
	configFlag = ""
	logLevelFlag = ""
	logFormatFlag = ""
	presetFlag = ""
}
