package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "FLAKEWRAP"

// prefixEnvVars adds the application prefix to an env var name.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   ".",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage: "Where to write the XML log file with the test results of the primary test run;" +
			" by default write to CWD",
	}
	MaxRepeats = &cli.IntFlag{
		Name:    "max-repeats",
		Value:   5,
		EnvVars: prefixEnvVars("MAX_REPEATS"),
		Usage:   "In case the test FAILs, repeat the failed cases this many times",
	}
	PassesNeeded = &cli.IntFlag{
		Name:    "passes-needed",
		Value:   1,
		EnvVars: prefixEnvVars("PASSES_NEEDED"),
		Usage:   "Number of repeats that need to succeed in order to return an overall PASS",
	}
	ParseXMLTestlog = &cli.StringFlag{
		Name:    "parse-xml-testlog",
		EnvVars: prefixEnvVars("PARSE_XML_TESTLOG"),
		Usage: "Do not run the full test the first time, but parse this XML test log;" +
			" if the test log contains failures, then re-run the failed cases normally," +
			" as indicated by the other flags",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   0,
		EnvVars: prefixEnvVars("TIMEOUT"),
		Usage:   "Timeout for each test execution (e.g. '10m'). Zero disables the timeout.",
	}
	NoExtraArgs = &cli.BoolFlag{
		Name:    "no-extra-args",
		Value:   false,
		EnvVars: prefixEnvVars("NO_EXTRA_ARGS"),
		Usage: "Do not append any extra arguments to the test command line, like" +
			" -o log_file.xml or -v2. This disables the structured report and the" +
			" verbose output on the last re-run.",
	}
	Preset = &cli.StringFlag{
		Name:    "preset",
		EnvVars: prefixEnvVars("PRESET"),
		Usage:   "Apply a named configuration preset on top of the other flags (eg. 'selftests')",
	}
	PresetsFile = &cli.StringFlag{
		Name:    "presets-file",
		EnvVars: prefixEnvVars("PRESETS_FILE"),
		Usage:   "Path to a YAML file defining additional configuration presets",
	}
	MonitoringEnabled = &cli.BoolFlag{
		Name:    "monitoring.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("MONITORING_ENABLED"),
		Usage:   "Expose metrics and healthz HTTP endpoints while the wrapper runs",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output",
	}
)

var optionalFlags = []cli.Flag{
	LogDir,
	MaxRepeats,
	PassesNeeded,
	ParseXMLTestlog,
	Timeout,
	NoExtraArgs,
	Preset,
	PresetsFile,
	MonitoringEnabled,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(Flags, optionalFlags...)
}
