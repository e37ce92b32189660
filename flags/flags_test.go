package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestOptionalFlagsDontSetRequired asserts that all flags deemed optional set
// the Required field to false.
func TestOptionalFlagsDontSetRequired(t *testing.T) {
	for _, flag := range optionalFlags {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired())
	}
}

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlag, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "flag %s must support env vars", flagName)
			envVars := envFlag.GetEnvVars()
			require.Len(t, envVars, 1, "flags should have exactly one env var")
			require.True(t, strings.HasPrefix(envVars[0], EnvVarPrefix+"_"),
				"%s env var must carry the %s prefix", flagName, EnvVarPrefix)
		})
	}
}

func TestDefaults(t *testing.T) {
	require.Equal(t, ".", LogDir.Value)
	require.Equal(t, 5, MaxRepeats.Value)
	require.Equal(t, 1, PassesNeeded.Value)
	require.False(t, NoExtraArgs.Value)
}
