package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bindEnvVars lets every flag of cmd default to ALSROUTE_<FLAG_NAME>, e.g.
// "sheet-url" reads ALSROUTE_SHEET_URL. Arguments still win. Blank
// variables are ignored and values are trimmed. Flag usage names the
// variable.
func bindEnvVars(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		bindFlagToEnv(flag)
	})

	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		bindFlagToEnv(flag)
	})
}

func bindFlagToEnv(flag *pflag.Flag) {
	envName := flagToEnvName(flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	// Blank values are treated as unset, so an exported but empty
	// ALSROUTE_SHEET_URL does not replace the configured sheet.
	envValue := strings.TrimSpace(os.Getenv(envName))
	if envValue == "" {
		return
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		slog.Warn("ignore environment variable",
			slog.String("env", envName),
			slog.String("flag", flag.Name),
			slog.String("value", envValue),
			slog.Any("err", err),
		)
	}
}

func flagToEnvName(flagName string) string {
	return strings.ToUpper(cmdName + "_" + strings.ReplaceAll(flagName, "-", "_"))
}
