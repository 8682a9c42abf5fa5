package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/macropower/alsroute/api"
	"github.com/macropower/alsroute/api/v1beta1/configs"
)

// schemaFileName is written next to the configuration file by --write-config.
const schemaFileName = "config.schema.json"

func configPath(ra *RootArgs) string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return configs.GetPath()
}

// writeConfig writes the default configuration and its schema to path,
// keeping existing files unless force is set.
func writeConfig(path string, force bool) error {
	err := configs.WriteDefault(path, force)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	schema, err := configs.Schema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	err = api.WriteDefaultFile(filepath.Join(filepath.Dir(path), schemaFileName), schema, force, "schema")
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}

// loadConfig loads the global configuration, falling back to the embedded
// defaults when it cannot be read, and merges the first project-local
// configuration found above inputs.
func loadConfig(ra *RootArgs, inputs []string) (*configs.Config, error) {
	path := configPath(ra)
	colored := term.IsTerminal(int(os.Stderr.Fd())) //nolint:gosec // G115: File descriptors fit in int.

	var (
		cfg *configs.Config
		err error
	)

	if _, statErr := os.Stat(path); statErr == nil {
		cfg, err = configs.Load(path, colored)
		if err != nil {
			return nil, fmt.Errorf("invalid config %q: %w", path, err)
		}

		slog.Debug("loaded config", slog.String("path", path))
	} else {
		slog.Debug("could not read config, using defaults",
			slog.String("path", path),
			slog.Any("err", statErr),
		)

		cfg, err = configs.Default()
		if err != nil {
			return nil, err //nolint:wrapcheck // Already wrapped.
		}
	}

	if len(inputs) == 0 {
		return cfg, nil
	}

	localPath, err := api.FindConfigFile(inputs[0], configs.LocalFileNames)
	if err != nil {
		slog.Debug("search project config", slog.Any("err", err))

		return cfg, nil
	}
	if localPath == "" {
		return cfg, nil
	}

	local, err := configs.Load(localPath, colored)
	if err != nil {
		return nil, fmt.Errorf("invalid project config %q: %w", localPath, err)
	}

	slog.Info("using project config", slog.String("path", localPath))
	cfg.Merge(local)

	return cfg, nil
}
