package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/splitter-dev/splitter/internal/config"
)

func newInitCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new splitter project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, backend)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.BackendFile, "storage backend (file or sqlite)")

	return cmd
}

func runInit(out io.Writer, dir, backend string) error {
	cfgPath := filepath.Join(dir, "splitter.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	switch backend {
	case config.BackendFile:
		cfg.Storage.Path = "data"
	case config.BackendSQLite:
		cfg.Storage.Path = filepath.Join("data", "splitter.db")
	default:
		return fmt.Errorf("init supports the file and sqlite backends, not %q", backend)
	}
	cfg.Storage.Backend = backend

	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "data/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized splitter project at %s (%s storage)\n", dir, backend)
	return nil
}
