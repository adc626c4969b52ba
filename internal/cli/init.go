// Package cli provides the init command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/db"
)

var (
	initForce          bool
	initProjectCatalog bool
)

// configDirFunc is replaced in tests.
var configDirFunc = config.DefaultConfigDir

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	initCmd.Flags().BoolVar(&initProjectCatalog, "project-catalog", false, "copy the builtin catalog to .pipebuilder/catalog.yaml for editing")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up pipebuilder",
	Long: `Create the config file and history database.

With --project-catalog the builtin catalog is also copied into the
project directory, where it takes precedence over user and system
catalogs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		cfg := GetConfig()

		results := []initResult{createConfigFile(), createDatabase(ctx, cfg.Database.Path)}
		if initProjectCatalog {
			results = append(results, createProjectCatalog(projectDir(cfg)))
		}
		return writeInitResults(os.Stdout, results)
	},
}

type initResult struct {
	name    string
	status  string
	message string
}

// InitStep is one step in `init` JSON output.
type InitStep struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(configDirFunc(), "config.yaml")
}

func createConfigFile() initResult {
	result := initResult{name: "Config file"}
	path := configFilePath()
	err := config.WriteDefault(path, initForce)
	switch {
	case errors.Is(err, config.ErrConfigExists):
		result.status = "skipped"
		result.message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
	case err != nil:
		result.status = "failed"
		result.message = err.Error()
	default:
		result.status = "done"
		result.message = "wrote " + path
	}
	return result
}

func createDatabase(ctx context.Context, path string) initResult {
	result := initResult{name: "History database"}
	path = strings.TrimSpace(path)
	if path == "" {
		result.status = "skipped"
		result.message = "database.path is empty, history disabled"
		return result
	}

	dbCfg := db.DefaultConfig()
	dbCfg.Path = path
	database, err := db.Open(dbCfg)
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	defer database.Close()

	applied, err := database.MigrateUp(ctx)
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	result.status = "done"
	result.message = fmt.Sprintf("%s (%d migrations applied)", path, applied)
	return result
}

func createProjectCatalog(dir string) initResult {
	result := initResult{name: "Project catalog"}
	path := filepath.Join(dir, ".pipebuilder", catalog.FileName)

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			result.status = "skipped"
			result.message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
			return result
		}
	}

	data, err := catalog.BuiltinYAML()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0o755)
	}
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	result.status = "done"
	result.message = "wrote " + path
	return result
}

func writeInitResults(out io.Writer, results []initResult) error {
	failed := 0
	for _, r := range results {
		if r.status == "failed" {
			failed++
		}
	}

	if IsJSONOutput() || IsJSONLOutput() {
		steps := make([]InitStep, 0, len(results))
		for _, r := range results {
			steps = append(steps, InitStep{Name: r.name, Status: r.status, Message: r.message})
		}
		if err := WriteOutput(out, steps); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Fprintf(out, "%s %s: %s\n", initStatusIcon(r.status), r.name, r.message)
		}
	}

	if failed > 0 {
		return fmt.Errorf("init failed: %d of %d steps failed", failed, len(results))
	}
	return nil
}

func initStatusIcon(status string) string {
	switch status {
	case "done":
		return colorize("✓", colorGreen)
	case "skipped":
		return colorize("-", colorYellow)
	default:
		return colorize("✗", colorRed)
	}
}
