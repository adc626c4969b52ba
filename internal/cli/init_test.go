package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
)

func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	originalFunc := configDirFunc
	configDirFunc = func() string {
		return dir
	}
	t.Cleanup(func() {
		configDirFunc = originalFunc
	})
}

func withInitForce(t *testing.T, force bool) {
	t.Helper()
	originalForce := initForce
	initForce = force
	t.Cleanup(func() {
		initForce = originalForce
	})
}

func TestCreateConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	withConfigDir(t, tempDir)
	withInitForce(t, true)

	result := createConfigFile()

	if result.status != "done" {
		t.Errorf("expected status 'done', got %q: %s", result.status, result.message)
	}

	configPath := filepath.Join(tempDir, "config.yaml")
	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "Pipebuilder Configuration File") {
		t.Error("config file doesn't contain expected header")
	}
	for _, section := range []string{"catalog:", "generator:", "database:", "logging:"} {
		if !strings.Contains(string(content), section) {
			t.Errorf("config file missing section: %s", section)
		}
	}
}

func TestCreateConfigFile_ExistingNoForce(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("existing"), 0644); err != nil {
		t.Fatalf("failed to create existing config: %v", err)
	}
	withConfigDir(t, tempDir)
	withInitForce(t, false)

	result := createConfigFile()

	if result.status != "skipped" {
		t.Errorf("expected status 'skipped', got %q: %s", result.status, result.message)
	}
	content, _ := os.ReadFile(configPath)
	if string(content) != "existing" {
		t.Error("existing config was modified")
	}
}

func TestCreateConfigFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "custom.yaml")
	originalFile := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = originalFile })
	withInitForce(t, false)

	result := createConfigFile()

	if result.status != "done" {
		t.Fatalf("expected status 'done', got %q: %s", result.status, result.message)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created at %s", path)
	}
}

func TestCreateDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "pipebuilder.db")

	result := createDatabase(context.Background(), path)
	if result.status != "done" {
		t.Fatalf("expected status 'done', got %q: %s", result.status, result.message)
	}
	if !strings.Contains(result.message, "migrations applied") {
		t.Errorf("unexpected message: %s", result.message)
	}

	again := createDatabase(context.Background(), path)
	if again.status != "done" || !strings.Contains(again.message, "(0 migrations applied)") {
		t.Errorf("second run should apply nothing, got %q: %s", again.status, again.message)
	}
}

func TestCreateDatabase_Disabled(t *testing.T) {
	result := createDatabase(context.Background(), "  ")
	if result.status != "skipped" {
		t.Errorf("expected status 'skipped', got %q", result.status)
	}
}

func TestCreateProjectCatalog(t *testing.T) {
	dir := t.TempDir()
	withInitForce(t, false)

	result := createProjectCatalog(dir)
	if result.status != "done" {
		t.Fatalf("expected status 'done', got %q: %s", result.status, result.message)
	}

	path := filepath.Join(dir, ".pipebuilder", catalog.FileName)
	loaded, err := catalog.LoadFile(path)
	if err != nil {
		t.Fatalf("written catalog does not load: %v", err)
	}
	builtin, err := catalog.LoadBuiltin()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BlockCount() != builtin.BlockCount() {
		t.Errorf("expected %d blocks, got %d", builtin.BlockCount(), loaded.BlockCount())
	}

	if again := createProjectCatalog(dir); again.status != "skipped" {
		t.Errorf("expected status 'skipped', got %q", again.status)
	}
}

func TestWriteInitResults(t *testing.T) {
	tests := []struct {
		name    string
		results []initResult
		wantErr bool
	}{
		{
			name: "all done",
			results: []initResult{
				{name: "Step 1", status: "done", message: "OK"},
				{name: "Step 2", status: "skipped", message: "Already exists"},
			},
		},
		{
			name: "one failed",
			results: []initResult{
				{name: "Step 1", status: "done", message: "OK"},
				{name: "Step 2", status: "failed", message: "Something went wrong"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := writeInitResults(&out, tt.results)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeInitResults() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, r := range tt.results {
				if !strings.Contains(out.String(), r.name+": "+r.message) {
					t.Errorf("output missing %q:\n%s", r.name, out.String())
				}
			}
		})
	}
}
