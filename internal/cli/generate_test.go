package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

func fixedPath(path string) editor.PathChooser {
	return outputPathChooser(path, "", false, nil)
}

func TestRunGenerate(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, fixtureLoader(), gen, fixedPath("jobs/a"), generateRequest{
		Blocks: []string{"read_csv", " ", "write_csv"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "jobs/a", gen.path)
	assert.False(t, gen.emit)
	assert.Equal(t, []string{"read_csv", "write_csv"}, models.BlockTypeIDs(gen.pipeline))
	assert.Equal(t, "df = pd.read_csv(path)", gen.pipeline[0].Code)
	assert.Equal(t, "Script saved to jobs/a/run.py (2 blocks)\n", out.String())
}

func TestRunGenerateJSON(t *testing.T) {
	withOutputMode(t, true, false)
	gen := &fakeGenerator{}

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, fixtureLoader(), gen, fixedPath("jobs/b"), generateRequest{
		Blocks:     []string{"s3_upload"},
		LocalFiles: true,
	})
	require.NoError(t, err)

	var result GenerateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, GenerateResult{
		Status:         "succeeded",
		RequestedPath:  "jobs/b",
		SavedPath:      "jobs/b/run.py",
		Blocks:         []string{"s3_upload"},
		EmitLocalFiles: true,
	}, result)
	assert.True(t, gen.emit)
}

func TestRunGenerateUnknownBlock(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{
		Blocks: []string{"read_csv", "nope"},
	})
	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))
	assert.Equal(t, `unknown block "nope"`, preflight.Message)
	assert.Zero(t, gen.calls)
}

func TestRunGenerateFailure(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{err: errBoom}

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{
		Blocks: []string{"read_csv"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestRunGenerateInvalidPath(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{err: scriptgen.ErrInvalidPath}

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{})
	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))
}

func TestRunGenerateCancelledPrompt(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}
	ask := func(string) (string, error) { return "", errPromptCancelled }

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, fixtureLoader(), gen, outputPathChooser("", "", true, ask), generateRequest{
		Blocks: []string{"read_csv"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Generation cancelled.\n", out.String())
	assert.Zero(t, gen.calls)
}

func TestRunGenerateDryRun(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{
		Blocks: []string{"read_csv", "write_csv"},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Zero(t, gen.calls)

	script := out.String()
	read := strings.Index(script, "df = pd.read_csv(path)")
	write := strings.Index(script, "df.to_csv(path)")
	require.True(t, read >= 0 && write >= 0, script)
	assert.Less(t, read, write)
}

func TestRunGenerateWritesScript(t *testing.T) {
	withOutputMode(t, false, false)
	dir := filepath.Join(t.TempDir(), "job")

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), scriptgen.New(), fixedPath(dir+string(filepath.Separator)), generateRequest{
		Blocks: []string{"read_csv"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "df = pd.read_csv(path)")
}

func TestOutputPathChooser(t *testing.T) {
	asked := ""
	ask := func(def string) (string, error) {
		asked = def
		return "  custom/out  ", nil
	}

	tests := []struct {
		name        string
		flag        string
		def         string
		interactive bool
		ask         func(string) (string, error)
		wantPath    string
		wantOK      bool
		wantErr     bool
		wantAsked   string
	}{
		{name: "flag wins", flag: "from/flag", interactive: true, ask: ask, wantPath: "from/flag", wantOK: true},
		{name: "non-interactive default", def: "cfg/run.py", wantPath: "cfg/run.py", wantOK: true},
		{name: "fallback default", wantPath: scriptgen.DefaultOutputPath, wantOK: true},
		{name: "prompt", def: "cfg/run.py", interactive: true, ask: ask, wantPath: "custom/out", wantOK: true, wantAsked: "cfg/run.py"},
		{name: "blank answer", interactive: true, ask: func(string) (string, error) { return " ", nil }},
		{name: "prompt error", interactive: true, ask: func(string) (string, error) { return "", errBoom }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked = ""
			path, ok, err := outputPathChooser(tt.flag, tt.def, tt.interactive, tt.ask).ChooseOutputPath(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAsked, asked)
		})
	}
}
