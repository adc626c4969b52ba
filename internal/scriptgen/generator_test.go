package scriptgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

func integrationPipeline() []models.BlockInstance {
	return []models.BlockInstance{
		{TypeID: "download_file_on_s3", Code: "    s3_prefix = \"\"\n    download_s3_folder(IN, s3_prefix)\n"},
		{TypeID: "list_files_on_gdrive"},
		{TypeID: "clear_folder", Code: "    # The parameter OUT can be modified to clear another folder\r\n    clear_folder(OUT)"},
		{TypeID: "send_message_to_rabbitmq", Code: "    rabbitmq_payload = {}\n    send_message_to_rabbitmq(rabbitmq_payload)"},
		{TypeID: "upload_file_on_gdrive", Code: "    upload_file(\"\", OUT)"},
	}
}

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderScriptGolden(t *testing.T) {
	tests := []struct {
		name     string
		pipeline []models.BlockInstance
	}{
		{"run_py_integrations", integrationPipeline()},
		{"run_py_empty", nil},
		{"run_py_blank_code", []models.BlockInstance{{TypeID: "list_files_on_gdrive", Code: ""}}},
		{"run_py_unindented", []models.BlockInstance{
			{TypeID: "x", Code: "print(1)"},
			{TypeID: "y", Code: "if IN:\n    print(IN)\n"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := RenderScript(tt.pipeline)
			require.NoError(t, err)
			newGolden(t).Assert(t, tt.name, []byte(script))
		})
	}
}

func TestIndentBody(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"empty", "", ""},
		{"flat", "print(1)", "    print(1)"},
		{"nested", "if IN:\n    go()", "    if IN:\n        go()"},
		{"already indented", "    go()\nstop()", "    go()\nstop()"},
		{"tab indented", "\tgo()", "\tgo()"},
		{"leading blank line", "\nprint(1)", "\n    print(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndentBody(tt.code))
		})
	}
}

func TestRenderEnvGolden(t *testing.T) {
	newGolden(t).Assert(t, "env_integrations", []byte(RenderEnv(integrationPipeline())))
}

func TestRenderEnvWithoutIntegrations(t *testing.T) {
	env := RenderEnv([]models.BlockInstance{{TypeID: "read_excel"}})
	assert.Equal(t, "# JOB\nIN=\nOUT=\n", env)
}

func TestIntegrationsDeduplicated(t *testing.T) {
	used := Integrations([]models.BlockInstance{
		{TypeID: "upload_file_on_gdrive"},
		{TypeID: "move_file_on_gdrive"},
		{TypeID: "download_file_on_S3"},
	})

	names := make([]string, 0, len(used))
	for _, integration := range used {
		names = append(names, integration.Name)
	}
	assert.Equal(t, []string{"Google Drive", "S3"}, names)
}

func TestScriptPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"file name replaced", "/out/job/custom.py", filepath.Join("/out/job", ScriptName)},
		{"run.py kept", "/out/run.py", filepath.Join("/out", ScriptName)},
		{"bare directory", "/out", filepath.Join("/", ScriptName)},
		{"trailing slash", "/out/", filepath.Join("/out", ScriptName)},
		{"relative", "jobs/run.py", filepath.Join("jobs", ScriptName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScriptPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScriptPathRejectsEmpty(t *testing.T) {
	for _, path := range []string{"", "   "} {
		_, err := ScriptPath(path)
		assert.True(t, errors.Is(err, ErrInvalidPath), "path %q", path)
	}
}

func TestGenerateScriptWritesFiles(t *testing.T) {
	dir := t.TempDir()
	gen := New()

	saved, err := gen.GenerateScript(context.Background(), integrationPipeline(), filepath.Join(dir, "job", "chosen.py"), true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job", ScriptName), saved)

	script, err := os.ReadFile(saved)
	require.NoError(t, err)
	want, err := RenderScript(integrationPipeline())
	require.NoError(t, err)
	assert.Equal(t, want, string(script))

	for _, name := range []string{InputDir, OutputDir} {
		info, err := os.Stat(filepath.Join(dir, "job", name))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	env, err := os.ReadFile(filepath.Join(dir, "job", EnvName))
	require.NoError(t, err)
	assert.Equal(t, RenderEnv(integrationPipeline()), string(env))
}

func TestGenerateScriptWithoutLocalFiles(t *testing.T) {
	dir := t.TempDir()

	saved, err := New().GenerateScript(context.Background(), nil, filepath.Join(dir, ScriptName), false)
	require.NoError(t, err)
	assert.FileExists(t, saved)

	for _, name := range []string{InputDir, OutputDir, EnvName} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), "%s should not exist", name)
	}
}

func TestGenerateScriptSingleBlock(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	saved, err := New().GenerateScript(context.Background(), []models.BlockInstance{{TypeID: "x", Code: "c"}}, out, true)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
	assert.Equal(t, filepath.Join(dir, ScriptName), saved)
}

func TestGenerateScriptCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := New().GenerateScript(ctx, nil, filepath.Join(dir, ScriptName), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, ScriptName))
}
