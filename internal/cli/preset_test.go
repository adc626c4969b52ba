package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/presets"
)

func fixturePreset() *presets.Preset {
	return &presets.Preset{
		Name:        "csv-roundtrip",
		Description: "Read and write a CSV",
		Source:      "builtin",
		Variables: []presets.Variable{
			{Name: "target", Default: "out.csv", Description: "Output file"},
			{Name: "bucket", Required: true},
		},
		Steps: []presets.Step{
			{Block: "read_csv"},
			{Block: "write_csv", Code: "df.to_csv('{{.target}}')"},
		},
	}
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"a=1", " b =x=y", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "empty": ""}, vars)

	for _, bad := range []string{"novalue", "=1"} {
		_, err := parseVars([]string{bad})
		var preflight *PreflightError
		assert.True(t, errors.As(err, &preflight), bad)
	}
}

func TestRunPresetShow(t *testing.T) {
	withOutputMode(t, false, false)

	var out bytes.Buffer
	require.NoError(t, runPresetShow(&out, fixturePreset()))

	want := `Name:   csv-roundtrip
Source: builtin

Read and write a CSV

Steps:
  1. read_csv
  2. write_csv (custom code)

Variables:
  target (default "out.csv"): Output file
  bucket (required)
`
	assert.Equal(t, want, out.String())
}

func TestRunPresetList(t *testing.T) {
	withOutputMode(t, false, false)

	var out bytes.Buffer
	require.NoError(t, runPresetList(&out, []*presets.Preset{fixturePreset()}))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "csv-roundtrip")

	out.Reset()
	require.NoError(t, runPresetList(&out, nil))
	assert.Equal(t, "No presets found.\n", out.String())
}

func TestRunGenerateFromPreset(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{
		Preset: fixturePreset(),
		Vars:   map[string]string{"bucket": "b", "target": "final.csv"},
		Blocks: []string{"s3_upload"},
	})
	require.NoError(t, err)

	require.Len(t, gen.pipeline, 3)
	assert.Equal(t, "read_csv", gen.pipeline[0].TypeID)
	assert.Equal(t, "df = pd.read_csv(path)", gen.pipeline[0].Code)
	assert.Equal(t, "    df.to_csv('final.csv')", gen.pipeline[1].Code)
	assert.Equal(t, "s3_upload", gen.pipeline[2].TypeID)
}

func TestRunGenerateFromPresetMissingVariable(t *testing.T) {
	withOutputMode(t, false, false)
	gen := &fakeGenerator{}

	err := runGenerate(context.Background(), &bytes.Buffer{}, fixtureLoader(), gen, fixedPath("jobs"), generateRequest{
		Preset: fixturePreset(),
	})
	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))
	assert.True(t, strings.Contains(preflight.Message, `missing required variable "bucket"`))
	assert.Zero(t, gen.calls)
}
