package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

const sampleCatalog = `categories:
  Zeta:
    - id: z1
      label: Zed
      code: |
        print("z")
  Alpha:
    - id: a1
      label: Read Excel
      description: "Reads <b>Excel</b>.<br>Example:<br/> x > 1"
      code:
        - "    df = read()"
        - "    df = df.fillna('')"
    - id: a2
  Empty: []
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParsePreservesOrder(t *testing.T) {
	catalog, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	want := &models.CatalogMap{
		Categories: []models.Category{
			{Name: "Zeta", Blocks: []models.BlockDescriptor{
				{ID: "z1", Label: "Zed", CodeTemplate: `print("z")`},
			}},
			{Name: "Alpha", Blocks: []models.BlockDescriptor{
				{
					ID:           "a1",
					Label:        "Read Excel",
					Description:  "Reads Excel.\nExample:\nx > 1",
					CodeTemplate: "    df = read()\n    df = df.fillna('')",
				},
				{ID: "a2", Label: "a2"},
			}},
			{Name: "Empty", Blocks: []models.BlockDescriptor{}},
		},
	}
	if diff := cmp.Diff(want, catalog); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"duplicate block id", "categories:\n  A:\n    - id: x\n    - id: x\n"},
		{"missing block id", "categories:\n  A:\n    - label: nothing\n"},
		{"duplicate category", "categories:\n  A: []\n  A: []\n"},
		{"categories not mapping", "categories:\n  - A\n"},
		{"root not mapping", "- a\n- b\n"},
		{"code mapping", "categories:\n  A:\n    - id: x\n      code:\n        k: v\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	catalog, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len())
}

func TestDuplicateIDAcrossCategoriesAllowed(t *testing.T) {
	catalog, err := Parse([]byte("categories:\n  A:\n    - id: x\n  B:\n    - id: x\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.BlockCount())
}

func TestLoadFileMissingIsUnavailable(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestLoadFileMalformedIsNotUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "categories: [")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestBuiltinCatalog(t *testing.T) {
	catalog, err := LoadBuiltin()
	require.NoError(t, err)
	assert.Equal(t, BuiltinSource, catalog.Source)

	names := make([]string, 0, catalog.Len())
	for _, category := range catalog.Categories {
		names = append(names, category.Name)
	}
	assert.Equal(t, []string{"IN / OUT", "Data Management", "File Management", "RabbitMQ", "S3", "Google Drive"}, names)

	filter, ok := catalog.Lookup("filter_rows")
	require.True(t, ok)
	assert.Contains(t, filter.Description, "\nExample:\n")
	assert.NotContains(t, filter.Description, "<br>")
	assert.Contains(t, filter.CodeTemplate, "df = filter_rows(df, FILTERS)")
}

func TestSearchPathLoaderFirstHit(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "one", FileName)
	second := filepath.Join(dir, "two", FileName)
	writeFile(t, second, "categories:\n  Second: []\n")

	loader := SearchPathLoader{Paths: []string{first, second}}
	catalog, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, catalog.Source)

	writeFile(t, first, "categories:\n  First: []\n")
	catalog, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, catalog.Source)
}

func TestSearchPathLoaderFallsBackToBuiltin(t *testing.T) {
	loader := SearchPathLoader{Paths: []string{filepath.Join(t.TempDir(), FileName)}}
	catalog, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BuiltinSource, catalog.Source)
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("/work/project")
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join("/work/project", ".pipebuilder", FileName), paths[0])
	assert.Equal(t, filepath.Join("/", "usr", "share", "pipebuilder", FileName), paths[len(paths)-1])
}

func TestOnceLoadsOnce(t *testing.T) {
	calls := 0
	loader := Once(LoaderFunc(func(ctx context.Context) (*models.CatalogMap, error) {
		calls++
		return &models.CatalogMap{Categories: []models.Category{{Name: "A"}}}, nil
	}))

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	first.Categories[0].Name = "mutated"

	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "A", second.Categories[0].Name)
}

func TestOnceMemoizesFailure(t *testing.T) {
	calls := 0
	loader := Once(LoaderFunc(func(ctx context.Context) (*models.CatalogMap, error) {
		calls++
		return nil, ErrCatalogUnavailable
	}))

	for i := 0; i < 3; i++ {
		_, err := loader.Load(context.Background())
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	}
	assert.Equal(t, 1, calls)
}

func TestOnceNilLoader(t *testing.T) {
	_, err := Once(nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
