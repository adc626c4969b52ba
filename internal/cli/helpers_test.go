package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

func fixtureCatalog() *models.CatalogMap {
	return &models.CatalogMap{
		Source: "fixture",
		Categories: []models.Category{
			{Name: "Files", Blocks: []models.BlockDescriptor{
				{ID: "read_csv", Label: "Read CSV", Description: "Load a CSV file", CodeTemplate: "df = pd.read_csv(path)"},
				{ID: "write_csv", Label: "Write CSV", CodeTemplate: "df.to_csv(path)"},
			}},
			{Name: "Cloud", Blocks: []models.BlockDescriptor{
				{ID: "s3_upload", Label: "Upload to S3", CodeTemplate: "s3.upload_file(path, bucket, key)"},
			}},
		},
	}
}

func fixtureLoader() catalog.Loader {
	return catalog.LoaderFunc(func(ctx context.Context) (*models.CatalogMap, error) {
		return fixtureCatalog(), nil
	})
}

func failingLoader() catalog.Loader {
	return catalog.LoaderFunc(func(ctx context.Context) (*models.CatalogMap, error) {
		return nil, catalog.ErrCatalogUnavailable
	})
}

// withOutputMode sets --json/--jsonl for the duration of a test and
// disables progress output.
func withOutputMode(t *testing.T, asJSON, asJSONL bool) {
	t.Helper()
	prevJSON, prevJSONL, prevProgress := jsonOutput, jsonlOutput, noProgress
	jsonOutput, jsonlOutput, noProgress = asJSON, asJSONL, true
	t.Cleanup(func() {
		jsonOutput, jsonlOutput, noProgress = prevJSON, prevJSONL, prevProgress
	})
}

type fakeGenerator struct {
	calls    int
	pipeline []models.BlockInstance
	path     string
	emit     bool
	err      error
}

func (g *fakeGenerator) GenerateScript(ctx context.Context, pipeline []models.BlockInstance, path string, emitLocalFiles bool) (string, error) {
	g.calls++
	g.pipeline = pipeline
	g.path = path
	g.emit = emitLocalFiles
	if g.err != nil {
		return "", g.err
	}
	return path + "/run.py", nil
}

var errBoom = errors.New("boom")
