package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

type fakeRunStore struct {
	created   []*models.GenerationRun
	finished  map[string]string
	errs      map[string]error
	createErr error
}

func (s *fakeRunStore) Create(ctx context.Context, run *models.GenerationRun) error {
	if s.createErr != nil {
		return s.createErr
	}
	run.ID = "run-1"
	s.created = append(s.created, run)
	return nil
}

func (s *fakeRunStore) Finish(ctx context.Context, id, savedPath string, genErr error) error {
	if s.finished == nil {
		s.finished = map[string]string{}
		s.errs = map[string]error{}
	}
	s.finished[id] = savedPath
	s.errs[id] = genErr
	return nil
}

type fakeEvents struct {
	types []models.EventType
}

func (r *fakeEvents) Create(ctx context.Context, event *models.Event) error {
	r.types = append(r.types, event.Type)
	return nil
}

func TestRecordingGeneratorSuccess(t *testing.T) {
	runs := &fakeRunStore{}
	evts := &fakeEvents{}
	gen := &RecordingGenerator{Next: &fakeGenerator{}, Runs: runs, Events: evts, Logger: zerolog.Nop()}

	saved, err := gen.GenerateScript(context.Background(), []models.BlockInstance{{TypeID: "x"}}, "/out/job.py", true)
	require.NoError(t, err)
	assert.Equal(t, "/out/run.py", saved)

	require.Len(t, runs.created, 1)
	assert.Equal(t, []string{"x"}, runs.created[0].BlockTypes)
	assert.True(t, runs.created[0].EmitLocalFiles)
	assert.Equal(t, "/out/run.py", runs.finished["run-1"])
	assert.NoError(t, runs.errs["run-1"])
	assert.Equal(t, []models.EventType{models.EventTypeGenerationRequested, models.EventTypeGenerationCompleted}, evts.types)
}

func TestRecordingGeneratorFailure(t *testing.T) {
	runs := &fakeRunStore{}
	evts := &fakeEvents{}
	genErr := errors.New("disk full")
	gen := &RecordingGenerator{Next: &fakeGenerator{err: genErr}, Runs: runs, Events: evts, Logger: zerolog.Nop()}

	_, err := gen.GenerateScript(context.Background(), nil, "/out/run.py", false)
	assert.ErrorIs(t, err, genErr)
	assert.ErrorIs(t, runs.errs["run-1"], genErr)
	assert.Equal(t, models.EventTypeGenerationFailed, evts.types[len(evts.types)-1])
}

func TestRecordingGeneratorHistoryFailureDoesNotFailGeneration(t *testing.T) {
	next := &fakeGenerator{}
	gen := &RecordingGenerator{Next: next, Runs: &fakeRunStore{createErr: errors.New("locked")}, Logger: zerolog.Nop()}

	saved, err := gen.GenerateScript(context.Background(), nil, "/out/run.py", false)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
	assert.Equal(t, 1, next.calls)
}

func TestRecordingGeneratorRequiresNext(t *testing.T) {
	gen := &RecordingGenerator{}
	_, err := gen.GenerateScript(context.Background(), nil, "/out/run.py", false)
	assert.ErrorIs(t, err, ErrNoGenerator)
}

func TestRecordingLoader(t *testing.T) {
	evts := &fakeEvents{}
	loaded := &models.CatalogMap{Source: "builtin"}
	ok := &RecordingLoader{
		Next:   catalog.LoaderFunc(func(context.Context) (*models.CatalogMap, error) { return loaded, nil }),
		Events: evts,
		Logger: zerolog.Nop(),
	}

	got, err := ok.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, loaded, got)

	failing := &RecordingLoader{
		Next:   catalog.LoaderFunc(func(context.Context) (*models.CatalogMap, error) { return nil, catalog.ErrCatalogUnavailable }),
		Source: "file",
		Events: evts,
		Logger: zerolog.Nop(),
	}
	_, err = failing.Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

	assert.Equal(t, []models.EventType{models.EventTypeCatalogLoaded, models.EventTypeCatalogUnavailable}, evts.types)
}
