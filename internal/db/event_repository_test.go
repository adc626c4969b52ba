package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

func TestEventRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	payload, _ := json.Marshal(models.GenerationCompletedPayload{SavedPath: "/out/run.py"})
	event := &models.Event{
		Type:       models.EventTypeGenerationCompleted,
		EntityType: models.EntityTypeRun,
		EntityID:   "run-1",
		Payload:    payload,
		Metadata:   map[string]string{"source": "tui"},
	}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected ID to be set")
	}

	got, err := repo.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != models.EventTypeGenerationCompleted {
		t.Errorf("unexpected type %q", got.Type)
	}
	if got.Metadata["source"] != "tui" {
		t.Errorf("unexpected metadata %v", got.Metadata)
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload mismatch: %s", got.Payload)
	}
}

func TestEventRepositoryRejectsInvalid(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	if err := repo.Create(context.Background(), &models.Event{Type: models.EventTypeError}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEventRepositoryGetMissing(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	if _, err := repo.Get(context.Background(), "missing"); err != ErrEventNotFound {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventRepositoryQueryPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Type:       models.EventTypeGenerationRequested,
			EntityType: models.EntityTypeRun,
			EntityID:   "run-1",
		}
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	other := &models.Event{Type: models.EventTypeCatalogLoaded, EntityType: models.EntityTypeCatalog, EntityID: "builtin", Timestamp: base}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	entityID := "run-1"
	page, err := repo.Query(ctx, EventQuery{EntityID: &entityID, Limit: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page.Events) != 3 || page.NextCursor == "" {
		t.Fatalf("expected 3 events with cursor, got %d (%q)", len(page.Events), page.NextCursor)
	}

	page, err = repo.Query(ctx, EventQuery{EntityID: &entityID, Limit: 3, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page.Events) != 2 || page.NextCursor != "" {
		t.Fatalf("expected final page of 2, got %d (%q)", len(page.Events), page.NextCursor)
	}

	events, err := repo.ListByEntity(ctx, models.EntityTypeCatalog, "builtin", 0)
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 catalog event, got %d", len(events))
	}
}
