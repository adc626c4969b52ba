package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the system.
type EventType string

const (
	// Catalog events
	EventTypeCatalogLoaded      EventType = "catalog.loaded"
	EventTypeCatalogUnavailable EventType = "catalog.unavailable"

	// Generation events
	EventTypeGenerationRequested EventType = "generation.requested"
	EventTypeGenerationCompleted EventType = "generation.completed"
	EventTypeGenerationFailed    EventType = "generation.failed"
	EventTypeGenerationCancelled EventType = "generation.cancelled"

	// System events
	EventTypeError   EventType = "error"
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeCatalog EntityType = "catalog"
	EntityTypeRun     EntityType = "run"
	EntityTypeSystem  EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// CatalogLoadedPayload is the payload for catalog.loaded events.
type CatalogLoadedPayload struct {
	Source     string `json:"source"`
	Categories int    `json:"categories"`
	Blocks     int    `json:"blocks"`
}

// GenerationRequestedPayload is the payload for generation.requested events.
type GenerationRequestedPayload struct {
	Path           string   `json:"path"`
	BlockTypes     []string `json:"block_types"`
	EmitLocalFiles bool     `json:"emit_local_files"`
}

// GenerationCompletedPayload is the payload for generation.completed events.
type GenerationCompletedPayload struct {
	SavedPath string `json:"saved_path"`
	Duration  string `json:"duration"`
}

// GenerationFailedPayload is the payload for generation.failed events.
type GenerationFailedPayload struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
