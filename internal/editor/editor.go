// Package editor owns one editing session: the pipeline, the reorder
// gesture, the loaded catalog and the notifications shown to the user.
package editor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/pipeline"
)

// MaxNotifications bounds the notification history.
const MaxNotifications = 20

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Editor is the session controller. It is not safe for concurrent use; the
// UI event loop owns it.
type Editor struct {
	state      *pipeline.State
	gesture    *pipeline.Gesture
	dispatcher *pipeline.Dispatcher
	catalog    *models.CatalogMap

	emitLocalFiles bool
	notifications  []Notification

	logger zerolog.Logger
	now    func() time.Time
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithDispatcher replaces the default action table.
func WithDispatcher(d *pipeline.Dispatcher) Option {
	return func(e *Editor) {
		if d != nil {
			e.dispatcher = d
		}
	}
}

// WithEmitLocalFiles sets the initial "also emit local files" flag.
func WithEmitLocalFiles(emit bool) Option {
	return func(e *Editor) {
		e.emitLocalFiles = emit
	}
}

// New creates an editor with an empty pipeline and catalog.
func New(opts ...Option) *Editor {
	e := &Editor{
		state:      pipeline.NewState(),
		gesture:    pipeline.NewGesture(),
		dispatcher: pipeline.NewDispatcher(),
		catalog:    models.EmptyCatalog(),
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadCatalog loads the catalog once from loader. On failure the editor
// keeps an empty catalog and posts a warning; the error is returned for
// logging only.
func (e *Editor) LoadCatalog(ctx context.Context, loader catalog.Loader) error {
	if loader == nil {
		return e.CatalogFailed(catalog.ErrCatalogUnavailable)
	}
	loaded, err := loader.Load(ctx)
	if err != nil {
		return e.CatalogFailed(err)
	}
	e.SetCatalog(loaded)
	return nil
}

// SetCatalog installs a loaded catalog.
func (e *Editor) SetCatalog(c *models.CatalogMap) {
	if c == nil {
		c = models.EmptyCatalog()
	}
	e.catalog = c
	e.logger.Info().
		Str("source", c.Source).
		Int("categories", c.Len()).
		Int("blocks", c.BlockCount()).
		Msg("catalog loaded")
}

// CatalogFailed records a failed catalog load and returns err.
func (e *Editor) CatalogFailed(err error) error {
	e.catalog = models.EmptyCatalog()
	e.logger.Warn().Err(err).Msg("catalog unavailable")
	msg := "Block catalog unavailable"
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		msg = "Block catalog could not be loaded"
	}
	e.Notify(LevelWarning, msg+": "+err.Error())
	return err
}

// Catalog returns the loaded catalog.
func (e *Editor) Catalog() *models.CatalogMap {
	return e.catalog
}

// Apply dispatches a pipeline action and reports whether the pipeline
// changed.
func (e *Editor) Apply(cmd pipeline.Command) (bool, error) {
	changed, err := e.dispatcher.Dispatch(pipeline.Target{State: e.state, Gesture: e.gesture}, cmd)
	if err != nil {
		e.logger.Debug().Err(err).Str("action", string(cmd.Action)).Int("index", cmd.Index).Msg("action rejected")
		return false, err
	}
	if changed {
		e.logger.Debug().Str("action", string(cmd.Action)).Int("index", cmd.Index).Int("len", e.state.Len()).Msg("pipeline changed")
	}
	return changed, nil
}

// Add appends an instance of desc.
func (e *Editor) Add(desc *models.BlockDescriptor) bool {
	changed, _ := e.Apply(pipeline.Command{Action: pipeline.ActionAdd, Descriptor: desc})
	return changed
}

// AddByID appends the catalog block with the given ID.
func (e *Editor) AddByID(id string) bool {
	desc, ok := e.catalog.Lookup(id)
	if !ok {
		return false
	}
	return e.Add(desc)
}

// Remove deletes row i.
func (e *Editor) Remove(i int) error {
	_, err := e.Apply(pipeline.Command{Action: pipeline.ActionRemove, Index: i})
	return err
}

// MoveUp moves row i up by one.
func (e *Editor) MoveUp(i int) (bool, error) {
	return e.Apply(pipeline.Command{Action: pipeline.ActionMoveUp, Index: i})
}

// MoveDown moves row i down by one.
func (e *Editor) MoveDown(i int) (bool, error) {
	return e.Apply(pipeline.Command{Action: pipeline.ActionMoveDown, Index: i})
}

// StartDrag picks up row i.
func (e *Editor) StartDrag(i int) error {
	_, err := e.Apply(pipeline.Command{Action: pipeline.ActionDragStart, Index: i})
	return err
}

// Hover shows the insertion indicator on row j.
func (e *Editor) Hover(j int) {
	_, _ = e.Apply(pipeline.Command{Action: pipeline.ActionDragOver, Index: j})
}

// Leave clears the insertion indicator from row j.
func (e *Editor) Leave(j int) {
	_, _ = e.Apply(pipeline.Command{Action: pipeline.ActionDragLeave, Index: j})
}

// Drop ends a drag on row j.
func (e *Editor) Drop(j int) bool {
	changed, _ := e.Apply(pipeline.Command{Action: pipeline.ActionDrop, Index: j})
	return changed
}

// CancelDrag aborts any drag.
func (e *Editor) CancelDrag() {
	_, _ = e.Apply(pipeline.Command{Action: pipeline.ActionDragCancel})
}

// Len returns the pipeline length.
func (e *Editor) Len() int {
	return e.state.Len()
}

// Blocks returns a value copy of the pipeline.
func (e *Editor) Blocks() []models.BlockInstance {
	return e.state.Snapshot()
}

// Dragging reports whether a reorder gesture is in progress.
func (e *Editor) Dragging() bool {
	return e.gesture.Dragging()
}

// DragSource returns the row being dragged.
func (e *Editor) DragSource() (int, bool) {
	return e.gesture.Source()
}

// DropIndicator returns the row showing the insertion indicator.
func (e *Editor) DropIndicator() (int, bool) {
	return e.gesture.Indicator()
}

// EmitLocalFiles reports the "also emit local files" flag.
func (e *Editor) EmitLocalFiles() bool {
	return e.emitLocalFiles
}

// ToggleEmitLocalFiles flips the flag and returns the new value.
func (e *Editor) ToggleEmitLocalFiles() bool {
	e.emitLocalFiles = !e.emitLocalFiles
	return e.emitLocalFiles
}

// Notify appends a notification, dropping the oldest beyond MaxNotifications.
func (e *Editor) Notify(level Level, message string) {
	e.notifications = append(e.notifications, Notification{Level: level, Message: message, Time: e.now()})
	if len(e.notifications) > MaxNotifications {
		e.notifications = e.notifications[len(e.notifications)-MaxNotifications:]
	}
}

// Notifications returns notifications, oldest first.
func (e *Editor) Notifications() []Notification {
	out := make([]Notification, len(e.notifications))
	copy(out, e.notifications)
	return out
}

// LatestNotification returns the most recent notification.
func (e *Editor) LatestNotification() (Notification, bool) {
	if len(e.notifications) == 0 {
		return Notification{}, false
	}
	return e.notifications[len(e.notifications)-1], true
}

// DismissNotifications clears all notifications.
func (e *Editor) DismissNotifications() {
	e.notifications = nil
}
