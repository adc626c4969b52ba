package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// Action names a user action on the pipeline.
type Action string

const (
	ActionAdd        Action = "add"
	ActionRemove     Action = "remove"
	ActionMoveUp     Action = "up"
	ActionMoveDown   Action = "down"
	ActionDragStart  Action = "drag.start"
	ActionDragOver   Action = "drag.over"
	ActionDragLeave  Action = "drag.leave"
	ActionDrop       Action = "drag.drop"
	ActionDragCancel Action = "drag.cancel"
)

// Dispatch errors.
var (
	ErrUnknownAction   = errors.New("unknown pipeline action")
	ErrIndexOutOfRange = errors.New("pipeline index out of range")
)

// Target is the state an action operates on.
type Target struct {
	State   *State
	Gesture *Gesture
}

// Command is one dispatched user action.
type Command struct {
	Action     Action
	Index      int
	Descriptor *models.BlockDescriptor
}

// Handler applies a command to a target and reports whether the pipeline
// changed.
type Handler func(t Target, cmd Command) (bool, error)

// Dispatcher maps action names to handlers.
type Dispatcher struct {
	handlers map[Action]Handler
}

// NewDispatcher returns a dispatcher populated with the default handlers.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[Action]Handler)}
	for action, handler := range defaultHandlers() {
		d.handlers[action] = handler
	}
	return d
}

// Register installs or replaces the handler for an action.
func (d *Dispatcher) Register(action Action, handler Handler) {
	if handler == nil {
		delete(d.handlers, action)
		return
	}
	d.handlers[action] = handler
}

// Actions lists registered action names in sorted order.
func (d *Dispatcher) Actions() []Action {
	actions := make([]Action, 0, len(d.handlers))
	for action := range d.handlers {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Dispatch runs the handler registered for cmd.Action.
func (d *Dispatcher) Dispatch(t Target, cmd Command) (bool, error) {
	handler, ok := d.handlers[cmd.Action]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	if t.State == nil {
		return false, errors.New("pipeline state is required")
	}
	if t.Gesture == nil {
		t.Gesture = NewGesture()
	}
	return handler(t, cmd)
}

func defaultHandlers() map[Action]Handler {
	return map[Action]Handler{
		ActionAdd: func(t Target, cmd Command) (bool, error) {
			return t.State.Append(cmd.Descriptor), nil
		},
		ActionRemove: indexed(func(t Target, i int) bool {
			t.Gesture.Cancel()
			t.State.RemoveAt(i)
			return true
		}),
		ActionMoveUp: indexed(func(t Target, i int) bool {
			t.Gesture.Cancel()
			return t.State.MoveUp(i)
		}),
		ActionMoveDown: indexed(func(t Target, i int) bool {
			t.Gesture.Cancel()
			return t.State.MoveDown(i)
		}),
		ActionDragStart: indexed(func(t Target, i int) bool {
			t.Gesture.StartDrag(i)
			return false
		}),
		ActionDragOver: func(t Target, cmd Command) (bool, error) {
			t.Gesture.Hover(cmd.Index)
			return false, nil
		},
		ActionDragLeave: func(t Target, cmd Command) (bool, error) {
			t.Gesture.Leave(cmd.Index)
			return false, nil
		},
		ActionDrop: func(t Target, cmd Command) (bool, error) {
			return t.Gesture.Drop(t.State, cmd.Index), nil
		},
		ActionDragCancel: func(t Target, cmd Command) (bool, error) {
			t.Gesture.Cancel()
			return false, nil
		},
	}
}

// indexed guards handlers that require an existing row.
func indexed(fn func(t Target, i int) bool) Handler {
	return func(t Target, cmd Command) (bool, error) {
		if !t.State.InRange(cmd.Index) {
			return false, fmt.Errorf("%w: %s at %d (len %d)", ErrIndexOutOfRange, cmd.Action, cmd.Index, t.State.Len())
		}
		return fn(t, cmd.Index), nil
	}
}
