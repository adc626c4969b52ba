package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

func TestDispatcherActions(t *testing.T) {
	d := NewDispatcher()
	want := []Action{
		ActionAdd,
		ActionMoveDown,
		ActionDragCancel,
		ActionDrop,
		ActionDragLeave,
		ActionDragOver,
		ActionDragStart,
		ActionRemove,
		ActionMoveUp,
	}
	assert.Equal(t, want, d.Actions())
}

func TestDispatchSequence(t *testing.T) {
	d := NewDispatcher()
	target := Target{State: NewState(), Gesture: NewGesture()}

	steps := []struct {
		cmd     Command
		changed bool
		want    []string
	}{
		{Command{Action: ActionAdd, Descriptor: &models.BlockDescriptor{ID: "read_excel"}}, true, []string{"read_excel"}},
		{Command{Action: ActionAdd, Descriptor: &models.BlockDescriptor{ID: "filter_rows"}}, true, []string{"read_excel", "filter_rows"}},
		{Command{Action: ActionAdd, Descriptor: &models.BlockDescriptor{ID: "write_csv"}}, true, []string{"read_excel", "filter_rows", "write_csv"}},
		{Command{Action: ActionAdd}, false, []string{"read_excel", "filter_rows", "write_csv"}},
		{Command{Action: ActionMoveUp, Index: 2}, true, []string{"read_excel", "write_csv", "filter_rows"}},
		{Command{Action: ActionMoveUp, Index: 0}, false, []string{"read_excel", "write_csv", "filter_rows"}},
		{Command{Action: ActionMoveDown, Index: 0}, true, []string{"write_csv", "read_excel", "filter_rows"}},
		{Command{Action: ActionDragStart, Index: 0}, false, []string{"write_csv", "read_excel", "filter_rows"}},
		{Command{Action: ActionDragOver, Index: 2}, false, []string{"write_csv", "read_excel", "filter_rows"}},
		{Command{Action: ActionDrop, Index: 2}, true, []string{"read_excel", "filter_rows", "write_csv"}},
		{Command{Action: ActionRemove, Index: 1}, true, []string{"read_excel", "write_csv"}},
	}

	for i, step := range steps {
		changed, err := d.Dispatch(target, step.cmd)
		require.NoError(t, err, "step %d (%s)", i, step.cmd.Action)
		assert.Equal(t, step.changed, changed, "step %d (%s) changed", i, step.cmd.Action)
		assert.Equal(t, step.want, typeIDs(target.State), "step %d (%s)", i, step.cmd.Action)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Dispatch(Target{State: NewState()}, Command{Action: "explode"})
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestDispatchIndexOutOfRange(t *testing.T) {
	d := NewDispatcher()
	target := Target{State: NewState(blocks("a")...), Gesture: NewGesture()}

	for _, action := range []Action{ActionRemove, ActionMoveUp, ActionMoveDown, ActionDragStart} {
		changed, err := d.Dispatch(target, Command{Action: action, Index: 3})
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "action %s", action)
		assert.False(t, changed)
	}
	assert.Equal(t, []string{"a"}, typeIDs(target.State))
}

func TestDispatchRequiresState(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Dispatch(Target{}, Command{Action: ActionAdd})
	assert.Error(t, err)
}

func TestDiscreteMutationCancelsGesture(t *testing.T) {
	d := NewDispatcher()
	target := Target{State: NewState(blocks("a", "b", "c")...), Gesture: NewGesture()}

	_, err := d.Dispatch(target, Command{Action: ActionDragStart, Index: 2})
	require.NoError(t, err)
	_, err = d.Dispatch(target, Command{Action: ActionRemove, Index: 0})
	require.NoError(t, err)

	assert.False(t, target.Gesture.Dragging())

	changed, err := d.Dispatch(target, Command{Action: ActionDrop, Index: 0})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"b", "c"}, typeIDs(target.State))
}

func TestRegisterOverridesAndRemoves(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Register(ActionAdd, func(t Target, cmd Command) (bool, error) {
		called = true
		return false, nil
	})

	_, err := d.Dispatch(Target{State: NewState()}, Command{Action: ActionAdd})
	require.NoError(t, err)
	assert.True(t, called)

	d.Register(ActionAdd, nil)
	_, err = d.Dispatch(Target{State: NewState()}, Command{Action: ActionAdd})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
