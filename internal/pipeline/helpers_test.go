package pipeline

import (
	"testing"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

func blocks(ids ...string) []models.BlockInstance {
	out := make([]models.BlockInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.BlockInstance{TypeID: id, Code: "# " + id})
	}
	return out
}

func typeIDs(s *State) []string {
	return models.BlockTypeIDs(s.Snapshot())
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
