package components

import (
	"strings"
	"testing"

	"github.com/opencode-ai/pipebuilder/internal/models"
	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

func testBlocks() []models.BlockInstance {
	return []models.BlockInstance{
		{TypeID: "read_csv", Code: "df = pd.read_csv(IN)"},
		{TypeID: "filter", Code: "df = df[df.x > 0]\ndf = df.dropna()"},
		{TypeID: "write_csv"},
	}
}

func TestPipelineListEmpty(t *testing.T) {
	list := PipelineList{Cursor: 0, DragSource: NoRow, Indicator: NoRow}
	out := strings.Join(list.Render(styles.DefaultStyles(), 60, 10), "\n")

	if !strings.Contains(out, "PIPELINE (0)") {
		t.Errorf("expected heading, got: %s", out)
	}
	if !strings.Contains(out, "Pipeline is empty") {
		t.Errorf("expected empty state, got: %s", out)
	}
}

func TestPipelineListRows(t *testing.T) {
	list := PipelineList{
		Blocks:     testBlocks(),
		Cursor:     1,
		Focused:    true,
		DragSource: NoRow,
		Indicator:  NoRow,
	}
	out := strings.Join(list.Render(styles.DefaultStyles(), 60, 10), "\n")

	for _, want := range []string{"PIPELINE (3)", "1. READ_CSV  (1 line)", "> 2. FILTER  (2 lines)", "3. WRITE_CSV"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
	if strings.Contains(out, "drop here") {
		t.Errorf("no indicator expected, got: %s", out)
	}
}

func TestPipelineListDragMarkers(t *testing.T) {
	tests := []struct {
		name          string
		source        int
		indicator     int
		cursor        int
		wantIndicator int
		wantSource    int
	}{
		{name: "moving down marks below target", source: 0, indicator: 2, cursor: 2, wantIndicator: 4, wantSource: 1},
		{name: "moving up marks above target", source: 2, indicator: 0, cursor: 0, wantIndicator: 1, wantSource: 4},
		{name: "hover on source has no marker", source: 1, indicator: 1, cursor: 1, wantIndicator: -1, wantSource: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := PipelineList{
				Blocks:     testBlocks(),
				Cursor:     tt.cursor,
				Focused:    true,
				DragSource: tt.source,
				Indicator:  tt.indicator,
			}
			lines := list.Render(styles.DefaultStyles(), 60, 10)

			if !strings.Contains(lines[tt.wantSource], "≡ ") {
				t.Errorf("expected drag marker on line %d, got: %q", tt.wantSource, lines)
			}
			found := -1
			for i, line := range lines {
				if strings.Contains(line, "drop here") {
					found = i
				}
			}
			if found != tt.wantIndicator {
				t.Errorf("expected indicator on line %d, got %d: %q", tt.wantIndicator, found, lines)
			}
		})
	}
}

func TestRenderBlockDetail(t *testing.T) {
	styleSet := styles.DefaultStyles()
	block := models.BlockInstance{TypeID: "filter", Code: "a = 1\nb = 2\nc = 3"}

	out := RenderBlockDetail(styleSet, block, 40, 2)
	for _, want := range []string{"# FILTER", "a = 1", "b = 2", "... 1 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in detail, got: %s", want, out)
		}
	}
	if strings.Contains(out, "c = 3") {
		t.Errorf("expected third line hidden, got: %s", out)
	}

	empty := RenderBlockDetail(styleSet, models.BlockInstance{TypeID: "noop"}, 40, 2)
	if !strings.Contains(empty, "(no code)") {
		t.Errorf("expected no-code marker, got: %s", empty)
	}
}
