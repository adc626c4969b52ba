package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opencode-ai/pipebuilder/internal/tui/styles"
)

func numberedScript(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line_%02d = %d", i+1, i+1)
	}
	return strings.Join(lines, "\n")
}

func TestScriptViewerSetContent(t *testing.T) {
	v := NewScriptViewer()
	v.SetContent("import os\r\n\r\ndef main():\r\n    pass\r\n")
	assert.Equal(t, []string{"import os", "", "def main():", "    pass"}, v.Lines)

	v.SetContent("")
	assert.Nil(t, v.Lines)
	assert.Contains(t, v.Render(styles.DefaultStyles()), "Nothing to preview.")
}

func TestScriptViewerScrollClamps(t *testing.T) {
	v := NewScriptViewer()
	v.Height = 5
	v.SetContent(numberedScript(10))

	v.ScrollDown(100)
	assert.Equal(t, 7, v.ScrollOffset)
	v.ScrollUp(3)
	assert.Equal(t, 4, v.ScrollOffset)
	v.ScrollUp(100)
	assert.Equal(t, 0, v.ScrollOffset)
	v.ScrollToBottom()
	assert.Equal(t, 7, v.ScrollOffset)
	v.ScrollToTop()
	assert.Equal(t, 0, v.ScrollOffset)
}

func TestScriptViewerSearch(t *testing.T) {
	v := NewScriptViewer()
	v.Height = 5
	v.SetContent(numberedScript(10))

	v.SetSearch("LINE_09")
	assert.Equal(t, 1, v.SearchHitCount())
	assert.Equal(t, 6, v.ScrollOffset, "first hit scrolled into view")

	v.SetSearch("= 1")
	assert.Equal(t, 2, v.SearchHitCount())
	v.NextSearchHit()
	assert.Equal(t, 1, v.SearchIndex)
	v.NextSearchHit()
	assert.Equal(t, 0, v.SearchIndex)

	out := v.Render(styles.DefaultStyles())
	assert.Contains(t, out, "Match 1/2")

	v.ClearSearch()
	assert.Zero(t, v.SearchHitCount())
}

func TestScriptViewerSetSearchAt(t *testing.T) {
	v := NewScriptViewer()
	v.SetContent("def main():\n    # READ\n    a()\n    # READ_CSV\n    b()\n    # READ\n    c()")

	v.SetSearchAt("# READ", 1)
	assert.Equal(t, 3, v.SearchHitCount())
	assert.Equal(t, 2, v.SearchIndex, "prefix matches are skipped")

	v.SetSearchAt("# READ", 5)
	assert.Equal(t, 0, v.SearchIndex)
}

func TestRenderScriptPanel(t *testing.T) {
	v := NewScriptViewer()
	v.SetContent("# READ_CSV\ndf = 1")
	out := RenderScriptPanel(styles.DefaultStyles(), v, "run.py", 40)

	assert.Contains(t, out, "run.py")
	assert.Contains(t, out, "# READ_CSV")
	assert.Contains(t, out, "2 lines")
	assert.Equal(t, 36, v.Width)
}
