package pipeline

// GesturePhase is the state of the reorder gesture machine.
type GesturePhase int

const (
	// GestureIdle means no drag is in progress.
	GestureIdle GesturePhase = iota
	// GestureDragging means a row has been picked up.
	GestureDragging
)

func (p GesturePhase) String() string {
	switch p {
	case GestureDragging:
		return "dragging"
	default:
		return "idle"
	}
}

const noIndex = -1

// Gesture tracks one drag-to-reorder interaction. The zero value is Idle.
//
// The machine only mutates a State on Drop to a different row; every other
// transition touches the hover indicator at most.
type Gesture struct {
	phase     GesturePhase
	source    int
	indicator int
}

// NewGesture returns an idle gesture.
func NewGesture() *Gesture {
	return &Gesture{source: noIndex, indicator: noIndex}
}

// Phase returns the current phase.
func (g *Gesture) Phase() GesturePhase {
	return g.phase
}

// Dragging reports whether a gesture is in progress.
func (g *Gesture) Dragging() bool {
	return g.phase == GestureDragging
}

// Source returns the index captured at StartDrag.
func (g *Gesture) Source() (int, bool) {
	if !g.Dragging() {
		return noIndex, false
	}
	return g.source, true
}

// Indicator returns the row currently showing the insertion indicator.
func (g *Gesture) Indicator() (int, bool) {
	if !g.Dragging() || g.indicator == noIndex {
		return noIndex, false
	}
	return g.indicator, true
}

// StartDrag picks up row i. Starting while already dragging abandons the
// previous gesture without mutation. Negative indices are ignored.
func (g *Gesture) StartDrag(i int) {
	if i < 0 {
		return
	}
	g.phase = GestureDragging
	g.source = i
	g.indicator = noIndex
}

// Hover moves the insertion indicator to row j. Ignored when idle.
func (g *Gesture) Hover(j int) {
	if !g.Dragging() || j < 0 {
		return
	}
	g.indicator = j
}

// Leave clears the indicator if it is showing on row j.
func (g *Gesture) Leave(j int) {
	if !g.Dragging() {
		return
	}
	if g.indicator == j {
		g.indicator = noIndex
	}
}

// Drop ends the gesture on row j. When j differs from the source the block
// is moved before j in state. A source that no longer exists in state (the
// list shrank mid-gesture) ends the gesture without mutation. Ignored when
// idle. Reports whether state changed.
func (g *Gesture) Drop(state *State, j int) bool {
	if !g.Dragging() {
		return false
	}
	source := g.source
	g.reset()

	if state == nil || j < 0 || source == j || !state.InRange(source) {
		return false
	}
	return state.MoveBefore(source, j)
}

// Cancel aborts any gesture without mutation.
func (g *Gesture) Cancel() {
	g.reset()
}

func (g *Gesture) reset() {
	g.phase = GestureIdle
	g.source = noIndex
	g.indicator = noIndex
}
