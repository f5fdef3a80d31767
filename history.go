package nib

// DefaultHistoryLimit is the number of snapshots kept on the undo stack.
const DefaultHistoryLimit = 30

// History holds bounded undo and redo stacks of full surface snapshots.
//
// The undo stack always holds at least one snapshot: its top is the state the
// canvas currently shows. Snapshots are private copies and never alias a
// live surface.
type History struct {
	undo  []*Surface
	redo  []*Surface
	limit int
}

// NewHistory creates a history whose first snapshot is a copy of initial.
// A limit below 1 is raised to 1.
func NewHistory(initial *Surface, limit int) *History {
	return &History{
		undo:  []*Surface{initial.Clone()},
		limit: max(1, limit),
	}
}

// Commit records a copy of s as the newest state, evicting the oldest
// snapshot when the stack exceeds its limit, and discards the redo stack.
func (h *History) Commit(s *Surface) {
	h.push(s.Clone())
	clear(h.redo)
	h.redo = h.redo[:0]
}

// push appends a snapshot to the undo stack, evicting the oldest if needed.
func (h *History) push(s *Surface) {
	h.undo = append(h.undo, s)
	if over := len(h.undo) - h.limit; over > 0 {
		clear(h.undo[:over])
		h.undo = append(h.undo[:0], h.undo[over:]...)
	}
}

// Undo moves the newest snapshot to the redo stack and returns the snapshot
// now on top. It reports false, and changes nothing, when only one snapshot
// remains. The returned snapshot must not be modified.
func (h *History) Undo() (*Surface, bool) {
	if len(h.undo) <= 1 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	return h.undo[len(h.undo)-1], true
}

// Redo moves the newest redo snapshot back onto the undo stack and returns
// it. It reports false when there is nothing to redo. The returned snapshot
// must not be modified.
func (h *History) Redo() (*Surface, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]
	h.push(s)
	return s, true
}

// current returns the snapshot on top of the undo stack.
func (h *History) current() *Surface {
	return h.undo[len(h.undo)-1]
}

// UndoLen returns the number of snapshots on the undo stack.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of snapshots on the redo stack.
func (h *History) RedoLen() int { return len(h.redo) }
