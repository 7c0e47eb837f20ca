package model

// History is a linear undo/redo log of full-text snapshots. Index points at
// the snapshot currently shown; an edit drops everything after it.
type History struct {
	Snapshots []string `json:"snapshots"`
	Index     int      `json:"index"`
}

// Push records text as the newest snapshot. When limit > 0 the oldest
// snapshots are dropped to keep at most limit entries.
func (h *History) Push(text string, limit int) {
	if len(h.Snapshots) > 0 {
		if h.Index < 0 || h.Index >= len(h.Snapshots) {
			h.Index = len(h.Snapshots) - 1
		}
		if h.Snapshots[h.Index] == text {
			return
		}
		h.Snapshots = h.Snapshots[:h.Index+1]
	}
	h.Snapshots = append(h.Snapshots, text)
	if limit > 0 && len(h.Snapshots) > limit {
		h.Snapshots = append([]string(nil), h.Snapshots[len(h.Snapshots)-limit:]...)
	}
	h.Index = len(h.Snapshots) - 1
}

func (h *History) CanUndo() bool { return h.Index > 0 && len(h.Snapshots) > 0 }

func (h *History) CanRedo() bool { return h.Index < len(h.Snapshots)-1 }

func (h *History) Undo() (string, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.Index--
	return h.Snapshots[h.Index], true
}

func (h *History) Redo() (string, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.Index++
	return h.Snapshots[h.Index], true
}

func (h *History) Current() string {
	if h.Index < 0 || h.Index >= len(h.Snapshots) {
		return ""
	}
	return h.Snapshots[h.Index]
}
