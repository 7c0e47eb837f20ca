package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestHistory_PushUndoRedo(t *testing.T) {
	var h History
	h.Push("a", 0)
	h.Push("ab", 0)
	h.Push("abc", 0)
	assert.Equal(t, "abc", h.Current())
	assert.False(t, h.CanRedo())

	text, ok := h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "ab", text)

	text, ok = h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "a", text)

	text, ok = h.Undo()
	assert.False(t, ok)
	assert.Equal(t, "a", text)

	text, ok = h.Redo()
	assert.True(t, ok)
	assert.Equal(t, "ab", text)
}

func TestHistory_EditTruncatesRedo(t *testing.T) {
	var h History
	for _, s := range []string{"1", "2", "3"} {
		h.Push(s, 0)
	}
	h.Undo()
	h.Undo()
	h.Push("x", 0)

	if diff := cmp.Diff([]string{"1", "x"}, h.Snapshots); diff != "" {
		t.Fatalf("snapshots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, h.Index)
	assert.False(t, h.CanRedo())
}

func TestHistory_DuplicateIsNoop(t *testing.T) {
	var h History
	h.Push("same", 0)
	h.Push("next", 0)
	h.Undo()
	h.Push("same", 0)

	assert.Len(t, h.Snapshots, 2)
	assert.True(t, h.CanRedo())
}

func TestHistory_Limit(t *testing.T) {
	var h History
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		h.Push(s, 3)
	}
	if diff := cmp.Diff([]string{"3", "4", "5"}, h.Snapshots); diff != "" {
		t.Fatalf("snapshots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, h.Index)
}

func TestHistory_Empty(t *testing.T) {
	var h History
	assert.Equal(t, "", h.Current())
	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestHistory_RepairsBadIndex(t *testing.T) {
	h := History{Snapshots: []string{"a", "b"}, Index: 9}
	h.Push("c", 0)
	assert.Equal(t, []string{"a", "b", "c"}, h.Snapshots)
	assert.Equal(t, 2, h.Index)
}
