package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTable_Normalize(t *testing.T) {
	tbl := FieldTable{
		Headers: []string{"species", "count"},
		Rows:    [][]string{{"oak"}, {"pine", "3", "extra"}},
	}
	tbl.Normalize()
	assert.Equal(t, [][]string{{"oak", ""}, {"pine", "3"}}, tbl.Rows)
}

func TestFieldTable_AddRowAndColumn(t *testing.T) {
	tbl := FieldTable{Headers: []string{"a"}}
	tbl.AddRow([]string{"1", "ignored"})
	tbl.AddColumn("b")
	tbl.AddRow(nil)

	assert.Equal(t, []string{"a", "b"}, tbl.Headers)
	assert.Equal(t, [][]string{{"1", ""}, {"", ""}}, tbl.Rows)
}

func TestFieldTable_SetCell(t *testing.T) {
	tbl := FieldTable{Headers: []string{"a", "b"}, Rows: [][]string{{"x"}}}
	require.NoError(t, tbl.SetCell(0, 1, "y"))
	assert.Equal(t, [][]string{{"x", "y"}}, tbl.Rows)

	assert.True(t, errors.Is(tbl.SetCell(1, 0, "z"), ErrCellOutOfRange))
	assert.True(t, errors.Is(tbl.SetCell(0, 2, "z"), ErrCellOutOfRange))
}

func TestFieldTable_RemoveRow(t *testing.T) {
	tbl := FieldTable{Headers: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}
	require.NoError(t, tbl.RemoveRow(0))
	assert.Equal(t, [][]string{{"2"}}, tbl.Rows)
	assert.Error(t, tbl.RemoveRow(5))
}

func TestCompressedFile_SavedBytes(t *testing.T) {
	f := CompressedFile{OriginalSize: 1000, ResultSize: 300, Status: FileDone}
	assert.Equal(t, int64(700), f.SavedBytes())
	f.Status = FileProcessing
	assert.Zero(t, f.SavedBytes())
}

func TestValidRoleAndTheme(t *testing.T) {
	assert.True(t, ValidRole(RoleResearcher))
	assert.False(t, ValidRole("admin"))
	assert.True(t, ValidTheme(ThemeDark))
	assert.False(t, ValidTheme("blue"))
}
