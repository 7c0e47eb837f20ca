package model

import (
	"errors"
	"time"
)

var ErrCellOutOfRange = errors.New("cell out of range")

// FieldTable is the spreadsheet-like grid of the field trip panel.
type FieldTable struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Title     string     `gorm:"size:128;not null" json:"title"`
	Headers   []string   `gorm:"serializer:json;type:json" json:"headers"`
	Rows      [][]string `gorm:"serializer:json;type:json" json:"rows"`
	Collapsed bool       `gorm:"not null;default:false" json:"collapsed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Normalize pads or truncates every row to the header count.
func (t *FieldTable) Normalize() {
	n := len(t.Headers)
	for i, row := range t.Rows {
		switch {
		case len(row) < n:
			t.Rows[i] = append(row, make([]string, n-len(row))...)
		case len(row) > n:
			t.Rows[i] = row[:n]
		}
	}
}

func (t *FieldTable) AddRow(values []string) {
	row := make([]string, len(t.Headers))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

func (t *FieldTable) AddColumn(header string) {
	t.Headers = append(t.Headers, header)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

func (t *FieldTable) RemoveRow(row int) error {
	if row < 0 || row >= len(t.Rows) {
		return ErrCellOutOfRange
	}
	t.Rows = append(t.Rows[:row], t.Rows[row+1:]...)
	return nil
}

func (t *FieldTable) SetCell(row, col int, value string) error {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Headers) {
		return ErrCellOutOfRange
	}
	t.Normalize()
	t.Rows[row][col] = value
	return nil
}
