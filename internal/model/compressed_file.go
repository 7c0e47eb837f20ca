package model

import "time"

type FileStatus string

const (
	FileProcessing FileStatus = "PROCESSING"
	FileDone       FileStatus = "DONE"
	FileError      FileStatus = "ERROR"
)

type CompressedFile struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	OriginalName string     `gorm:"size:255;not null" json:"original_name"`
	OriginalMIME string     `gorm:"size:64" json:"original_mime"`
	OriginalSize int64      `gorm:"not null" json:"original_size"`
	OriginalKey  string     `gorm:"size:255" json:"-"`
	TargetSize   int64      `gorm:"not null" json:"target_size"`
	ResultMIME   string     `gorm:"size:64" json:"result_mime,omitempty"`
	ResultSize   int64      `json:"result_size"`
	ResultKey    string     `gorm:"size:255" json:"-"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Quality      float64    `json:"quality"`
	Fit          bool       `json:"fit"`
	Status       FileStatus `gorm:"size:16;not null;index" json:"status"`
	Error        string     `gorm:"size:512" json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SavedBytes is negative when the best-effort output grew the file.
func (f *CompressedFile) SavedBytes() int64 {
	if f.Status != FileDone {
		return 0
	}
	return f.OriginalSize - f.ResultSize
}

// CompressJob is the queue message asking a worker to process a file record.
type CompressJob struct {
	JobID  string `json:"job_id"`
	FileID uint   `json:"file_id"`
}
