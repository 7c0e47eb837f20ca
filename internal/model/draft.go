package model

import "time"

type DraftKind string

const (
	DraftResearch DraftKind = "research"
	DraftDocument DraftKind = "document"
	DraftReport   DraftKind = "report"
)

func (k DraftKind) Valid() bool {
	switch k {
	case DraftResearch, DraftDocument, DraftReport:
		return true
	}
	return false
}

type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Draft backs the research, document writer and report panels.
type Draft struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	Kind      DraftKind         `gorm:"size:16;not null;index" json:"kind"`
	Title     string            `gorm:"size:256;not null" json:"title"`
	Fields    map[string]string `gorm:"serializer:json;type:json" json:"fields"`
	Sections  []Section         `gorm:"serializer:json;type:json" json:"sections"`
	Citations []Citation        `gorm:"serializer:json;type:json" json:"citations"`
	Content   string            `gorm:"type:longtext" json:"content"`
	History   History           `gorm:"serializer:json;type:json" json:"-"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (d *Draft) SectionIndex(id string) int {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return i
		}
	}
	return -1
}
