package model

import "time"

// PanelState is the saved client state of one feature panel for one user.
type PanelState struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_panel_user" json:"user_id"`
	Panel     string    `gorm:"size:32;not null;uniqueIndex:idx_panel_user" json:"panel"`
	Payload   string    `gorm:"type:longtext;not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
