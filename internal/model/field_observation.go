package model

import "time"

type FieldObservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Trip      string    `gorm:"size:128;not null;index" json:"trip"`
	Note      string    `gorm:"type:text" json:"note"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	PhotoKey  string    `gorm:"size:255" json:"-"`
	PhotoMIME string    `gorm:"size:64" json:"photo_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *FieldObservation) HasPhoto() bool { return o.PhotoKey != "" }
