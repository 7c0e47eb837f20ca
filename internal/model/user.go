package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:128" json:"display_name"`
	Institution  string    `gorm:"size:128" json:"institution"`
	Role         string    `gorm:"size:32;not null;default:student" json:"role"`
	Avatar       string    `gorm:"size:64" json:"avatar,omitempty"`
	Theme        string    `gorm:"size:16;not null;default:light" json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	RoleStudent    = "student"
	RoleResearcher = "researcher"
	RoleEducator   = "educator"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleResearcher, RoleEducator:
		return true
	}
	return false
}

func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}
