package models

import (
	"time"
)

type UserRole string

const (
	RoleUser        UserRole = "user"
	RoleAdmin       UserRole = "admin"
	RoleContributor UserRole = "contributor"
)

type User struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null;size:50"`
	Email string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	// Bcrypt hash, never serialized.
	Password    string   `json:"-" gorm:"not null;size:100"`
	IndexNumber *string  `json:"indexNumber,omitempty" gorm:"uniqueIndex;size:13"`
	Role        UserRole `json:"role" gorm:"not null;default:user;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasIndexNumber reports whether the user registered with an index number.
func (u *User) HasIndexNumber() bool {
	return u.IndexNumber != nil && *u.IndexNumber != ""
}

// IndexNumberValue returns the index number or "" when unset.
func (u *User) IndexNumberValue() string {
	if u.IndexNumber == nil {
		return ""
	}
	return *u.IndexNumber
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
