// File: /models/user.go
package models

import (
	"strings"
	"time"
)

type User struct {
	ID        string     `json:"id" gorm:"primaryKey;size:191"`
	Username  string     `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string     `json:"-" gorm:"not null;size:255"`
	FirstName string     `json:"first_name" gorm:"size:150"`
	LastName  string     `json:"last_name" gorm:"size:150"`
	Birthday  *time.Time `json:"birthday"`
	Gender    Gender     `json:"gender" gorm:"size:10"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// UserSummary is the public projection of a user used in listings.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ToSummaries(users []User) []UserSummary {
	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].ToSummary())
	}
	return summaries
}
