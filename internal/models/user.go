package models

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UserUpdate carries a partial update; nil fields are left untouched.
// Applied values are trimmed the same way as on create.
type UserUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = strings.TrimSpace(*u.Name)
	}
	if u.Email != nil {
		user.Email = strings.TrimSpace(*u.Email)
	}
}

type NewUser struct {
	Name  string `json:"name" binding:"notblank"`
	Email string `json:"email" binding:"notblank,email"`
}
