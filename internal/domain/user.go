package domain

import (
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return Invalidf("user name is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return Invalidf("invalid email %q", u.Email)
	}
	return nil
}
