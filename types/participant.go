package types

import "strings"

// Participant takes part in one or more trips and may own expenses.
type Participant struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Surname string  `json:"surname"`
	Email   *string `json:"email"`
}

// FullName is the display name used in payment plans and emails.
func (p Participant) FullName() string {
	return displayName(p.Name, p.Surname)
}

func displayName(name, surname string) string {
	return name + " " + surname
}

// HasEmail reports whether the participant can receive a summary email.
func (p Participant) HasEmail() bool {
	return p.Email != nil && strings.TrimSpace(*p.Email) != ""
}
