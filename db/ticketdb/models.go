package ticketdb

import "strings"

// Header is the fixed first row of the ticket file.
var Header = []string{"name", "email", "summary", "description"}

type Ticket struct {
	Name        string `csv:"name" json:"name"`
	Email       string `csv:"email" json:"email"`
	Summary     string `csv:"summary" json:"summary"`
	Description string `csv:"description" json:"description"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (t Ticket) Trimmed() Ticket {
	return Ticket{
		Name:        strings.TrimSpace(t.Name),
		Email:       strings.TrimSpace(t.Email),
		Summary:     strings.TrimSpace(t.Summary),
		Description: strings.TrimSpace(t.Description),
	}
}
