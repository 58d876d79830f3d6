package dto

import "github.com/spec-kit/helpdesk-service/internal/domain"

// AccountSummary is the admin view of an account.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAccountList maps users, never returning nil.
func NewAccountList(users []domain.User) []AccountSummary {
	out := make([]AccountSummary, 0, len(users))
	for _, u := range users {
		out = append(out, AccountSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}
