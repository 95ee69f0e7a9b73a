package model

import "time"

// User is an account holder owning a list of transactions.
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	GoogleID  string    `json:"googleId,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
}

// UserProfile is derived from a user's transactions on every read and never stored.
type UserProfile struct {
	Name            string  `json:"name"`
	TotalBalance    float64 `json:"totalBalance"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	SavingsRate     float64 `json:"savingsRate"`
}
