package models

import "time"

// Parent is the role profile backing a parent account.
type Parent struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Phone      string    `db:"phone" json:"phone"`
	Occupation string    `db:"occupation" json:"occupation"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ParentInfo joins the profile with account display fields.
type ParentInfo struct {
	Parent
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
