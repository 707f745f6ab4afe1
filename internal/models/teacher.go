package models

import "time"

// Teacher is the role profile backing a teacher account.
type Teacher struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TeacherInfo joins the profile with account display fields.
type TeacherInfo struct {
	Teacher
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
