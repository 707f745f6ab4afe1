package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds the credentials posted by the login form.
type LoginRequest struct {
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
	Remember  bool   `form:"remember"`
	IP        string `form:"-"`
	UserAgent string `form:"-"`
}

// SessionClaims is the JWT payload stored in the session cookie.
type SessionClaims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Principal identifies the signed-in account for the current request.
type Principal struct {
	UserID string
	Role   Role
	Name   string
}
