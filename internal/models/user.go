package models

import "github.com/golang-jwt/jwt/v5"

// User is a teacher account on the school API.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the authenticated pair the gateway tracks for a browser: the
// upstream bearer token and the profile it belongs to.
type Session struct {
	ID            string `json:"id"`
	UpstreamToken string `json:"upstream_token"`
	User          User   `json:"user"`
}

// SessionClaims is the gateway JWT payload. It carries only the session ID;
// the upstream token never leaves the server side.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// LoginResponse is returned to the browser after a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      User   `json:"user"`
}

// PasswordChange carries a password update for an account.
type PasswordChange struct {
	Password string `json:"password" validate:"required,min=6"`
}
