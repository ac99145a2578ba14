package users

import "time"

type MeResponse struct {
	User     UserDTO     `json:"user"`
	Features FeaturesDTO `json:"features"`
}

type UserDTO struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	Email        *string    `json:"email"`
	AuthProvider string     `json:"auth_provider"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// FeaturesDTO tells the console which optional integrations are live.
type FeaturesDTO struct {
	Payments     bool   `json:"payments"`
	GoogleSignIn bool   `json:"google_sign_in"`
	Mail         bool   `json:"mail"`
	Events       bool   `json:"events"`
	Storage      string `json:"storage"` // "local" or "gcs"
}
