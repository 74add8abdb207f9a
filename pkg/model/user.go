package model

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RolePlayer Role = "player"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RolePlayer
}

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

type User struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Email           string    `json:"email" bson:"email"`
	Role            Role      `json:"role" bson:"role"`
	PasswordHash    string    `json:"-" bson:"password_hash,omitempty"`
	Provider        string    `json:"provider" bson:"provider"`
	ProviderSubject string    `json:"-" bson:"provider_subject,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

type SignUpRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Role            Role   `json:"role" validate:"required,oneof=owner player"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FederatedSignInRequest struct {
	Token string `json:"token" validate:"required"`
	Role  Role   `json:"role,omitempty" validate:"omitempty,oneof=owner player"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
