package models

import "time"

// User is the profile document for an identity-provider account. UID is
// assigned by the identity provider, not generated locally.
type User struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"displayName"`
	PhotoURL      string     `json:"photoUrl"`
	IsAdmin       bool       `json:"isAdmin"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}
