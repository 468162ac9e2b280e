// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Profile is an account owner. Every top-level entity references a
// profile through its user_id.
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string    `json:"full_name"`
	Company      string    `json:"company,omitempty"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Profile) TableName() string { return "profiles" }

// ProfilePatch updates the editable profile fields.
type ProfilePatch struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
}

// Credentials are used for both sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name,omitempty" validate:"max=200"`
	Company  string `json:"company,omitempty" validate:"max=200"`
}

// Session is an authenticated session handed out on sign-in.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Profile   `json:"user"`
}

// Expired reports whether the session token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName string    `json:"firstName" gorm:"not null" validate:"required,max=100"`
	LastName  string    `json:"lastName" gorm:"not null" validate:"required,max=100"`
	Email     string    `json:"email" gorm:"not null" validate:"required,email,max=255"`
	Phone     string    `json:"phone,omitempty" validate:"max=50"`
	Company   string    `json:"company,omitempty" validate:"max=200"`
	Topic     string    `json:"topic,omitempty" validate:"max=100"`
	Message   string    `json:"message" gorm:"type:text;not null" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the GORM table name.
func (ContactSubmission) TableName() string { return "contact_submissions" }
