// Package models defines the persisted record types for the triage service.
package models

import (
	"strings"
	"time"
)

// Severity values a scan may carry. Stored as plain text.
const (
	SeverityMinor    = "MINOR"
	SeverityModerate = "MODERATE"
	SeverityUrgent   = "URGENT"
)

// RoleCitizen is the default role assigned on registration.
const RoleCitizen = "CITIZEN"

// User represents a registered account with its editable profile.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           string    `json:"role"`
	Name           *string   `json:"name,omitempty"`
	Age            *int64    `json:"age,omitempty"`
	Gender         *string   `json:"gender,omitempty"`
	Conditions     *string   `json:"conditions,omitempty"`
	Allergies      *string   `json:"allergies,omitempty"`
	Address        *string   `json:"address,omitempty"`
	LocationLat    *float64  `json:"location_lat,omitempty"`
	LocationLng    *float64  `json:"location_lng,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser carries the fields accepted at registration time.
type NewUser struct {
	Email          string
	HashedPassword string
	Name           *string
	Age            *int64
	Gender         *string
	Conditions     *string
	Allergies      *string
	Address        *string
}

// UserUpdate is a partial profile update; nil fields are left untouched.
type UserUpdate struct {
	Name        *string
	Age         *int64
	Gender      *string
	Conditions  *string
	Allergies   *string
	Address     *string
	LocationLat *float64
	LocationLng *float64
}

// Scan is one uploaded image plus its analysis result. user_id and
// assigned_to are plain foreign-key ids; callers resolve them explicitly.
type Scan struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Filename   string    `json:"filename"`
	S3Key      *string   `json:"s3_key,omitempty"`
	Condition  *string   `json:"condition,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Severity   *string   `json:"severity,omitempty"`
	Steps      *string   `json:"steps,omitempty"`
	Warnings   *string   `json:"warnings,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	AssignedTo *int64    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewScan carries the fields written when a scan is first recorded.
type NewScan struct {
	UserID     *int64
	Filename   string
	S3Key      string
	Condition  string
	Confidence float64
	Severity   string
	Steps      string
	Warnings   string
}

// NormalizeSeverity upper-cases and validates a severity label. Anything
// outside the three defined values, including the empty string, maps to MINOR.
func NormalizeSeverity(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case SeverityModerate:
		return SeverityModerate
	case SeverityUrgent:
		return SeverityUrgent
	default:
		return SeverityMinor
	}
}

// JoinList serializes a step or warning list for storage.
func JoinList(items []string) string {
	return strings.Join(items, "|")
}

// SplitList restores a stored pipe-joined list. nil or empty columns come
// back as an empty, non-nil slice so responses always carry a JSON array.
func SplitList(col *string) []string {
	if col == nil || *col == "" {
		return []string{}
	}
	return strings.Split(*col, "|")
}
