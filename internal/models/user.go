package models

import "time"

// User represents an account stored in the internal area. ID is the
// badgerhold key; Email carries a unique index so registration can
// detect duplicates.
type User struct {
	ID           string    `json:"id" badgerhold:"key"`
	Email        string    `json:"email" badgerhold:"unique"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSetting is one per-user key/value preference (stored Gemini key
// override, default ticker, display options).
type UserSetting struct {
	Key       string    `json:"key" badgerhold:"key"` // "<userID>/<name>"
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingKey builds the composite store key for a user setting.
func SettingKey(userID, name string) string {
	return userID + "/" + name
}
