package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Preferences are the user's opt-in flags. The scheduler reads them and
// never writes them.
type Preferences struct {
	FavoriteTeams      pq.StringArray `json:"favorite_teams"`
	AlertsEnabled      bool           `json:"alerts_enabled"`
	EmailNotifications bool           `json:"email_notifications"`
}

// Value implements driver.Valuer so Preferences persist as a jsonb column.
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for jsonb round trips.
func (p *Preferences) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Preferences{}
		return nil
	default:
		return fmt.Errorf("unsupported preferences column type %T", src)
	}
}

// DefaultPreferences mirror the sign-up defaults: everything opted in.
func DefaultPreferences() Preferences {
	return Preferences{
		AlertsEnabled:      true,
		EmailNotifications: true,
	}
}

// User represents a registered account.
type User struct {
	Base
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Password     string      `json:"password,omitempty" db:"-"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Status       string      `json:"status" db:"status"`
	Preferences  Preferences `json:"preferences" db:"preferences"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdatePreferencesRequest struct {
	FavoriteTeams      []string `json:"favorite_teams"`
	AlertsEnabled      *bool    `json:"alerts_enabled"`
	EmailNotifications *bool    `json:"email_notifications"`
}
