package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertType identifies the match event the user wants to be told about.
type AlertType string

const (
	AlertTypeMatchStart  AlertType = "match_start"
	AlertTypeMatchEnd    AlertType = "match_end"
	AlertTypeScoreUpdate AlertType = "score_update"
)

// ValidAlertType reports whether t is one of the three supported types.
func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypeMatchStart, AlertTypeMatchEnd, AlertTypeScoreUpdate:
		return true
	}
	return false
}

// Alert is a user-created trigger requesting an email at TriggerTime.
// Sent flips false to true exactly once and is never reset; an alert is
// eligible for delivery iff IsActive && !Sent && TriggerTime <= now.
type Alert struct {
	Base
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	MatchID     string    `json:"match_id" db:"match_id"`
	AlertType   AlertType `json:"alert_type" db:"alert_type"`
	Message     string    `json:"message" db:"message"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	TriggerTime time.Time `json:"trigger_time" db:"trigger_time"`
	Sent        bool      `json:"sent" db:"sent"`
}

// CreateAlertRequest is the body of POST /alerts. TriggerTime is accepted as
// RFC 3339 and validated by the service.
type CreateAlertRequest struct {
	MatchID     string `json:"match_id" binding:"required"`
	AlertType   string `json:"alert_type" binding:"required,alerttype"`
	Message     string `json:"message" binding:"required"`
	TriggerTime string `json:"trigger_time" binding:"required"`
}
