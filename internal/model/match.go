package model

import (
	"time"
)

// Match status constants. A match leaves StatusScheduled at most once; after
// that the reminder sweep never selects it again.
type MatchStatus string

const (
	MatchStatusScheduled    MatchStatus = "scheduled"
	MatchStatusLive         MatchStatus = "live"
	MatchStatusCompleted    MatchStatus = "completed"
	MatchStatusReminderSent MatchStatus = "reminder-sent"
)

// LiveMatch is an automatically tracked fixture. Records are created by the
// provider ingestion path; the scheduler only flips Status from scheduled to
// reminder-sent.
type LiveMatch struct {
	Base
	ExternalID string      `json:"external_id" db:"external_id"`
	Teams      string      `json:"teams" db:"teams"`
	Venue      string      `json:"venue" db:"venue"`
	StartTime  time.Time   `json:"start_time" db:"start_time"`
	Status     MatchStatus `json:"status" db:"status"`
}

// ProviderMatch is a fixture as returned by the external cricket data
// provider, before ingestion.
type ProviderMatch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	Status    string    `json:"status"`
	MatchType string    `json:"match_type"`
	StartsAt  time.Time `json:"starts_at"`
	Note      string    `json:"note,omitempty"`
}
