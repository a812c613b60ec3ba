package models

import "time"

// EffectChange records one field mutation applied to a slot
type EffectChange struct {
	Slot     string `json:"slot"`
	Field    string `json:"field"` // "credits" | "reputation" | "flag"
	Flag     string `json:"flag,omitempty"`
	Delta    int    `json:"delta,omitempty"`
	NewValue int    `json:"newValue,omitempty"`
}

// IncidentRecord is an immutable audit entry appended to a session's history
// when an incident is triggered
type IncidentRecord struct {
	ID          string         `json:"id"`
	IncidentID  string         `json:"incidentId"`
	Name        string         `json:"name"`
	Target      string         `json:"target"`
	TriggeredBy string         `json:"triggeredBy"`
	TriggeredAt time.Time      `json:"triggeredAt"`
	Choice      bool           `json:"choice"`            // true when effects await a slot's choice
	Changes     []EffectChange `json:"changes,omitempty"` // empty until a choice incident resolves
}

// PendingChoice is a queued incident decision awaiting a slot's answer
type PendingChoice struct {
	RecordID   string    `json:"recordId"`
	IncidentID string    `json:"incidentId"`
	QueuedAt   time.Time `json:"queuedAt"`
}
