package models

import "time"

// Classification is the validated shape of a classify response. The raw
// provider output must decode into this struct before it is accepted;
// anything else counts as a provider failure and triggers fallback.
type Classification struct {
	Type                  string     `json:"type"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Links                 []LinkInfo `json:"links"`
	EstimatedMinutes      int        `json:"estimated_minutes"`
	Priority              int        `json:"priority"`
	Tags                  []string   `json:"tags"`
	ConsumptionSuggestion string     `json:"consumption_suggestion"`
}

// CaptureEvent is the inbound event delivered by the external messaging
// collaborator (Telegram bot, PWA, ...).
type CaptureEvent struct {
	UserID          string    `json:"user_id"`
	Text            string    `json:"text,omitempty"`
	Image           []byte    `json:"image,omitempty"` // base64 on the wire
	ImageMIME       string    `json:"image_mime,omitempty"`
	Caption         string    `json:"caption,omitempty"`
	SourceMessageID string    `json:"source_message_id,omitempty"`
	ReceivedAt      time.Time `json:"received_at,omitempty"`
}

// PicksRationale is the lightweight LLM output used to annotate and re-rank
// an already-selected set of picks. Selection never depends on it.
type PicksRationale struct {
	Picks []struct {
		ItemID string `json:"item_id"`
		Reason string `json:"reason"`
	} `json:"picks"`
	Message string `json:"message"`
}
