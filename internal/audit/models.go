// Package audit records verification decisions.
//
// Events never carry raw identity data: names are fingerprinted, document
// numbers masked and client IPs truncated before an Event is built.
package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

// EventType names what happened.
type EventType string

const (
	EventVerificationDecided EventType = "verification_decided"
	EventVerificationFailed  EventType = "verification_failed"
)

// Event is one audit record. Keep it transport-agnostic so stores and sinks
// can fan out.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	// ReceivedAt is when the request reached the gateway.
	ReceivedAt time.Time `json:"received_at,omitzero"`
	RequestID  string    `json:"request_id,omitempty"`
	// Subject is the authenticated API caller, empty for anonymous access.
	Subject string `json:"subject,omitempty"`

	Passed          bool    `json:"passed"`
	Reason          string  `json:"reason,omitempty"`
	Overall         float64 `json:"overall"`
	FaceMatch       float64 `json:"face_match"`
	Liveness        float64 `json:"liveness"`
	SanctionsStatus string  `json:"sanctions_status,omitempty"`
	SanctionsBest   float64 `json:"sanctions_best"`
	DocumentSource  string  `json:"document_source,omitempty"`
	NameHash        string  `json:"name_hash,omitempty"`
	DocumentNumber  string  `json:"document_number,omitempty"`

	// ErrorCode is set on EventVerificationFailed.
	ErrorCode string `json:"error_code,omitempty"`

	ClientIP string `json:"client_ip,omitempty"`
	Client   string `json:"client,omitempty"`
}

// NewEvent returns an event of type t with a fresh ID and timestamp.
func NewEvent(t EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// DescribeClient summarises a User-Agent as "Browser on OS", "curl" style
// tools by name, or "" when ua is empty.
func DescribeClient(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	if browser == "" {
		// Non-browser clients (curl/8.4.0, kycctl/1.0) carry the name before the slash.
		browser, _, _ = strings.Cut(strings.Fields(ua)[0], "/")
	}
	if parsed.Bot() {
		return "bot " + browser
	}
	if os := parsed.OS(); os != "" {
		return browser + " on " + os
	}
	return browser
}
