package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationReviewed  EventType = "application.reviewed"
)

// ApplicationEvent is published after an application changes. It never carries credentials.
type ApplicationEvent struct {
	Type              EventType         `json:"type"`
	ApplicationID     uuid.UUID         `json:"applicationId"`
	ApplicationNumber string            `json:"applicationNumber"`
	Email             string            `json:"email"`
	Status            ApplicationStatus `json:"status"`
	ReviewedBy        string            `json:"reviewedBy,omitempty"`
	VendorID          *uuid.UUID        `json:"vendorId,omitempty"`
	Notified          bool              `json:"notified"`
	OccurredAt        time.Time         `json:"occurredAt"`
}
