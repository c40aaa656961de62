package model

import "time"

// OutreachMethod is the channel used to contact a lead.
type OutreachMethod string

const (
	OutreachEmail    OutreachMethod = "email"
	OutreachPhone    OutreachMethod = "phone"
	OutreachWhatsApp OutreachMethod = "whatsapp"
	OutreachInPerson OutreachMethod = "in_person"
)

// OutreachStatus tracks where a contact attempt stands.
type OutreachStatus string

const (
	OutreachSent          OutreachStatus = "sent"
	OutreachInterested    OutreachStatus = "interested"
	OutreachNotInterested OutreachStatus = "not_interested"
	OutreachCallback      OutreachStatus = "callback"
	OutreachWon           OutreachStatus = "won"
	OutreachLost          OutreachStatus = "lost"
)

// Outreach is one contact attempt against a lead.
type Outreach struct {
	ID               string         `json:"id"`
	BusinessID       string         `json:"business_id"`
	Method           OutreachMethod `json:"method"`
	Status           OutreachStatus `json:"status"`
	ResponseReceived bool           `json:"response_received"`
	Notes            string         `json:"notes,omitempty"`
	ContactedAt      time.Time      `json:"contacted_at"`
}
