// Package model defines the canonical data types shared across the lead pipeline.
package model

import (
	"encoding/json"
	"time"
)

// WebPresence classifies how a business exists on the web.
type WebPresence string

const (
	// WebPresenceNone means no website or social profile was found.
	WebPresenceNone WebPresence = "none"
	// WebPresenceSocialOnly means the only URL on record is a social profile.
	WebPresenceSocialOnly WebPresence = "social_only"
	// WebPresenceHasWebsite means the business has its own website.
	WebPresenceHasWebsite WebPresence = "has_website"
)

// Business is the canonical lead record produced by normalization and
// maintained across repeated discoveries.
type Business struct {
	ID          string `json:"id"`
	IdentityKey string `json:"identity_key"`
	PlaceID     string `json:"place_id,omitempty"`

	Name     string `json:"name"`
	Category string `json:"category"`
	Location string `json:"location"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	MapsURL  string `json:"maps_url,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Rating and ReviewCount are nil when the source did not report them.
	// Zero is a real value with a different meaning, so absence is never
	// collapsed into it.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`

	WebPresence WebPresence `json:"web_presence"`

	LeadScore int  `json:"lead_score"`
	Qualified bool `json:"qualified"`

	// RawPayload is the unmodified source record, kept for audit.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`

	SearchRunID string    `json:"search_run_id,omitempty"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// HasRating reports whether the source provided a rating.
func (b *Business) HasRating() bool { return b.Rating != nil }

// HasReviewCount reports whether the source provided a review count.
func (b *Business) HasReviewCount() bool { return b.ReviewCount != nil }

// RatingValue returns the rating, or 0 when unknown.
func (b *Business) RatingValue() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

// ReviewCountValue returns the review count, or 0 when unknown.
func (b *Business) ReviewCountValue() int {
	if b.ReviewCount == nil {
		return 0
	}
	return *b.ReviewCount
}

// ScoreEntry is one point in a business's score history. A new entry is
// appended each time the business is observed and re-scored.
type ScoreEntry struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	SearchRunID string    `json:"search_run_id,omitempty"`
	Score       int       `json:"score"`
	Qualified   bool      `json:"qualified"`
	ScoredAt    time.Time `json:"scored_at"`
}

// Demo records a generated demo website for a business.
type Demo struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Template   string    `json:"template"`
	LocalPath  string    `json:"local_path,omitempty"`
	DemoURL    string    `json:"demo_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
