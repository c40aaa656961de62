// Package normalize maps provider records into canonical Business records.
package normalize

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/prospect-cli/internal/dedupe"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

// MalformedRecordError marks a raw record that lacks the minimum identity
// fields. Such records are dropped and counted, never retried.
type MalformedRecordError struct {
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return "normalize: malformed record: " + e.Reason
}

// Normalizer converts SerpApi local results into Business records.
type Normalizer struct {
	socialPatterns []string
}

// New creates a Normalizer. socialPatterns are lowercase host substrings
// that mark a URL as a social profile.
func New(socialPatterns []string) *Normalizer {
	patterns := make([]string, len(socialPatterns))
	for i, p := range socialPatterns {
		patterns[i] = strings.ToLower(p)
	}
	return &Normalizer{socialPatterns: patterns}
}

// Normalize builds a fully-populated Business from a raw result. A record
// must carry a name and at least one of address/phone; anything less is a
// MalformedRecordError.
func (n *Normalizer) Normalize(rec serpapi.LocalResult, run model.SearchRun) (model.Business, error) {
	name := strings.TrimSpace(rec.Title)
	address := strings.TrimSpace(rec.Address)
	phone := strings.TrimSpace(rec.Phone)

	if name == "" {
		return model.Business{}, &MalformedRecordError{Reason: "missing name"}
	}
	if address == "" && phone == "" {
		return model.Business{}, &MalformedRecordError{Reason: "missing both address and phone"}
	}

	now := time.Now().UTC()

	b := model.Business{
		ID:          uuid.New().String(),
		IdentityKey: dedupe.IdentityKey(rec.PlaceID, name, address),
		PlaceID:     rec.PlaceID,
		Name:        name,
		Category:    run.Category,
		Location:    run.Location,
		Address:     address,
		Phone:       phone,
		Website:     strings.TrimSpace(rec.Website),
		MapsURL:     mapsURL(rec, name, address),
		RawPayload:  rec.Raw,
		SearchRunID: run.ID,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}

	// Absent numeric fields stay nil; zero is a valid rating with a
	// different meaning.
	if rec.Rating != nil {
		v := *rec.Rating
		b.Rating = &v
	}
	if rec.Reviews != nil {
		v := *rec.Reviews
		b.ReviewCount = &v
	}
	if rec.GPS != nil {
		lat, lon := rec.GPS.Latitude, rec.GPS.Longitude
		b.Latitude = &lat
		b.Longitude = &lon
	}

	b.WebPresence = n.ClassifyWebPresence(b.Website)

	return b, nil
}

// ClassifyWebPresence buckets a website URL: a non-social URL means
// has_website, a social profile URL means social_only, no URL means none.
func (n *Normalizer) ClassifyWebPresence(website string) model.WebPresence {
	if website == "" {
		return model.WebPresenceNone
	}

	host := strings.ToLower(website)
	if parsed, err := url.Parse(host); err == nil {
		if parsed.Host != "" {
			host = parsed.Host
		} else {
			host = parsed.Path
		}
	}

	for _, pattern := range n.socialPatterns {
		if strings.Contains(host, pattern) {
			return model.WebPresenceSocialOnly
		}
	}
	return model.WebPresenceHasWebsite
}

// mapsURL builds a Google Maps link for the record, preferring the direct
// link, then the place id, then a name+address search query.
func mapsURL(rec serpapi.LocalResult, name, address string) string {
	if rec.Link != "" {
		return rec.Link
	}
	if rec.PlaceID != "" {
		return "https://www.google.com/maps/place/?q=place_id:" + rec.PlaceID
	}
	if name != "" && address != "" {
		query := url.QueryEscape(name + " " + address)
		return "https://www.google.com/maps/search/?api=1&query=" + query
	}
	return ""
}
