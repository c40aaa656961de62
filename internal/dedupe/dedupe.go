// Package dedupe resolves repeated discoveries of the same physical business
// onto one stored record.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/prospect-cli/internal/model"
)

var foldCaser = cases.Fold()

// Canonical normalizes a string for identity comparison: Unicode NFKC,
// case folding, and whitespace collapsing.
func Canonical(s string) string {
	s = norm.NFKC.String(s)
	s = foldCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Fingerprint derives a stable identity hash from a business name and
// address. Used when the provider returns no place id. Two locations of a
// chain sharing a normalized name+address will collide; the provider gives
// no stronger signal to tell them apart.
func Fingerprint(name, address string) string {
	sum := sha256.Sum256([]byte(Canonical(name) + "|" + Canonical(address)))
	return hex.EncodeToString(sum[:8])
}

// IdentityKey returns the stable identity key for a business: the provider
// place id when present, otherwise a name+address fingerprint.
func IdentityKey(placeID, name, address string) string {
	if placeID != "" {
		return "place:" + placeID
	}
	return "fp:" + Fingerprint(name, address)
}

// IdentityLookup is the slice of the store the resolver needs.
type IdentityLookup interface {
	GetByIdentity(ctx context.Context, key string) (*model.Business, error)
}

// Resolver decides whether an observation is a new business or an update to
// a stored one.
type Resolver struct {
	lookup IdentityLookup
}

// NewResolver creates a Resolver backed by the given lookup.
func NewResolver(lookup IdentityLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve matches the observed business against the store by identity key.
// Returns the record to persist and whether it is new. On a match the
// observation is merged into the stored record; the stored ID and
// FirstSeenAt survive.
func (r *Resolver) Resolve(ctx context.Context, observed model.Business) (model.Business, bool, error) {
	existing, err := r.lookup.GetByIdentity(ctx, observed.IdentityKey)
	if err != nil {
		return model.Business{}, false, eris.Wrapf(err, "dedupe: lookup %s", observed.IdentityKey)
	}

	if existing == nil {
		return observed, true, nil
	}

	return Merge(*existing, observed), false, nil
}

// Merge folds a new observation into a stored record. The later observation
// wins for rating, review count, and web presence; contact fields update
// only when the observation carries them.
func Merge(existing, observed model.Business) model.Business {
	merged := existing

	merged.Rating = observed.Rating
	merged.ReviewCount = observed.ReviewCount
	merged.WebPresence = observed.WebPresence
	merged.Website = observed.Website

	if observed.Name != "" {
		merged.Name = observed.Name
	}
	if observed.Address != "" {
		merged.Address = observed.Address
	}
	if observed.Phone != "" {
		merged.Phone = observed.Phone
	}
	if observed.MapsURL != "" {
		merged.MapsURL = observed.MapsURL
	}
	if observed.Latitude != nil {
		merged.Latitude = observed.Latitude
	}
	if observed.Longitude != nil {
		merged.Longitude = observed.Longitude
	}
	if observed.Category != "" {
		merged.Category = observed.Category
	}
	if observed.Location != "" {
		merged.Location = observed.Location
	}
	if len(observed.RawPayload) > 0 {
		merged.RawPayload = observed.RawPayload
	}

	merged.SearchRunID = observed.SearchRunID
	merged.LastSeenAt = observed.LastSeenAt

	return merged
}
