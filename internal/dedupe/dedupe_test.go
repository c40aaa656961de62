package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"  The   Corner Cafe  ": "the corner cafe",
		"CAFÉ MÜNCHEN":          "café münchen",
		"12\tMain   St":         "12 main st",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonical(in), "input %q", in)
	}
}

func TestFingerprint_StableAcrossFormatting(t *testing.T) {
	a := Fingerprint("The Corner Cafe", "12 Main St, Leeds")
	b := Fingerprint("  the CORNER cafe ", "12  main st,  leeds")
	assert.Equal(t, a, b)

	c := Fingerprint("The Corner Cafe", "14 Main St, Leeds")
	assert.NotEqual(t, a, c)
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "place:ChIJ123", IdentityKey("ChIJ123", "ignored", "ignored"))

	key := IdentityKey("", "Corner Cafe", "12 Main St")
	assert.Contains(t, key, "fp:")
	assert.Equal(t, key, IdentityKey("", "corner cafe", "12 MAIN ST"))
}

type fakeLookup struct {
	byKey map[string]*model.Business
}

func (f *fakeLookup) GetByIdentity(_ context.Context, key string) (*model.Business, error) {
	return f.byKey[key], nil
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestResolve_NewBusiness(t *testing.T) {
	r := NewResolver(&fakeLookup{byKey: map[string]*model.Business{}})

	observed := model.Business{
		ID:          "new-id",
		IdentityKey: "place:ChIJabc",
		Name:        "Rustic Kitchen",
	}

	resolved, isNew, err := r.Resolve(context.Background(), observed)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "new-id", resolved.ID)
}

func TestResolve_ExistingBusiness_Merges(t *testing.T) {
	firstSeen := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	existing := &model.Business{
		ID:          "stored-id",
		IdentityKey: "place:ChIJabc",
		Name:        "Rustic Kitchen",
		Phone:       "+44 161 111 1111",
		Rating:      ptrF(4.2),
		ReviewCount: ptrI(80),
		WebPresence: model.WebPresenceNone,
		SearchRunID: "run-1",
		FirstSeenAt: firstSeen,
		LastSeenAt:  firstSeen,
	}
	r := NewResolver(&fakeLookup{byKey: map[string]*model.Business{"place:ChIJabc": existing}})

	observed := model.Business{
		ID:          "discarded-id",
		IdentityKey: "place:ChIJabc",
		Name:        "Rustic Kitchen",
		Rating:      ptrF(4.6),
		ReviewCount: ptrI(120),
		Website:     "https://facebook.com/rustickitchen",
		WebPresence: model.WebPresenceSocialOnly,
		SearchRunID: "run-2",
		FirstSeenAt: lastSeen,
		LastSeenAt:  lastSeen,
	}

	resolved, isNew, err := r.Resolve(context.Background(), observed)
	require.NoError(t, err)
	assert.False(t, isNew)

	// Stored identity survives; observed values win for mutable fields.
	assert.Equal(t, "stored-id", resolved.ID)
	assert.Equal(t, firstSeen, resolved.FirstSeenAt)
	assert.Equal(t, lastSeen, resolved.LastSeenAt)
	assert.Equal(t, "run-2", resolved.SearchRunID)
	assert.InDelta(t, 4.6, *resolved.Rating, 0.001)
	assert.Equal(t, 120, *resolved.ReviewCount)
	assert.Equal(t, model.WebPresenceSocialOnly, resolved.WebPresence)

	// Contact fields absent from the observation are kept.
	assert.Equal(t, "+44 161 111 1111", resolved.Phone)
}

func TestMerge_LaterObservationWinsEvenWhenUnknown(t *testing.T) {
	existing := model.Business{Rating: ptrF(4.8), ReviewCount: ptrI(300)}
	observed := model.Business{Rating: nil, ReviewCount: nil}

	merged := Merge(existing, observed)
	assert.Nil(t, merged.Rating)
	assert.Nil(t, merged.ReviewCount)
}
