package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

var testSocialPatterns = []string{
	"facebook.com", "instagram.com", "twitter.com", "linkedin.com", "tiktok.com",
}

func testRun() model.SearchRun {
	return model.SearchRun{ID: "run-1", Category: "restaurants", Location: "Manchester UK"}
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestNormalize_FullRecord(t *testing.T) {
	n := New(testSocialPatterns)

	raw := json.RawMessage(`{"title":"Rustic Kitchen"}`)
	rec := serpapi.LocalResult{
		Title:   "Rustic Kitchen",
		PlaceID: "ChIJabc123",
		Address: "12 Deansgate, Manchester",
		Phone:   "+44 161 123 4567",
		Rating:  ptrF(4.6),
		Reviews: ptrI(214),
		Website: "https://rustickitchen.example",
		Link:    "https://maps.google.com/?cid=123",
		GPS:     &serpapi.GPSCoordinates{Latitude: 53.48, Longitude: -2.24},
		Raw:     raw,
	}

	b, err := n.Normalize(rec, testRun())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "place:ChIJabc123", b.IdentityKey)
	assert.Equal(t, "Rustic Kitchen", b.Name)
	assert.Equal(t, "restaurants", b.Category)
	assert.Equal(t, "Manchester UK", b.Location)
	assert.Equal(t, "run-1", b.SearchRunID)
	require.NotNil(t, b.Rating)
	assert.InDelta(t, 4.6, *b.Rating, 0.001)
	require.NotNil(t, b.ReviewCount)
	assert.Equal(t, 214, *b.ReviewCount)
	assert.Equal(t, model.WebPresenceHasWebsite, b.WebPresence)
	assert.Equal(t, "https://maps.google.com/?cid=123", b.MapsURL)
	require.NotNil(t, b.Latitude)
	assert.InDelta(t, 53.48, *b.Latitude, 0.001)
	assert.Equal(t, raw, json.RawMessage(b.RawPayload))
	assert.False(t, b.FirstSeenAt.IsZero())
	assert.Equal(t, b.FirstSeenAt, b.LastSeenAt)
}

func TestNormalize_AbsentNumericFieldsStayUnknown(t *testing.T) {
	n := New(testSocialPatterns)

	rec := serpapi.LocalResult{
		Title:   "Corner Cafe",
		Address: "3 Oldham St, Manchester",
	}

	b, err := n.Normalize(rec, testRun())
	require.NoError(t, err)
	assert.Nil(t, b.Rating)
	assert.Nil(t, b.ReviewCount)
	assert.Nil(t, b.Latitude)
}

func TestNormalize_FallbackIdentityWithoutPlaceID(t *testing.T) {
	n := New(testSocialPatterns)

	rec := serpapi.LocalResult{Title: "Corner Cafe", Address: "3 Oldham St"}
	b, err := n.Normalize(rec, testRun())
	require.NoError(t, err)
	assert.Contains(t, b.IdentityKey, "fp:")

	// Same business with different formatting resolves to the same key.
	rec2 := serpapi.LocalResult{Title: "  CORNER cafe ", Address: "3  oldham st"}
	b2, err := n.Normalize(rec2, testRun())
	require.NoError(t, err)
	assert.Equal(t, b.IdentityKey, b2.IdentityKey)
}

func TestNormalize_MissingName(t *testing.T) {
	n := New(testSocialPatterns)

	_, err := n.Normalize(serpapi.LocalResult{Address: "somewhere"}, testRun())
	require.Error(t, err)

	var malformed *MalformedRecordError
	assert.True(t, errors.As(err, &malformed))
}

func TestNormalize_MissingAddressAndPhone(t *testing.T) {
	n := New(testSocialPatterns)

	_, err := n.Normalize(serpapi.LocalResult{Title: "Ghost Business"}, testRun())
	require.Error(t, err)

	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Reason, "address and phone")
}

func TestNormalize_PhoneOnlyIsEnough(t *testing.T) {
	n := New(testSocialPatterns)

	b, err := n.Normalize(serpapi.LocalResult{Title: "Mobile Barber", Phone: "+44 7700 900000"}, testRun())
	require.NoError(t, err)
	assert.Equal(t, "+44 7700 900000", b.Phone)
}

func TestClassifyWebPresence(t *testing.T) {
	n := New(testSocialPatterns)

	tests := []struct {
		website string
		want    model.WebPresence
	}{
		{"", model.WebPresenceNone},
		{"https://facebook.com/rustickitchen", model.WebPresenceSocialOnly},
		{"https://www.instagram.com/cornercafe", model.WebPresenceSocialOnly},
		{"facebook.com/nobody", model.WebPresenceSocialOnly},
		{"https://rustickitchen.example", model.WebPresenceHasWebsite},
		{"https://mybusiness.co.uk", model.WebPresenceHasWebsite},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, n.ClassifyWebPresence(tc.website), "website %q", tc.website)
	}
}

func TestMapsURL_Fallbacks(t *testing.T) {
	n := New(testSocialPatterns)

	// Place id fallback.
	b, err := n.Normalize(serpapi.LocalResult{
		Title: "A", Address: "1 Street", PlaceID: "ChIJxyz",
	}, testRun())
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:ChIJxyz", b.MapsURL)

	// Search query fallback.
	b, err = n.Normalize(serpapi.LocalResult{Title: "A Cafe", Address: "1 Street"}, testRun())
	require.NoError(t, err)
	assert.Contains(t, b.MapsURL, "maps/search/?api=1&query=")
}
