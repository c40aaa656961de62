package outreach

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

func newTestTracker(t *testing.T) (*Tracker, store.Store, string) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	rating := 4.5
	reviews := 60
	id, err := st.UpsertBusiness(ctx, &model.Business{
		ID:          "biz-1",
		IdentityKey: "place:p1",
		Name:        "Tasca do Chico",
		Rating:      &rating,
		ReviewCount: &reviews,
		WebPresence: model.WebPresenceNone,
		LeadScore:   80,
		Qualified:   true,
	})
	require.NoError(t, err)

	return NewTracker(st), st, id
}

func TestLogContact(t *testing.T) {
	tracker, _, bizID := newTestTracker(t)

	o, err := tracker.LogContact(context.Background(), bizID, model.OutreachWhatsApp, "sent demo link")
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, model.OutreachSent, o.Status)
	assert.False(t, o.ResponseReceived)
}

func TestLogContact_UnknownMethod(t *testing.T) {
	tracker, _, bizID := newTestTracker(t)

	_, err := tracker.LogContact(context.Background(), bizID, "carrier_pigeon", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

func TestLogContact_MissingBusiness(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	_, err := tracker.LogContact(context.Background(), "nope", model.OutreachEmail, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordResponse(t *testing.T) {
	tracker, st, bizID := newTestTracker(t)
	ctx := context.Background()

	o, err := tracker.LogContact(ctx, bizID, model.OutreachPhone, "")
	require.NoError(t, err)

	require.NoError(t, tracker.RecordResponse(ctx, o.ID, model.OutreachInterested, "call back Friday"))

	attempts, err := st.ListOutreach(ctx, store.OutreachFilter{BusinessID: bizID})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.OutreachInterested, attempts[0].Status)
	assert.True(t, attempts[0].ResponseReceived)
}

func TestRecordResponse_RejectsSent(t *testing.T) {
	tracker, _, bizID := newTestTracker(t)
	ctx := context.Background()

	o, err := tracker.LogContact(ctx, bizID, model.OutreachPhone, "")
	require.NoError(t, err)

	err = tracker.RecordResponse(ctx, o.ID, model.OutreachSent, "")
	require.Error(t, err)
}

func TestPendingFollowups_OldestFirst(t *testing.T) {
	tracker, st, bizID := newTestTracker(t)
	ctx := context.Background()

	older := &model.Outreach{
		BusinessID:  bizID,
		Method:      model.OutreachPhone,
		Status:      model.OutreachCallback,
		ContactedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	newer := &model.Outreach{
		BusinessID:  bizID,
		Method:      model.OutreachEmail,
		Status:      model.OutreachCallback,
		ContactedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, st.LogOutreach(ctx, older))
	require.NoError(t, st.LogOutreach(ctx, newer))

	followups, err := tracker.PendingFollowups(ctx)
	require.NoError(t, err)
	require.Len(t, followups, 2)
	assert.Equal(t, older.ID, followups[0].ID)
	assert.Equal(t, newer.ID, followups[1].ID)
}

func TestUnanswered(t *testing.T) {
	tracker, st, bizID := newTestTracker(t)
	ctx := context.Background()

	stale := &model.Outreach{
		BusinessID:  bizID,
		Method:      model.OutreachEmail,
		ContactedAt: time.Now().UTC().Add(-10 * 24 * time.Hour),
	}
	recent := &model.Outreach{
		BusinessID:  bizID,
		Method:      model.OutreachEmail,
		ContactedAt: time.Now().UTC().Add(-1 * time.Hour),
	}
	require.NoError(t, st.LogOutreach(ctx, stale))
	require.NoError(t, st.LogOutreach(ctx, recent))

	unanswered, err := tracker.Unanswered(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, unanswered, 1)
	assert.Equal(t, stale.ID, unanswered[0].ID)
}
