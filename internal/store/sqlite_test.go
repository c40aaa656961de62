package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testBusiness(identityKey, name string) *model.Business {
	rating := 4.5
	reviews := 80
	return &model.Business{
		ID:          "biz-" + identityKey,
		IdentityKey: identityKey,
		Name:        name,
		Category:    "restaurants",
		Location:    "Lisbon",
		Address:     "1 Main St",
		Phone:       "+351 210 000 000",
		Rating:      &rating,
		ReviewCount: &reviews,
		WebPresence: model.WebPresenceNone,
		LeadScore:   80,
		Qualified:   true,
	}
}

// --- Search Runs ---

func TestSQLite_SearchRun_Lifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "restaurants", "Lisbon", 40)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	counts := model.RunCounts{Results: 35, Qualified: 12, Dropped: 3, Failed: 2}
	err = st.FinishSearchRun(ctx, run.ID, model.RunStatusPartial, counts, "")
	require.NoError(t, err)

	got, err := st.GetSearchRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusPartial, got.Status)
	assert.Equal(t, counts, got.Counts)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_SearchRun_FailedWithError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "plumbers", "Porto", 20)
	require.NoError(t, err)

	err = st.FinishSearchRun(ctx, run.ID, model.RunStatusFailed, model.RunCounts{}, "source unavailable")
	require.NoError(t, err)

	got, err := st.GetSearchRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "source unavailable", got.Error)
}

func TestSQLite_FinishSearchRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.FinishSearchRun(context.Background(), "missing", model.RunStatusCompleted, model.RunCounts{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_ListSearchRuns_Filter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateSearchRun(ctx, "restaurants", "Lisbon", 20)
	require.NoError(t, err)
	_, err = st.CreateSearchRun(ctx, "plumbers", "Porto", 20)
	require.NoError(t, err)

	require.NoError(t, st.FinishSearchRun(ctx, r1.ID, model.RunStatusCompleted, model.RunCounts{Results: 5}, ""))

	completed, err := st.ListSearchRuns(ctx, RunFilter{Status: model.RunStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, r1.ID, completed[0].ID)

	lisbon, err := st.ListSearchRuns(ctx, RunFilter{Location: "Lisbon"})
	require.NoError(t, err)
	require.Len(t, lisbon, 1)

	all, err := st.ListSearchRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// --- Businesses ---

func TestSQLite_GetByIdentity_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	b, err := st.GetByIdentity(context.Background(), "place:unknown")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestSQLite_UpsertBusiness_InsertAndFetch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	b := testBusiness("place:abc", "Tasca do Chico")
	b.RawPayload = []byte(`{"title":"Tasca do Chico"}`)

	id, err := st.UpsertBusiness(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	got, err := st.GetByIdentity(ctx, "place:abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tasca do Chico", got.Name)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.5, *got.Rating, 0.001)
	require.NotNil(t, got.ReviewCount)
	assert.Equal(t, 80, *got.ReviewCount)
	assert.True(t, got.Qualified)
	assert.JSONEq(t, `{"title":"Tasca do Chico"}`, string(got.RawPayload))
}

func TestSQLite_UpsertBusiness_NoDuplicateOnRepeat(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testBusiness("place:abc", "Tasca do Chico")
	firstID, err := st.UpsertBusiness(ctx, first)
	require.NoError(t, err)

	// Second observation of the same identity with updated data and a
	// different candidate ID. The existing row must win.
	second := testBusiness("place:abc", "Tasca do Chico (Renamed)")
	second.ID = "biz-other"
	second.LeadScore = 95
	secondID, err := st.UpsertBusiness(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	leads, err := st.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Tasca do Chico (Renamed)", leads[0].Name)
	assert.Equal(t, 95, leads[0].LeadScore)
}

func TestSQLite_UpsertBusiness_NilNumericsRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	b := testBusiness("fp:1a2b3c4d", "No Ratings Yet")
	b.Rating = nil
	b.ReviewCount = nil
	b.Qualified = false

	_, err := st.UpsertBusiness(ctx, b)
	require.NoError(t, err)

	got, err := st.GetByIdentity(ctx, "fp:1a2b3c4d")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.ReviewCount)
	assert.False(t, got.Qualified)
}

func TestSQLite_GetBusiness_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetBusiness(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var serr *StoreError
	assert.True(t, errors.As(err, &serr))
}

func TestSQLite_ScoreHistory_AppendsPerObservation(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	b := testBusiness("place:abc", "Tasca do Chico")
	b.LeadScore = 80
	id, err := st.UpsertBusiness(ctx, b)
	require.NoError(t, err)

	b.LeadScore = 65
	_, err = st.UpsertBusiness(ctx, b)
	require.NoError(t, err)

	history, err := st.ScoreHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 80, history[0].Score)
	assert.Equal(t, 65, history[1].Score)
}

func TestSQLite_ListLeads_OrderAndFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	low := testBusiness("place:low", "Low Score")
	low.LeadScore = 40
	low.Qualified = false
	low.WebPresence = model.WebPresenceHasWebsite

	high := testBusiness("place:high", "High Score")
	high.LeadScore = 95

	mid := testBusiness("place:mid", "Mid Score")
	mid.LeadScore = 70
	mid.WebPresence = model.WebPresenceSocialOnly

	for _, b := range []*model.Business{low, high, mid} {
		_, err := st.UpsertBusiness(ctx, b)
		require.NoError(t, err)
	}

	leads, err := st.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "High Score", leads[0].Name)
	assert.Equal(t, "Mid Score", leads[1].Name)
	assert.Equal(t, "Low Score", leads[2].Name)

	qualified := true
	onlyQualified, err := st.ListLeads(ctx, LeadFilter{Qualified: &qualified})
	require.NoError(t, err)
	assert.Len(t, onlyQualified, 2)

	scored, err := st.ListLeads(ctx, LeadFilter{MinScore: 90})
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "High Score", scored[0].Name)

	social, err := st.ListLeads(ctx, LeadFilter{WebPresence: model.WebPresenceSocialOnly})
	require.NoError(t, err)
	require.Len(t, social, 1)
	assert.Equal(t, "Mid Score", social[0].Name)
}

// --- Demos ---

func TestSQLite_Demos_RecordAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.UpsertBusiness(ctx, testBusiness("place:abc", "Tasca do Chico"))
	require.NoError(t, err)

	d := &model.Demo{BusinessID: id, Template: "restaurant", LocalPath: "/tmp/demo/index.html"}
	require.NoError(t, st.RecordDemo(ctx, d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())

	demos, err := st.ListDemos(ctx, id)
	require.NoError(t, err)
	require.Len(t, demos, 1)
	assert.Equal(t, "restaurant", demos[0].Template)
	assert.Equal(t, "/tmp/demo/index.html", demos[0].LocalPath)
}

// --- Outreach ---

func TestSQLite_Outreach_LogAndRespond(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.UpsertBusiness(ctx, testBusiness("place:abc", "Tasca do Chico"))
	require.NoError(t, err)

	o := &model.Outreach{BusinessID: id, Method: model.OutreachWhatsApp}
	require.NoError(t, st.LogOutreach(ctx, o))
	assert.Equal(t, model.OutreachSent, o.Status)

	err = st.UpdateOutreachResponse(ctx, o.ID, model.OutreachInterested, "wants a call Friday")
	require.NoError(t, err)

	attempts, err := st.ListOutreach(ctx, OutreachFilter{BusinessID: id})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.OutreachInterested, attempts[0].Status)
	assert.True(t, attempts[0].ResponseReceived)
	assert.Equal(t, "wants a call Friday", attempts[0].Notes)
}

func TestSQLite_UpdateOutreachResponse_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateOutreachResponse(context.Background(), "missing", model.OutreachWon, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- Stats ---

func TestSQLite_Stats(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "restaurants", "Lisbon", 20)
	require.NoError(t, err)
	require.NoError(t, st.FinishSearchRun(ctx, run.ID, model.RunStatusCompleted, model.RunCounts{Results: 2}, ""))

	a := testBusiness("place:a", "A")
	a.LeadScore = 80
	b := testBusiness("place:b", "B")
	b.LeadScore = 40
	b.Qualified = false
	b.WebPresence = model.WebPresenceHasWebsite

	aID, err := st.UpsertBusiness(ctx, a)
	require.NoError(t, err)
	_, err = st.UpsertBusiness(ctx, b)
	require.NoError(t, err)

	o := &model.Outreach{BusinessID: aID, Method: model.OutreachEmail}
	require.NoError(t, st.LogOutreach(ctx, o))
	require.NoError(t, st.UpdateOutreachResponse(ctx, o.ID, model.OutreachInterested, ""))
	require.NoError(t, st.RecordDemo(ctx, &model.Demo{BusinessID: aID, Template: "restaurant"}))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RunsByStatus["completed"])
	assert.Equal(t, 2, stats.TotalBusinesses)
	assert.Equal(t, 1, stats.QualifiedLeads)
	assert.Equal(t, 1, stats.ByWebPresence["none"])
	assert.Equal(t, 1, stats.ByWebPresence["has_website"])
	assert.InDelta(t, 60.0, stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.OutreachTotal)
	assert.Equal(t, 1, stats.OutreachReplied)
	assert.Equal(t, 1, stats.DemosGenerated)
}
