package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS search_runs (
	id              TEXT PRIMARY KEY,
	category        TEXT NOT NULL,
	location        TEXT NOT NULL,
	requested_limit INTEGER NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	result_count    INTEGER NOT NULL DEFAULT 0,
	qualified_count INTEGER NOT NULL DEFAULT 0,
	dropped_count   INTEGER NOT NULL DEFAULT 0,
	failed_count    INTEGER NOT NULL DEFAULT 0,
	error           TEXT,
	executed_at     DATETIME NOT NULL,
	completed_at    DATETIME
);

CREATE TABLE IF NOT EXISTS businesses (
	id            TEXT PRIMARY KEY,
	identity_key  TEXT NOT NULL UNIQUE,
	place_id      TEXT,
	name          TEXT NOT NULL,
	category      TEXT,
	location      TEXT,
	address       TEXT,
	phone         TEXT,
	website       TEXT,
	maps_url      TEXT,
	latitude      REAL,
	longitude     REAL,
	rating        REAL,
	review_count  INTEGER,
	web_presence  TEXT NOT NULL DEFAULT 'none',
	lead_score    INTEGER NOT NULL DEFAULT 0,
	qualified     INTEGER NOT NULL DEFAULT 0,
	raw_payload   TEXT,
	search_run_id TEXT,
	first_seen_at DATETIME NOT NULL,
	last_seen_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS score_history (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL REFERENCES businesses(id),
	search_run_id TEXT,
	score         INTEGER NOT NULL,
	qualified     INTEGER NOT NULL,
	scored_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS demos (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL REFERENCES businesses(id),
	template    TEXT NOT NULL,
	local_path  TEXT,
	demo_url    TEXT,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS outreach (
	id                TEXT PRIMARY KEY,
	business_id       TEXT NOT NULL REFERENCES businesses(id),
	method            TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'sent',
	response_received INTEGER NOT NULL DEFAULT 0,
	notes             TEXT,
	contacted_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_runs_status ON search_runs(status);
CREATE INDEX IF NOT EXISTS idx_search_runs_query ON search_runs(category, location);
CREATE INDEX IF NOT EXISTS idx_businesses_score ON businesses(lead_score DESC);
CREATE INDEX IF NOT EXISTS idx_businesses_qualified ON businesses(qualified);
CREATE INDEX IF NOT EXISTS idx_score_history_business ON score_history(business_id);
CREATE INDEX IF NOT EXISTS idx_demos_business ON demos(business_id);
CREATE INDEX IF NOT EXISTS idx_outreach_business ON outreach(business_id);
CREATE INDEX IF NOT EXISTS idx_outreach_status ON outreach(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return storeErr("migrate", err)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSearchRun(ctx context.Context, category, location string, requestedLimit int) (*model.SearchRun, error) {
	run := &model.SearchRun{
		ID:             uuid.New().String(),
		Category:       category,
		Location:       location,
		RequestedLimit: requestedLimit,
		Status:         model.RunStatusRunning,
		ExecutedAt:     time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_runs (id, category, location, requested_limit, status, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Category, run.Location, run.RequestedLimit, string(run.Status), run.ExecutedAt,
	)
	if err != nil {
		return nil, storeErr("create search run", err)
	}
	return run, nil
}

func (s *SQLiteStore) FinishSearchRun(ctx context.Context, runID string, status model.RunStatus, counts model.RunCounts, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE search_runs
		 SET status = ?, result_count = ?, qualified_count = ?, dropped_count = ?, failed_count = ?,
		     error = ?, completed_at = ?
		 WHERE id = ?`,
		string(status), counts.Results, counts.Qualified, counts.Dropped, counts.Failed,
		nullString(runErr), time.Now().UTC(), runID,
	)
	if err != nil {
		return storeErr("finish search run", err)
	}
	return checkRowsAffected(res, "search run", runID)
}

func (s *SQLiteStore) GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, location, requested_limit, status,
		        result_count, qualified_count, dropped_count, failed_count,
		        error, executed_at, completed_at
		 FROM search_runs WHERE id = ?`,
		runID,
	)
	run, err := scanSearchRun(row)
	if err != nil {
		return nil, storeErr("get search run", err)
	}
	return run, nil
}

func (s *SQLiteStore) ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT id, category, location, requested_limit, status,
	                 result_count, qualified_count, dropped_count, failed_count,
	                 error, executed_at, completed_at
	          FROM search_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		query += ` AND location = ?`
		args = append(args, filter.Location)
	}
	query += ` ORDER BY executed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list search runs", err)
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanSearchRun(rows)
		if err != nil {
			return nil, storeErr("list search runs", err)
		}
		runs = append(runs, *r)
	}
	return runs, storeErr("list search runs", rows.Err())
}

const sqliteBusinessColumns = `id, identity_key, place_id, name, category, location,
	address, phone, website, maps_url, latitude, longitude, rating, review_count,
	web_presence, lead_score, qualified, raw_payload, search_run_id,
	first_seen_at, last_seen_at`

func (s *SQLiteStore) GetByIdentity(ctx context.Context, identityKey string) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteBusinessColumns+` FROM businesses WHERE identity_key = ?`,
		identityKey,
	)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get by identity", err)
	}
	return b, nil
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteBusinessColumns+` FROM businesses WHERE id = ?`,
		id,
	)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, storeErr("get business", eris.Wrapf(ErrNotFound, "business %s", id))
	}
	if err != nil {
		return nil, storeErr("get business", err)
	}
	return b, nil
}

// UpsertBusiness inserts or updates the row keyed by identity_key and appends
// a score history entry, all in one transaction. Concurrent observers of the
// same business serialize on the unique index rather than creating duplicates.
func (s *SQLiteStore) UpsertBusiness(ctx context.Context, b *model.Business) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storeErr("upsert business", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO businesses (`+sqliteBusinessColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(identity_key) DO UPDATE SET
		   place_id = excluded.place_id,
		   name = excluded.name,
		   category = excluded.category,
		   location = excluded.location,
		   address = excluded.address,
		   phone = excluded.phone,
		   website = excluded.website,
		   maps_url = excluded.maps_url,
		   latitude = excluded.latitude,
		   longitude = excluded.longitude,
		   rating = excluded.rating,
		   review_count = excluded.review_count,
		   web_presence = excluded.web_presence,
		   lead_score = excluded.lead_score,
		   qualified = excluded.qualified,
		   raw_payload = excluded.raw_payload,
		   search_run_id = excluded.search_run_id,
		   last_seen_at = excluded.last_seen_at
		 RETURNING id`,
		b.ID, b.IdentityKey, nullString(b.PlaceID), b.Name, b.Category, b.Location,
		nullString(b.Address), nullString(b.Phone), nullString(b.Website), nullString(b.MapsURL),
		b.Latitude, b.Longitude, b.Rating, b.ReviewCount,
		string(b.WebPresence), b.LeadScore, b.Qualified, rawString(b.RawPayload),
		nullString(b.SearchRunID), b.FirstSeenAt, b.LastSeenAt,
	).Scan(&id)
	if err != nil {
		return "", storeErr("upsert business", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO score_history (id, business_id, search_run_id, score, qualified, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), id, nullString(b.SearchRunID), b.LeadScore, b.Qualified, time.Now().UTC(),
	)
	if err != nil {
		return "", storeErr("upsert business: score history", err)
	}

	if err := tx.Commit(); err != nil {
		return "", storeErr("upsert business: commit", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Business, error) {
	query := `SELECT ` + sqliteBusinessColumns + ` FROM businesses WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		query += ` AND location = ?`
		args = append(args, filter.Location)
	}
	if filter.MinScore > 0 {
		query += ` AND lead_score >= ?`
		args = append(args, filter.MinScore)
	}
	if filter.Qualified != nil {
		query += ` AND qualified = ?`
		args = append(args, *filter.Qualified)
	}
	if filter.WebPresence != "" {
		query += ` AND web_presence = ?`
		args = append(args, string(filter.WebPresence))
	}
	query += ` ORDER BY lead_score DESC, last_seen_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list leads", err)
	}
	defer rows.Close()

	var leads []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, storeErr("list leads", err)
		}
		leads = append(leads, *b)
	}
	return leads, storeErr("list leads", rows.Err())
}

func (s *SQLiteStore) ScoreHistory(ctx context.Context, businessID string) ([]model.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_id, search_run_id, score, qualified, scored_at
		 FROM score_history WHERE business_id = ? ORDER BY scored_at ASC`,
		businessID,
	)
	if err != nil {
		return nil, storeErr("score history", err)
	}
	defer rows.Close()

	var entries []model.ScoreEntry
	for rows.Next() {
		var e model.ScoreEntry
		var runID sql.NullString
		if err := rows.Scan(&e.ID, &e.BusinessID, &runID, &e.Score, &e.Qualified, &e.ScoredAt); err != nil {
			return nil, storeErr("score history", err)
		}
		e.SearchRunID = runID.String
		entries = append(entries, e)
	}
	return entries, storeErr("score history", rows.Err())
}

func (s *SQLiteStore) RecordDemo(ctx context.Context, d *model.Demo) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO demos (id, business_id, template, local_path, demo_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.BusinessID, d.Template, nullString(d.LocalPath), nullString(d.DemoURL), d.CreatedAt,
	)
	return storeErr("record demo", err)
}

func (s *SQLiteStore) ListDemos(ctx context.Context, businessID string) ([]model.Demo, error) {
	query := `SELECT id, business_id, template, local_path, demo_url, created_at FROM demos`
	var args []any
	if businessID != "" {
		query += ` WHERE business_id = ?`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list demos", err)
	}
	defer rows.Close()

	var demos []model.Demo
	for rows.Next() {
		var d model.Demo
		var localPath, demoURL sql.NullString
		if err := rows.Scan(&d.ID, &d.BusinessID, &d.Template, &localPath, &demoURL, &d.CreatedAt); err != nil {
			return nil, storeErr("list demos", err)
		}
		d.LocalPath = localPath.String
		d.DemoURL = demoURL.String
		demos = append(demos, d)
	}
	return demos, storeErr("list demos", rows.Err())
}

func (s *SQLiteStore) LogOutreach(ctx context.Context, o *model.Outreach) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.ContactedAt.IsZero() {
		o.ContactedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = model.OutreachSent
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outreach (id, business_id, method, status, response_received, notes, contacted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BusinessID, string(o.Method), string(o.Status), o.ResponseReceived,
		nullString(o.Notes), o.ContactedAt,
	)
	return storeErr("log outreach", err)
}

func (s *SQLiteStore) UpdateOutreachResponse(ctx context.Context, outreachID string, status model.OutreachStatus, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outreach SET status = ?, response_received = 1, notes = ? WHERE id = ?`,
		string(status), nullString(notes), outreachID,
	)
	if err != nil {
		return storeErr("update outreach response", err)
	}
	return checkRowsAffected(res, "outreach", outreachID)
}

func (s *SQLiteStore) ListOutreach(ctx context.Context, filter OutreachFilter) ([]model.Outreach, error) {
	query := `SELECT id, business_id, method, status, response_received, notes, contacted_at
	          FROM outreach WHERE 1=1`
	var args []any

	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Method != "" {
		query += ` AND method = ?`
		args = append(args, string(filter.Method))
	}
	query += ` ORDER BY contacted_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list outreach", err)
	}
	defer rows.Close()

	var attempts []model.Outreach
	for rows.Next() {
		var o model.Outreach
		var notes sql.NullString
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.Method, &o.Status, &o.ResponseReceived, &notes, &o.ContactedAt); err != nil {
			return nil, storeErr("list outreach", err)
		}
		o.Notes = notes.String
		attempts = append(attempts, o)
	}
	return attempts, storeErr("list outreach", rows.Err())
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		RunsByStatus:  map[string]int{},
		ByWebPresence: map[string]int{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM search_runs GROUP BY status`)
	if err != nil {
		return nil, storeErr("stats: runs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storeErr("stats: runs", err)
		}
		st.RunsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("stats: runs", err)
	}

	presenceRows, err := s.db.QueryContext(ctx, `SELECT web_presence, COUNT(*) FROM businesses GROUP BY web_presence`)
	if err != nil {
		return nil, storeErr("stats: presence", err)
	}
	defer presenceRows.Close()
	for presenceRows.Next() {
		var presence string
		var n int
		if err := presenceRows.Scan(&presence, &n); err != nil {
			return nil, storeErr("stats: presence", err)
		}
		st.ByWebPresence[presence] = n
		st.TotalBusinesses += n
	}
	if err := presenceRows.Err(); err != nil {
		return nil, storeErr("stats: presence", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM businesses WHERE qualified = 1`,
	).Scan(&st.QualifiedLeads)
	if err != nil {
		return nil, storeErr("stats: qualified", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(lead_score), 0) FROM businesses`,
	).Scan(&st.AverageScore)
	if err != nil {
		return nil, storeErr("stats: average score", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(response_received), 0) FROM outreach`,
	).Scan(&st.OutreachTotal, &st.OutreachReplied)
	if err != nil {
		return nil, storeErr("stats: outreach", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM demos`).Scan(&st.DemosGenerated)
	if err != nil {
		return nil, storeErr("stats: demos", err)
	}

	return st, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return storeErr(entity, eris.Wrapf(ErrNotFound, "%s %s", entity, id))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func rawString(raw []byte) sql.NullString {
	return sql.NullString{String: string(raw), Valid: len(raw) > 0}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSearchRun(row scannable) (*model.SearchRun, error) {
	var r model.SearchRun
	var errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &r.Category, &r.Location, &r.RequestedLimit, &r.Status,
		&r.Counts.Results, &r.Counts.Qualified, &r.Counts.Dropped, &r.Counts.Failed,
		&errMsg, &r.ExecutedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	r.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

func scanBusiness(row scannable) (*model.Business, error) {
	var b model.Business
	var placeID, address, phone, website, mapsURL, rawPayload, runID sql.NullString
	var lat, lon, rating sql.NullFloat64
	var reviews sql.NullInt64

	err := row.Scan(&b.ID, &b.IdentityKey, &placeID, &b.Name, &b.Category, &b.Location,
		&address, &phone, &website, &mapsURL, &lat, &lon, &rating, &reviews,
		&b.WebPresence, &b.LeadScore, &b.Qualified, &rawPayload, &runID,
		&b.FirstSeenAt, &b.LastSeenAt)
	if err != nil {
		return nil, err
	}

	b.PlaceID = placeID.String
	b.Address = address.String
	b.Phone = phone.String
	b.Website = website.String
	b.MapsURL = mapsURL.String
	b.SearchRunID = runID.String
	if rawPayload.Valid {
		b.RawPayload = []byte(rawPayload.String)
	}
	if lat.Valid {
		v := lat.Float64
		b.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		b.Longitude = &v
	}
	if rating.Valid {
		v := rating.Float64
		b.Rating = &v
	}
	if reviews.Valid {
		v := int(reviews.Int64)
		b.ReviewCount = &v
	}
	return &b, nil
}
