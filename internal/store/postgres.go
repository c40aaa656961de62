package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through this interface.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	executed_at     TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ
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
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	rating        DOUBLE PRECISION,
	review_count  INTEGER,
	web_presence  TEXT NOT NULL DEFAULT 'none',
	lead_score    INTEGER NOT NULL DEFAULT 0,
	qualified     BOOLEAN NOT NULL DEFAULT false,
	raw_payload   JSONB,
	search_run_id TEXT,
	first_seen_at TIMESTAMPTZ NOT NULL,
	last_seen_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS score_history (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL REFERENCES businesses(id),
	search_run_id TEXT,
	score         INTEGER NOT NULL,
	qualified     BOOLEAN NOT NULL,
	scored_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS demos (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL REFERENCES businesses(id),
	template    TEXT NOT NULL,
	local_path  TEXT,
	demo_url    TEXT,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outreach (
	id                TEXT PRIMARY KEY,
	business_id       TEXT NOT NULL REFERENCES businesses(id),
	method            TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'sent',
	response_received BOOLEAN NOT NULL DEFAULT false,
	notes             TEXT,
	contacted_at      TIMESTAMPTZ NOT NULL
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return storeErr("ping", s.pool.Ping(ctx))
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return storeErr("migrate", err)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSearchRun(ctx context.Context, category, location string, requestedLimit int) (*model.SearchRun, error) {
	run := &model.SearchRun{
		ID:             uuid.New().String(),
		Category:       category,
		Location:       location,
		RequestedLimit: requestedLimit,
		Status:         model.RunStatusRunning,
		ExecutedAt:     time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_runs (id, category, location, requested_limit, status, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Category, run.Location, run.RequestedLimit, string(run.Status), run.ExecutedAt,
	)
	if err != nil {
		return nil, storeErr("create search run", err)
	}
	return run, nil
}

func (s *PostgresStore) FinishSearchRun(ctx context.Context, runID string, status model.RunStatus, counts model.RunCounts, runErr string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE search_runs
		 SET status = $1, result_count = $2, qualified_count = $3, dropped_count = $4, failed_count = $5,
		     error = $6, completed_at = $7
		 WHERE id = $8`,
		string(status), counts.Results, counts.Qualified, counts.Dropped, counts.Failed,
		pgText(runErr), time.Now().UTC(), runID,
	)
	if err != nil {
		return storeErr("finish search run", err)
	}
	if tag.RowsAffected() == 0 {
		return storeErr("finish search run", eris.Wrapf(ErrNotFound, "search run %s", runID))
	}
	return nil
}

const pgRunColumns = `id, category, location, requested_limit, status,
	result_count, qualified_count, dropped_count, failed_count,
	error, executed_at, completed_at`

func (s *PostgresStore) GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgRunColumns+` FROM search_runs WHERE id = $1`,
		runID,
	)
	run, err := scanPGSearchRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeErr("get search run", eris.Wrapf(ErrNotFound, "search run %s", runID))
		}
		return nil, storeErr("get search run", err)
	}
	return run, nil
}

func (s *PostgresStore) ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT ` + pgRunColumns + ` FROM search_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Location != "" {
		query += fmt.Sprintf(` AND location = $%d`, argIdx)
		args = append(args, filter.Location)
		argIdx++
	}
	query += ` ORDER BY executed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list search runs", err)
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanPGSearchRun(rows)
		if err != nil {
			return nil, storeErr("list search runs", err)
		}
		runs = append(runs, *r)
	}
	return runs, storeErr("list search runs", rows.Err())
}

const pgBusinessColumns = `id, identity_key, place_id, name, category, location,
	address, phone, website, maps_url, latitude, longitude, rating, review_count,
	web_presence, lead_score, qualified, raw_payload, search_run_id,
	first_seen_at, last_seen_at`

func (s *PostgresStore) GetByIdentity(ctx context.Context, identityKey string) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgBusinessColumns+` FROM businesses WHERE identity_key = $1`,
		identityKey,
	)
	b, err := scanPGBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get by identity", err)
	}
	return b, nil
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgBusinessColumns+` FROM businesses WHERE id = $1`,
		id,
	)
	b, err := scanPGBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeErr("get business", eris.Wrapf(ErrNotFound, "business %s", id))
		}
		return nil, storeErr("get business", err)
	}
	return b, nil
}

func (s *PostgresStore) UpsertBusiness(ctx context.Context, b *model.Business) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", storeErr("upsert business", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO businesses (`+pgBusinessColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		 ON CONFLICT (identity_key) DO UPDATE SET
		   place_id = EXCLUDED.place_id,
		   name = EXCLUDED.name,
		   category = EXCLUDED.category,
		   location = EXCLUDED.location,
		   address = EXCLUDED.address,
		   phone = EXCLUDED.phone,
		   website = EXCLUDED.website,
		   maps_url = EXCLUDED.maps_url,
		   latitude = EXCLUDED.latitude,
		   longitude = EXCLUDED.longitude,
		   rating = EXCLUDED.rating,
		   review_count = EXCLUDED.review_count,
		   web_presence = EXCLUDED.web_presence,
		   lead_score = EXCLUDED.lead_score,
		   qualified = EXCLUDED.qualified,
		   raw_payload = EXCLUDED.raw_payload,
		   search_run_id = EXCLUDED.search_run_id,
		   last_seen_at = EXCLUDED.last_seen_at
		 RETURNING id`,
		b.ID, b.IdentityKey, pgText(b.PlaceID), b.Name, b.Category, b.Location,
		pgText(b.Address), pgText(b.Phone), pgText(b.Website), pgText(b.MapsURL),
		b.Latitude, b.Longitude, b.Rating, b.ReviewCount,
		string(b.WebPresence), b.LeadScore, b.Qualified, pgRaw(b.RawPayload),
		pgText(b.SearchRunID), b.FirstSeenAt, b.LastSeenAt,
	).Scan(&id)
	if err != nil {
		return "", storeErr("upsert business", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO score_history (id, business_id, search_run_id, score, qualified, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), id, pgText(b.SearchRunID), b.LeadScore, b.Qualified, time.Now().UTC(),
	)
	if err != nil {
		return "", storeErr("upsert business: score history", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", storeErr("upsert business: commit", err)
	}
	return id, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Business, error) {
	query := `SELECT ` + pgBusinessColumns + ` FROM businesses WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Location != "" {
		query += fmt.Sprintf(` AND location = $%d`, argIdx)
		args = append(args, filter.Location)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND lead_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	if filter.Qualified != nil {
		query += fmt.Sprintf(` AND qualified = $%d`, argIdx)
		args = append(args, *filter.Qualified)
		argIdx++
	}
	if filter.WebPresence != "" {
		query += fmt.Sprintf(` AND web_presence = $%d`, argIdx)
		args = append(args, string(filter.WebPresence))
		argIdx++
	}
	query += ` ORDER BY lead_score DESC, last_seen_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list leads", err)
	}
	defer rows.Close()

	var leads []model.Business
	for rows.Next() {
		b, err := scanPGBusiness(rows)
		if err != nil {
			return nil, storeErr("list leads", err)
		}
		leads = append(leads, *b)
	}
	return leads, storeErr("list leads", rows.Err())
}

func (s *PostgresStore) ScoreHistory(ctx context.Context, businessID string) ([]model.ScoreEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_id, search_run_id, score, qualified, scored_at
		 FROM score_history WHERE business_id = $1 ORDER BY scored_at ASC`,
		businessID,
	)
	if err != nil {
		return nil, storeErr("score history", err)
	}
	defer rows.Close()

	var entries []model.ScoreEntry
	for rows.Next() {
		var e model.ScoreEntry
		var runID *string
		if err := rows.Scan(&e.ID, &e.BusinessID, &runID, &e.Score, &e.Qualified, &e.ScoredAt); err != nil {
			return nil, storeErr("score history", err)
		}
		if runID != nil {
			e.SearchRunID = *runID
		}
		entries = append(entries, e)
	}
	return entries, storeErr("score history", rows.Err())
}

func (s *PostgresStore) RecordDemo(ctx context.Context, d *model.Demo) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO demos (id, business_id, template, local_path, demo_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.BusinessID, d.Template, pgText(d.LocalPath), pgText(d.DemoURL), d.CreatedAt,
	)
	return storeErr("record demo", err)
}

func (s *PostgresStore) ListDemos(ctx context.Context, businessID string) ([]model.Demo, error) {
	query := `SELECT id, business_id, template, local_path, demo_url, created_at FROM demos`
	args := []any{}
	if businessID != "" {
		query += ` WHERE business_id = $1`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list demos", err)
	}
	defer rows.Close()

	var demos []model.Demo
	for rows.Next() {
		var d model.Demo
		var localPath, demoURL *string
		if err := rows.Scan(&d.ID, &d.BusinessID, &d.Template, &localPath, &demoURL, &d.CreatedAt); err != nil {
			return nil, storeErr("list demos", err)
		}
		if localPath != nil {
			d.LocalPath = *localPath
		}
		if demoURL != nil {
			d.DemoURL = *demoURL
		}
		demos = append(demos, d)
	}
	return demos, storeErr("list demos", rows.Err())
}

func (s *PostgresStore) LogOutreach(ctx context.Context, o *model.Outreach) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.ContactedAt.IsZero() {
		o.ContactedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = model.OutreachSent
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO outreach (id, business_id, method, status, response_received, notes, contacted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.BusinessID, string(o.Method), string(o.Status), o.ResponseReceived,
		pgText(o.Notes), o.ContactedAt,
	)
	return storeErr("log outreach", err)
}

func (s *PostgresStore) UpdateOutreachResponse(ctx context.Context, outreachID string, status model.OutreachStatus, notes string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE outreach SET status = $1, response_received = true, notes = $2 WHERE id = $3`,
		string(status), pgText(notes), outreachID,
	)
	if err != nil {
		return storeErr("update outreach response", err)
	}
	if tag.RowsAffected() == 0 {
		return storeErr("update outreach response", eris.Wrapf(ErrNotFound, "outreach %s", outreachID))
	}
	return nil
}

func (s *PostgresStore) ListOutreach(ctx context.Context, filter OutreachFilter) ([]model.Outreach, error) {
	query := `SELECT id, business_id, method, status, response_received, notes, contacted_at
	          FROM outreach WHERE true`
	args := []any{}
	argIdx := 1

	if filter.BusinessID != "" {
		query += fmt.Sprintf(` AND business_id = $%d`, argIdx)
		args = append(args, filter.BusinessID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Method != "" {
		query += fmt.Sprintf(` AND method = $%d`, argIdx)
		args = append(args, string(filter.Method))
		argIdx++
	}
	query += ` ORDER BY contacted_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list outreach", err)
	}
	defer rows.Close()

	var attempts []model.Outreach
	for rows.Next() {
		var o model.Outreach
		var notes *string
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.Method, &o.Status, &o.ResponseReceived, &notes, &o.ContactedAt); err != nil {
			return nil, storeErr("list outreach", err)
		}
		if notes != nil {
			o.Notes = *notes
		}
		attempts = append(attempts, o)
	}
	return attempts, storeErr("list outreach", rows.Err())
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		RunsByStatus:  map[string]int{},
		ByWebPresence: map[string]int{},
	}

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM search_runs GROUP BY status`)
	if err != nil {
		return nil, storeErr("stats: runs", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, storeErr("stats: runs", err)
		}
		st.RunsByStatus[status] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("stats: runs", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT web_presence, COUNT(*) FROM businesses GROUP BY web_presence`)
	if err != nil {
		return nil, storeErr("stats: presence", err)
	}
	for rows.Next() {
		var presence string
		var n int
		if err := rows.Scan(&presence, &n); err != nil {
			rows.Close()
			return nil, storeErr("stats: presence", err)
		}
		st.ByWebPresence[presence] = n
		st.TotalBusinesses += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("stats: presence", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE qualified), COALESCE(AVG(lead_score), 0) FROM businesses`,
	).Scan(&st.QualifiedLeads, &st.AverageScore)
	if err != nil {
		return nil, storeErr("stats: businesses", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE response_received) FROM outreach`,
	).Scan(&st.OutreachTotal, &st.OutreachReplied)
	if err != nil {
		return nil, storeErr("stats: outreach", err)
	}

	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM demos`).Scan(&st.DemosGenerated)
	if err != nil {
		return nil, storeErr("stats: demos", err)
	}

	return st, nil
}

// helpers

func pgText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func pgRaw(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

type pgScannable interface {
	Scan(dest ...any) error
}

func scanPGSearchRun(row pgScannable) (*model.SearchRun, error) {
	var r model.SearchRun
	var errMsg *string

	err := row.Scan(&r.ID, &r.Category, &r.Location, &r.RequestedLimit, &r.Status,
		&r.Counts.Results, &r.Counts.Qualified, &r.Counts.Dropped, &r.Counts.Failed,
		&errMsg, &r.ExecutedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func scanPGBusiness(row pgScannable) (*model.Business, error) {
	var b model.Business
	var placeID, address, phone, website, mapsURL, runID *string
	var rawPayload []byte

	err := row.Scan(&b.ID, &b.IdentityKey, &placeID, &b.Name, &b.Category, &b.Location,
		&address, &phone, &website, &mapsURL, &b.Latitude, &b.Longitude, &b.Rating, &b.ReviewCount,
		&b.WebPresence, &b.LeadScore, &b.Qualified, &rawPayload, &runID,
		&b.FirstSeenAt, &b.LastSeenAt)
	if err != nil {
		return nil, err
	}

	if placeID != nil {
		b.PlaceID = *placeID
	}
	if address != nil {
		b.Address = *address
	}
	if phone != nil {
		b.Phone = *phone
	}
	if website != nil {
		b.Website = *website
	}
	if mapsURL != nil {
		b.MapsURL = *mapsURL
	}
	if runID != nil {
		b.SearchRunID = *runID
	}
	b.RawPayload = rawPayload
	return &b, nil
}
