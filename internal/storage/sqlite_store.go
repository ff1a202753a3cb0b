package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"surveycore/internal/models"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore keeps the ledger in a single SQLite file. One connection
// serialises writers, which is what makes the conditional updates atomic.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS campaigns (
			id         TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL,
			name       TEXT NOT NULL,
			status     TEXT NOT NULL,
			modules    TEXT NOT NULL,
			closes_at  TEXT,
			started_at TEXT,
			closed_at  TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tokens (
			id             TEXT PRIMARY KEY,
			fingerprint    TEXT NOT NULL UNIQUE,
			campaign_id    TEXT NOT NULL REFERENCES campaigns(id),
			participant_id TEXT NOT NULL,
			module_set     TEXT NOT NULL,
			expires_at     TEXT NOT NULL,
			max_uses       INTEGER NOT NULL,
			used_count     INTEGER NOT NULL DEFAULT 0,
			device_hash    TEXT NOT NULL DEFAULT '',
			ip_hash        TEXT NOT NULL DEFAULT '',
			assessment_id  TEXT NOT NULL DEFAULT '',
			perspective    TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tokens_campaign ON tokens(campaign_id);

		CREATE TABLE IF NOT EXISTS responses (
			id                TEXT PRIMARY KEY,
			campaign_id       TEXT NOT NULL,
			anonymous_id      TEXT NOT NULL,
			status            TEXT NOT NULL,
			started_at        TEXT NOT NULL,
			last_saved_at     TEXT NOT NULL,
			completed_at      TEXT,
			age_range         TEXT NOT NULL DEFAULT '',
			seniority_range   TEXT NOT NULL DEFAULT '',
			department        TEXT NOT NULL DEFAULT '',
			stakeholder_group TEXT NOT NULL DEFAULT '',
			assessment_id     TEXT NOT NULL DEFAULT '',
			perspective       TEXT NOT NULL DEFAULT '',
			UNIQUE (campaign_id, anonymous_id)
		);
		CREATE INDEX IF NOT EXISTS idx_responses_campaign_status ON responses(campaign_id, status);

		CREATE TABLE IF NOT EXISTS answers (
			response_id TEXT NOT NULL REFERENCES responses(id),
			question_id TEXT NOT NULL,
			module_code TEXT NOT NULL,
			payload     TEXT NOT NULL,
			PRIMARY KEY (response_id, question_id)
		);

		CREATE TABLE IF NOT EXISTS audit_log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			at            TEXT NOT NULL,
			action        TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id   TEXT NOT NULL,
			campaign_id   TEXT NOT NULL,
			details       TEXT NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_audit_campaign ON audit_log(campaign_id);
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeModules(codes []models.ModuleCode) (string, error) {
	b, err := json.Marshal(codes)
	return string(b), err
}

func decodeModules(v string) ([]models.ModuleCode, error) {
	var codes []models.ModuleCode
	err := json.Unmarshal([]byte(v), &codes)
	return codes, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// --- campaigns ---

const campaignColumns = `id, tenant_id, name, status, modules, closes_at, started_at, closed_at, created_at`

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var (
		c                             models.Campaign
		modules, createdAt            string
		closesAt, startedAt, closedAt sql.NullString
	)
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Status, &modules, &closesAt, &startedAt, &closedAt, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.Modules, err = decodeModules(modules); err != nil {
		return nil, err
	}
	if c.ClosesAt, err = parseNullTime(closesAt); err != nil {
		return nil, err
	}
	if c.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, err
	}
	if c.ClosedAt, err = parseNullTime(closedAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) PutCampaign(ctx context.Context, c *models.Campaign) error {
	modules, err := encodeModules(c.Modules)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id, name = excluded.name, status = excluded.status,
			modules = excluded.modules, closes_at = excluded.closes_at,
			started_at = excluded.started_at, closed_at = excluded.closed_at`,
		c.ID, c.TenantID, c.Name, c.Status, modules,
		fmtNullTime(c.ClosesAt), fmtNullTime(c.StartedAt), fmtNullTime(c.ClosedAt), fmtTime(c.CreatedAt))
	return err
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *SQLiteStore) ListDueCampaigns(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE status = ? AND closes_at IS NOT NULL ORDER BY id`, models.CampaignActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		if c.Due(now) {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) TransitionCampaign(ctx context.Context, id string, from, to models.CampaignStatus, at time.Time) error {
	column := "started_at"
	if to == models.CampaignClosed {
		column = "closed_at"
	}
	res, err := s.db.ExecContext(ctx, `UPDATE campaigns SET status = ?, `+column+` = ? WHERE id = ? AND status = ?`,
		to, fmtTime(at), id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	c, err := s.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	return conflict("campaign %s is %s, expected %s", id, c.Status, from)
}

// --- tokens ---

const tokenColumns = `id, fingerprint, campaign_id, participant_id, module_set, expires_at, max_uses, used_count,
	device_hash, ip_hash, assessment_id, perspective, created_at`

func scanToken(row rowScanner) (*models.Token, error) {
	var (
		t                               models.Token
		moduleSet, expiresAt, createdAt string
		assessmentID, perspective       string
	)
	if err := row.Scan(&t.ID, &t.Fingerprint, &t.CampaignID, &t.ParticipantID, &moduleSet, &expiresAt,
		&t.MaxUses, &t.UsedCount, &t.DeviceHash, &t.IPHash, &assessmentID, &perspective, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if t.ModuleSet, err = decodeModules(moduleSet); err != nil {
		return nil, err
	}
	if t.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if assessmentID != "" {
		t.Assignment = &models.RaterAssignment{AssessmentID: assessmentID, Perspective: models.RaterPerspective(perspective)}
	}
	return &t, nil
}

func (s *SQLiteStore) PutTokens(ctx context.Context, tokens []*models.Token) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tokens (`+tokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tokens {
		moduleSet, err := encodeModules(t.ModuleSet)
		if err != nil {
			return err
		}
		var assessmentID, perspective string
		if t.Assignment != nil {
			assessmentID, perspective = t.Assignment.AssessmentID, string(t.Assignment.Perspective)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Fingerprint, t.CampaignID, t.ParticipantID, moduleSet,
			fmtTime(t.ExpiresAt), t.MaxUses, t.UsedCount, t.DeviceHash, t.IPHash, assessmentID, perspective,
			fmtTime(t.CreatedAt)); err != nil {
			return fmt.Errorf("insert token: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetTokenByFingerprint(ctx context.Context, fingerprint string) (*models.Token, error) {
	t, err := scanToken(s.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE fingerprint = ?`, fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTokens(ctx context.Context, campaignID string) ([]*models.Token, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE campaign_id = ? ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- responses ---

const responseColumns = `id, campaign_id, anonymous_id, status, started_at, last_saved_at, completed_at,
	age_range, seniority_range, department, stakeholder_group, assessment_id, perspective`

func scanResponse(row rowScanner) (*models.Response, error) {
	var (
		r                      models.Response
		startedAt, lastSavedAt string
		completedAt            sql.NullString
	)
	if err := row.Scan(&r.ID, &r.CampaignID, &r.AnonymousID, &r.Status, &startedAt, &lastSavedAt, &completedAt,
		&r.Demographics.AgeRange, &r.Demographics.SeniorityRange, &r.Demographics.Department,
		&r.Demographics.StakeholderGroup, &r.AssessmentID, &r.Perspective); err != nil {
		return nil, err
	}
	var err error
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if r.LastSavedAt, err = parseTime(lastSavedAt); err != nil {
		return nil, err
	}
	if r.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) CreateResponse(ctx context.Context, r *models.Response) (*models.Response, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (`+responseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_id, anonymous_id) DO NOTHING`,
		r.ID, r.CampaignID, r.AnonymousID, r.Status, fmtTime(r.StartedAt), fmtTime(r.LastSavedAt),
		fmtNullTime(r.CompletedAt), r.Demographics.AgeRange, r.Demographics.SeniorityRange,
		r.Demographics.Department, r.Demographics.StakeholderGroup, r.AssessmentID, r.Perspective)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 1 {
		return r.Clone(), true, nil
	}
	existing, err := s.FindResponse(ctx, r.CampaignID, r.AnonymousID)
	return existing, false, err
}

func (s *SQLiteStore) StartResponse(ctx context.Context, tokenID, ipHash string, r *models.Response) (*models.Response, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := scanResponse(tx.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE campaign_id = ? AND anonymous_id = ?`,
		r.CampaignID, r.AnonymousID))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE tokens SET used_count = used_count + 1,
			ip_hash = CASE WHEN ? = '' THEN ip_hash ELSE ? END
		WHERE id = ? AND used_count < max_uses`, ipHash, ipHash, tokenID)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM tokens WHERE id = ?`, tokenID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		if err != nil {
			return nil, false, err
		}
		return nil, false, ErrTokenExhausted
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO responses (`+responseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CampaignID, r.AnonymousID, r.Status, fmtTime(r.StartedAt), fmtTime(r.LastSavedAt),
		fmtNullTime(r.CompletedAt), r.Demographics.AgeRange, r.Demographics.SeniorityRange,
		r.Demographics.Department, r.Demographics.StakeholderGroup, r.AssessmentID, r.Perspective); err != nil {
		return nil, false, fmt.Errorf("insert response: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return r.Clone(), true, nil
}

func (s *SQLiteStore) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	r, err := scanResponse(s.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) FindResponse(ctx context.Context, campaignID, anonymousID string) (*models.Response, error) {
	r, err := scanResponse(s.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE campaign_id = ? AND anonymous_id = ?`, campaignID, anonymousID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// statusError maps the status of a response that failed a conditional
// update to the error its writer should see.
func statusError(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, responseID string) error {
	var status models.ResponseStatus
	err := q.QueryRowContext(ctx, `SELECT status FROM responses WHERE id = ?`, responseID).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrInvalidSession
	case err != nil:
		return err
	case status == models.StatusCompleted:
		return models.ErrAlreadySubmitted
	default:
		return models.ErrInvalidSession
	}
}

func (s *SQLiteStore) SaveAnswers(ctx context.Context, responseID string, answers []models.Answer, savedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `UPDATE responses SET last_saved_at = ? WHERE id = ? AND status = ?`,
		fmtTime(savedAt), responseID, models.StatusInProgress)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return statusError(ctx, tx, responseID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answers (response_id, question_id, module_code, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(response_id, question_id) DO UPDATE SET
			module_code = excluded.module_code, payload = excluded.payload`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range answers {
		payload, err := models.MarshalPayload(a.Payload)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, responseID, a.QuestionID, a.ModuleCode, string(payload)); err != nil {
			return fmt.Errorf("upsert answer %s: %w", a.QuestionID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CompleteResponse(ctx context.Context, responseID string, at time.Time) (*models.Response, error) {
	ts := fmtTime(at)
	res, err := s.db.ExecContext(ctx, `UPDATE responses SET status = ?, completed_at = ?, last_saved_at = ? WHERE id = ? AND status = ?`,
		models.StatusCompleted, ts, ts, responseID, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return nil, statusError(ctx, s.db, responseID)
	}
	return s.GetResponse(ctx, responseID)
}

func (s *SQLiteStore) SetDemographics(ctx context.Context, responseID string, d models.Demographics) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE responses SET age_range = ?, seniority_range = ?, department = ?, stakeholder_group = ?
		WHERE id = ? AND status = ?`,
		d.AgeRange, d.SeniorityRange, d.Department, d.StakeholderGroup, responseID, models.StatusInProgress)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return statusError(ctx, s.db, responseID)
	}
	return nil
}

func (s *SQLiteStore) ExpireResponses(ctx context.Context, campaignID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE responses SET status = ? WHERE campaign_id = ? AND status = ?`,
		models.StatusExpired, campaignID, models.StatusInProgress)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) CountResponses(ctx context.Context, campaignID string) (map[models.ResponseStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM responses WHERE campaign_id = ? GROUP BY status`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ResponseStatus]int, 3)
	for rows.Next() {
		var (
			status models.ResponseStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListSubmissions reads responses and their answers in one snapshot so a
// concurrent submit cannot appear in one query and not the other.
func (s *SQLiteStore) ListSubmissions(ctx context.Context, campaignID string) ([]models.Submission, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE campaign_id = ? AND status = ? ORDER BY id`,
		campaignID, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	var subs []models.Submission
	index := make(map[string]int)
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[r.ID] = len(subs)
		subs = append(subs, models.Submission{Response: *r})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	answerRows, err := tx.QueryContext(ctx, `
		SELECT a.response_id, a.question_id, a.module_code, a.payload
		FROM answers a JOIN responses r ON r.id = a.response_id
		WHERE r.campaign_id = ? AND r.status = ?
		ORDER BY a.response_id, a.module_code, a.question_id`, campaignID, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var (
			a       models.Answer
			payload string
		)
		if err := answerRows.Scan(&a.ResponseID, &a.QuestionID, &a.ModuleCode, &payload); err != nil {
			return nil, err
		}
		if a.Payload, err = models.UnmarshalPayload([]byte(payload)); err != nil {
			return nil, fmt.Errorf("answer %s: %w", a.QuestionID, err)
		}
		if i, ok := index[a.ResponseID]; ok {
			subs[i].Answers = append(subs[i].Answers, a)
		}
	}
	if err := answerRows.Err(); err != nil {
		return nil, err
	}
	answerRows.Close()
	return subs, tx.Commit()
}

// --- audit ---

func (s *SQLiteStore) AppendAudit(ctx context.Context, e models.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (at, action, resource_type, resource_id, campaign_id, details) VALUES (?, ?, ?, ?, ?, ?)`,
		fmtTime(e.Time), e.Action, e.ResourceType, e.ResourceID, e.CampaignID, string(details))
	return err
}

func (s *SQLiteStore) ListAudit(ctx context.Context, campaignID string) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, action, resource_type, resource_id, campaign_id, details
		FROM audit_log WHERE campaign_id = ? ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var (
			e           models.AuditEntry
			at, details string
		)
		if err := rows.Scan(&at, &e.Action, &e.ResourceType, &e.ResourceID, &e.CampaignID, &details); err != nil {
			return nil, err
		}
		if e.Time, err = parseTime(at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
