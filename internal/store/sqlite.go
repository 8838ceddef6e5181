package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/subwise/outreach-bot/internal/models"
)

// SQLiteStore implements Store using modernc.org/sqlite
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens the database at path and configures WAL mode
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to exec %s: %w", pragma, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS profiles (
	twitter_id       TEXT PRIMARY KEY,
	handle           TEXT NOT NULL,
	name             TEXT NOT NULL,
	bio              TEXT NOT NULL DEFAULT '',
	followers        INTEGER NOT NULL DEFAULT 0,
	following        INTEGER NOT NULL DEFAULT 0,
	tweet_count      INTEGER NOT NULL DEFAULT 0,
	url              TEXT NOT NULL DEFAULT '',
	avatar_url       TEXT NOT NULL DEFAULT '',
	last_active_at   DATETIME,
	lang             TEXT NOT NULL DEFAULT 'en',
	dm_open          INTEGER,
	verified         INTEGER NOT NULL DEFAULT 0,
	discovery_bucket TEXT NOT NULL DEFAULT '',
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS candidates (
	id         TEXT PRIMARY KEY,
	twitter_id TEXT NOT NULL REFERENCES profiles(twitter_id),
	bucket     TEXT NOT NULL,
	score      REAL NOT NULL,
	rationale  TEXT NOT NULL DEFAULT '',
	icebreaker TEXT NOT NULL DEFAULT '',
	dm_draft   TEXT NOT NULL DEFAULT '',
	queued_for TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS suppressions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	twitter_id TEXT NOT NULL,
	until      DATETIME,
	reason     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_candidates_queued_for ON candidates(queued_for);
CREATE INDEX IF NOT EXISTS idx_candidates_twitter_id ON candidates(twitter_id);
CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);
CREATE INDEX IF NOT EXISTS idx_suppressions_twitter_id ON suppressions(twitter_id);
`

// Migrate creates the schema if it does not exist
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (twitter_id, handle, name, bio, followers, following, tweet_count,
			url, avatar_url, last_active_at, lang, dm_open, verified, discovery_bucket, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(twitter_id) DO UPDATE SET
			handle = excluded.handle,
			name = excluded.name,
			bio = excluded.bio,
			followers = excluded.followers,
			following = excluded.following,
			tweet_count = excluded.tweet_count,
			url = excluded.url,
			avatar_url = excluded.avatar_url,
			last_active_at = excluded.last_active_at,
			lang = excluded.lang,
			dm_open = COALESCE(excluded.dm_open, profiles.dm_open),
			verified = excluded.verified,
			discovery_bucket = excluded.discovery_bucket,
			updated_at = datetime('now')`,
		p.TwitterID, p.Handle, p.Name, p.Bio, p.Followers, p.Following, p.TweetCount,
		p.URL, p.AvatarURL, nullTime(p.LastActiveAt), p.Lang, nullBool(p.DMOpen),
		boolToInt(p.Verified), string(p.DiscoveryBucket))
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.TwitterID, err)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, twitterID string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT twitter_id, handle, name, bio, followers, following, tweet_count,
			url, avatar_url, last_active_at, lang, dm_open, verified, discovery_bucket
		FROM profiles WHERE twitter_id = ?`, twitterID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", twitterID, err)
	}
	return p, nil
}

func (s *SQLiteStore) InsertCandidates(ctx context.Context, candidates []models.Candidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candidates (id, twitter_id, bucket, score, rationale, icebreaker, dm_draft, queued_for, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range candidates {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		status := c.Status
		if status == "" {
			status = models.StatusQueued
		}
		if _, err := stmt.ExecContext(ctx, id, c.TwitterID, string(c.Bucket), c.Score,
			c.Rationale, c.Icebreaker, c.DMDraft, c.QueuedFor, status); err != nil {
			return 0, fmt.Errorf("failed to insert candidate for %s: %w", c.TwitterID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit candidate inserts: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStore) CandidatesForDate(ctx context.Context, date string, bucket models.Bucket) ([]models.Candidate, error) {
	query := candidateSelect + ` WHERE c.queued_for = ?`
	args := []interface{}{date}
	if bucket != "" {
		query += ` AND c.bucket = ?`
		args = append(args, string(bucket))
	}
	query += ` ORDER BY c.score DESC, c.created_at ASC`

	return s.queryCandidates(ctx, query, args...)
}

func (s *SQLiteStore) CandidatesByStatusRange(ctx context.Context, start, end, status string) ([]models.Candidate, error) {
	query := candidateSelect + ` WHERE c.queued_for >= ? AND c.queued_for <= ? AND c.status = ? ORDER BY c.queued_for DESC, c.score DESC`
	return s.queryCandidates(ctx, query, start, end, status)
}

func (s *SQLiteStore) MarkStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE candidates SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update candidate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("candidate %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) DeleteCandidate(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteQueuedForDate(ctx context.Context, date string, bucket models.Bucket) (int, error) {
	query := `DELETE FROM candidates WHERE queued_for = ? AND status = ?`
	args := []interface{}{date, models.StatusQueued}
	if bucket != "" {
		query += ` AND bucket = ?`
		args = append(args, string(bucket))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear queued candidates for %s: %w", date, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) LastQueuedDate(ctx context.Context, twitterID string) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(queued_for) FROM candidates WHERE twitter_id = ?`, twitterID).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query queue history for %s: %w", twitterID, err)
	}
	if !date.Valid {
		return "", nil
	}
	return date.String, nil
}

func (s *SQLiteStore) SentCountForProfile(ctx context.Context, twitterID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidates WHERE twitter_id = ? AND status = ?`,
		twitterID, models.StatusSent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sent DMs for %s: %w", twitterID, err)
	}
	return count, nil
}

func (s *SQLiteStore) AddSuppression(ctx context.Context, sup models.Suppression) error {
	var until interface{}
	if sup.Until != nil {
		until = sup.Until.UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO suppressions (twitter_id, until, reason) VALUES (?, ?, ?)`,
		sup.TwitterID, until, sup.Reason); err != nil {
		return fmt.Errorf("failed to add suppression for %s: %w", sup.TwitterID, err)
	}
	return nil
}

func (s *SQLiteStore) IsSuppressed(ctx context.Context, twitterID string, now time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM suppressions
		WHERE twitter_id = ? AND (until IS NULL OR until > ?)`,
		twitterID, now.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check suppression for %s: %w", twitterID, err)
	}
	return count > 0, nil
}

const candidateSelect = `
	SELECT c.id, c.twitter_id, c.bucket, c.score, c.rationale, c.icebreaker,
		c.dm_draft, c.queued_for, c.status, c.created_at,
		p.twitter_id, p.handle, p.name, p.bio, p.followers, p.following, p.tweet_count,
		p.url, p.avatar_url, p.last_active_at, p.lang, p.dm_open, p.verified, p.discovery_bucket
	FROM candidates c
	JOIN profiles p ON p.twitter_id = c.twitter_id`

func (s *SQLiteStore) queryCandidates(ctx context.Context, query string, args ...interface{}) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var (
			c          models.Candidate
			p          models.Profile
			bucket     string
			createdAt  time.Time
			lastActive sql.NullTime
			dmOpen     sql.NullBool
			verified   int
			pBucket    string
		)
		if err := rows.Scan(&c.ID, &c.TwitterID, &bucket, &c.Score, &c.Rationale,
			&c.Icebreaker, &c.DMDraft, &c.QueuedFor, &c.Status, &createdAt,
			&p.TwitterID, &p.Handle, &p.Name, &p.Bio, &p.Followers, &p.Following, &p.TweetCount,
			&p.URL, &p.AvatarURL, &lastActive, &p.Lang, &dmOpen, &verified, &pBucket); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		c.Bucket = models.Bucket(bucket)
		c.CreatedAt = createdAt
		if lastActive.Valid {
			p.LastActiveAt = lastActive.Time
		}
		if dmOpen.Valid {
			v := dmOpen.Bool
			p.DMOpen = &v
		}
		p.Verified = verified != 0
		p.DiscoveryBucket = models.Bucket(pBucket)
		c.Profile = &p
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p          models.Profile
		lastActive sql.NullTime
		dmOpen     sql.NullBool
		verified   int
		bucket     string
	)
	if err := row.Scan(&p.TwitterID, &p.Handle, &p.Name, &p.Bio, &p.Followers,
		&p.Following, &p.TweetCount, &p.URL, &p.AvatarURL, &lastActive, &p.Lang,
		&dmOpen, &verified, &bucket); err != nil {
		return nil, err
	}
	if lastActive.Valid {
		p.LastActiveAt = lastActive.Time
	}
	if dmOpen.Valid {
		v := dmOpen.Bool
		p.DMOpen = &v
	}
	p.Verified = verified != 0
	p.DiscoveryBucket = models.Bucket(bucket)
	return &p, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
