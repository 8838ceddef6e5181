package store

import (
	"context"
	"time"

	"github.com/subwise/outreach-bot/internal/models"
)

// Store is the persistence contract for profiles, candidates, and
// suppressions. A failed write here fails the run: queue integrity cannot be
// guaranteed past a store error.
type Store interface {
	// UpsertProfile inserts a profile or overwrites the mutable fields of an
	// existing one keyed by twitter ID. Profiles are never deleted.
	UpsertProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, twitterID string) (*models.Profile, error)

	// InsertCandidates bulk-inserts new candidate rows with status "queued".
	// Every accepted candidate is a new insert; candidates are never updated
	// by the pipeline.
	InsertCandidates(ctx context.Context, candidates []models.Candidate) (int, error)

	// CandidatesForDate returns candidates queued for the given calendar day,
	// optionally narrowed to one bucket (empty bucket = both)
	CandidatesForDate(ctx context.Context, date string, bucket models.Bucket) ([]models.Candidate, error)

	// CandidatesByStatusRange returns candidates in [start, end] with the
	// given status, for history browsing
	CandidatesByStatusRange(ctx context.Context, start, end, status string) ([]models.Candidate, error)

	// MarkStatus transitions a candidate to a terminal review status
	MarkStatus(ctx context.Context, id, status string) error
	DeleteCandidate(ctx context.Context, id string) error

	// DeleteQueuedForDate removes still-queued rows for a date (and
	// optionally one bucket), clearing stale leftovers before a re-run
	DeleteQueuedForDate(ctx context.Context, date string, bucket models.Bucket) (int, error)

	// LastQueuedDate returns the most recent queue date for a profile across
	// all runs, or "" if the profile was never queued
	LastQueuedDate(ctx context.Context, twitterID string) (string, error)
	SentCountForProfile(ctx context.Context, twitterID string) (int, error)

	AddSuppression(ctx context.Context, s models.Suppression) error
	// IsSuppressed reports whether any suppression entry for the profile is
	// permanent (null until) or still in its snooze window (until > now)
	IsSuppressed(ctx context.Context, twitterID string, now time.Time) (bool, error)

	Close() error
}
