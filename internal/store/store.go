// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the searches audit log and the raw eligibility
// cache in a local SQLite database.
// See docs/ARCHITECTURE.md § Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// Store manages the clinibridge SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			condition TEXT NOT NULL,
			age INTEGER,
			location TEXT,
			medications TEXT,
			additional_info TEXT,
			results TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
		`CREATE TABLE IF NOT EXISTS eligibility_raw (
			nct_id TEXT PRIMARY KEY,
			criteria TEXT,
			sex TEXT,
			minimum_age TEXT,
			maximum_age TEXT,
			std_ages TEXT,
			fetched_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SearchRecord is one entry in the append-only searches log. The log is an
// audit trail; nothing in the search path reads it back.
type SearchRecord struct {
	ID             string               `json:"id"`
	Condition      string               `json:"condition"`
	Age            int                  `json:"age,omitempty"`
	Location       string               `json:"location,omitempty"`
	Medications    []string             `json:"medications,omitempty"`
	AdditionalInfo string               `json:"additional_info,omitempty"`
	Results        []types.TrialSummary `json:"results,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// LogSearch appends one record. The ID and timestamp are assigned here.
func (s *Store) LogSearch(ctx context.Context, profile types.PatientProfile, results []types.TrialSummary) (string, error) {
	id := uuid.NewString()

	medsJSON, _ := json.Marshal(profile.Medications)
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshaling result snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (id, condition, age, location, medications, additional_info, results, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, profile.Condition, profile.Age, profile.Location,
		string(medsJSON), profile.AdditionalInfo, string(resultsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting search record: %w", err)
	}
	return id, nil
}

// ListSearches returns the most recent log entries, newest first.
func (s *Store) ListSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, condition, age, location, medications, additional_info, results, created_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var (
			rec                       SearchRecord
			medsJSON, resultsJSON, ts string
		)
		if err := rows.Scan(&rec.ID, &rec.Condition, &rec.Age, &rec.Location,
			&medsJSON, &rec.AdditionalInfo, &resultsJSON, &ts); err != nil {
			return nil, fmt.Errorf("scanning search record: %w", err)
		}
		json.Unmarshal([]byte(medsJSON), &rec.Medications)
		json.Unmarshal([]byte(resultsJSON), &rec.Results)
		if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RawEligibility is the registry's eligibility module for one trial,
// cached verbatim. Criteria text for a given NCT ID is treated as static,
// so entries carry no TTL.
type RawEligibility struct {
	NCTID      string    `json:"nct_id"`
	Criteria   string    `json:"criteria"`
	Sex        string    `json:"sex,omitempty"`
	MinimumAge string    `json:"minimum_age,omitempty"`
	MaximumAge string    `json:"maximum_age,omitempty"`
	StdAges    []string  `json:"std_ages,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// GetRawEligibility returns the cached entry for nctID, or nil on a miss.
func (s *Store) GetRawEligibility(ctx context.Context, nctID string) (*RawEligibility, error) {
	var (
		raw             RawEligibility
		stdAgesJSON, ts string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT nct_id, criteria, sex, minimum_age, maximum_age, std_ages, fetched_at
		 FROM eligibility_raw WHERE nct_id = ?`, nctID,
	).Scan(&raw.NCTID, &raw.Criteria, &raw.Sex, &raw.MinimumAge, &raw.MaximumAge, &stdAgesJSON, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying eligibility cache: %w", err)
	}

	json.Unmarshal([]byte(stdAgesJSON), &raw.StdAges)
	if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
		raw.FetchedAt = t
	}
	return &raw, nil
}

// PutRawEligibility inserts an entry. An existing entry for the same NCT ID
// is left untouched, keeping the original fetched_at.
func (s *Store) PutRawEligibility(ctx context.Context, raw RawEligibility) error {
	if raw.FetchedAt.IsZero() {
		raw.FetchedAt = time.Now().UTC()
	}
	stdAgesJSON, _ := json.Marshal(raw.StdAges)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eligibility_raw (nct_id, criteria, sex, minimum_age, maximum_age, std_ages, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(nct_id) DO NOTHING`,
		raw.NCTID, raw.Criteria, raw.Sex, raw.MinimumAge, raw.MaximumAge,
		string(stdAgesJSON), raw.FetchedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting eligibility cache entry: %w", err)
	}
	return nil
}
