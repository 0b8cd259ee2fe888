// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists generated samples in a queryable SQLite index so
// corpora can be inspected and sliced without re-parsing the output JSON.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lead-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the corpus database at dir/index/corpus.db,
// creating the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_type TEXT NOT NULL,
			query_string TEXT NOT NULL UNIQUE,
			topic TEXT,
			institution TEXT,
			city TEXT,
			country TEXT,
			params TEXT NOT NULL,
			provenance TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_query_type ON samples(query_type)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_topic ON samples(topic)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sample_id INTEGER NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			website TEXT,
			title TEXT,
			headline TEXT,
			institution TEXT,
			background_summary TEXT,
			source_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_sample_id ON leads(sample_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from a corpus import.
type ImportSummary struct {
	Imported int
	Skipped  int
}

// Total returns the number of samples processed.
func (s ImportSummary) Total() int {
	return s.Imported + s.Skipped
}

// Import reads a generated corpus file (a JSON array of samples) into the
// database. Samples whose query string is already stored are skipped, so
// re-importing an extended corpus only adds the new samples.
func (s *Store) Import(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	var samples []types.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing corpus %s: %w", path, err)
	}

	var summary ImportSummary
	for _, smp := range samples {
		inserted, err := s.importSample(ctx, smp)
		if err != nil {
			return summary, err
		}
		if inserted {
			summary.Imported++
		} else {
			summary.Skipped++
		}
	}

	fmt.Fprintf(w, "imported: %d, skipped: %d\n", summary.Imported, summary.Skipped)
	return summary, nil
}

func (s *Store) importSample(ctx context.Context, smp types.Sample) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	paramsJSON, err := json.Marshal(smp.QueryParams)
	if err != nil {
		return false, fmt.Errorf("encoding params: %w", err)
	}
	provJSON, err := json.Marshal(smp.OpenAlex)
	if err != nil {
		return false, fmt.Errorf("encoding provenance: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO samples (query_type, query_string, topic, institution, city, country, params, provenance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(query_string) DO NOTHING`,
		string(smp.QueryType), smp.QueryString,
		smp.OpenAlex.TopicDisplayName, smp.OpenAlex.InstitutionID,
		smp.OpenAlex.City, smp.OpenAlex.InstitutionCountry,
		string(paramsJSON), string(provJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("inserting sample: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	sampleID, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("reading sample id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (sample_id, name, email, phone, website, title, headline, institution, background_summary, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("preparing lead insert: %w", err)
	}
	defer stmt.Close()

	for _, lead := range smp.ExpectedResults.Leads {
		_, err := stmt.ExecContext(ctx,
			sampleID, lead.Name, lead.Email, lead.Phone, lead.Website,
			lead.Title, lead.Headline, lead.Institution,
			lead.BackgroundSummary, lead.SourceURL,
		)
		if err != nil {
			return false, fmt.Errorf("inserting lead %s: %w", lead.Name, err)
		}
	}

	return true, tx.Commit()
}

// QueryOptions filter a corpus query. Zero-value fields match everything.
type QueryOptions struct {
	// QueryType restricts to one query type.
	QueryType string

	// Topic matches topic names containing this substring.
	Topic string

	// Limit caps the number of returned samples; the store default
	// applies when zero.
	Limit int
}

// Record is one stored sample with its expected leads.
type Record struct {
	ID          int64
	QueryType   string
	QueryString string
	Topic       string
	Institution string
	City        string
	Country     string
	CreatedAt   time.Time
	Leads       []types.Lead
}

// Query returns stored samples matching the options, newest first.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	q := `SELECT id, query_type, query_string, topic, institution, city, country, created_at
	      FROM samples WHERE 1=1`
	var args []any
	if opts.QueryType != "" {
		q += ` AND query_type = ?`
		args = append(args, opts.QueryType)
	}
	if opts.Topic != "" {
		q += ` AND topic LIKE ?`
		args = append(args, "%"+opts.Topic+"%")
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.QueryType, &r.QueryString, &r.Topic,
			&r.Institution, &r.City, &r.Country, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating samples: %w", err)
	}

	for i := range records {
		leads, err := s.sampleLeads(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Leads = leads
	}
	return records, nil
}

func (s *Store) sampleLeads(ctx context.Context, sampleID int64) ([]types.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, email, phone, website, title, headline, institution, background_summary, source_url
		 FROM leads WHERE sample_id = ? ORDER BY id`, sampleID)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var leads []types.Lead
	for rows.Next() {
		var l types.Lead
		if err := rows.Scan(&l.Name, &l.Email, &l.Phone, &l.Website, &l.Title,
			&l.Headline, &l.Institution, &l.BackgroundSummary, &l.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Stats summarizes the stored corpus.
type Stats struct {
	Samples     int
	Leads       int
	ByQueryType map[string]int
}

// Stats returns sample and lead counts, broken down by query type.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByQueryType: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM samples`).Scan(&stats.Samples); err != nil {
		return Stats{}, fmt.Errorf("counting samples: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM leads`).Scan(&stats.Leads); err != nil {
		return Stats{}, fmt.Errorf("counting leads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT query_type, count(*) FROM samples GROUP BY query_type`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting by query type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var queryType string
		var n int
		if err := rows.Scan(&queryType, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning query type count: %w", err)
		}
		stats.ByQueryType[queryType] = n
	}
	return stats, rows.Err()
}
