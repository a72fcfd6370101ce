// Package store handles SQLite persistence of practice attempts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/parrot/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			target TEXT NOT NULL,
			recognized_text TEXT NOT NULL,
			method TEXT NOT NULL,
			end_trigger TEXT NOT NULL,
			pass INTEGER NOT NULL,
			score INTEGER NOT NULL,
			reasons TEXT NOT NULL,
			char_similarity REAL NOT NULL,
			word_f1 REAL NOT NULL,
			lang_likelihood REAL NOT NULL,
			confidence REAL NOT NULL,
			error TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_lang_target ON attempts(lang, target);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores one finished attempt.
func (s *Store) InsertAttempt(ctx context.Context, a model.Attempt) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (session_id, started_at, ended_at, lang, target, recognized_text, method, end_trigger, pass, score, reasons, char_similarity, word_f1, lang_likelihood, confidence, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID,
		a.StartedAt.Format(time.RFC3339Nano),
		a.EndedAt.Format(time.RFC3339Nano),
		a.Lang,
		a.Target,
		a.RecognizedText,
		string(a.Method),
		string(a.Trigger),
		boolInt(a.Pass),
		a.Score,
		joinReasons(a.Reasons),
		a.CharSimilarity,
		a.WordF1,
		a.LangLikelihood,
		a.Confidence,
		a.Error,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPhraseAggregates aggregates the most recent attempts per target phrase.
func (s *Store) GetPhraseAggregates(ctx context.Context, window int, lang string) ([]model.PhraseAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT target, pass, score FROM attempts
		WHERE (? = '' OR lang = ?) AND error = ''
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT target, COUNT(*) AS attempts, SUM(pass) AS passes, SUM(score) AS score_sum
	FROM recent
	GROUP BY target
	ORDER BY target`

	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.PhraseAggregate
	for rows.Next() {
		var agg model.PhraseAggregate
		if err := rows.Scan(&agg.Target, &agg.Attempts, &agg.Passes, &agg.ScoreSum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAttempts returns attempt aggregates filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, target, method, pass, score, reasons, error
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt, method, reasons, errText string
		var pass int
		if err := rows.Scan(&agg.AttemptID, &endedAt, &agg.Target, &method, &pass, &agg.Score, &reasons, &errText); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Method = model.Method(method)
		agg.Pass = pass != 0
		agg.Reasons = splitReasons(reasons)
		agg.Failed = errText != ""
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func joinReasons(reasons []model.Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func splitReasons(raw string) []model.Reason {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	reasons := make([]model.Reason, len(parts))
	for i, p := range parts {
		reasons[i] = model.Reason(p)
	}
	return reasons
}
