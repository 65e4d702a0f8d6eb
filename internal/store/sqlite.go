package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/tinkerloft/errdoctor/internal/model"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// SQLite is a Store backed by a local SQLite database. Diagnostic payloads are stored as
// zstd-compressed JSON.
type SQLite struct {
	db           *sql.DB
	historyLimit int
	now          func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, historyLimit int) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	s := &SQLite{db: db, historyLimit: historyLimit, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// dsn sets the pragmas on every pooled connection.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", filepath.ToSlash(path))
}

func (s *SQLite) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			os TEXT NOT NULL,
			package_manager TEXT NOT NULL,
			payload BLOB NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			hit_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			os TEXT NOT NULL,
			package_manager TEXT NOT NULL,
			editor TEXT NOT NULL,
			configured INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			error_type TEXT NOT NULL,
			source TEXT NOT NULL,
			confidence REAL NOT NULL,
			solutions_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	var (
		e          model.CacheEntry
		osName, pm string
		payload    []byte
		expiresAt  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, os, package_manager, payload, expires_at, hit_count
		FROM cache_entries
		WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, s.now().UnixNano(),
	).Scan(&e.Fingerprint, &osName, &pm, &payload, &expiresAt, &e.HitCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress cache entry: %w", err)
	}
	if err := json.Unmarshal(raw, &e.Diagnostic); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	e.Profile = model.ProfileSnapshot{OS: model.OperatingSystem(osName), PackageManager: model.PackageManager(pm)}
	if expiresAt > 0 {
		e.ExpiresAt = time.Unix(0, expiresAt)
	}
	return &e, nil
}

func (s *SQLite) Put(ctx context.Context, key string, entry model.CacheEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry.Diagnostic)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	var expiresAt int64
	if exp := expiry(s.now(), entry, ttl); !exp.IsZero() {
		expiresAt = exp.UnixNano()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_entries (key, fingerprint, os, package_manager, payload, expires_at, hit_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, entry.Fingerprint, string(entry.Profile.OS), string(entry.Profile.PackageManager),
		encoder.EncodeAll(raw, nil), expiresAt, entry.HitCount,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Increment(ctx context.Context, key, field string, delta int64) error {
	if field != FieldHitCount {
		return ErrUnknownField
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE cache_entries SET hit_count = hit_count + ? WHERE key = ?`, delta, key); err != nil {
		return fmt.Errorf("increment %s: %w", field, err)
	}
	return nil
}

func (s *SQLite) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at > 0 AND expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) GetProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	var (
		p          model.UserProfile
		configured int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT os, package_manager, editor, configured FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.OS, &p.PackageManager, &p.Editor, &configured)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultProfile, nil
	}
	if err != nil {
		return model.DefaultProfile, fmt.Errorf("get profile: %w", err)
	}
	p.Configured = configured != 0
	return p, nil
}

func (s *SQLite) SaveProfile(ctx context.Context, userID string, p model.UserProfile) error {
	configured := 0
	if p.Configured {
		configured = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, os, package_manager, editor, configured, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET
			os = excluded.os,
			package_manager = excluded.package_manager,
			editor = excluded.editor,
			configured = excluded.configured,
			updated_at = excluded.updated_at`,
		userID, string(p.OS), string(p.PackageManager), string(p.Editor), configured,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *SQLite) AppendHistory(ctx context.Context, userID string, e model.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history (id, user_id, error_type, source, confidence, solutions_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.ErrorType, string(e.Source), e.Confidence, e.SolutionsCount, e.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM history WHERE user_id = ? AND id NOT IN (
			SELECT id FROM history WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, userID, userID, s.historyLimit,
	); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) ListHistory(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, error_type, source, confidence, solutions_count, created_at
		FROM history WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var (
			e       model.HistoryEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.ErrorType, &e.Source, &e.Confidence, &e.SolutionsCount, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetClock overrides the time source used for expiry.
func (s *SQLite) SetClock(now func() time.Time) {
	s.now = now
}
