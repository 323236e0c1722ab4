package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	stdsync "sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// walJournalSizeLimit caps the WAL journal at 64 MiB.
const walJournalSizeLimit = 67108864

// metaKeyLastCommitted is the meta row stamped on every successful commit.
// Its presence distinguishes "never committed" from "committed an empty
// snapshot" — both load as an empty Snapshot.
const metaKeyLastCommitted = "last_committed_at"

// SQLiteStore implements Store on an embedded SQLite database in WAL mode.
// It holds at most one snapshot: the most recently committed one. Commit is
// a single transaction that fully replaces the stored rows, so a crash or
// error mid-commit leaves the previous snapshot intact. Commits are
// serialized by an internal mutex (single writer); Load may run
// concurrently with a commit and observes either the old or the new
// snapshot, never a mix.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	// commitMu serializes Commit. SQLite would also serialize writers, but
	// holding the mutex for the whole transaction keeps retry semantics
	// simple and avoids SQLITE_BUSY churn.
	commitMu stdsync.Mutex
}

// StoreStats summarizes the cache contents for the status command.
type StoreStats struct {
	Lists         int
	Items         int
	LastCommitted *time.Time // nil when nothing has ever been committed
}

// NewStore opens (or creates) the cache database at dbPath, applies
// migrations, and returns a ready store. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	logger.Info("opening snapshot cache database", "path", dbPath)

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("reconcile: create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("reconcile: open sqlite: %w", err)
	}

	// One connection: pragmas apply to every statement, ":memory:" databases
	// are not silently duplicated per pool connection, and the single-writer
	// model holds at the connection level too.
	db.SetMaxOpenConns(1)

	if err := setPragmas(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("snapshot cache database ready", "path", dbPath)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = FULL", "synchronous FULL"},
		{"PRAGMA foreign_keys = ON", "foreign keys"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("reconcile: set pragma %s: %w", p.desc, err)
		}

		logger.Debug("pragma set", "pragma", p.desc)
	}

	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the last committed snapshot. Returns an empty snapshot when
// nothing has ever been committed.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	snap := EmptySnapshot()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, last_updated FROM lists")
	if err != nil {
		return Snapshot{}, fmt.Errorf("reconcile: loading lists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l ListRecord
		if err := rows.Scan(&l.ID, &l.Name, &l.LastUpdated); err != nil {
			return Snapshot{}, fmt.Errorf("reconcile: scanning list row: %w", err)
		}

		snap.Lists[l.ID] = l
	}

	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reconcile: iterating list rows: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, list_id, name, details, quantity, category, is_checked, user_id, last_seen FROM items")
	if err != nil {
		return Snapshot{}, fmt.Errorf("reconcile: loading items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it ItemRecord
		if err := itemRows.Scan(&it.ID, &it.ListID, &it.Name, &it.Details,
			&it.Quantity, &it.Category, &it.IsChecked, &it.UserID, &it.LastSeen); err != nil {
			return Snapshot{}, fmt.Errorf("reconcile: scanning item row: %w", err)
		}

		snap.Items[it.ID] = it
	}

	if err := itemRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reconcile: iterating item rows: %w", err)
	}

	return snap, nil
}

// Commit atomically replaces the stored snapshot with snap. The whole
// replacement runs in one transaction: on any error the transaction rolls
// back and Load continues to return the previous snapshot. Committing the
// same snapshot twice leaves the store in the same observable state.
func (s *SQLiteStore) Commit(ctx context.Context, snap Snapshot) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reconcile: beginning commit transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	// Full replacement: items first to satisfy the foreign key.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("reconcile: clearing items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM lists"); err != nil {
		return fmt.Errorf("reconcile: clearing lists: %w", err)
	}

	listStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO lists (id, name, last_updated) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("reconcile: preparing list insert: %w", err)
	}
	defer listStmt.Close()

	for _, l := range snap.Lists {
		if _, err := listStmt.ExecContext(ctx, l.ID, l.Name, l.LastUpdated); err != nil {
			return fmt.Errorf("reconcile: inserting list %s: %w", l.ID, err)
		}
	}

	itemStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO items (id, list_id, name, details, quantity, category, is_checked, user_id, last_seen) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("reconcile: preparing item insert: %w", err)
	}
	defer itemStmt.Close()

	for _, it := range snap.Items {
		if _, err := itemStmt.ExecContext(ctx, it.ID, it.ListID, it.Name, it.Details,
			it.Quantity, it.Category, it.IsChecked, it.UserID, it.LastSeen); err != nil {
			return fmt.Errorf("reconcile: inserting item %s: %w", it.ID, err)
		}
	}

	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		metaKeyLastCommitted, stamp); err != nil {
		return fmt.Errorf("reconcile: stamping commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reconcile: committing snapshot: %w", err)
	}

	s.logger.Debug("snapshot committed",
		slog.Int("lists", len(snap.Lists)),
		slog.Int("items", len(snap.Items)),
	)

	return nil
}

// Initialized reports whether any snapshot has ever been committed. The
// watch command uses this to decide between seeding the cache silently and
// running a normal notifying cycle on startup.
func (s *SQLiteStore) Initialized(ctx context.Context) (bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", metaKeyLastCommitted).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("reconcile: reading commit stamp: %w", err)
	}

	return true, nil
}

// Stats returns row counts and the last commit time for display.
func (s *SQLiteStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lists").Scan(&stats.Lists); err != nil {
		return StoreStats{}, fmt.Errorf("reconcile: counting lists: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&stats.Items); err != nil {
		return StoreStats{}, fmt.Errorf("reconcile: counting items: %w", err)
	}

	var value string

	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", metaKeyLastCommitted).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Never committed; LastCommitted stays nil.
	case err != nil:
		return StoreStats{}, fmt.Errorf("reconcile: reading commit stamp: %w", err)
	default:
		secs, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			return StoreStats{}, fmt.Errorf("reconcile: parsing commit stamp %q: %w", value, parseErr)
		}

		t := time.Unix(secs, 0)
		stats.LastCommitted = &t
	}

	return stats, nil
}
