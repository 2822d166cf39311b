// Package localstore persists the current registration and the pending sync
// queue in an embedded SQLite database, so both survive process restarts.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/globalidara/bootcamp-registration/registration"
)

var _ registration.Store = &SQLiteStore{}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens (or creates) the database file and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db at %q: %w", path, err)
	}

	store := NewSQLiteStore(db)
	if err := store.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTables() error {
	currentTable := `CREATE TABLE IF NOT EXISTS current_record (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		gender TEXT,
		country TEXT,
		country_code TEXT,
		phone TEXT,
		full_phone TEXT,
		status TEXT,
		reference TEXT,
		created_at TEXT,
		paid_at TEXT,
		payment_method TEXT,
		payment_reference TEXT
	);`

	pendingTable := `CREATE TABLE IF NOT EXISTS pending_queue (
		id TEXT PRIMARY KEY,
		synced INTEGER DEFAULT 0,
		sync_attempts INTEGER DEFAULT 0,
		synced_at TEXT,
		queued_at TEXT,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		gender TEXT,
		country TEXT,
		country_code TEXT,
		phone TEXT,
		full_phone TEXT,
		status TEXT,
		reference TEXT,
		created_at TEXT,
		paid_at TEXT,
		payment_method TEXT,
		payment_reference TEXT
	);`

	snapshotTable := `CREATE TABLE IF NOT EXISTS sync_status (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		pending_count INTEGER,
		last_update TEXT
	);`

	for _, stmt := range []string{currentTable, pendingTable, snapshotTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

const recordColumns = `first_name, last_name, email, gender, country, country_code,
	phone, full_phone, status, reference, created_at, paid_at, payment_method, payment_reference`

func recordArgs(rec registration.Record) []any {
	var paidAt sql.NullString
	if rec.PaidAt != nil {
		paidAt = sql.NullString{String: rec.PaidAt.Format(time.RFC3339Nano), Valid: true}
	}

	return []any{
		rec.FirstName, rec.LastName, rec.Email, rec.Gender, rec.Country, rec.CountryCode,
		rec.Phone, rec.FullPhone, rec.Status.String(), rec.Reference,
		rec.CreatedAt.Format(time.RFC3339Nano), paidAt, rec.PaymentMethod, rec.PaymentReference,
	}
}

func scanRecord(scan func(dest ...any) error) (registration.Record, error) {
	var rec registration.Record
	var status, createdAt string
	var paidAt sql.NullString

	err := scan(
		&rec.FirstName, &rec.LastName, &rec.Email, &rec.Gender, &rec.Country, &rec.CountryCode,
		&rec.Phone, &rec.FullPhone, &status, &rec.Reference,
		&createdAt, &paidAt, &rec.PaymentMethod, &rec.PaymentReference,
	)
	if err != nil {
		return registration.Record{}, err
	}

	rec.Status, err = registration.ParseStatus(status)
	if err != nil {
		return registration.Record{}, err
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return registration.Record{}, fmt.Errorf("bad created_at: %w", err)
	}
	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, paidAt.String)
		if err != nil {
			return registration.Record{}, fmt.Errorf("bad paid_at: %w", err)
		}
		rec.PaidAt = &t
	}

	return rec, nil
}

func (s *SQLiteStore) SaveCurrent(ctx context.Context, rec registration.Record) error {
	query := `INSERT INTO current_record (slot, ` + recordColumns + `)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
		first_name = excluded.first_name, last_name = excluded.last_name,
		email = excluded.email, gender = excluded.gender, country = excluded.country,
		country_code = excluded.country_code, phone = excluded.phone,
		full_phone = excluded.full_phone, status = excluded.status,
		reference = excluded.reference, created_at = excluded.created_at,
		paid_at = excluded.paid_at, payment_method = excluded.payment_method,
		payment_reference = excluded.payment_reference`

	if _, err := s.db.ExecContext(ctx, query, recordArgs(rec)...); err != nil {
		return registration.NewFailedToWriteError("Failed to save current record", err)
	}
	return nil
}

func (s *SQLiteStore) LoadCurrent(ctx context.Context) (registration.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM current_record WHERE slot = 1`)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Record{}, false, nil
		}
		return registration.Record{}, false, registration.NewFailedToFetchError("Failed to load current record", err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) EnqueuePending(ctx context.Context, rec registration.Record) (registration.PendingEntry, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_queue WHERE email = ? AND synced = 0`, rec.Email).Scan(&count)
	if err != nil {
		return registration.PendingEntry{}, false, registration.NewFailedToFetchError("Failed to check pending queue", err)
	}
	if count > 0 {
		return registration.PendingEntry{}, false, nil
	}

	entry := registration.PendingEntry{
		ID:        uuid.New(),
		Record:    rec,
		CreatedAt: time.Now().UTC(),
	}

	args := append([]any{entry.ID.String(), entry.CreatedAt.Format(time.RFC3339Nano)}, recordArgs(rec)...)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pending_queue (id, synced, sync_attempts, queued_at, `+recordColumns+`)
		VALUES (?, 0, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return registration.PendingEntry{}, false, registration.NewFailedToWriteError("Failed to enqueue pending registration", err)
	}

	return entry, true, nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]registration.PendingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, synced, sync_attempts, synced_at, queued_at, `+recordColumns+`
		FROM pending_queue ORDER BY queued_at, id`)
	if err != nil {
		return nil, registration.NewFailedToFetchError("Failed to list pending registrations", err)
	}
	defer rows.Close()

	var entries []registration.PendingEntry
	for rows.Next() {
		entry, err := scanPendingEntry(rows)
		if err != nil {
			return nil, registration.NewFailedToFetchError("Failed to scan pending registration", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, registration.NewFailedToFetchError("Failed to list pending registrations", err)
	}
	return entries, nil
}

func scanPendingEntry(rows *sql.Rows) (registration.PendingEntry, error) {
	var entry registration.PendingEntry
	var id string
	var synced int
	var syncedAt sql.NullString
	var queuedAt string

	rec, err := scanRecord(func(dest ...any) error {
		all := append([]any{&id, &synced, &entry.SyncAttempts, &syncedAt, &queuedAt}, dest...)
		return rows.Scan(all...)
	})
	if err != nil {
		return registration.PendingEntry{}, err
	}

	entry.ID, err = uuid.Parse(id)
	if err != nil {
		return registration.PendingEntry{}, fmt.Errorf("bad entry id: %w", err)
	}
	entry.Record = rec
	entry.Synced = synced != 0
	entry.CreatedAt, err = time.Parse(time.RFC3339Nano, queuedAt)
	if err != nil {
		return registration.PendingEntry{}, fmt.Errorf("bad queued_at: %w", err)
	}
	if syncedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err != nil {
			return registration.PendingEntry{}, fmt.Errorf("bad synced_at: %w", err)
		}
		entry.SyncedAt = &t
	}
	return entry, nil
}

func (s *SQLiteStore) ReplacePending(ctx context.Context, entries []registration.PendingEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return registration.NewFailedToWriteError("Failed to begin pending queue replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_queue`); err != nil {
		return registration.NewFailedToWriteError("Failed to clear pending queue", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pending_queue (id, synced, sync_attempts, synced_at, queued_at, `+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return registration.NewFailedToWriteError("Failed to prepare pending queue insert", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		var syncedAt sql.NullString
		if entry.SyncedAt != nil {
			syncedAt = sql.NullString{String: entry.SyncedAt.Format(time.RFC3339Nano), Valid: true}
		}
		synced := 0
		if entry.Synced {
			synced = 1
		}

		args := append(
			[]any{entry.ID.String(), synced, entry.SyncAttempts, syncedAt, entry.CreatedAt.Format(time.RFC3339Nano)},
			recordArgs(entry.Record)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return registration.NewFailedToWriteError("Failed to write pending entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return registration.NewFailedToWriteError("Failed to commit pending queue replace", err)
	}
	return nil
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, email string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pending_queue SET synced = 1, synced_at = ? WHERE email = ? AND synced = 0`,
		at.Format(time.RFC3339Nano), email)
	if err != nil {
		return false, registration.NewFailedToWriteError("Failed to mark entry synced", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, registration.NewFailedToWriteError("Failed to read affected rows", err)
	}
	return affected > 0, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap registration.Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_status (slot, pending_count, last_update) VALUES (1, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
		pending_count = excluded.pending_count, last_update = excluded.last_update`,
		snap.PendingCount, snap.LastUpdate.Format(time.RFC3339Nano))
	if err != nil {
		return registration.NewFailedToWriteError("Failed to save sync snapshot", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (registration.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT pending_count, last_update FROM sync_status WHERE slot = 1`)

	var snap registration.Snapshot
	var lastUpdate string
	err := row.Scan(&snap.PendingCount, &lastUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Snapshot{}, nil
		}
		return registration.Snapshot{}, registration.NewFailedToFetchError("Failed to load sync snapshot", err)
	}

	snap.LastUpdate, err = time.Parse(time.RFC3339Nano, lastUpdate)
	if err != nil {
		return registration.Snapshot{}, registration.NewFailedToFetchError("Failed to parse sync snapshot", err)
	}
	return snap, nil
}
