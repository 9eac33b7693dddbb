// Package postgres keeps ledger tables in a single PostgreSQL table of text
// arrays, one row per table row. Position 0 of every region is its header.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

const schema = `
	CREATE TABLE IF NOT EXISTS table_rows (
		table_id   TEXT        NOT NULL,
		region     TEXT        NOT NULL,
		position   INTEGER     NOT NULL,
		cells      TEXT[]      NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (table_id, region, position)
	)
`

// Store implements table.Store. Column spans are ignored: a region always
// holds whole rows.
type Store struct {
	db      *sql.DB
	typeMap *pgtype.Map
}

func New(db *sql.DB) *Store {
	return &Store{db: db, typeMap: pgtype.NewMap()}
}

// Migrate creates the backing table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating table_rows: %w", err)
	}

	return nil
}

func (s *Store) ReadRows(ctx context.Context, tableID, region, _ string) ([]table.Row, error) {
	query := `
		SELECT cells FROM table_rows
		WHERE table_id = $1 AND region = $2
		ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, tableID, region)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	defer rows.Close()

	var cells [][]string

	for rows.Next() {
		var row []string
		if err := rows.Scan(s.typeMap.SQLScanner(&row)); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		cells = append(cells, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", table.ErrRegionNotFound, tableID, region)
	}

	return table.Rows(cells), nil
}

func (s *Store) AppendRows(ctx context.Context, tableID, region, _ string, rows [][]string) error {
	return s.withRegionLock(ctx, tableID, region, func(tx *sql.Tx) error {
		var last int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) FROM table_rows WHERE table_id = $1 AND region = $2`,
			tableID, region,
		).Scan(&last); err != nil {
			return fmt.Errorf("finding last position: %w", err)
		}

		if last < 0 {
			return fmt.Errorf("%w: %s/%s has no header", table.ErrRegionNotFound, tableID, region)
		}

		return insert(ctx, tx, tableID, region, last+1, rows)
	})
}

// EnsureHeader creates the region with the given header row if it does not exist yet.
func (s *Store) EnsureHeader(ctx context.Context, tableID, region string, header []string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO table_rows (table_id, region, position, cells)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (table_id, region, position) DO NOTHING`,
		tableID, region, header,
	)
	if err != nil {
		return fmt.Errorf("creating header of %s: %w", region, err)
	}

	return nil
}

func insert(ctx context.Context, tx *sql.Tx, tableID, region string, from int, rows [][]string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO table_rows (table_id, region, position, cells) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, tableID, region, from+i, row); err != nil {
			return fmt.Errorf("inserting row %d: %w", from+i, err)
		}
	}

	return nil
}

// withRegionLock runs fn in a transaction holding an advisory lock on the region.
func (s *Store) withRegionLock(ctx context.Context, tableID, region string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning append tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", regionLockKey(tableID, region)); err != nil {
		return fmt.Errorf("acquiring region lock: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing append: %w", err)
	}

	return nil
}

func regionLockKey(tableID, region string) int64 {
	h := fnv.New64a()
	h.Write([]byte(tableID))
	h.Write([]byte{0})
	h.Write([]byte(region))

	return int64(h.Sum64())
}
