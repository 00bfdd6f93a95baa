package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ ArchiveRepository = (*ArchiveStore)(nil)

// ArchiveStore executes grouped archive queries. The query text is built by
// the caller; the RowKind tells the store which columns to expect.
type ArchiveStore struct {
	db *DB
}

// NewArchiveStore creates a new archive store
func NewArchiveStore(db *DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// ArchiveRows runs query and scans every row according to kind, preserving
// the order returned by the database
func (r *ArchiveStore) ArchiveRows(ctx context.Context, kind RowKind, query string) ([]ArchiveRow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s archives: %w", kind, err)
	}
	defer rows.Close()

	var results []ArchiveRow
	for rows.Next() {
		row, err := scanArchiveRow(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s archive row: %w", kind, err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s archive rows: %w", kind, err)
	}

	return results, nil
}

func scanArchiveRow(rows *sql.Rows, kind RowKind) (ArchiveRow, error) {
	var row ArchiveRow
	var err error

	switch kind {
	case RowKindMonthly:
		err = rows.Scan(&row.Year, &row.Month, &row.Posts)
	case RowKindYearly:
		err = rows.Scan(&row.Year, &row.Posts)
	case RowKindDaily:
		err = rows.Scan(&row.Year, &row.Month, &row.DayOfMonth, &row.Posts)
	case RowKindWeekly:
		err = rows.Scan(&row.Week, &row.Year, &row.YYYYMMDD, &row.Posts)
	case RowKindPost:
		row.Post, err = scanPost(rows)
	default:
		err = fmt.Errorf("unsupported row kind %d", int(kind))
	}

	return row, err
}
