// Package postgres provides a Repository backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/course-upload/pkg/courseupload"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements courseupload.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("file record already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) Insert(ctx context.Context, record *courseupload.FileRecord) error {
	query := `
		INSERT INTO files (
			id, name, size, mime_type, url, content_id, course_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.Name, record.Size, record.MimeType,
		record.URL, record.ContentID, record.CourseID, record.CreatedAt,
	)
	if err != nil {
		return r.handlePostgresError("insert file record", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter courseupload.ListFilter) ([]*courseupload.FileRecord, error) {
	query := `
		SELECT id, name, size, mime_type, url, content_id, course_id, created_at
		FROM files`

	var args []interface{}
	if filter.MimePrefix != "" {
		query += ` WHERE mime_type LIKE $1`
		args = append(args, filter.MimePrefix+"%")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list file records", err)
	}
	defer rows.Close()

	var result []*courseupload.FileRecord
	for rows.Next() {
		var record courseupload.FileRecord
		if err := rows.Scan(
			&record.ID, &record.Name, &record.Size, &record.MimeType,
			&record.URL, &record.ContentID, &record.CourseID, &record.CreatedAt,
		); err != nil {
			return nil, r.handlePostgresError("scan file record", err)
		}
		result = append(result, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list file records", err)
	}
	return result, nil
}

// Delete removes the record with the given id. A missing id is a no-op.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete file record", err)
	}
	return nil
}
