package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credgate/internal/accessrequest/models"
	pkgerrors "credgate/pkg/domain-errors"
)

// PostgresStore persists access requests per-record in PostgreSQL. It is the
// scaled backend: the unique-key index avoids whole-collection write
// amplification and row locking gives true concurrent-writer safety.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed access request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, employer_id, employer_name, enrollment_id, student_name, status, purpose, requested_fields, approved_fields, requested_at, decided_at`

func (s *PostgresStore) GetAll(ctx context.Context) ([]*models.AccessRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM access_requests ORDER BY requested_at ASC`, selectColumns)
	return s.list(ctx, query)
}

func (s *PostgresStore) GetByEmployer(ctx context.Context, employerID string) ([]*models.AccessRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM access_requests WHERE employer_id = $1 ORDER BY requested_at ASC`, selectColumns)
	return s.list(ctx, query, employerID)
}

func (s *PostgresStore) GetByStudent(ctx context.Context, enrollmentID string) ([]*models.AccessRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM access_requests WHERE enrollment_id = $1 ORDER BY requested_at ASC`, selectColumns)
	return s.list(ctx, query, enrollmentID)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM access_requests WHERE id = $1`, selectColumns)
	request, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "get access request")
	}
	return request, nil
}

func (s *PostgresStore) Insert(ctx context.Context, request *models.AccessRequest) (*models.AccessRequest, error) {
	stored := request.Clone()
	stored.ID = NewRequestID()
	stored.RequestedAt = time.Now()

	requested, err := json.Marshal(stored.RequestedFields)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "encode requested fields")
	}
	approved, err := json.Marshal(stored.ApprovedFields)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "encode approved fields")
	}

	query := `
		INSERT INTO access_requests (id, employer_id, employer_name, enrollment_id, student_name, status, purpose, requested_fields, approved_fields, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		stored.ID,
		stored.EmployerID,
		stored.EmployerName,
		stored.StudentEnrollmentID,
		stored.StudentName,
		string(stored.Status),
		stored.Purpose,
		requested,
		approved,
		stored.RequestedAt,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "insert access request")
	}
	return stored, nil
}

// Update runs the read-modify-write inside a transaction with a row lock so a
// transition never interleaves with another mutation to the same record.
func (s *PostgresStore) Update(ctx context.Context, id string, mutate func(*models.AccessRequest) error) (*models.AccessRequest, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "begin update")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := fmt.Sprintf(`SELECT %s FROM access_requests WHERE id = $1 FOR UPDATE`, selectColumns)
	request, err := scanRequest(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "load access request for update")
	}

	if err := mutate(request); err != nil {
		return nil, true, err
	}

	approved, err := json.Marshal(request.ApprovedFields)
	if err != nil {
		return nil, true, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "encode approved fields")
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE access_requests
		SET status = $2, approved_fields = $3, decided_at = $4
		WHERE id = $1
	`, id, string(request.Status), approved, request.DecidedAt)
	if err != nil {
		return nil, true, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "update access request")
	}
	if err := tx.Commit(); err != nil {
		return nil, true, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "commit update")
	}
	return request, true, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.AccessRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "list access requests")
	}
	defer rows.Close()

	var result []*models.AccessRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "scan access request")
		}
		result = append(result, request)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "iterate access requests")
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.AccessRequest, error) {
	var (
		request   models.AccessRequest
		status    string
		requested []byte
		approved  []byte
	)
	err := row.Scan(
		&request.ID,
		&request.EmployerID,
		&request.EmployerName,
		&request.StudentEnrollmentID,
		&request.StudentName,
		&status,
		&request.Purpose,
		&requested,
		&approved,
		&request.RequestedAt,
		&request.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	request.Status = models.Status(status)
	if err := json.Unmarshal(requested, &request.RequestedFields); err != nil {
		return nil, fmt.Errorf("decode requested fields: %w", err)
	}
	if err := json.Unmarshal(approved, &request.ApprovedFields); err != nil {
		return nil, fmt.Errorf("decode approved fields: %w", err)
	}
	return &request, nil
}
