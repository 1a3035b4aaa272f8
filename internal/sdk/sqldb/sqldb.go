// Package sqldb provides database operations for the triage service.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Chandru2600/Vaidra/internal/sdk/models"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var (
	ErrDBNotFound          = sql.ErrNoRows
	ErrDBDuplicatedEntry   = errors.New("duplicated entry")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Migrate applies pending schema migrations.
	Migrate(ctx context.Context) error

	// Close terminates the database connection.
	Close() error

	// User operations
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, upd models.UserUpdate) error

	// Scan operations
	CreateScan(ctx context.Context, scan models.NewScan) (models.Scan, error)
	GetScanByID(ctx context.Context, scanID int64) (models.Scan, error)
	ListRecentScans(ctx context.Context, limit int) ([]models.Scan, error)
	ListCases(ctx context.Context, severity string) ([]models.Scan, error)
	AssignScan(ctx context.Context, scanID, doctorID int64) error
	AppendScanNote(ctx context.Context, scanID int64, note string) error
}

type service struct {
	db *sql.DB
}

// New opens a connection pool against the given DSN. The pool is lazy; the
// first query establishes the actual connection.
func New(dsn string) (Service, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &service{db: db}, nil
}

// NewWithDB wraps an existing connection pool. Used by tests.
func NewWithDB(db *sql.DB) Service {
	return &service{db: db}
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	return s.db.Close()
}

// ---------------------------------------------
// User operations
// ---------------------------------------------

const userColumns = `
	id,
	email,
	hashed_password,
	role,
	name,
	age,
	gender,
	conditions,
	allergies,
	address,
	location_lat,
	location_lng,
	created_at
`

func scanUserRow(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&user.Name,
		&user.Age,
		&user.Gender,
		&user.Conditions,
		&user.Allergies,
		&user.Address,
		&user.LocationLat,
		&user.LocationLng,
		&user.CreatedAt,
	)
	return user, err
}

// CreateUser inserts a new user into the database
func (s *service) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	query := `
		INSERT INTO users (email, hashed_password, role, name, age, gender, conditions, allergies, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING` + userColumns

	row := s.db.QueryRowContext(ctx, query,
		nu.Email,
		nu.HashedPassword,
		models.RoleCitizen,
		nu.Name,
		nu.Age,
		nu.Gender,
		nu.Conditions,
		nu.Allergies,
		nu.Address,
	)

	user, err := scanUserRow(row)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *service) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE id = $1`

	user, err := scanUserRow(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address
func (s *service) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE email = $1`

	user, err := scanUserRow(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return user, nil
}

// UpdateUserProfile applies a partial profile update. Nil fields keep their
// stored value. A no-op update still verifies the row exists.
func (s *service) UpdateUserProfile(ctx context.Context, userID int64, upd models.UserUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Age != nil {
		add("age", *upd.Age)
	}
	if upd.Gender != nil {
		add("gender", *upd.Gender)
	}
	if upd.Conditions != nil {
		add("conditions", *upd.Conditions)
	}
	if upd.Allergies != nil {
		add("allergies", *upd.Allergies)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.LocationLat != nil {
		add("location_lat", *upd.LocationLat)
	}
	if upd.LocationLng != nil {
		add("location_lng", *upd.LocationLng)
	}

	if len(sets) == 0 {
		_, err := s.GetUserByID(ctx, userID)
		return err
	}

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDBNotFound
	}

	return nil
}

// ---------------------------------------------
// Scan operations
// ---------------------------------------------

const scanColumns = `
	id,
	user_id,
	filename,
	s3_key,
	condition,
	confidence,
	severity,
	steps,
	warnings,
	notes,
	assigned_to,
	created_at
`

func scanScanRow(row interface{ Scan(...any) error }) (models.Scan, error) {
	var scan models.Scan
	err := row.Scan(
		&scan.ID,
		&scan.UserID,
		&scan.Filename,
		&scan.S3Key,
		&scan.Condition,
		&scan.Confidence,
		&scan.Severity,
		&scan.Steps,
		&scan.Warnings,
		&scan.Notes,
		&scan.AssignedTo,
		&scan.CreatedAt,
	)
	return scan, err
}

// CreateScan inserts a new scan row. Severity is normalized before it is
// written so the column only ever holds the three defined values.
func (s *service) CreateScan(ctx context.Context, ns models.NewScan) (models.Scan, error) {
	query := `
		INSERT INTO scans (user_id, filename, s3_key, condition, confidence, severity, steps, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING` + scanColumns

	scan, err := scanScanRow(s.db.QueryRowContext(ctx, query,
		ns.UserID,
		ns.Filename,
		ns.S3Key,
		ns.Condition,
		ns.Confidence,
		models.NormalizeSeverity(ns.Severity),
		ns.Steps,
		ns.Warnings,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return models.Scan{}, ErrForeignKeyViolation
		}
		return models.Scan{}, fmt.Errorf("creating scan: %w", err)
	}

	return scan, nil
}

// GetScanByID retrieves a single scan row
func (s *service) GetScanByID(ctx context.Context, scanID int64) (models.Scan, error) {
	query := `SELECT` + scanColumns + `FROM scans WHERE id = $1`

	scan, err := scanScanRow(s.db.QueryRowContext(ctx, query, scanID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Scan{}, ErrDBNotFound
		}
		return models.Scan{}, fmt.Errorf("selecting scan: %w", err)
	}

	return scan, nil
}

// ListRecentScans returns the most recently inserted scans, newest first.
func (s *service) ListRecentScans(ctx context.Context, limit int) ([]models.Scan, error) {
	query := `SELECT` + scanColumns + `FROM scans ORDER BY id DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent scans: %w", err)
	}
	defer rows.Close()

	return collectScans(rows)
}

// ListCases returns all scans newest-first, optionally filtered to a single
// severity value.
func (s *service) ListCases(ctx context.Context, severity string) ([]models.Scan, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if severity != "" {
		query := `SELECT` + scanColumns + `FROM scans WHERE severity = $1 ORDER BY created_at DESC`
		rows, err = s.db.QueryContext(ctx, query, severity)
	} else {
		query := `SELECT` + scanColumns + `FROM scans ORDER BY created_at DESC`
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	return collectScans(rows)
}

// AssignScan sets the assigned doctor id on a scan
func (s *service) AssignScan(ctx context.Context, scanID, doctorID int64) error {
	const query = `UPDATE scans SET assigned_to = $2 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, scanID, doctorID)
	if err != nil {
		return fmt.Errorf("assigning scan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDBNotFound
	}

	return nil
}

// AppendScanNote appends a note to a scan, newline-separated and trimmed.
// Last write wins on concurrent appends; the datastore's row-level guarantees
// are the only coordination.
func (s *service) AppendScanNote(ctx context.Context, scanID int64, note string) error {
	scan, err := s.GetScanByID(ctx, scanID)
	if err != nil {
		return err
	}

	existing := ""
	if scan.Notes != nil {
		existing = *scan.Notes
	}
	combined := strings.TrimSpace(existing + "\n" + note)

	const query = `UPDATE scans SET notes = $2 WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, scanID, combined); err != nil {
		return fmt.Errorf("updating scan notes: %w", err)
	}

	return nil
}

// ---------------------------------------------
// Helpers
// ---------------------------------------------

func collectScans(rows *sql.Rows) ([]models.Scan, error) {
	var scans []models.Scan
	for rows.Next() {
		scan, err := scanScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scan row: %w", err)
		}
		scans = append(scans, scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scans: %w", err)
	}

	return scans, nil
}

// isPgError checks if the error is a PostgreSQL error with the given code
func isPgError(err error, code string) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}
