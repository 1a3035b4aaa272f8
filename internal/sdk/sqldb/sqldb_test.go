package sqldb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chandru2600/Vaidra/internal/sdk/models"
)

func newMock(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(db), mock
}

var userRowColumns = []string{
	"id", "email", "hashed_password", "role", "name", "age", "gender",
	"conditions", "allergies", "address", "location_lat", "location_lng", "created_at",
}

var scanRowColumns = []string{
	"id", "user_id", "filename", "s3_key", "condition", "confidence",
	"severity", "steps", "warnings", "notes", "assigned_to", "created_at",
}

type pgError struct{ code string }

func (e pgError) Error() string    { return "pg error " + e.code }
func (e pgError) SQLState() string { return e.code }

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, mock := newMock(t)

		name := "Asha"
		rows := sqlmock.NewRows(userRowColumns).
			AddRow(int64(1), "asha@example.com", "hash", "CITIZEN", name,
				nil, nil, nil, nil, nil, nil, nil, time.Now())

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("asha@example.com", "hash", "CITIZEN", name, nil, nil, nil, nil, nil).
			WillReturnRows(rows)

		user, err := svc.CreateUser(context.Background(), models.NewUser{
			Email:          "asha@example.com",
			HashedPassword: "hash",
			Name:           &name,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "asha@example.com", user.Email)
		assert.Equal(t, "CITIZEN", user.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(pgError{code: "23505"})

		_, err := svc.CreateUser(context.Background(), models.NewUser{
			Email:          "asha@example.com",
			HashedPassword: "hash",
		})
		assert.ErrorIs(t, err, ErrDBDuplicatedEntry)
	})
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectQuery(`SELECT(.|\n)+FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrDBNotFound)
}

func TestUpdateUserProfile(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		svc, mock := newMock(t)

		name := "Asha R"
		lat := 12.97

		mock.ExpectExec(`UPDATE users SET name = \$1, location_lat = \$2 WHERE id = \$3`).
			WithArgs(name, lat, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.UpdateUserProfile(context.Background(), 7, models.UserUpdate{
			Name:        &name,
			LocationLat: &lat,
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		svc, mock := newMock(t)

		name := "Asha R"
		mock.ExpectExec(`UPDATE users SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.UpdateUserProfile(context.Background(), 99, models.UserUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrDBNotFound)
	})
}

func TestCreateScan_NormalizesSeverity(t *testing.T) {
	svc, mock := newMock(t)

	rows := sqlmock.NewRows(scanRowColumns).
		AddRow(int64(3), nil, "1700000_skin.jpg", "cases/abc_skin.jpg", "Eczema",
			88.0, "URGENT", "a|b", "", nil, nil, time.Now())

	mock.ExpectQuery(`INSERT INTO scans`).
		WithArgs(nil, "1700000_skin.jpg", "cases/abc_skin.jpg", "Eczema", 88.0,
			"URGENT", "a|b", "").
		WillReturnRows(rows)

	scan, err := svc.CreateScan(context.Background(), models.NewScan{
		Filename:   "1700000_skin.jpg",
		S3Key:      "cases/abc_skin.jpg",
		Condition:  "Eczema",
		Confidence: 88.0,
		Severity:   "urgent",
		Steps:      "a|b",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), scan.ID)
	require.NotNil(t, scan.Severity)
	assert.Equal(t, "URGENT", *scan.Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentScans(t *testing.T) {
	svc, mock := newMock(t)

	rows := sqlmock.NewRows(scanRowColumns)
	for i := int64(7); i > 2; i-- {
		rows.AddRow(i, nil, "f.jpg", nil, "Acne", 50.0, "MINOR", "", "", nil, nil, time.Now())
	}

	mock.ExpectQuery(`SELECT(.|\n)+FROM scans ORDER BY id DESC LIMIT`).
		WithArgs(5).
		WillReturnRows(rows)

	scans, err := svc.ListRecentScans(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, scans, 5)
	assert.Equal(t, int64(7), scans[0].ID)
	assert.Equal(t, int64(3), scans[4].ID)
}

func TestListCases_SeverityFilter(t *testing.T) {
	svc, mock := newMock(t)

	rows := sqlmock.NewRows(scanRowColumns).
		AddRow(int64(2), nil, "f.jpg", nil, "Burn", 91.0, "URGENT", "", "", nil, nil, time.Now())

	mock.ExpectQuery(`SELECT(.|\n)+FROM scans WHERE severity = \$1 ORDER BY created_at DESC`).
		WithArgs("URGENT").
		WillReturnRows(rows)

	scans, err := svc.ListCases(context.Background(), "URGENT")
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "URGENT", *scans[0].Severity)
}

func TestAssignScan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, mock := newMock(t)

		mock.ExpectExec(`UPDATE scans SET assigned_to = \$2 WHERE id = \$1`).
			WithArgs(int64(4), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.AssignScan(context.Background(), 4, 11))
	})

	t.Run("missing scan", func(t *testing.T) {
		svc, mock := newMock(t)

		mock.ExpectExec(`UPDATE scans SET assigned_to`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.AssignScan(context.Background(), 404, 11)
		assert.ErrorIs(t, err, ErrDBNotFound)
	})
}

func TestAppendScanNote(t *testing.T) {
	t.Run("appends to existing notes", func(t *testing.T) {
		svc, mock := newMock(t)

		existing := "first note"
		rows := sqlmock.NewRows(scanRowColumns).
			AddRow(int64(5), nil, "f.jpg", nil, nil, nil, nil, nil, nil, existing, nil, time.Now())

		mock.ExpectQuery(`SELECT(.|\n)+FROM scans WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE scans SET notes = \$2 WHERE id = \$1`).
			WithArgs(int64(5), "first note\nsecond note").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.AppendScanNote(context.Background(), 5, "second note"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first note is trimmed", func(t *testing.T) {
		svc, mock := newMock(t)

		rows := sqlmock.NewRows(scanRowColumns).
			AddRow(int64(6), nil, "f.jpg", nil, nil, nil, nil, nil, nil, nil, nil, time.Now())

		mock.ExpectQuery(`SELECT(.|\n)+FROM scans WHERE id = \$1`).
			WithArgs(int64(6)).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE scans SET notes = \$2 WHERE id = \$1`).
			WithArgs(int64(6), "only note").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.AppendScanNote(context.Background(), 6, "only note"))
	})

	t.Run("missing scan", func(t *testing.T) {
		svc, mock := newMock(t)

		mock.ExpectQuery(`SELECT(.|\n)+FROM scans WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		err := svc.AppendScanNote(context.Background(), 404, "note")
		assert.ErrorIs(t, err, ErrDBNotFound)
	})
}
