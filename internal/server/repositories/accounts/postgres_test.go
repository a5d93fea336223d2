package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qInsert     = `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*role,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)$`
	qByID       = `(?s)^SELECT\s+id,\s*email,\s*role,\s*created_at\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`
	qByEmail    = `(?s)^SELECT\s+id,\s*email,\s*role,\s*created_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	qUpdateRole = `(?s)^UPDATE\s+accounts\s+SET\s+role\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`
	qUpdateMail = `(?s)^UPDATE\s+accounts\s+SET\s+email\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`
	qList       = `(?s)^SELECT\s+id,\s*email,\s*role,\s*created_at\s+FROM\s+accounts\s+ORDER\s+BY\s+email$`
)

var accountCols = []string{"id", "email", "role", "created_at"}

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgres_Create_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectExec(qInsert).
		WithArgs(sqlmock.AnyArg(), "alice@x.com", int64(1), fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	acc, err := repo.Create(context.Background(), "alice@x.com", models.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, "alice@x.com", acc.Email)
	assert.Equal(t, models.RoleUser, acc.Role)
	assert.Equal(t, fixed, acc.CreatedAt)
}

func TestPostgres_Create_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qInsert).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), "alice@x.com", models.RoleUser)
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qInsert).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice@x.com", models.RoleUser)
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
	assert.NotErrorIs(t, err, common.ErrorConflict)
}

func TestPostgres_GetByID(t *testing.T) {
	created := time.Now().UTC()

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(qByID).WithArgs("a-1").
					WillReturnRows(sqlmock.NewRows(accountCols).AddRow("a-1", "alice@x.com", int64(2), created))
			},
		},
		{
			name: "not found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(qByID).WithArgs("a-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: common.ErrorNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock)

			acc, err := repo.GetByID(context.Background(), "a-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &models.Account{ID: "a-1", Email: "alice@x.com", Role: models.RoleAdmin, CreatedAt: created}, acc)
		})
	}
}

func TestPostgres_GetByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByEmail).WithArgs("alice@x.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "alice@x.com")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
}

func TestPostgres_UpdateRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Now().UTC()

	mock.ExpectExec(qUpdateRole).WithArgs(int64(2), "a-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qByID).WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow("a-1", "alice@x.com", int64(2), created))

	acc, err := repo.UpdateRole(context.Background(), "a-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, acc.Role)
}

func TestPostgres_UpdateRole_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qUpdateRole).WithArgs(int64(2), "ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateRole(context.Background(), "ghost", models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_List(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows(accountCols).
		AddRow("a-1", "alice@x.com", int64(1), now).
		AddRow("b-1", "bob@x.com", int64(2), now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice@x.com", got[0].Email)
	assert.Equal(t, models.RoleAdmin, got[1].Role)
}

func TestPostgres_List_RowError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows(accountCols).
		AddRow("a-1", "alice@x.com", int64(1), time.Now()).
		RowError(0, errors.New("broken row")))

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}

func TestPostgres_UpdateEmail(t *testing.T) {
	created := time.Now().UTC()
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "updated",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(qUpdateMail).WithArgs("new@x.com", "a-1").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery(qByID).WithArgs("a-1").
					WillReturnRows(sqlmock.NewRows(accountCols).AddRow("a-1", "new@x.com", int64(1), created))
			},
		},
		{
			name: "email taken",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(qUpdateMail).WithArgs("new@x.com", "a-1").WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: common.ErrorConflict,
		},
		{
			name: "missing account",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(qUpdateMail).WithArgs("new@x.com", "a-1").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: common.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock)

			acc, err := repo.UpdateEmail(context.Background(), "a-1", "new@x.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "new@x.com", acc.Email)
		})
	}
}
