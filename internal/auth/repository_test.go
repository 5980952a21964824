package auth

import (
	"regexp"
	"testing"
	"time"

	"aerolink/internal/shared/database/databasetest"
	"aerolink/internal/users"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateUserWithToken(t *testing.T) {
	db, mock := databasetest.New(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectQuery(`INSERT INTO "verification_tokens" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	user := &users.User{Username: "ada", Email: "ada@example.com", Phone: "+15550100", Role: users.RoleUser}
	token := &VerificationToken{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, NewRepository(db).CreateUser(t.Context(), user, token))
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, userID, token.UserID)
}

func TestRepository_CreateUserRollsBack(t *testing.T) {
	db, mock := databasetest.New(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := NewRepository(db).CreateUser(t.Context(), &users.User{Username: "ada"}, &VerificationToken{Token: "abc"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRepository_FindConflicts(t *testing.T) {
	db, mock := databasetest.New(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "email","username","phone" FROM "users" WHERE email = $1 OR username = $2 OR phone = $3`)).
		WithArgs("ada@example.com", "ada", "+15550100").
		WillReturnRows(sqlmock.NewRows([]string{"email", "username", "phone"}).
			AddRow("ada@example.com", "someone", "+1000").
			AddRow("other@example.com", "ada", "+15550100"))

	taken, err := NewRepository(db).FindConflicts(t.Context(), "ada@example.com", "ada", "+15550100")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "username", "phone"}, taken)
}

func TestRepository_GetUserByUsernameNotFound(t *testing.T) {
	db, mock := databasetest.New(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewRepository(db).GetUserByUsername(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_MarkEmailVerified(t *testing.T) {
	at := time.Now()
	token := &VerificationToken{ID: uuid.New(), UserID: uuid.New()}

	t.Run("consumes token and stamps user", func(t *testing.T) {
		db, mock := databasetest.New(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "verification_tokens" SET "used_at"=$1 WHERE id = $2 AND used_at IS NULL`)).
			WithArgs(at, token.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "users" SET "email_verified_at"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WithArgs(at, sqlmock.AnyArg(), token.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, NewRepository(db).MarkEmailVerified(t.Context(), token, at))
	})

	t.Run("token already consumed", func(t *testing.T) {
		db, mock := databasetest.New(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "verification_tokens"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewRepository(db).MarkEmailVerified(t.Context(), token, at)
		assert.ErrorIs(t, err, ErrInvalidVerificationToken)
	})
}
