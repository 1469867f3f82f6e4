package repository_test_test

import (
	"testing"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/repository"
	"passkey_auth_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestFindByCredentialID_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	credID := []byte{0xAA, 0xBB}
	rows := sqlmock.NewRows([]string{"id", "user_id", "credential_id", "sign_count"}).
		AddRow(1, 7, credID, 5)

	mock.ExpectQuery(`SELECT \* FROM "user_passkeys" WHERE credential_id = \$1 ORDER BY "user_passkeys"\."id" LIMIT \$2`).
		WithArgs(credID, 1).
		WillReturnRows(rows)

	repo := repository.NewPasskeyRepository()
	passkey, err := repo.FindByCredentialID(conn, credID)

	assert.NoError(t, err)
	assert.NotNil(t, passkey)
	assert.Equal(t, uint(7), passkey.UserID)
	assert.Equal(t, uint32(5), passkey.SignCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCredentialIDUnknown_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	credID := []byte{0xAA, 0xBB}
	mock.ExpectQuery(`SELECT \* FROM "user_passkeys" WHERE credential_id = \$1 ORDER BY "user_passkeys"\."id" LIMIT \$2`).
		WithArgs(credID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "credential_id"}))

	repo := repository.NewPasskeyRepository()
	passkey, err := repo.FindByCredentialID(conn, credID)

	assert.ErrorIs(t, err, apperrors.ErrUnknownCredential)
	assert.Nil(t, passkey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
