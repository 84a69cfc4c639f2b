package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository/postgres"
)

var accountRows = []string{
	"id", "public_id", "name", "email", "password_hash", "wallet_cents", "bonus_cents",
	"active_instance_id", "invited_by_id", "has_deposited", "has_activated_plan",
	"is_blocked", "is_admin", "blocked_reason", "blocked_on", "created_on", "updated_on",
}

func accountRow(mockRows *sqlmock.Rows) *sqlmock.Rows {
	now := time.Now()
	return mockRows.AddRow(
		1, "12345", "Jane", "jane@example.com", "hash", 20000, 3000,
		nil, nil, true, true, false, false, "", nil, now, now,
	)
}

func TestAccountRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1$").
			WithArgs(int64(1)).
			WillReturnRows(accountRow(sqlmock.NewRows(accountRows)))

		acct, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "12345", acct.PublicID)
		assert.Equal(t, int64(20000), acct.WalletCents)
		assert.Equal(t, int64(3000), acct.BonusCents)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1$").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(accountRows))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestAccountRepository_GetByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(accountRow(sqlmock.NewRows(accountRows)))

	acct, err := repo.GetByIDForUpdate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acct.ID)
}

func TestAccountRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()
	now := time.Now()

	acct := &domain.Account{
		PublicID:     "12345",
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: "hash",
		BonusCents:   2500,
	}

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs(acct.PublicID, acct.Name, acct.Email, acct.PasswordHash,
			acct.WalletCents, acct.BonusCents, nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(42, now, now))

	err = repo.Create(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, int64(42), acct.ID)
}

func TestAccountRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		acct := &domain.Account{ID: 1, Name: "Jane", Email: "jane@example.com", WalletCents: 5000}

		mock.ExpectExec("UPDATE accounts SET").
			WithArgs(acct.ID, acct.Name, acct.Email, acct.PasswordHash,
				acct.WalletCents, acct.BonusCents, nil,
				false, false, false, "", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, acct)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		acct := &domain.Account{ID: 99}

		mock.ExpectExec("UPDATE accounts SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, acct)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}
