package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db, DefaultFieldMap()), mock
}

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.String())

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w.add("status = $%d", "unpaid")
	w.scope(domain.ForMember(4).WithSince(since), "member_id", "created_at")
	w.raw("amount > 0")

	assert.Equal(t, " WHERE status = $1 AND member_id = $2 AND created_at >= $3 AND amount > 0", w.String())
	assert.Equal(t, []any{"unpaid", int32(4), since}, w.args)
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE members SET active").WithArgs(false, int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return repos.Members.SetActive(ctx, 3, false)
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback on error", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Begin fails", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			t.Fatal("fn must not run")
			return nil
		})
		var storeErr *domain.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("down"))
	store := NewStore(db, DefaultFieldMap())
	assert.Error(t, store.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveFieldMap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.columns").WithArgs("loans").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("principal").AddRow("balance"))
	mock.ExpectQuery("information_schema.columns").WithArgs("repayments").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("loan_id"))

	fields, err := ResolveFieldMap(context.Background(), db, configFieldMapping())
	require.NoError(t, err)
	assert.Equal(t, "balance", fields.LoanTotalColumn)
	assert.Empty(t, fields.RepaymentAmountColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}
