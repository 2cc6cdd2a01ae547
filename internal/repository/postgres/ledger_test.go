package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contributionCols = []string{"id", "member_id", "amount", "kind", "notes", "created_at"}

func TestContributionRepository_ListCreatedAfter(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(14 * 24 * time.Hour)

	t.Run("Unbounded", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM contributions WHERE created_at > $1 ORDER BY created_at, id")).
			WithArgs(start).
			WillReturnRows(sqlmock.NewRows(contributionCols).
				AddRow(1, 1, 100, "contribution", "", start.Add(time.Hour)).
				AddRow(2, 2, 200, "contribution", "", start.Add(2*time.Hour)))

		rows, err := store.Contributions.ListCreatedAfter(ctx, start, nil)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("Bounded", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at > $1 AND created_at <= $2")).
			WithArgs(start, end).
			WillReturnRows(sqlmock.NewRows(contributionCols))

		rows, err := store.Contributions.ListCreatedAfter(ctx, start, &end)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestContributionRepository_MarkSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing to settle", func(t *testing.T) {
		store, _ := newMock(t)
		n, err := store.Contributions.MarkSettled(ctx, nil, "paid")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Settles ids", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE contributions SET kind = $1 WHERE id = ANY($2)")).
			WithArgs("paid", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := store.Contributions.MarkSettled(ctx, []int64{4, 5, 6}, "paid")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestContributionRepository_LockForPayout(t *testing.T) {
	ctx := context.Background()

	t.Run("Takes a table lock that blocks inserts", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("LOCK TABLE contributions IN SHARE ROW EXCLUSIVE MODE")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, store.Contributions.LockForPayout(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock error", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("LOCK TABLE contributions").WillReturnError(errors.New("lock timeout"))

		err := store.Contributions.LockForPayout(ctx)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "lock", storeErr.Op)
	})
}

func TestContributionRepository_Sum(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE member_id = $1")).
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1500))

	total, err := store.Contributions.Sum(context.Background(), domain.ForMember(7))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total)
}

func TestFoundationRepository_Sums(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("FROM foundation_payments").
		WillReturnRows(sqlmock.NewRows([]string{"paid", "pending"}).AddRow(500, 250))

	paid, pending, err := store.Foundation.Sums(context.Background(), domain.AllMembers())
	require.NoError(t, err)
	assert.Equal(t, int64(500), paid)
	assert.Equal(t, int64(250), pending)
}

func TestFineRepository_SumUnpaid(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM fines WHERE status = $1 AND member_id = $2")).
		WithArgs("unpaid", int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(40))

	total, err := store.Fines.SumUnpaid(context.Background(), domain.ForMember(3))
	require.NoError(t, err)
	assert.Equal(t, int64(40), total)
}
