package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFieldMapping() config.FieldMappingConfig {
	return config.FieldMappingConfig{
		LoanTotalColumns:       []string{"total_due", "balance", "principal_current", "principal"},
		RepaymentAmountColumns: []string{"amount_paid", "amount"},
	}
}

var memberCols = []string{"id", "name", "email", "phone", "rotation_position", "active", "created_at"}

func TestMemberRepository_Create(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()
	pos := int32(2)
	m := &domain.Member{Name: "Ada", Email: "Ada@Example.COM", Phone: "555", RotationPosition: &pos, Active: true}

	mock.ExpectQuery("INSERT INTO members").
		WithArgs("Ada", "ada@example.com", "555", sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, now))

	require.NoError(t, store.Members.Create(context.Background(), m))
	assert.Equal(t, int32(9), m.ID)
	assert.Equal(t, "ada@example.com", m.Email)
}

func TestMemberRepository_GetByRotationPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("FROM members WHERE rotation_position").WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows(memberCols).AddRow(5, "Bola", "bola@example.com", "", 3, true, time.Now()))

		m, err := store.Members.GetByRotationPosition(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int32(5), m.ID)
		require.NotNil(t, m.RotationPosition)
		assert.Equal(t, int32(3), *m.RotationPosition)
	})

	t.Run("Not found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("FROM members WHERE rotation_position").WithArgs(int32(3)).WillReturnError(sql.ErrNoRows)

		_, err := store.Members.GetByRotationPosition(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Store failure", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("FROM members WHERE rotation_position").WithArgs(int32(3)).WillReturnError(sql.ErrConnDone)

		_, err := store.Members.GetByRotationPosition(ctx, 3)
		var storeErr *domain.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestMemberRepository_SetActive(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("UPDATE members SET active").WithArgs(false, int32(44)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Members.SetActive(context.Background(), 44, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
