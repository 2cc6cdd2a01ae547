package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

type rotationRepository struct {
	db DBTX
}

func NewRotationRepository(db DBTX) repository.RotationRepository {
	return &rotationRepository{db: db}
}

func (r *rotationRepository) Get(ctx context.Context) (*domain.RotationState, error) {
	return r.get(ctx, `SELECT next_payout_index, next_payout_date, version, updated_at FROM rotation_state WHERE id = 1`)
}

// GetForUpdate locks the singleton row until the enclosing transaction ends.
func (r *rotationRepository) GetForUpdate(ctx context.Context) (*domain.RotationState, error) {
	return r.get(ctx, `SELECT next_payout_index, next_payout_date, version, updated_at FROM rotation_state WHERE id = 1 FOR UPDATE`)
}

func (r *rotationRepository) Advance(ctx context.Context, nextIndex int32, nextDate time.Time, expectedVersion int64) (*domain.RotationState, error) {
	query := `UPDATE rotation_state
	          SET next_payout_index = $1, next_payout_date = $2, version = version + 1, updated_at = NOW()
	          WHERE id = 1 AND version = $3
	          RETURNING next_payout_index, next_payout_date, version, updated_at`
	logger.DatabaseCall("update", "rotation_state", "next_index", nextIndex, "expected_version", expectedVersion)
	st, err := scanRotationState(r.db.QueryRowContext(ctx, query, nextIndex, nextDate, expectedVersion))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRotationConflict
	}
	if err != nil {
		return nil, domain.NewStoreError("update", "rotation_state", err)
	}
	return st, nil
}

func (r *rotationRepository) get(ctx context.Context, query string) (*domain.RotationState, error) {
	st, err := scanRotationState(r.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, notFoundOr("select", "rotation_state", err)
	}
	return st, nil
}

func scanRotationState(row rowScanner) (*domain.RotationState, error) {
	var st domain.RotationState
	var nextDate sql.NullTime
	if err := row.Scan(&st.NextPayoutIndex, &nextDate, &st.Version, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.NextPayoutDate = nullTimePtr(nextDate)
	return &st, nil
}
