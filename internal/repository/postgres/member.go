package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

const memberColumns = `id, name, email, phone, rotation_position, active, created_at`

type memberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (name, email, phone, rotation_position, active)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	logger.DatabaseCall("insert", "members", "email", m.Email)
	err := r.db.QueryRowContext(ctx, query,
		m.Name, strings.ToLower(m.Email), m.Phone, nullInt32(m.RotationPosition), m.Active,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return domain.NewStoreError("insert", "members", err)
	}
	m.Email = strings.ToLower(m.Email)
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, strings.TrimSpace(email))
}

func (r *memberRepository) GetByRotationPosition(ctx context.Context, position int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE rotation_position = $1`
	return r.getOne(ctx, query, position)
}

func (r *memberRepository) List(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStoreError("select", "members", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan", "members", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "members", err)
	}
	return members, nil
}

func (r *memberRepository) SetActive(ctx context.Context, id int32, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE members SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return domain.NewStoreError("update", "members", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update", n, err, "table", "members")
	if err != nil {
		return domain.NewStoreError("update", "members", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *memberRepository) getOne(ctx context.Context, query string, arg any) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, notFoundOr("select", "members", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var m domain.Member
	var position sql.NullInt32
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &position, &m.Active, &m.CreatedAt); err != nil {
		return nil, err
	}
	if position.Valid {
		p := position.Int32
		m.RotationPosition = &p
	}
	return &m, nil
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}
