package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemberService_AddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockMemberRepo)
		svc := NewMemberService(repo, 17)
		pos := int32(4)
		repo.On("GetByEmail", ctx, "ama@example.com").Return(nil, domain.ErrNotFound)
		repo.On("GetByRotationPosition", ctx, int32(4)).Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Member")).Return(nil)

		m := &domain.Member{Name: " Ama ", Email: " Ama@Example.com", Phone: "+237 600", RotationPosition: &pos}
		require.NoError(t, svc.AddMember(ctx, m))
		assert.Equal(t, "Ama", m.Name)
		assert.Equal(t, "ama@example.com", m.Email)
		assert.True(t, m.Active)
	})

	t.Run("Every missing field is reported", func(t *testing.T) {
		repo := new(MockMemberRepo)
		svc := NewMemberService(repo, 17)
		pos := int32(18)

		err := svc.AddMember(ctx, &domain.Member{Email: "nope", RotationPosition: &pos})
		var v *domain.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Len(t, v.Reasons, 4)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo := new(MockMemberRepo)
		svc := NewMemberService(repo, 17)
		repo.On("GetByEmail", ctx, "ama@example.com").Return(&domain.Member{ID: 2}, nil)

		err := svc.AddMember(ctx, &domain.Member{Name: "Ama", Email: "ama@example.com", Phone: "1"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Position already held", func(t *testing.T) {
		repo := new(MockMemberRepo)
		svc := NewMemberService(repo, 17)
		pos := int32(2)
		repo.On("GetByEmail", ctx, "kofi@example.com").Return(nil, domain.ErrNotFound)
		repo.On("GetByRotationPosition", ctx, int32(2)).Return(&domain.Member{ID: 9}, nil)

		err := svc.AddMember(ctx, &domain.Member{Name: "Kofi", Email: "kofi@example.com", Phone: "1", RotationPosition: &pos})
		var v *domain.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Contains(t, v.Reasons[0], "held by member 9")
	})

	t.Run("Store failure on lookup", func(t *testing.T) {
		repo := new(MockMemberRepo)
		svc := NewMemberService(repo, 17)
		storeErr := domain.NewStoreError("select", "members", errors.New("timeout"))
		repo.On("GetByEmail", ctx, "ama@example.com").Return(nil, storeErr)

		err := svc.AddMember(ctx, &domain.Member{Name: "Ama", Email: "ama@example.com", Phone: "1"})
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestMemberService_Deactivate(t *testing.T) {
	repo := new(MockMemberRepo)
	svc := NewMemberService(repo, 17)
	ctx := context.Background()
	repo.On("SetActive", ctx, int32(3), false).Return(nil)

	assert.NoError(t, svc.Deactivate(ctx, 3))
	repo.AssertExpectations(t)
}
