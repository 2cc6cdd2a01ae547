package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

type memberService struct {
	memberRepo repository.MemberRepository
	groupSize  int32
}

func NewMemberService(memberRepo repository.MemberRepository, groupSize int32) MemberService {
	return &memberService{memberRepo: memberRepo, groupSize: groupSize}
}

func (s *memberService) AddMember(ctx context.Context, m *domain.Member) error {
	logger.EnterMethod("memberService.AddMember", "email", m.Email)

	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Phone = strings.TrimSpace(m.Phone)

	var reasons []string
	if m.Name == "" {
		reasons = append(reasons, "name is required")
	}
	if m.Email == "" || !strings.Contains(m.Email, "@") {
		reasons = append(reasons, "a valid email is required")
	}
	if m.Phone == "" {
		reasons = append(reasons, "phone is required")
	}
	if m.RotationPosition != nil && (*m.RotationPosition < 1 || *m.RotationPosition > s.groupSize) {
		reasons = append(reasons, fmt.Sprintf("rotation position must be between 1 and %d", s.groupSize))
	}
	if len(reasons) > 0 {
		err := domain.NewValidationError(domain.RuleInvalidInput, reasons...)
		logger.ExitMethodWithError("memberService.AddMember", err)
		return err
	}

	if existing, err := s.memberRepo.GetByEmail(ctx, m.Email); err == nil && existing != nil {
		err := domain.NewValidationError(domain.RuleInvalidInput, fmt.Sprintf("email %s is already registered", m.Email))
		logger.ExitMethodWithError("memberService.AddMember", err)
		return err
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethodWithError("memberService.AddMember", err)
		return err
	}

	if m.RotationPosition != nil {
		holder, err := s.memberRepo.GetByRotationPosition(ctx, *m.RotationPosition)
		if err == nil && holder != nil {
			err := domain.NewValidationError(domain.RuleInvalidInput,
				fmt.Sprintf("rotation position %d is held by member %d", *m.RotationPosition, holder.ID))
			logger.ExitMethodWithError("memberService.AddMember", err)
			return err
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.ExitMethodWithError("memberService.AddMember", err)
			return err
		}
	}

	m.Active = true
	if err := s.memberRepo.Create(ctx, m); err != nil {
		logger.ExitMethodWithError("memberService.AddMember", err)
		return err
	}

	logger.ExitMethod("memberService.AddMember", "member_id", m.ID)
	return nil
}

// Deactivate keeps the member's history; a deactivated member cannot request loans.
func (s *memberService) Deactivate(ctx context.Context, id int32) error {
	return s.memberRepo.SetActive(ctx, id, false)
}

func (s *memberService) Get(ctx context.Context, id int32) (*domain.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

func (s *memberService) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return s.memberRepo.GetByEmail(ctx, email)
}

func (s *memberService) List(ctx context.Context) ([]domain.Member, error) {
	return s.memberRepo.List(ctx)
}
