package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindInfoByIDs(ctx context.Context, ids []uint) ([]domain.UserInfo, error)
	FindEmailsByIDs(ctx context.Context, ids []uint) ([]string, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

type UserGroupRepository interface {
	FindByMember(ctx context.Context, userID uint) ([]domain.Group, error)
}

type UserService struct {
	repo      UserRepository
	groupRepo UserGroupRepository
}

func NewUserService(repo UserRepository, groupRepo UserGroupRepository) *UserService {
	return &UserService{
		repo:      repo,
		groupRepo: groupRepo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.fillGroups(ctx, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// UpdateProfile changes the caller's display name and timezone. Email and
// password stay untouched.
func (s *UserService) UpdateProfile(ctx context.Context, session domain.Session, displayName, timezone string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.DisplayName = strings.TrimSpace(displayName)
	user.Timezone = timezone

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if err = s.fillGroups(ctx, &updated); err != nil {
		return domain.User{}, err
	}

	return updated, nil
}

// GetUsersInfo resolves a list of user IDs to the public roster shape.
func (s *UserService) GetUsersInfo(ctx context.Context, ids []uint) ([]domain.UserInfo, error) {
	infos, err := s.repo.FindInfoByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindInfoByIDs -> %w", err)
	}

	return infos, nil
}

func (s *UserService) fillGroups(ctx context.Context, user *domain.User) error {
	groups, err := s.groupRepo.FindByMember(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("s.groupRepo.FindByMember -> %w", err)
	}

	ids := make([]uint, 0, len(groups))
	for _, group := range groups {
		ids = append(ids, group.ID)
	}
	user.Groups = ids

	return nil
}
