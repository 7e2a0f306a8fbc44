package repository

import (
	"context"
	"fmt"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository/dao"
)

var ErrGroupNotFound = dao.ErrGroupNotFound

type GroupDAO interface {
	Insert(ctx context.Context, group dao.Group) (dao.Group, error)
	FindByID(ctx context.Context, id uint) (dao.Group, error)
	FindByMember(ctx context.Context, userID uint) ([]dao.Group, error)
	AddInvite(ctx context.Context, groupID uint, email string) error
	RemoveInvite(ctx context.Context, groupID uint, email string) error
	AddMember(ctx context.Context, groupID, userID uint, email string) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
}

type GroupRepository struct {
	dao GroupDAO
}

func NewGroupRepository(dao GroupDAO) *GroupRepository {
	return &GroupRepository{
		dao: dao,
	}
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	created, err := r.dao.Insert(ctx, dao.Group{
		Name:        group.Name,
		Description: group.Description,
		OwnerID:     group.OwnerID,
	})
	if err != nil {
		return domain.Group{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint) (domain.Group, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *GroupRepository) FindByMember(ctx context.Context, userID uint) ([]domain.Group, error) {
	found, err := r.dao.FindByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByMember -> %w", err)
	}

	groups := make([]domain.Group, len(found))
	for i, g := range found {
		groups[i] = r.daoToDomain(g)
	}

	return groups, nil
}

func (r *GroupRepository) AddInvite(ctx context.Context, groupID uint, email string) error {
	if err := r.dao.AddInvite(ctx, groupID, email); err != nil {
		return fmt.Errorf("r.dao.AddInvite -> %w", err)
	}

	return nil
}

func (r *GroupRepository) RemoveInvite(ctx context.Context, groupID uint, email string) error {
	if err := r.dao.RemoveInvite(ctx, groupID, email); err != nil {
		return fmt.Errorf("r.dao.RemoveInvite -> %w", err)
	}

	return nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uint, email string) error {
	if err := r.dao.AddMember(ctx, groupID, userID, email); err != nil {
		return fmt.Errorf("r.dao.AddMember -> %w", err)
	}

	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	if err := r.dao.RemoveMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("r.dao.RemoveMember -> %w", err)
	}

	return nil
}

func (r *GroupRepository) daoToDomain(g dao.Group) domain.Group {
	members := make([]uint, len(g.Members))
	for i, m := range g.Members {
		members[i] = m.UserID
	}

	invites := make([]string, len(g.Invites))
	for i, inv := range g.Invites {
		invites[i] = inv.Email
	}

	return domain.Group{
		ID:             g.ID,
		Name:           g.Name,
		Description:    g.Description,
		OwnerID:        g.OwnerID,
		Members:        members,
		InvitedMembers: invites,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}
